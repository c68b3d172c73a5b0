package rpc

import (
	"context"
	"math/big"

	"evmwallet/pkg/keys"
	"evmwallet/pkg/logging"
	"evmwallet/pkg/models"
	"evmwallet/pkg/units"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// SubmitNativeTransfer signs and broadcasts a transfer of amount ether.
func (c *Client) SubmitNativeTransfer(ctx context.Context, key models.PrivateKey, to, amount string) (common.Hash, error) {
	value, err := units.ParseUnits(amount, units.NativeDecimals)
	if err != nil {
		return common.Hash{}, &models.ValidationError{Field: "amount", Reason: err.Error()}
	}
	recipient := common.HexToAddress(to)
	return c.submit(ctx, "submitNativeTransfer", key, recipient, value, nil)
}

// SubmitTokenTransfer signs and broadcasts an ERC-20 transfer. amount is in
// whole tokens and is scaled by decimals.
func (c *Client) SubmitTokenTransfer(ctx context.Context, key models.PrivateKey, contract, to, amount string, decimals uint8) (common.Hash, error) {
	value, err := units.ParseUnits(amount, decimals)
	if err != nil {
		return common.Hash{}, &models.ValidationError{Field: "amount", Reason: err.Error()}
	}
	data, err := ERC20.Pack("transfer", common.HexToAddress(to), value)
	if err != nil {
		return common.Hash{}, err
	}
	return c.submit(ctx, "submitTokenTransfer", key, common.HexToAddress(contract), new(big.Int), data)
}

func (c *Client) submit(ctx context.Context, op string, key models.PrivateKey, to common.Address, value *big.Int, data []byte) (common.Hash, error) {
	priv, err := keys.Parse(key)
	if err != nil {
		return common.Hash{}, err
	}
	from := crypto.PubkeyToAddress(priv.PublicKey)

	chainID, err := c.ChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	ctx, cancel, err := c.begin(ctx, op)
	if err != nil {
		return common.Hash{}, err
	}
	defer cancel()

	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, netErr(op+": nonce", err)
	}
	gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Value: value, Data: data})
	if err != nil {
		return common.Hash{}, netErr(op+": estimate gas", err)
	}

	var head *rpcBlock
	if err := c.raw.CallContext(ctx, &head, "eth_getBlockByNumber", "latest", false); err != nil {
		return common.Hash{}, netErr(op+": head", err)
	}

	var tx *types.Transaction
	if head != nil && head.BaseFee != nil {
		tip, err := c.eth.SuggestGasTipCap(ctx)
		if err != nil {
			return common.Hash{}, netErr(op+": tip", err)
		}
		feeCap := new(big.Int).Mul(head.BaseFee.ToInt(), big.NewInt(2))
		feeCap.Add(feeCap, tip)
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gas,
			To:        &to,
			Value:     value,
			Data:      data,
		})
	} else {
		price, err := c.eth.SuggestGasPrice(ctx)
		if err != nil {
			return common.Hash{}, netErr(op+": gas price", err)
		}
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: price,
			Gas:      gas,
			To:       &to,
			Value:    value,
			Data:     data,
		})
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), priv)
	if err != nil {
		return common.Hash{}, err
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, netErr(op, err)
	}
	logging.With("op", op, "hash", signed.Hash().Hex(), "nonce", nonce).Info("transaction broadcast")
	return signed.Hash(), nil
}
