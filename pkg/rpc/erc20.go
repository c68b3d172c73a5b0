package rpc

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"

	"evmwallet/pkg/models"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20JSON = `[
{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"type":"function"},
{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// ERC20 is the subset of the token interface the wallet uses.
var ERC20 = mustParseABI(erc20JSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// TokenBalance returns owner's balance of contract in base units.
func (c *Client) TokenBalance(ctx context.Context, contract, owner string) (*big.Int, error) {
	const op = "getTokenBalance"
	data, err := ERC20.Pack("balanceOf", common.HexToAddress(owner))
	if err != nil {
		return nil, err
	}
	res, err := c.call(ctx, op, common.HexToAddress(contract), data)
	if err != nil {
		return nil, err
	}
	out, err := ERC20.Unpack("balanceOf", res)
	if err != nil {
		return nil, netErr(op, fmt.Errorf("decode balanceOf: %w", err))
	}
	return out[0].(*big.Int), nil
}

// TokenMetadata reads name, symbol and decimals from contract.
func (c *Client) TokenMetadata(ctx context.Context, contract string) (models.TokenMetadata, error) {
	const op = "getTokenMetadata"
	addr := common.HexToAddress(contract)

	name, err := c.stringCall(ctx, op, addr, "name")
	if err != nil {
		return models.TokenMetadata{}, err
	}
	symbol, err := c.stringCall(ctx, op, addr, "symbol")
	if err != nil {
		return models.TokenMetadata{}, err
	}

	data, _ := ERC20.Pack("decimals")
	res, err := c.call(ctx, op, addr, data)
	if err != nil {
		return models.TokenMetadata{}, err
	}
	out, err := ERC20.Unpack("decimals", res)
	if err != nil {
		return models.TokenMetadata{}, netErr(op, fmt.Errorf("decode decimals: %w", err))
	}
	return models.TokenMetadata{Name: name, Symbol: symbol, Decimals: out[0].(uint8)}, nil
}

// stringCall calls a no-argument string getter. Some older tokens return
// bytes32 instead of string; those are trimmed of trailing zero bytes.
func (c *Client) stringCall(ctx context.Context, op string, addr common.Address, method string) (string, error) {
	data, _ := ERC20.Pack(method)
	res, err := c.call(ctx, op, addr, data)
	if err != nil {
		return "", err
	}
	if out, err := ERC20.Unpack(method, res); err == nil {
		return out[0].(string), nil
	}
	if len(res) == 32 {
		return string(bytes.TrimRight(res, "\x00")), nil
	}
	return "", netErr(op, fmt.Errorf("decode %s: unexpected %d byte result", method, len(res)))
}

// DecodeTransfer extracts recipient and amount from transfer(address,uint256)
// call data.
func DecodeTransfer(input []byte) (common.Address, *big.Int, bool) {
	if len(input) < 4 {
		return common.Address{}, nil, false
	}
	method, err := ERC20.MethodById(input[:4])
	if err != nil || method.Name != "transfer" {
		return common.Address{}, nil, false
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil || len(args) != 2 {
		return common.Address{}, nil, false
	}
	to, ok1 := args[0].(common.Address)
	amount, ok2 := args[1].(*big.Int)
	if !ok1 || !ok2 {
		return common.Address{}, nil, false
	}
	return to, amount, true
}
