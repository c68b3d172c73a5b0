package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// BadgerKV stores values in an embedded badger database.
type BadgerKV struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger database under dir/state.
func OpenBadger(dir string) (*BadgerKV, error) {
	path := filepath.Join(dir, "state")
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	opts.Compression = options.Snappy
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	return &BadgerKV{db: db}, nil
}

func (b *BadgerKV) Get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BadgerKV) Set(key string, value []byte) error {
	txn := b.db.NewTransaction(true)
	defer txn.Discard()

	if err := txn.Set([]byte(key), value); err != nil {
		return err
	}
	return txn.Commit()
}

func (b *BadgerKV) Close() error {
	return b.db.Close()
}
