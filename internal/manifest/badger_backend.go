package manifest

import (
	"bytes"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const recordPrefix = "record:"

// BadgerBackend keeps records in a badger database, keyed "record:<key>".
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) the database at path.
func OpenBadger(path string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path).
		WithNumVersionsToKeep(1).
		WithLoggingLevel(badger.WARNING)
	opts.Logger = nil // Disable logging noise

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return NewBadgerBackend(db), nil
}

// NewBadgerBackend wraps an open database. Close closes db.
func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

func (b *BadgerBackend) makeKey(key string) []byte {
	return []byte(recordPrefix + key)
}

func (b *BadgerBackend) Put(key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.makeKey(key), value)
	})
}

func (b *BadgerBackend) Get(key string) ([]byte, error) {
	var value []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.makeKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", key, err)
	}
	return value, nil
}

func (b *BadgerBackend) Delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		k := b.makeKey(key)
		if _, err := txn.Get(k); err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(k)
	})
}

func (b *BadgerBackend) Each(fn func(key string, value []byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		prefix := []byte(recordPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(bytes.TrimPrefix(item.Key(), prefix))
			err := item.Value(func(val []byte) error {
				return fn(key, val)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
