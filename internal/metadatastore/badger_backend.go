package metadatastore

import (
	"bytes"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
)

// badgerBackend is the production Backend, grounded on the teacher's
// use of BadgerDB as the embedded storage engine (gloudx-ues's
// datastore package wraps Badger through go-datastore; here we talk
// to *badger.DB directly so we can drive its iterators with explicit
// Seek/Reverse semantics, which the spec's metadata store requires
// and go-datastore's Query API doesn't expose).
type badgerBackend struct {
	db *badger.DB
}

var _ Backend = (*badgerBackend)(nil)

// OpenBadger opens (creating if needed) a Badger database at path.
func OpenBadger(path string) (Backend, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerBackend{db: db}, nil
}

func (b *badgerBackend) View(fn func(Txn) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTxn{txn: txn})
	})
}

func (b *badgerBackend) Update(fn func(Txn) error) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerTxn{txn: txn})
	})
}

// Begin opens a manually-controlled read-write transaction. Unlike
// Update, nothing commits until the caller calls Commit, so
// non-transactional work (the ingest pipeline's filesystem write) can
// run after the metadata writes but before they become durable.
func (b *badgerBackend) Begin() (WriteTxn, error) {
	return &badgerWriteTxn{badgerTxn{txn: b.db.NewTransaction(true)}}, nil
}

func (b *badgerBackend) Close() error {
	return b.db.Close()
}

type badgerTxn struct {
	txn *badger.Txn
}

// badgerWriteTxn adds caller-controlled Commit/Discard to badgerTxn,
// backing Backend.Begin.
type badgerWriteTxn struct {
	badgerTxn
}

var _ WriteTxn = (*badgerWriteTxn)(nil)

func (t *badgerWriteTxn) Commit() error {
	return t.txn.Commit()
}

func (t *badgerWriteTxn) Discard() {
	t.txn.Discard()
}

func (t *badgerTxn) Get(key []byte) ([]byte, bool, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (t *badgerTxn) Put(key, value []byte) error {
	return t.txn.Set(key, value)
}

func (t *badgerTxn) Forward(start, end []byte, fn func(key, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(start); it.Valid(); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		if bytes.Compare(key, end) >= 0 {
			break
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			if err == ErrStopIteration {
				return nil
			}
			return err
		}
	}
	return nil
}

func (t *badgerTxn) Reverse(start, end []byte, fn func(key, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	it := t.txn.NewIterator(opts)
	defer it.Close()

	// Badger's reverse Seek finds the greatest key <= the seek key,
	// which is exactly seek_for_prev semantics: seeking at `end` finds
	// the last key strictly below it (end is an exclusive successor
	// byte, never an actual stored key).
	for it.Seek(end); it.Valid(); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		if bytes.Compare(key, start) < 0 {
			break
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			if err == ErrStopIteration {
				return nil
			}
			return err
		}
	}
	return nil
}
