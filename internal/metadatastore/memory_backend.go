package metadatastore

import (
	"bytes"
	"errors"
	"sort"
	"sync"
)

// memoryBackend is the in-memory Backend double used by this
// package's own tests and by the ingest/retrieval pipeline tests,
// mirroring the teacher's setupTestRepo helper pattern
// (repository/repository_test.go) of standing up a throwaway store
// with no on-disk state. It trades away real snapshot isolation for
// simplicity: Update/Begin hold the single backend-wide write lock for
// the duration of the transaction, which is sufficient for unit tests
// that don't exercise concurrent writers.
type memoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Backend = (*memoryBackend)(nil)

// NewMemoryBackend returns an empty in-memory Backend.
func NewMemoryBackend() Backend {
	return &memoryBackend{data: make(map[string][]byte)}
}

func (b *memoryBackend) View(fn func(Txn) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return fn(&memoryTxn{backend: b, readOnly: true})
}

func (b *memoryBackend) Update(fn func(Txn) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	pending := make(map[string][]byte)
	if err := fn(&memoryTxn{backend: b, pending: pending}); err != nil {
		return err
	}
	for k, v := range pending {
		b.data[k] = v
	}
	return nil
}

// Begin takes the backend's write lock immediately and buffers every
// write in a pending map rather than applying it to the backend's
// data directly, mirroring Badger's real transaction semantics: none
// of this transaction's writes are visible to any other reader until
// Commit, and Discard drops the buffer entirely, leaving the backend
// exactly as it was before Begin was called.
func (b *memoryBackend) Begin() (WriteTxn, error) {
	b.mu.Lock()
	return &memoryWriteTxn{
		memoryTxn: memoryTxn{backend: b, pending: make(map[string][]byte)},
	}, nil
}

func (b *memoryBackend) Close() error {
	return nil
}

type memoryTxn struct {
	backend  *memoryBackend
	readOnly bool
	pending  map[string][]byte
}

func (t *memoryTxn) Get(key []byte) ([]byte, bool, error) {
	if v, ok := t.pending[string(key)]; ok {
		out := make([]byte, len(v))
		copy(out, v)
		return out, true, nil
	}
	v, ok := t.backend.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (t *memoryTxn) Put(key, value []byte) error {
	if t.readOnly {
		return errors.New("memory backend: write in read-only transaction")
	}
	v := make([]byte, len(value))
	copy(v, value)
	t.pending[string(key)] = v
	return nil
}

// mergedKeys returns every key visible to this transaction — the
// backend's committed data overlaid with this transaction's own
// pending writes — in sorted order, so Forward/Reverse see their own
// uncommitted writes the way a real read-your-writes transaction would.
func (t *memoryTxn) mergedKeys() []string {
	seen := make(map[string]struct{}, len(t.backend.data)+len(t.pending))
	keys := make([]string, 0, len(t.backend.data)+len(t.pending))
	for k := range t.backend.data {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range t.pending {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (t *memoryTxn) valueFor(key string) []byte {
	if v, ok := t.pending[key]; ok {
		return v
	}
	return t.backend.data[key]
}

func (t *memoryTxn) Forward(start, end []byte, fn func(key, value []byte) error) error {
	for _, k := range t.mergedKeys() {
		key := []byte(k)
		if bytes.Compare(key, start) < 0 {
			continue
		}
		if bytes.Compare(key, end) >= 0 {
			break
		}
		if err := fn(key, t.valueFor(k)); err != nil {
			if err == ErrStopIteration {
				return nil
			}
			return err
		}
	}
	return nil
}

func (t *memoryTxn) Reverse(start, end []byte, fn func(key, value []byte) error) error {
	keys := t.mergedKeys()
	for i := len(keys) - 1; i >= 0; i-- {
		key := []byte(keys[i])
		if bytes.Compare(key, end) >= 0 {
			continue
		}
		if bytes.Compare(key, start) < 0 {
			break
		}
		if err := fn(key, t.valueFor(keys[i])); err != nil {
			if err == ErrStopIteration {
				return nil
			}
			return err
		}
	}
	return nil
}

// memoryWriteTxn backs Backend.Begin, adding caller-controlled
// Commit/Discard on top of memoryTxn's buffered writes.
type memoryWriteTxn struct {
	memoryTxn
	done bool
}

var _ WriteTxn = (*memoryWriteTxn)(nil)

// Commit applies every buffered write to the backend and releases the
// write lock taken by Begin. Calling Commit after Discard (or twice)
// is a no-op.
func (t *memoryWriteTxn) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	for k, v := range t.pending {
		t.backend.data[k] = v
	}
	t.backend.mu.Unlock()
	return nil
}

// Discard drops every buffered write and releases the write lock
// taken by Begin. Calling Discard after Commit (or twice) is a no-op.
func (t *memoryWriteTxn) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.backend.mu.Unlock()
}
