package metadatastore

// Txn is a single read or read-write transaction over the ordered
// key-value backend. Its surface is intentionally narrow: point
// get/put plus prefix-bounded forward and reverse scans, which is
// exactly what the metadata store's typed operations need.
type Txn interface {
	// Get returns the value stored at key and true, or false if the
	// key is absent.
	Get(key []byte) ([]byte, bool, error)

	// Put stores value at key. Only valid in an update transaction.
	Put(key, value []byte) error

	// Forward visits every key in [start, end) in ascending order,
	// stopping early if fn returns a non-nil error or ErrStopIteration.
	Forward(start, end []byte, fn func(key, value []byte) error) error

	// Reverse visits every key in [start, end) in descending order
	// (i.e. starting from the greatest key below end), stopping early
	// on error. It is the basis for both "newest commits first"
	// listing and "seek_for_prev" latest-commit resolution.
	Reverse(start, end []byte, fn func(key, value []byte) error) error
}

// WriteTxn is a read-write transaction whose lifetime is controlled
// by the caller instead of a callback, so that non-transactional work
// (a blobstore write, in particular) can happen between the last
// metadata write and the point the transaction is durably committed.
// This is what lets the ingest pipeline hold its metadata writes open
// across the filesystem steps spec.md §4.4 places before commit().
type WriteTxn interface {
	Txn

	// Commit durably applies every write made through this
	// transaction. A write-write conflict with a concurrently
	// committed transaction surfaces as an error here.
	Commit() error

	// Discard abandons the transaction without applying any of its
	// writes. Calling Discard after Commit, or Commit after Discard,
	// is a no-op.
	Discard()
}

// Backend is an embedded ordered key-value engine exposing point
// operations, forward/reverse range iteration, and transactions with
// conflict detection at commit time. The production implementation
// wraps Badger; tests use an in-memory double implementing the same
// surface (View, Update, Begin and the Txn/WriteTxn methods).
type Backend interface {
	// View runs fn in a read-only transaction. Writes inside fn are
	// rejected by the transaction itself.
	View(fn func(Txn) error) error

	// Update runs fn in a read-write transaction and commits it if fn
	// returns nil. A write-write conflict with a concurrently
	// committed transaction surfaces as an error from Update. Use this
	// when every write can happen inside one callback; use Begin when
	// non-transactional work must be interleaved before commit.
	Update(fn func(Txn) error) error

	// Begin opens a read-write transaction that the caller commits or
	// discards explicitly, rather than one scoped to a callback.
	Begin() (WriteTxn, error)

	// Close releases the backend's resources.
	Close() error
}

// ErrStopIteration lets a Forward/Reverse callback end a scan early
// without that counting as a failure.
var ErrStopIteration = stopIteration{}

type stopIteration struct{}

func (stopIteration) Error() string { return "stop iteration" }
