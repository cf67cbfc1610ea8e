// Package ingest implements the upload path: given a body stream and
// a (server, owner, repo, commit, path) tuple, it upserts the
// repository and commit rows, inserts the artifact row as a
// uniqueness gate, then writes the file to the blob store. The
// sequencing is grounded on original_source/src/storage.rs's
// handle_file_upload and the OptimisticTransactionDB-backed
// create_repo_if_not_exists / create_commit_if_not_exists /
// create_artifact calls in original_source/src/database.rs.
package ingest

import (
	"io"
	"time"

	"github.com/harryzcy/artifact-store/internal/apierr"
	"github.com/harryzcy/artifact-store/internal/blobstore"
	"github.com/harryzcy/artifact-store/internal/metadatastore"
)

// Clock abstracts the wall-clock read so tests can supply a fixed
// time instead of depending on real time passing (see design note on
// the time source).
type Clock func() time.Time

// Pipeline wires a MetadataStore and a blobstore.Store together to
// run the ingest algorithm.
type Pipeline struct {
	store *metadatastore.MetadataStore
	blobs *blobstore.Store
	clock Clock
}

// New returns a Pipeline using time.Now as its clock.
func New(store *metadatastore.MetadataStore, blobs *blobstore.Store) *Pipeline {
	return &Pipeline{store: store, blobs: blobs, clock: time.Now}
}

// WithClock overrides the pipeline's time source, for tests.
func (p *Pipeline) WithClock(clock Clock) *Pipeline {
	p.clock = clock
	return p
}

// Upload runs the full ingest algorithm from spec.md §4.4:
//  1. read the wall clock once, so every row created by this upload
//     shares one timestamp
//  2. open a metadata transaction
//  3. create the repo row if absent
//  4. create the commit row (and its commit-by-time index entry) if absent
//  5. insert the artifact row, which fails with ArtifactExists if the
//     (commit, path) pair was already uploaded — the uniqueness gate
//  6. create the destination file (mkdir -p'ing its parent)
//  7. stream the request body into it
//  8. commit the transaction
//
// The transaction opened in step 2 stays open across the filesystem
// steps (6-7) and is only committed in step 8, after the stream
// succeeds — never before. This matches spec.md §4.4's failure
// policy: if step 5 fails the transaction is discarded before any
// filesystem mutation, and if any of steps 6-8 fails the transaction
// is discarded too, so a failed upload never leaves a committed
// artifact row with no (or a truncated) file behind. The residue runs
// the other way, as the spec's §9 design note describes: a cancelled
// or failed upload may leave a stray file on disk with no committed
// row, which a retry can safely overwrite (blobstore.Store.Create
// truncates) since the metadata row is what the next attempt's
// uniqueness check actually depends on.
func (p *Pipeline) Upload(server, owner, repo, commit, path string, body io.Reader) error {
	now := p.clock()

	txn, err := p.store.Backend().Begin()
	if err != nil {
		return apierr.Storage(err)
	}
	committed := false
	defer func() {
		if !committed {
			txn.Discard()
		}
	}()

	if err := p.store.CreateRepoIfNotExists(txn, server, owner, repo, now); err != nil {
		return err
	}
	if err := p.store.CreateCommitIfNotExists(txn, server, owner, repo, commit, now); err != nil {
		return err
	}
	if err := p.store.CreateArtifact(txn, server, owner, repo, commit, path, now); err != nil {
		return err
	}

	f, err := p.blobs.Create(server, owner, repo, commit, path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := blobstore.Stream(f, body); err != nil {
		return err
	}

	if err := txn.Commit(); err != nil {
		return apierr.Storage(err)
	}
	committed = true
	return nil
}
