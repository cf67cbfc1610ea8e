// Package blobstore stores and serves the artifact bytes themselves,
// laid out on disk as {root}/{server}/{owner}/{repo}/{commit}/{path}.
// It is adapted from the teacher's repository/blob_store.go, with the
// IPFS/IPLD content-addressing and chunking machinery stripped out:
// spec.md's Non-goals exclude content hashing and deduplication, so
// blobs are written as plain files under a predictable path rather
// than keyed by a CID.
package blobstore

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harryzcy/artifact-store/internal/apierr"
)

// Store roots every artifact under a single base directory.
type Store struct {
	root string
}

// New returns a Store rooted at root. The directory is created lazily
// by Create.
func New(root string) *Store {
	return &Store{root: root}
}

// Path computes the on-disk location for an artifact without touching
// the filesystem, rejecting any segment that could escape root (a
// literal "..", or one smuggled in via path separators).
func (s *Store) Path(server, owner, repo, commit, path string) (string, error) {
	for _, seg := range []string{server, owner, repo, commit} {
		if seg == "" || strings.Contains(seg, "/") || seg == "." || seg == ".." {
			return "", apierr.NotFound("invalid path segment %q", seg)
		}
	}
	full := filepath.Join(s.root, server, owner, repo, commit, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apierr.NotFound("path escapes artifact root: %s", path)
	}
	return full, nil
}

// Create opens dest for writing, creating any missing parent
// directories (the ingest pipeline's "mkdir -p" step) and truncating
// an existing file at that path. Per spec.md §4.3, overwriting a
// leftover file is expected here — the metadata layer's artifact row
// is what refuses a duplicate upload (§4.4 step 5, run before this is
// ever called), not the blob store itself.
func (s *Store) Create(server, owner, repo, commit, path string) (*os.File, error) {
	dest, err := s.Path(server, owner, repo, commit, path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, apierr.IO(err)
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, apierr.IO(err)
	}
	return f, nil
}

// Open returns a read handle on an existing artifact, mapping a
// missing file to apierr.NotFound rather than a raw filesystem error.
func (s *Store) Open(server, owner, repo, commit, path string) (*os.File, error) {
	src, err := s.Path(server, owner, repo, commit, path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src)
	if os.IsNotExist(err) {
		return nil, apierr.NotFound("artifact not found: %s", path)
	}
	if err != nil {
		return nil, apierr.IO(err)
	}
	return f, nil
}

// Stream copies all of src into the file at dest, a thin wrapper used
// by the ingest pipeline so the write failure mode (io.Copy error) is
// consistently reported as apierr.Transport: a body the client
// dropped mid-upload is a transport problem, not a storage one.
func Stream(dest *os.File, src io.Reader) error {
	if _, err := io.Copy(dest, src); err != nil {
		return apierr.Transport(err)
	}
	return nil
}
