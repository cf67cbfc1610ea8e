// Package metadatastore implements the ordered key-value metadata
// layer: repositories, commits, the commit-by-time secondary index
// that backs @latest resolution, and artifact rows. It is grounded on
// original_source/src/database.rs's OptimisticTransactionDB schema,
// re-expressed over the narrow Backend/Txn interfaces in backend.go
// so the same typed operations run against either BadgerDB or the
// in-memory test double.
package metadatastore

import (
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/harryzcy/artifact-store/internal/apierr"
	"github.com/harryzcy/artifact-store/internal/keycodec"
)

// MetadataStore is the typed operations layer over a Backend. Reads
// that don't need to participate in a caller's transaction (listing,
// existence checks, latest-commit resolution) open their own View
// transaction; writes are given the caller's Txn so the ingest
// pipeline can compose them into one transaction opened with
// Backend.Begin.
type MetadataStore struct {
	backend Backend

	// latestCache memoizes get_latest_commit per (server,owner,repo),
	// grounded on blockstore/blockstore.go's cacheBlock/cacheGet
	// pattern. Entries are invalidated (not merely overwritten) by
	// CreateCommitIfNotExists whenever a newer commit is ingested, since
	// a stale hit here would silently resolve @latest to the wrong commit.
	latestCache *lru.Cache[string, CommitData]
}

const latestCacheSize = 4096

// New returns a MetadataStore over backend.
func New(backend Backend) (*MetadataStore, error) {
	cache, err := lru.New[string, CommitData](latestCacheSize)
	if err != nil {
		return nil, err
	}
	return &MetadataStore{backend: backend, latestCache: cache}, nil
}

func repoCacheKey(server, owner, repo string) string {
	return server + "\x00" + owner + "\x00" + repo
}

// ListRepos returns every known repository in key order.
func (s *MetadataStore) ListRepos() ([]RepoData, error) {
	out := []RepoData{}
	start, end := keyRangeOf(repoListPrefix())
	err := s.backend.View(func(txn Txn) error {
		return txn.Forward(start, end, func(_, value []byte) error {
			var rec RepoData
			if err := json.Unmarshal(value, &rec); err != nil {
				return apierr.Storage(err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExistsCommit reports whether the exact (server, owner, repo,
// commit) tuple has a commit row, independent of whatever @latest
// currently resolves to (see design note on commit keying asymmetry).
func (s *MetadataStore) ExistsCommit(server, owner, repo, commit string) (bool, error) {
	var found bool
	err := s.backend.View(func(txn Txn) error {
		_, ok, err := txn.Get(commitKey(server, owner, repo, commit))
		if err != nil {
			return apierr.Storage(err)
		}
		found = ok
		return nil
	})
	return found, err
}

// ListRepoCommits returns every commit of a repository newest-first,
// by reverse-scanning the commit-by-time secondary index.
func (s *MetadataStore) ListRepoCommits(server, owner, repo string) ([]CommitData, error) {
	out := []CommitData{}
	start, end := keyRangeOf(commitTimeListPrefix(server, owner, repo))
	err := s.backend.View(func(txn Txn) error {
		return txn.Reverse(start, end, func(_, value []byte) error {
			var rec CommitData
			if err := json.Unmarshal(value, &rec); err != nil {
				return apierr.Storage(err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetLatestCommit resolves the @latest alias by seeking to the
// newest entry in the commit-by-time secondary index, reading through
// an LRU cache keyed by (server, owner, repo).
func (s *MetadataStore) GetLatestCommit(server, owner, repo string) (*CommitData, error) {
	cacheKey := repoCacheKey(server, owner, repo)
	if rec, ok := s.latestCache.Get(cacheKey); ok {
		out := rec
		return &out, nil
	}

	var found *CommitData
	start, end := keyRangeOf(commitTimeListPrefix(server, owner, repo))
	err := s.backend.View(func(txn Txn) error {
		return txn.Reverse(start, end, func(_, value []byte) error {
			var rec CommitData
			if err := json.Unmarshal(value, &rec); err != nil {
				return apierr.Storage(err)
			}
			found = &rec
			return ErrStopIteration
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, apierr.NotFound("no commits for %s/%s/%s", server, owner, repo)
	}
	s.latestCache.Add(cacheKey, *found)
	return found, nil
}

// ExistsArtifact reports whether a given (commit, path) artifact row
// exists.
func (s *MetadataStore) ExistsArtifact(server, owner, repo, commit, path string) (bool, error) {
	var found bool
	err := s.backend.View(func(txn Txn) error {
		_, ok, err := txn.Get(artifactKey(server, owner, repo, commit, path))
		if err != nil {
			return apierr.Storage(err)
		}
		found = ok
		return nil
	})
	return found, err
}

// ListArtifacts returns every artifact uploaded at a given commit, in
// key (i.e. path) order.
func (s *MetadataStore) ListArtifacts(server, owner, repo, commit string) ([]ArtifactData, error) {
	out := []ArtifactData{}
	start, end := keyRangeOf(artifactListPrefix(server, owner, repo, commit))
	err := s.backend.View(func(txn Txn) error {
		return txn.Forward(start, end, func(_, value []byte) error {
			var rec ArtifactData
			if err := json.Unmarshal(value, &rec); err != nil {
				return apierr.Storage(err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRepoIfNotExists upserts the repo row within txn, leaving an
// existing row's CreatedAt untouched.
func (s *MetadataStore) CreateRepoIfNotExists(txn Txn, server, owner, repo string, now time.Time) error {
	key := repoKey(server, owner, repo)
	_, ok, err := txn.Get(key)
	if err != nil {
		return apierr.Storage(err)
	}
	if ok {
		return nil
	}
	value, err := json.Marshal(RepoData{Server: server, Owner: owner, Repo: repo, CreatedAt: now})
	if err != nil {
		return apierr.Storage(err)
	}
	if err := txn.Put(key, value); err != nil {
		return apierr.Storage(err)
	}
	return nil
}

// CreateCommitIfNotExists upserts the commit row and its
// commit-by-time index entry within txn, and invalidates the latest-
// commit cache entry for this repo so a subsequent GetLatestCommit
// observes the newly ingested commit instead of a stale cached one.
func (s *MetadataStore) CreateCommitIfNotExists(txn Txn, server, owner, repo, commit string, now time.Time) error {
	key := commitKey(server, owner, repo, commit)
	_, ok, err := txn.Get(key)
	if err != nil {
		return apierr.Storage(err)
	}
	if ok {
		return nil
	}
	rec := CommitData{Server: server, Owner: owner, Repo: repo, Commit: commit, CreatedAt: now}
	value, err := json.Marshal(rec)
	if err != nil {
		return apierr.Storage(err)
	}
	if err := txn.Put(key, value); err != nil {
		return apierr.Storage(err)
	}
	timeKey := commitTimeKey(server, owner, repo, now.UnixNano(), commit)
	if err := txn.Put(timeKey, value); err != nil {
		return apierr.Storage(err)
	}
	s.latestCache.Remove(repoCacheKey(server, owner, repo))
	return nil
}

// CreateArtifact inserts the artifact row within txn, acting as the
// uniqueness gate for the ingest pipeline: a pre-existing row for the
// same (commit, path) is reported as apierr.ArtifactExists rather
// than silently overwritten.
func (s *MetadataStore) CreateArtifact(txn Txn, server, owner, repo, commit, path string, now time.Time) error {
	key := artifactKey(server, owner, repo, commit, path)
	_, ok, err := txn.Get(key)
	if err != nil {
		return apierr.Storage(err)
	}
	if ok {
		return apierr.ArtifactExists(path)
	}
	value, err := json.Marshal(ArtifactData{
		Server: server, Owner: owner, Repo: repo, Commit: commit, Path: path, CreatedAt: now,
	})
	if err != nil {
		return apierr.Storage(err)
	}
	if err := txn.Put(key, value); err != nil {
		return apierr.Storage(err)
	}
	return nil
}

// Backend exposes the underlying Backend so callers (the ingest
// pipeline) can open their own Begin transaction spanning multiple
// MetadataStore writes plus a blob store write.
func (s *MetadataStore) Backend() Backend {
	return s.backend
}

func keyRangeOf(prefix []byte) (start, end []byte) {
	return keycodec.PrefixRange(prefix)
}
