// Package retrieve implements the download path: resolving the
// @latest alias, verifying the commit and artifact rows exist, and
// opening the underlying file. Grounded on original_source's
// get_latest_commit/exists_commit/exists_artifact trio in
// database.rs and the download half of router.rs.
package retrieve

import (
	"os"

	"github.com/harryzcy/artifact-store/internal/apierr"
	"github.com/harryzcy/artifact-store/internal/blobstore"
	"github.com/harryzcy/artifact-store/internal/metadatastore"
)

// LatestAlias is the special commit token that resolves to the most
// recently ingested commit for a repository.
const LatestAlias = "@latest"

// Pipeline resolves and serves artifact downloads.
type Pipeline struct {
	store *metadatastore.MetadataStore
	blobs *blobstore.Store
}

// New returns a Pipeline over store and blobs.
func New(store *metadatastore.MetadataStore, blobs *blobstore.Store) *Pipeline {
	return &Pipeline{store: store, blobs: blobs}
}

// ResolveCommit maps a commit path segment to a concrete commit,
// resolving LatestAlias through the metadata store and otherwise
// verifying that the exact (server, owner, repo, commit) tuple has a
// commit row — see design note on the commit-keying asymmetry: a
// commit that exists for a different repo under the same name must
// not resolve here.
func (p *Pipeline) ResolveCommit(server, owner, repo, commit string) (string, error) {
	if commit == LatestAlias {
		latest, err := p.store.GetLatestCommit(server, owner, repo)
		if err != nil {
			return "", err
		}
		return latest.Commit, nil
	}
	exists, err := p.store.ExistsCommit(server, owner, repo, commit)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apierr.NotFound("commit not found: %s/%s/%s/%s", server, owner, repo, commit)
	}
	return commit, nil
}

// Open resolves commit, verifies the artifact row, and returns an
// open file handle positioned at the start of the artifact's
// contents. The caller is responsible for closing it.
func (p *Pipeline) Open(server, owner, repo, commit, path string) (*os.File, error) {
	resolved, err := p.ResolveCommit(server, owner, repo, commit)
	if err != nil {
		return nil, err
	}

	exists, err := p.store.ExistsArtifact(server, owner, repo, resolved, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apierr.NotFound("artifact not found: %s/%s/%s/%s/%s", server, owner, repo, resolved, path)
	}

	return p.blobs.Open(server, owner, repo, resolved, path)
}
