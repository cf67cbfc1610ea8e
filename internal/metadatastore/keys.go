package metadatastore

import (
	"fmt"

	"github.com/harryzcy/artifact-store/internal/keycodec"
)

// Four collections share one key-value namespace, distinguished by a
// leading collection tag word ("repo", "commit", "commit_time",
// "artifact") as the first key part.
const (
	collectionRepo       = "repo"
	collectionCommit     = "commit"
	collectionCommitTime = "commit_time"
	collectionArtifact   = "artifact"
)

func repoKey(server, owner, repo string) []byte {
	return keycodec.EncodeStrings(collectionRepo, server, owner, repo)
}

func repoListPrefix() []byte {
	return keycodec.EncodeStrings(collectionRepo)
}

func commitKey(server, owner, repo, commit string) []byte {
	return keycodec.EncodeStrings(collectionCommit, server, owner, repo, commit)
}

func commitListPrefix(server, owner, repo string) []byte {
	return keycodec.EncodeStrings(collectionCommit, server, owner, repo)
}

// commitTimeKey orders commits by ingest time within a repo so
// get_latest_commit can seek_for_prev to the newest one and commit
// listing can reverse-scan newest-first. The
// timestamp is rendered as a fixed-width zero-padded decimal so that
// byte-lexicographic key order matches chronological order.
func commitTimeKey(server, owner, repo string, unixNano int64, commit string) []byte {
	return keycodec.EncodeStrings(collectionCommitTime, server, owner, repo, fmt.Sprintf("%020d", unixNano), commit)
}

func commitTimeListPrefix(server, owner, repo string) []byte {
	return keycodec.EncodeStrings(collectionCommitTime, server, owner, repo)
}

func artifactKey(server, owner, repo, commit, path string) []byte {
	return keycodec.EncodeStrings(collectionArtifact, server, owner, repo, commit, path)
}

func artifactListPrefix(server, owner, repo, commit string) []byte {
	return keycodec.EncodeStrings(collectionArtifact, server, owner, repo, commit)
}
