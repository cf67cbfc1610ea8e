package metadatastore

import "time"

// RepoData is the JSON-encoded value stored under a repo key. Field
// names are camelCase like the wire shapes, but the HTTP layer does
// not return these records as-is: its listing handlers copy them into
// their own response entries, rendering CreatedAt as timeAdded.
type RepoData struct {
	Server    string    `json:"server"`
	Owner     string    `json:"owner"`
	Repo      string    `json:"repo"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommitData is the JSON-encoded value stored under a commit key.
type CommitData struct {
	Server    string    `json:"server"`
	Owner     string    `json:"owner"`
	Repo      string    `json:"repo"`
	Commit    string    `json:"commit"`
	CreatedAt time.Time `json:"createdAt"`
}

// ArtifactData is the JSON-encoded value stored under an artifact
// key. Path is stored again in the value (not just the key) so
// listing handlers can return it without having to re-derive it from
// the key codec.
type ArtifactData struct {
	Server    string    `json:"server"`
	Owner     string    `json:"owner"`
	Repo      string    `json:"repo"`
	Commit    string    `json:"commit"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}
