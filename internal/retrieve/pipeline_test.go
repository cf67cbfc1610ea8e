package retrieve

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harryzcy/artifact-store/internal/apierr"
	"github.com/harryzcy/artifact-store/internal/blobstore"
	"github.com/harryzcy/artifact-store/internal/ingest"
	"github.com/harryzcy/artifact-store/internal/metadatastore"
)

func setupPipeline(t *testing.T) *Pipeline {
	t.Helper()
	backend := metadatastore.NewMemoryBackend()
	t.Cleanup(func() { _ = backend.Close() })
	store, err := metadatastore.New(backend)
	require.NoError(t, err)
	blobs := blobstore.New(t.TempDir())

	base := time.Unix(1_700_000_000, 0).UTC()
	in := ingest.New(store, blobs).WithClock(func() time.Time { return base })
	require.NoError(t, in.Upload("srv", "o", "r", "c1", "a.bin", strings.NewReader("first")))
	in.WithClock(func() time.Time { return base.Add(time.Minute) })
	require.NoError(t, in.Upload("srv", "o", "r", "c2", "a.bin", strings.NewReader("second")))

	return New(store, blobs)
}

func TestResolveCommitLatestAlias(t *testing.T) {
	p := setupPipeline(t)
	resolved, err := p.ResolveCommit("srv", "o", "r", LatestAlias)
	require.NoError(t, err)
	assert.Equal(t, "c2", resolved)
}

func TestResolveCommitExactMatch(t *testing.T) {
	p := setupPipeline(t)
	resolved, err := p.ResolveCommit("srv", "o", "r", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", resolved)
}

func TestResolveCommitUnknownIsNotFound(t *testing.T) {
	p := setupPipeline(t)
	_, err := p.ResolveCommit("srv", "o", "r", "nope")
	require.Error(t, err)
	assert.True(t, apierr.IsNotFound(err))
}

func TestOpenStreamsArtifactAtLatest(t *testing.T) {
	p := setupPipeline(t)
	f, err := p.Open("srv", "o", "r", LatestAlias, "a.bin")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestOpenMissingArtifactIsNotFound(t *testing.T) {
	p := setupPipeline(t)
	_, err := p.Open("srv", "o", "r", "c1", "missing.bin")
	require.Error(t, err)
	assert.True(t, apierr.IsNotFound(err))
}
