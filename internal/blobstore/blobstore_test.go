package blobstore

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harryzcy/artifact-store/internal/apierr"
)

func TestCreateWritesUnderNestedLayout(t *testing.T) {
	store := New(t.TempDir())

	f, err := store.Create("github.com", "acme", "widgets", "c1", "bin/out.tar.gz")
	require.NoError(t, err)
	require.NoError(t, Stream(f, bytes.NewReader([]byte("hello"))))
	require.NoError(t, f.Close())

	rf, err := store.Open("github.com", "acme", "widgets", "c1", "bin/out.tar.gz")
	require.NoError(t, err)
	defer rf.Close()
	data, err := io.ReadAll(rf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestCreateOverwritesExistingFile(t *testing.T) {
	// spec.md §4.3: "the existing file, if any, is overwritten; the
	// metadata layer is responsible for preventing that case by
	// refusing the artifact row first" — the blob store itself never
	// refuses a re-create.
	store := New(t.TempDir())

	f, err := store.Create("srv", "o", "r", "c1", "a.txt")
	require.NoError(t, err)
	require.NoError(t, Stream(f, bytes.NewReader([]byte("first, a longer payload"))))
	require.NoError(t, f.Close())

	f, err = store.Create("srv", "o", "r", "c1", "a.txt")
	require.NoError(t, err)
	require.NoError(t, Stream(f, bytes.NewReader([]byte("second"))))
	require.NoError(t, f.Close())

	rf, err := store.Open("srv", "o", "r", "c1", "a.txt")
	require.NoError(t, err)
	defer rf.Close()
	data, err := io.ReadAll(rf)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestOpenMissingIsNotFound(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Open("srv", "o", "r", "c1", "missing.txt")
	require.Error(t, err)
	assert.True(t, apierr.IsNotFound(err))
}

func TestPathRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Create("srv", "o", "r", "c1", "../../../../../etc/passwd")
	require.Error(t, err)
	assert.True(t, apierr.IsNotFound(err))
}
