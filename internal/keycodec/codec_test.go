package keycodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]string{
		{"repo", "github.com", "owner"},
		{"a"},
		{"commit_time", "server", "owner", "repo", "time"},
	}
	for _, parts := range cases {
		encoded := EncodeStrings(parts...)
		decoded := Decode(encoded)
		require.Len(t, decoded, len(parts))
		for i, p := range parts {
			assert.Equal(t, p, string(decoded[i]))
		}
	}
}

func TestSeparatorEscape(t *testing.T) {
	encoded := EncodeStrings("repo", "github.com", "owner#with#hashes")
	assert.Equal(t, "repo#github.com#owner\\#with\\#hashes", string(encoded))

	decoded := Decode(encoded)
	require.Len(t, decoded, 3)
	assert.Equal(t, "owner#with#hashes", string(decoded[2]))
}

func TestBackslashEscape(t *testing.T) {
	encoded := EncodeStrings("a\\b", "c")
	decoded := Decode(encoded)
	require.Len(t, decoded, 2)
	assert.Equal(t, "a\\b", string(decoded[0]))
	assert.Equal(t, "c", string(decoded[1]))
}

func TestPrefixIsStrictByteprefix(t *testing.T) {
	full := EncodeStrings("repo", "github.com", "owner", "repo-name")
	partial := EncodeStrings("repo", "github.com", "owner")
	start, _ := PrefixRange(partial)
	require.True(t, bytes.HasPrefix(full, start))
}

func TestTimestampRoundTrip(t *testing.T) {
	var ts uint64 = 1234567890123456789
	tsBytes := make([]byte, 16)
	// big-endian u128 with the low 8 bytes holding a u64 value
	for i := 0; i < 8; i++ {
		tsBytes[15-i] = byte(ts >> (8 * i))
	}
	encoded := Encode([]byte("commit_time"), tsBytes)
	decoded := Decode(encoded)
	require.Len(t, decoded, 2)
	assert.Equal(t, tsBytes, decoded[1])
}

func TestHasPrefix(t *testing.T) {
	key := EncodeStrings("artifact", "commit-1", "path/to/file")
	prefix := EncodeStrings("artifact", "commit-1")
	assert.True(t, HasPrefix(key, prefix))

	other := EncodeStrings("artifact", "commit-2", "path/to/file")
	assert.False(t, HasPrefix(other, prefix))
}
