// Package keycodec implements the reversible key encoding used by the
// metadata store. Parts are joined with a '#' separator; '#' and '\'
// bytes occurring inside a part are escaped with a leading '\'.
//
// The encoding preserves prefix semantics under composition: the
// encoding of [p1..pk] is always a strict byte-prefix of the encoding
// of [p1..pk..pn] followed by the separator, which is what lets the
// metadata store answer prefix range scans with a plain byte-range
// query instead of re-parsing keys.
package keycodec

const (
	separator byte = '#'
	escape    byte = '\\'
	// successor is the byte immediately following separator in
	// lexicographic order. It never appears as an escaped byte itself,
	// so "prefix + successor" is a safe exclusive upper bound for any
	// range of keys sharing prefix + separator.
	successor byte = '$'
)

// Encode joins parts into a single reversible key.
func Encode(parts ...[]byte) []byte {
	var size int
	for _, p := range parts {
		size += len(p) + 1
	}
	out := make([]byte, 0, size)
	for i, p := range parts {
		if i > 0 {
			out = append(out, separator)
		}
		for _, b := range p {
			if b == separator || b == escape {
				out = append(out, escape)
			}
			out = append(out, b)
		}
	}
	return out
}

// EncodeStrings is a convenience wrapper for string parts.
func EncodeStrings(parts ...string) []byte {
	b := make([][]byte, len(parts))
	for i, p := range parts {
		b[i] = []byte(p)
	}
	return Encode(b...)
}

// Decode splits a key produced by Encode back into its original parts.
func Decode(key []byte) [][]byte {
	parts := make([][]byte, 0, 4)
	part := make([]byte, 0, len(key))
	escaped := false
	for _, b := range key {
		switch {
		case escaped:
			part = append(part, b)
			escaped = false
		case b == escape:
			escaped = true
		case b == separator:
			parts = append(parts, part)
			part = make([]byte, 0, len(key))
		default:
			part = append(part, b)
		}
	}
	parts = append(parts, part)
	return parts
}

// PrefixRange returns the half-open byte range [start, end) containing
// every key that begins with prefix followed by a separator and at
// least one more part. It is used to scan "all keys under this
// composite prefix" without decoding every candidate key.
func PrefixRange(prefix []byte) (start, end []byte) {
	start = append(append([]byte{}, prefix...), separator)
	end = append(append([]byte{}, prefix...), successor)
	return start, end
}

// HasPrefix reports whether key falls within the range produced by
// PrefixRange(prefix) — i.e. key starts with prefix+separator.
func HasPrefix(key, prefix []byte) bool {
	start, _ := PrefixRange(prefix)
	if len(key) < len(start) {
		return false
	}
	for i := range start {
		if key[i] != start[i] {
			return false
		}
	}
	return true
}
