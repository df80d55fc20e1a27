package storage

import (
	"fmt"

	"github.com/google/orderedcode"
)

// Uint64Key encodes v so that byte order matches numeric order. The encoding
// is self-delimiting.
func Uint64Key(v uint64) []byte {
	key, err := orderedcode.Append(nil, v)
	if err != nil {
		panic(err)
	}
	return key
}

// DecodeUint64Key is the inverse of Uint64Key. The whole key must be
// consumed.
func DecodeUint64Key(key []byte) (uint64, error) {
	var v uint64
	remaining, err := orderedcode.Parse(string(key), &v)
	if err != nil {
		return 0, err
	}
	if len(remaining) != 0 {
		return 0, fmt.Errorf("invalid uint64 key: %d trailing bytes", len(remaining))
	}
	return v, nil
}

// indexPrefix returns the key prefix of the index name, optionally scoped to
// a family. Name and family are both written as orderedcode strings and a
// plain index is encoded with an empty family, so no prefix of one index is
// a prefix of another.
func indexPrefix(name string, family []byte) []byte {
	if err := validateName(name); err != nil {
		panic(err)
	}
	if family != nil && len(family) == 0 {
		panic(fmt.Errorf("index %q: family key cannot be empty", name))
	}
	prefix, err := orderedcode.Append(nil, name, string(family))
	if err != nil {
		panic(err)
	}
	return prefix
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("index name cannot be empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.':
		default:
			return fmt.Errorf("invalid index name %q: unexpected character %q", name, r)
		}
	}
	return nil
}

// prefixEnd returns the smallest key greater than every key starting with
// prefix, or nil if there is none.
func prefixEnd(prefix []byte) []byte {
	end := cp(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
