package merkle

import (
	"math/bits"

	"github.com/bftledger/ledger/crypto"
)

// HashFromHashes computes the Merkle root of an ordered list of hashes.
//
// The tree shape depends only on the number of items: a list of n > 1 items
// is split so the left subtree holds the largest power of two strictly less
// than n, the two subtree roots are concatenated left||right and hashed. An
// empty list commits to crypto.ZeroHash and a single hash is its own root.
func HashFromHashes(hashes []crypto.Hash) crypto.Hash {
	switch len(hashes) {
	case 0:
		return crypto.ZeroHash
	case 1:
		return hashes[0]
	default:
		k := getSplitPoint(len(hashes))
		left := HashFromHashes(hashes[:k])
		right := HashFromHashes(hashes[k:])
		return innerHash(left, right)
	}
}

// HashFromByteSlices hashes every item with sha256 and returns the Merkle root
// of the resulting hash list.
func HashFromByteSlices(items [][]byte) crypto.Hash {
	hashes := make([]crypto.Hash, len(items))
	for i, item := range items {
		hashes[i] = crypto.Checksum(item)
	}
	return HashFromHashes(hashes)
}

func innerHash(left, right crypto.Hash) crypto.Hash {
	var buf [2 * crypto.HashSize]byte
	copy(buf[:crypto.HashSize], left[:])
	copy(buf[crypto.HashSize:], right[:])
	return crypto.Checksum(buf[:])
}

// getSplitPoint returns the largest power of 2 less than length, which equals
// next_power_of_two(length)/2 for every length > 1.
func getSplitPoint(length int) int {
	if length < 1 {
		panic("Trying to split a tree with size < 1")
	}
	uLength := uint(length)
	bitlen := bits.Len(uLength)
	k := 1 << uint(bitlen-1)
	if k == length {
		k >>= 1
	}
	return k
}
