package crypto

import (
	"crypto/sha256"
	"fmt"

	"github.com/bftledger/ledger/libs/bytes"
)

const (
	// HashSize is the size in bytes of a Hash.
	HashSize = sha256.Size
)

// Hash is a sha256 digest identifying blocks, transactions, proposes and
// votes. Two hashes are equal if their bytes are equal, so a Hash can be
// used directly as a map key.
type Hash [HashSize]byte

// ZeroHash is the hash with all bytes set to zero. It is the commitment of an
// empty hash list.
var ZeroHash Hash

// Checksum returns the sha256 of bz.
func Checksum(bz []byte) Hash {
	return sha256.Sum256(bz)
}

// HashFromBytes converts a byte slice of exactly HashSize bytes into a Hash.
func HashFromBytes(bz []byte) (Hash, error) {
	var h Hash
	if len(bz) != HashSize {
		return h, fmt.Errorf("invalid hash length: expected %d, got %d", HashSize, len(bz))
	}
	copy(h[:], bz)
	return h, nil
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	bz := make([]byte, HashSize)
	copy(bz, h[:])
	return bz
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) String() string {
	return bytes.HexBytes(h[:]).String()
}

// ShortString returns the first bytes of the hash in hex, for log lines.
func (h Hash) ShortString() string {
	return bytes.HexBytes(h[:]).ShortString()
}

// MarshalText encodes the hash as uppercase hex.
func (h Hash) MarshalText() ([]byte, error) {
	return bytes.HexBytes(h[:]).MarshalText()
}

// UnmarshalText decodes a hash from hex (or base64) text.
func (h *Hash) UnmarshalText(data []byte) error {
	var bz bytes.HexBytes
	if err := bz.UnmarshalText(data); err != nil {
		return err
	}
	hash, err := HashFromBytes(bz)
	if err != nil {
		return err
	}
	*h = hash
	return nil
}
