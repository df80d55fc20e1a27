package ed25519

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	tmbytes "github.com/bftledger/ledger/libs/bytes"
)

const (
	// PubKeySize is the size, in bytes, of public keys as used in this package.
	PubKeySize = ed25519.PublicKeySize
	// PrivateKeySize is the size, in bytes, of private keys as used in this package.
	PrivateKeySize = ed25519.PrivateKeySize
	// SignatureSize is the size of an Edwards25519 signature. Namely the size
	// of a compressed Edwards25519 point, and a field element. Both of which
	// are 32 bytes.
	SignatureSize = ed25519.SignatureSize
	// SeedSize is the size, in bytes, of private key seeds.
	SeedSize = ed25519.SeedSize

	KeyType = "ed25519"
)

var errInvalidPubKey = errors.New("invalid ed25519 public key")

// PrivKey implements an Ed25519 private key. The last 32 bytes hold the
// public key.
type PrivKey []byte

// GenPrivKey generates a new ed25519 private key using crypto/rand.
func GenPrivKey() PrivKey {
	return genPrivKey(rand.Reader)
}

func genPrivKey(rand io.Reader) PrivKey {
	_, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		panic(err)
	}
	return PrivKey(priv)
}

// GenPrivKeyFromSeed derives a private key from a 32-byte seed. It is
// deterministic and meant for tests and fixtures.
func GenPrivKeyFromSeed(seed []byte) PrivKey {
	if len(seed) != SeedSize {
		panic(fmt.Sprintf("ed25519: bad seed length %d", len(seed)))
	}
	return PrivKey(ed25519.NewKeyFromSeed(seed))
}

// Bytes returns the privkey byte format.
func (privKey PrivKey) Bytes() []byte {
	return []byte(privKey)
}

// Sign produces a signature on the provided message.
func (privKey PrivKey) Sign(msg []byte) ([]byte, error) {
	if len(privKey) != PrivateKeySize {
		return nil, fmt.Errorf("ed25519: bad private key length %d", len(privKey))
	}
	return ed25519.Sign(ed25519.PrivateKey(privKey), msg), nil
}

// PubKey gets the corresponding public key from the private key.
func (privKey PrivKey) PubKey() PubKey {
	if len(privKey) != PrivateKeySize {
		panic("expected ed25519 PrivKey to include concatenated pubkey bytes")
	}
	pubkeyBytes := make([]byte, PubKeySize)
	copy(pubkeyBytes, privKey[32:])
	return PubKey(pubkeyBytes)
}

func (privKey PrivKey) Type() string {
	return KeyType
}

// PubKey implements an Ed25519 public key.
type PubKey []byte

// PubKeyFromBytes validates the length of bz and returns it as a public key.
func PubKeyFromBytes(bz []byte) (PubKey, error) {
	if len(bz) != PubKeySize {
		return nil, errInvalidPubKey
	}
	pub := make(PubKey, PubKeySize)
	copy(pub, bz)
	return pub, nil
}

func (pubKey PubKey) Bytes() []byte {
	return []byte(pubKey)
}

// VerifySignature reports whether sig is a valid signature of msg by this
// key. Malformed keys and signatures never verify.
func (pubKey PubKey) VerifySignature(msg []byte, sig []byte) bool {
	if len(pubKey) != PubKeySize || len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), msg, sig)
}

func (pubKey PubKey) Equals(other PubKey) bool {
	return bytes.Equal(pubKey, other)
}

func (pubKey PubKey) String() string {
	return fmt.Sprintf("PubKeyEd25519{%X}", []byte(pubKey))
}

// MarshalText encodes the key as uppercase hex.
func (pubKey PubKey) MarshalText() ([]byte, error) {
	return tmbytes.HexBytes(pubKey).MarshalText()
}

func (pubKey PubKey) Type() string {
	return KeyType
}
