package types

import (
	"errors"
	"fmt"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/crypto/ed25519"
)

// ValidatorID is the position of a validator in the validator set.
type ValidatorID uint32

// MessageType identifies the kind of a message on the wire. It is always the
// first field of the signed body.
type MessageType uint32

const (
	ConnectType MessageType = iota + 1
	ProposeType
	PrevoteType
	PrecommitType
	TransactionType

	RequestProposeType
	RequestTransactionsType
	RequestPrevotesType
	RequestPrecommitsType
	RequestCommitType
	RequestPeersType
)

func (t MessageType) String() string {
	switch t {
	case ConnectType:
		return "connect"
	case ProposeType:
		return "propose"
	case PrevoteType:
		return "prevote"
	case PrecommitType:
		return "precommit"
	case TransactionType:
		return "transaction"
	case RequestProposeType:
		return "request_propose"
	case RequestTransactionsType:
		return "request_transactions"
	case RequestPrevotesType:
		return "request_prevotes"
	case RequestPrecommitsType:
		return "request_precommits"
	case RequestCommitType:
		return "request_commit"
	case RequestPeersType:
		return "request_peers"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

var (
	ErrMessageTooShort    = errors.New("message shorter than a signature")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrInvalidMessageType = errors.New("unexpected message type")
)

// Message is a signed message as it travels between nodes. The raw bytes are
// the encoded body followed by an Ed25519 signature of the body.
type Message interface {
	Type() MessageType
	// Raw returns the exact bytes that were signed and sent. Callers must not
	// modify the returned slice.
	Raw() []byte
	Hash() crypto.Hash
	Verify(pubKey ed25519.PubKey) bool
}

type rawMessage struct {
	raw []byte
}

func (m rawMessage) Raw() []byte {
	return m.raw
}

// Hash returns the sha256 of the raw bytes, signature included.
func (m rawMessage) Hash() crypto.Hash {
	return crypto.Checksum(m.raw)
}

func (m rawMessage) body() []byte {
	return m.raw[:len(m.raw)-ed25519.SignatureSize]
}

func (m rawMessage) Signature() []byte {
	return m.raw[len(m.raw)-ed25519.SignatureSize:]
}

// Verify reports whether the message was signed by pubKey.
func (m rawMessage) Verify(pubKey ed25519.PubKey) bool {
	if len(m.raw) < ed25519.SignatureSize {
		return false
	}
	return pubKey.VerifySignature(m.body(), m.Signature())
}

func newEncoder(t MessageType) *encoder {
	e := &encoder{}
	e.uint(uint64(t))
	return e
}

// sign appends the signature of the encoded body. It panics if privKey is
// malformed, which is a programming error.
func sign(e *encoder, privKey ed25519.PrivKey) rawMessage {
	sig, err := privKey.Sign(e.buf)
	if err != nil {
		panic(fmt.Sprintf("signing message: %v", err))
	}
	raw := make([]byte, 0, len(e.buf)+len(sig))
	raw = append(raw, e.buf...)
	raw = append(raw, sig...)
	return rawMessage{raw: raw}
}

// DecodeMessage parses raw bytes into one of the typed messages of this
// package. The signature is not checked; callers verify it against the key of
// the claimed author.
func DecodeMessage(raw []byte) (Message, error) {
	if len(raw) <= ed25519.SignatureSize {
		return nil, ErrMessageTooShort
	}
	raw = append([]byte(nil), raw...)
	m := rawMessage{raw: raw}
	d := newDecoder(m.body())
	t := MessageType(d.uint32())
	if d.err != nil {
		return nil, fmt.Errorf("decoding message type: %w", d.err)
	}

	var (
		msg Message
		err error
	)
	switch t {
	case ConnectType:
		msg, err = decodeConnect(d, m)
	case ProposeType:
		msg, err = decodePropose(d, m)
	case PrevoteType:
		msg, err = decodePrevote(d, m)
	case PrecommitType:
		msg, err = decodePrecommit(d, m)
	case TransactionType:
		msg, err = decodeTransaction(d, m)
	case RequestProposeType:
		msg, err = decodeRequestPropose(d, m)
	case RequestTransactionsType:
		msg, err = decodeRequestTransactions(d, m)
	case RequestPrevotesType:
		msg, err = decodeRequestPrevotes(d, m)
	case RequestPrecommitsType:
		msg, err = decodeRequestPrecommits(d, m)
	case RequestCommitType:
		msg, err = decodeRequestCommit(d, m)
	case RequestPeersType:
		msg, err = decodeRequestPeers(d, m)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessageType, uint32(t))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", t, err)
	}
	return msg, nil
}

// decodeAs decodes raw and checks that it holds a message of type t.
func decodeAs(raw []byte, t MessageType) (Message, error) {
	msg, err := DecodeMessage(raw)
	if err != nil {
		return nil, err
	}
	if msg.Type() != t {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrInvalidMessageType, msg.Type(), t)
	}
	return msg, nil
}
