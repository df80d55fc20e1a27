package types

import (
	"fmt"
	"time"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/crypto/ed25519"
)

// Prevote is a validator's vote for a propose in a round. Prevotes are never
// persisted.
type Prevote struct {
	rawMessage
	validator   ValidatorID
	height      uint64
	round       uint32
	proposeHash crypto.Hash
	lockedRound uint32
}

var _ Message = (*Prevote)(nil)

// NewPrevote builds a Prevote signed by privKey.
func NewPrevote(
	validator ValidatorID,
	height uint64,
	round uint32,
	proposeHash crypto.Hash,
	lockedRound uint32,
	privKey ed25519.PrivKey,
) *Prevote {
	e := newEncoder(PrevoteType)
	e.uint(uint64(validator))
	e.uint(height)
	e.uint(uint64(round))
	e.hash(proposeHash)
	e.uint(uint64(lockedRound))
	return &Prevote{
		rawMessage:  sign(e, privKey),
		validator:   validator,
		height:      height,
		round:       round,
		proposeHash: proposeHash,
		lockedRound: lockedRound,
	}
}

func decodePrevote(d *decoder, m rawMessage) (*Prevote, error) {
	msg := &Prevote{rawMessage: m}
	msg.validator = ValidatorID(d.uint32())
	msg.height = d.uint()
	msg.round = d.uint32()
	msg.proposeHash = d.hash()
	msg.lockedRound = d.uint32()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return msg, nil
}

func (*Prevote) Type() MessageType { return PrevoteType }

func (v *Prevote) Validator() ValidatorID { return v.validator }

func (v *Prevote) Height() uint64 { return v.height }

func (v *Prevote) Round() uint32 { return v.round }

func (v *Prevote) ProposeHash() crypto.Hash { return v.proposeHash }

// LockedRound is the round the validator is locked on, zero if none.
func (v *Prevote) LockedRound() uint32 { return v.lockedRound }

func (v *Prevote) String() string {
	return fmt.Sprintf("Prevote{%d/%d by %d for %s}", v.height, v.round, v.validator, v.proposeHash.ShortString())
}

// Precommit is a validator's vote to commit the block produced by executing
// a propose. The precommits for a committed block are stored with it.
type Precommit struct {
	rawMessage
	validator   ValidatorID
	height      uint64
	round       uint32
	proposeHash crypto.Hash
	blockHash   crypto.Hash
	time        time.Time
}

var _ Message = (*Precommit)(nil)

// NewPrecommit builds a Precommit signed by privKey.
func NewPrecommit(
	validator ValidatorID,
	height uint64,
	round uint32,
	proposeHash crypto.Hash,
	blockHash crypto.Hash,
	t time.Time,
	privKey ed25519.PrivKey,
) *Precommit {
	e := newEncoder(PrecommitType)
	e.uint(uint64(validator))
	e.uint(height)
	e.uint(uint64(round))
	e.hash(proposeHash)
	e.hash(blockHash)
	e.time(t)
	return &Precommit{
		rawMessage:  sign(e, privKey),
		validator:   validator,
		height:      height,
		round:       round,
		proposeHash: proposeHash,
		blockHash:   blockHash,
		time:        t.UTC(),
	}
}

func decodePrecommit(d *decoder, m rawMessage) (*Precommit, error) {
	msg := &Precommit{rawMessage: m}
	msg.validator = ValidatorID(d.uint32())
	msg.height = d.uint()
	msg.round = d.uint32()
	msg.proposeHash = d.hash()
	msg.blockHash = d.hash()
	msg.time = d.time()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodePrecommit decodes raw bytes that must hold a Precommit message.
func DecodePrecommit(raw []byte) (*Precommit, error) {
	msg, err := decodeAs(raw, PrecommitType)
	if err != nil {
		return nil, err
	}
	return msg.(*Precommit), nil
}

func (*Precommit) Type() MessageType { return PrecommitType }

func (v *Precommit) Validator() ValidatorID { return v.validator }

func (v *Precommit) Height() uint64 { return v.height }

func (v *Precommit) Round() uint32 { return v.round }

func (v *Precommit) ProposeHash() crypto.Hash { return v.proposeHash }

func (v *Precommit) BlockHash() crypto.Hash { return v.blockHash }

func (v *Precommit) Time() time.Time { return v.time }

func (v *Precommit) String() string {
	return fmt.Sprintf("Precommit{%d/%d by %d for %s}", v.height, v.round, v.validator, v.blockHash.ShortString())
}
