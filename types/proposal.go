package types

import (
	"fmt"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/crypto/ed25519"
)

// Propose is a block proposal made by the leader of a round. It references
// the transactions of the candidate block by hash.
type Propose struct {
	rawMessage
	validator    ValidatorID
	height       uint64
	round        uint32
	prevHash     crypto.Hash
	transactions []crypto.Hash
}

var _ Message = (*Propose)(nil)

// NewPropose builds a Propose signed by privKey.
func NewPropose(
	validator ValidatorID,
	height uint64,
	round uint32,
	prevHash crypto.Hash,
	txs []crypto.Hash,
	privKey ed25519.PrivKey,
) *Propose {
	e := newEncoder(ProposeType)
	e.uint(uint64(validator))
	e.uint(height)
	e.uint(uint64(round))
	e.hash(prevHash)
	e.hashes(txs)
	return &Propose{
		rawMessage:   sign(e, privKey),
		validator:    validator,
		height:       height,
		round:        round,
		prevHash:     prevHash,
		transactions: append([]crypto.Hash(nil), txs...),
	}
}

func decodePropose(d *decoder, m rawMessage) (*Propose, error) {
	msg := &Propose{rawMessage: m}
	msg.validator = ValidatorID(d.uint32())
	msg.height = d.uint()
	msg.round = d.uint32()
	msg.prevHash = d.hash()
	msg.transactions = d.hashes()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodePropose decodes raw bytes that must hold a Propose message.
func DecodePropose(raw []byte) (*Propose, error) {
	msg, err := decodeAs(raw, ProposeType)
	if err != nil {
		return nil, err
	}
	return msg.(*Propose), nil
}

func (*Propose) Type() MessageType { return ProposeType }

func (p *Propose) Validator() ValidatorID { return p.validator }

func (p *Propose) Height() uint64 { return p.height }

func (p *Propose) Round() uint32 { return p.round }

// PrevHash is the hash of the last committed block.
func (p *Propose) PrevHash() crypto.Hash { return p.prevHash }

// Transactions returns the hashes of the proposed transactions in block
// order.
func (p *Propose) Transactions() []crypto.Hash { return p.transactions }

func (p *Propose) String() string {
	return fmt.Sprintf("Propose{%d/%d by %d, %d txs}", p.height, p.round, p.validator, len(p.transactions))
}
