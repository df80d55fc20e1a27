package types

import (
	"fmt"

	"github.com/bftledger/ledger/crypto/ed25519"
)

// Transaction is an opaque signed payload submitted by a client. Its
// execution semantics belong to the services running on top of the ledger;
// here it is only stored and relayed.
type Transaction struct {
	rawMessage
	author  ed25519.PubKey
	payload []byte
}

var _ Message = (*Transaction)(nil)

// NewTransaction builds a Transaction carrying payload, signed by privKey.
func NewTransaction(payload []byte, privKey ed25519.PrivKey) *Transaction {
	author := privKey.PubKey()
	e := newEncoder(TransactionType)
	e.bytes(author)
	e.bytes(payload)
	return &Transaction{
		rawMessage: sign(e, privKey),
		author:     author,
		payload:    append([]byte(nil), payload...),
	}
}

func decodeTransaction(d *decoder, m rawMessage) (*Transaction, error) {
	msg := &Transaction{rawMessage: m}
	author := d.bytes()
	msg.payload = d.bytes()
	if err := d.finish(); err != nil {
		return nil, err
	}
	var err error
	if msg.author, err = ed25519.PubKeyFromBytes(author); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeTransaction decodes raw bytes that must hold a Transaction message.
func DecodeTransaction(raw []byte) (*Transaction, error) {
	msg, err := decodeAs(raw, TransactionType)
	if err != nil {
		return nil, err
	}
	return msg.(*Transaction), nil
}

func (*Transaction) Type() MessageType { return TransactionType }

func (tx *Transaction) Author() ed25519.PubKey { return tx.author }

func (tx *Transaction) Payload() []byte { return tx.payload }

// VerifyAuthor checks the signature against the embedded author key.
func (tx *Transaction) VerifyAuthor() bool { return tx.Verify(tx.author) }

func (tx *Transaction) String() string {
	return fmt.Sprintf("Tx{%s, %d bytes}", tx.Hash().ShortString(), len(tx.payload))
}
