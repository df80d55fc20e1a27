package types

import (
	"fmt"
	"time"

	"github.com/bftledger/ledger/crypto/ed25519"
)

// Connect announces a node's public key and the network address it can be
// reached on. It is signed with the announced key.
type Connect struct {
	rawMessage
	pubKey ed25519.PubKey
	addr   string
	time   time.Time
}

var _ Message = (*Connect)(nil)

// NewConnect builds a Connect signed by privKey.
func NewConnect(addr string, t time.Time, privKey ed25519.PrivKey) *Connect {
	pubKey := privKey.PubKey()
	e := newEncoder(ConnectType)
	e.bytes(pubKey)
	e.string(addr)
	e.time(t)
	return &Connect{
		rawMessage: sign(e, privKey),
		pubKey:     pubKey,
		addr:       addr,
		time:       t.UTC(),
	}
}

func decodeConnect(d *decoder, m rawMessage) (*Connect, error) {
	msg := &Connect{rawMessage: m}
	pubKey := d.bytes()
	msg.addr = d.string()
	msg.time = d.time()
	if err := d.finish(); err != nil {
		return nil, err
	}
	var err error
	if msg.pubKey, err = ed25519.PubKeyFromBytes(pubKey); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeConnect decodes raw bytes that must hold a Connect message.
func DecodeConnect(raw []byte) (*Connect, error) {
	msg, err := decodeAs(raw, ConnectType)
	if err != nil {
		return nil, err
	}
	return msg.(*Connect), nil
}

func (*Connect) Type() MessageType { return ConnectType }

func (c *Connect) PubKey() ed25519.PubKey { return c.pubKey }

// Addr is the network address the node listens on.
func (c *Connect) Addr() string { return c.addr }

func (c *Connect) Time() time.Time { return c.time }

func (c *Connect) String() string {
	return fmt.Sprintf("Connect{%X %s}", c.pubKey.Bytes()[:4], c.addr)
}
