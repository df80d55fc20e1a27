package types

import (
	"fmt"
	"time"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/crypto/ed25519"
)

// Request is a point-to-point catch-up request sent by one validator to
// another. The set of request kinds is closed: RequestPropose,
// RequestTransactions, RequestPrevotes, RequestPrecommits, RequestCommit and
// RequestPeers.
type Request interface {
	Message
	// From is the validator that sent the request.
	From() ValidatorID
	// To is the validator the request is addressed to.
	To() ValidatorID
	// Time is when the request was created by the sender.
	Time() time.Time

	isRequest()
}

// requestHeader holds the fields shared by every request. They are encoded
// right after the message type, in this order.
type requestHeader struct {
	rawMessage
	from ValidatorID
	to   ValidatorID
	time time.Time
}

func (h requestHeader) From() ValidatorID { return h.from }
func (h requestHeader) To() ValidatorID   { return h.to }
func (h requestHeader) Time() time.Time   { return h.time }
func (requestHeader) isRequest()          {}

func newRequestEncoder(t MessageType, from, to ValidatorID, tm time.Time) *encoder {
	e := newEncoder(t)
	e.uint(uint64(from))
	e.uint(uint64(to))
	e.time(tm)
	return e
}

func decodeRequestHeader(d *decoder, m rawMessage) requestHeader {
	return requestHeader{
		rawMessage: m,
		from:       ValidatorID(d.uint32()),
		to:         ValidatorID(d.uint32()),
		time:       d.time(),
	}
}

// DecodeRequest decodes raw bytes that must hold one of the request kinds.
func DecodeRequest(raw []byte) (Request, error) {
	msg, err := DecodeMessage(raw)
	if err != nil {
		return nil, err
	}
	req, ok := msg.(Request)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a request", ErrInvalidMessageType, msg.Type())
	}
	return req, nil
}

//-----------------------------------------------------------------------------

// RequestPropose asks for the propose with the given hash at a height.
type RequestPropose struct {
	requestHeader
	height      uint64
	proposeHash crypto.Hash
}

func NewRequestPropose(
	from, to ValidatorID,
	t time.Time,
	height uint64,
	proposeHash crypto.Hash,
	privKey ed25519.PrivKey,
) *RequestPropose {
	e := newRequestEncoder(RequestProposeType, from, to, t)
	e.uint(height)
	e.hash(proposeHash)
	return &RequestPropose{
		requestHeader: requestHeader{rawMessage: sign(e, privKey), from: from, to: to, time: t.UTC()},
		height:        height,
		proposeHash:   proposeHash,
	}
}

func decodeRequestPropose(d *decoder, m rawMessage) (*RequestPropose, error) {
	msg := &RequestPropose{requestHeader: decodeRequestHeader(d, m)}
	msg.height = d.uint()
	msg.proposeHash = d.hash()
	return msg, d.finish()
}

func (*RequestPropose) Type() MessageType { return RequestProposeType }

func (r *RequestPropose) Height() uint64 { return r.height }

func (r *RequestPropose) ProposeHash() crypto.Hash { return r.proposeHash }

//-----------------------------------------------------------------------------

// RequestTransactions asks for transactions by hash.
type RequestTransactions struct {
	requestHeader
	txs []crypto.Hash
}

func NewRequestTransactions(
	from, to ValidatorID,
	t time.Time,
	txs []crypto.Hash,
	privKey ed25519.PrivKey,
) *RequestTransactions {
	e := newRequestEncoder(RequestTransactionsType, from, to, t)
	e.hashes(txs)
	return &RequestTransactions{
		requestHeader: requestHeader{rawMessage: sign(e, privKey), from: from, to: to, time: t.UTC()},
		txs:           append([]crypto.Hash(nil), txs...),
	}
}

func decodeRequestTransactions(d *decoder, m rawMessage) (*RequestTransactions, error) {
	msg := &RequestTransactions{requestHeader: decodeRequestHeader(d, m)}
	msg.txs = d.hashes()
	return msg, d.finish()
}

func (*RequestTransactions) Type() MessageType { return RequestTransactionsType }

func (r *RequestTransactions) Transactions() []crypto.Hash { return r.txs }

//-----------------------------------------------------------------------------

// RequestPrevotes asks for the prevotes for a propose in a round of the
// current height.
type RequestPrevotes struct {
	requestHeader
	height      uint64
	round       uint32
	proposeHash crypto.Hash
}

func NewRequestPrevotes(
	from, to ValidatorID,
	t time.Time,
	height uint64,
	round uint32,
	proposeHash crypto.Hash,
	privKey ed25519.PrivKey,
) *RequestPrevotes {
	e := newRequestEncoder(RequestPrevotesType, from, to, t)
	e.uint(height)
	e.uint(uint64(round))
	e.hash(proposeHash)
	return &RequestPrevotes{
		requestHeader: requestHeader{rawMessage: sign(e, privKey), from: from, to: to, time: t.UTC()},
		height:        height,
		round:         round,
		proposeHash:   proposeHash,
	}
}

func decodeRequestPrevotes(d *decoder, m rawMessage) (*RequestPrevotes, error) {
	msg := &RequestPrevotes{requestHeader: decodeRequestHeader(d, m)}
	msg.height = d.uint()
	msg.round = d.uint32()
	msg.proposeHash = d.hash()
	return msg, d.finish()
}

func (*RequestPrevotes) Type() MessageType { return RequestPrevotesType }

func (r *RequestPrevotes) Height() uint64 { return r.height }

func (r *RequestPrevotes) Round() uint32 { return r.round }

func (r *RequestPrevotes) ProposeHash() crypto.Hash { return r.proposeHash }

//-----------------------------------------------------------------------------

// RequestPrecommits asks for the precommits for a block.
type RequestPrecommits struct {
	requestHeader
	height      uint64
	round       uint32
	proposeHash crypto.Hash
	blockHash   crypto.Hash
}

func NewRequestPrecommits(
	from, to ValidatorID,
	t time.Time,
	height uint64,
	round uint32,
	proposeHash crypto.Hash,
	blockHash crypto.Hash,
	privKey ed25519.PrivKey,
) *RequestPrecommits {
	e := newRequestEncoder(RequestPrecommitsType, from, to, t)
	e.uint(height)
	e.uint(uint64(round))
	e.hash(proposeHash)
	e.hash(blockHash)
	return &RequestPrecommits{
		requestHeader: requestHeader{rawMessage: sign(e, privKey), from: from, to: to, time: t.UTC()},
		height:        height,
		round:         round,
		proposeHash:   proposeHash,
		blockHash:     blockHash,
	}
}

func decodeRequestPrecommits(d *decoder, m rawMessage) (*RequestPrecommits, error) {
	msg := &RequestPrecommits{requestHeader: decodeRequestHeader(d, m)}
	msg.height = d.uint()
	msg.round = d.uint32()
	msg.proposeHash = d.hash()
	msg.blockHash = d.hash()
	return msg, d.finish()
}

func (*RequestPrecommits) Type() MessageType { return RequestPrecommitsType }

func (r *RequestPrecommits) Height() uint64 { return r.height }

func (r *RequestPrecommits) Round() uint32 { return r.round }

func (r *RequestPrecommits) ProposeHash() crypto.Hash { return r.proposeHash }

func (r *RequestPrecommits) BlockHash() crypto.Hash { return r.blockHash }

//-----------------------------------------------------------------------------

// RequestCommit asks for the precommits that finalized the block at a past
// height.
type RequestCommit struct {
	requestHeader
	height uint64
}

func NewRequestCommit(
	from, to ValidatorID,
	t time.Time,
	height uint64,
	privKey ed25519.PrivKey,
) *RequestCommit {
	e := newRequestEncoder(RequestCommitType, from, to, t)
	e.uint(height)
	return &RequestCommit{
		requestHeader: requestHeader{rawMessage: sign(e, privKey), from: from, to: to, time: t.UTC()},
		height:        height,
	}
}

func decodeRequestCommit(d *decoder, m rawMessage) (*RequestCommit, error) {
	msg := &RequestCommit{requestHeader: decodeRequestHeader(d, m)}
	msg.height = d.uint()
	return msg, d.finish()
}

func (*RequestCommit) Type() MessageType { return RequestCommitType }

func (r *RequestCommit) Height() uint64 { return r.height }

//-----------------------------------------------------------------------------

// RequestPeers asks for every peer the recipient knows about.
type RequestPeers struct {
	requestHeader
}

func NewRequestPeers(from, to ValidatorID, t time.Time, privKey ed25519.PrivKey) *RequestPeers {
	e := newRequestEncoder(RequestPeersType, from, to, t)
	return &RequestPeers{
		requestHeader: requestHeader{rawMessage: sign(e, privKey), from: from, to: to, time: t.UTC()},
	}
}

func decodeRequestPeers(d *decoder, m rawMessage) (*RequestPeers, error) {
	msg := &RequestPeers{requestHeader: decodeRequestHeader(d, m)}
	return msg, d.finish()
}

func (*RequestPeers) Type() MessageType { return RequestPeersType }
