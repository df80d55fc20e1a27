package consensus

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bftledger/ledger/crypto/ed25519"
	"github.com/bftledger/ledger/internal/store"
	"github.com/bftledger/ledger/libs/log"
	"github.com/bftledger/ledger/types"
)

// RequestAlive is how long a request stays valid after the time it carries.
// A request exactly RequestAlive old is still answered.
const RequestAlive = 3 * time.Second

// Reasons a request is dropped, used as the reason label of the
// requests_dropped metric.
const (
	dropMalformed      = "malformed"
	dropNotRequest     = "not_a_request"
	dropWrongRecipient = "wrong_recipient"
	dropExpired        = "expired"
	dropFromFuture     = "from_future"
	dropUnknownSender  = "unknown_sender"
	dropBadSignature   = "bad_signature"
	dropUnknownAddress = "unknown_address"
)

// RequestHandler answers catch-up requests from peers that fell behind. It
// checks every request, then replies from the round state for the current
// height and from the blockchain for past heights. It never writes to
// either.
//
// Requests are handled one at a time, from the same goroutine that drives
// the round state.
type RequestHandler struct {
	logger  log.Logger
	metrics *Metrics
	clock   clock.Clock

	state      RoundStateReader
	blockchain *store.Blockchain
	sender     Sender
}

// HandlerOption sets an optional parameter on the RequestHandler.
type HandlerOption func(*RequestHandler)

// WithMetrics sets the metrics.
func WithMetrics(metrics *Metrics) HandlerOption {
	return func(h *RequestHandler) { h.metrics = metrics }
}

// WithClock sets the clock used for request freshness.
func WithClock(c clock.Clock) HandlerOption {
	return func(h *RequestHandler) { h.clock = c }
}

// NewRequestHandler returns a handler that reads state and blockchain and
// replies through sender.
func NewRequestHandler(
	logger log.Logger,
	state RoundStateReader,
	blockchain *store.Blockchain,
	sender Sender,
	options ...HandlerOption,
) *RequestHandler {
	h := &RequestHandler{
		logger:     logger,
		metrics:    NopMetrics(),
		clock:      clock.New(),
		state:      state,
		blockchain: blockchain,
		sender:     sender,
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// Receive decodes raw bytes from the network and handles them if they hold a
// request. Anything else is dropped.
func (h *RequestHandler) Receive(raw []byte) {
	msg, err := types.DecodeMessage(raw)
	if err != nil {
		h.drop(h.logger, dropMalformed, "err", err)
		return
	}
	req, ok := msg.(types.Request)
	if !ok {
		h.drop(h.logger, dropNotRequest, "type", msg.Type().String())
		return
	}
	h.HandleRequest(req)
}

// HandleRequest validates req and, if it passes, sends the reply. Invalid
// requests are dropped without a response.
func (h *RequestHandler) HandleRequest(req types.Request) {
	logger := h.logger.With("type", req.Type().String(), "from", req.From())
	defer func() {
		if e := recover(); e != nil {
			logger.Error(
				"recovering from request handler panic",
				"err", fmt.Errorf("panic in handling request: %v", e),
				"stack", string(debug.Stack()),
			)
		}
	}()

	h.metrics.RequestsReceived.With("kind", req.Type().String()).Add(1)

	pubKey, reason := h.validate(req)
	if reason != "" {
		h.drop(logger, reason)
		return
	}

	snap, err := h.blockchain.Snapshot()
	if err != nil {
		logger.Error("failed to take blockchain snapshot", "err", err)
		return
	}
	defer snap.Release()
	schema := store.NewSchema(snap)

	switch msg := req.(type) {
	case *types.RequestPropose:
		h.handleRequestPropose(logger, schema, msg)
	case *types.RequestTransactions:
		h.handleRequestTransactions(logger, schema, msg)
	case *types.RequestPrevotes:
		h.handleRequestPrevotes(msg)
	case *types.RequestPrecommits:
		h.handleRequestPrecommits(logger, schema, msg)
	case *types.RequestCommit:
		h.handleRequestCommit(logger, schema, msg)
	case *types.RequestPeers:
		h.handleRequestPeers(logger, pubKey, msg)
	default:
		logger.Error("unknown request type", "request", fmt.Sprintf("%T", req))
	}
}

// validate returns the public key of the sender, or the reason to drop the
// request. The checks run in a fixed order: recipient, freshness, then
// signature.
func (h *RequestHandler) validate(req types.Request) (ed25519.PubKey, string) {
	if req.To() != h.state.ID() {
		return nil, dropWrongRecipient
	}

	// Sub saturates, so times too far apart to compare count as expired.
	lifetime := h.clock.Now().Sub(req.Time())
	switch {
	case lifetime < 0:
		return nil, dropFromFuture
	case lifetime > RequestAlive:
		return nil, dropExpired
	}

	pubKey, ok := h.state.PublicKeyOf(req.From())
	if !ok {
		return nil, dropUnknownSender
	}
	if !req.Verify(pubKey) {
		return nil, dropBadSignature
	}
	return pubKey, ""
}

func (h *RequestHandler) handleRequestPropose(logger log.Logger, schema *store.Schema, req *types.RequestPropose) {
	var (
		propose *types.Propose
		err     error
		height  = h.state.Height()
	)
	switch {
	case req.Height() > height:
		return
	case req.Height() == height:
		propose = h.state.Propose(req.ProposeHash())
	default:
		propose, err = schema.Propose(req.ProposeHash())
		if err != nil {
			logger.Error("failed to load propose", "hash", req.ProposeHash(), "err", err)
			return
		}
	}
	if propose != nil {
		h.send(req.From(), propose)
	}
}

func (h *RequestHandler) handleRequestTransactions(logger log.Logger, schema *store.Schema, req *types.RequestTransactions) {
	for _, hash := range req.Transactions() {
		if tx := h.state.Transaction(hash); tx != nil {
			h.send(req.From(), tx)
			continue
		}
		tx, err := schema.Transaction(hash)
		if err != nil {
			logger.Error("failed to load transaction", "hash", hash, "err", err)
			continue
		}
		if tx != nil {
			h.send(req.From(), tx)
		}
	}
}

// Prevotes are never persisted, so only the current height can be served.
func (h *RequestHandler) handleRequestPrevotes(req *types.RequestPrevotes) {
	if req.Height() != h.state.Height() {
		return
	}
	for _, prevote := range h.state.Prevotes(req.Round(), req.ProposeHash()) {
		h.send(req.From(), prevote)
	}
}

func (h *RequestHandler) handleRequestPrecommits(logger log.Logger, schema *store.Schema, req *types.RequestPrecommits) {
	height := h.state.Height()
	switch {
	case req.Height() > height:
		return
	case req.Height() == height:
		for _, precommit := range h.state.Precommits(req.Round(), req.ProposeHash(), req.BlockHash()) {
			h.send(req.From(), precommit)
		}
	default:
		precommits, err := schema.BlockPrecommits(req.BlockHash())
		if err != nil {
			logger.Error("failed to load precommits", "block", req.BlockHash(), "err", err)
			return
		}
		for _, precommit := range precommits {
			h.send(req.From(), precommit)
		}
	}
}

func (h *RequestHandler) handleRequestCommit(logger log.Logger, schema *store.Schema, req *types.RequestCommit) {
	if req.Height() >= h.state.Height() {
		return
	}
	blockHash, ok, err := schema.BlockHash(req.Height())
	if err != nil {
		logger.Error("failed to load block hash", "height", req.Height(), "err", err)
		return
	}
	if !ok {
		logger.Debug("no block for requested commit", "height", req.Height())
		return
	}
	precommits, err := schema.BlockPrecommits(blockHash)
	if err != nil {
		logger.Error("failed to load precommits", "block", blockHash, "err", err)
		return
	}
	for _, precommit := range precommits {
		h.send(req.From(), precommit)
	}
}

// Replies to a peers request go to the requester's announced address, since
// the requester may not be reachable by validator id.
func (h *RequestHandler) handleRequestPeers(logger log.Logger, pubKey ed25519.PubKey, req *types.RequestPeers) {
	addr, ok := h.state.PeerAddress(pubKey)
	if !ok {
		// The requester never sent a Connect, so there is no address to
		// reply to.
		logger.Info("no address for peers request", "from", req.From())
		h.drop(logger, dropUnknownAddress)
		return
	}
	for _, peer := range h.state.Peers() {
		h.sender.SendToAddress(addr, peer.Raw())
		h.metrics.RepliesSent.With("kind", peer.Type().String()).Add(1)
	}
}

func (h *RequestHandler) send(to types.ValidatorID, msg types.Message) {
	h.sender.SendToValidator(to, msg.Raw())
	h.metrics.RepliesSent.With("kind", msg.Type().String()).Add(1)
}

func (h *RequestHandler) drop(logger log.Logger, reason string, keyVals ...interface{}) {
	h.metrics.RequestsDropped.With("reason", reason).Add(1)
	logger.Debug("dropping request", append([]interface{}{"reason", reason}, keyVals...)...)
}
