package consensus

import (
	"bytes"
	"sort"
	"sync"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/crypto/ed25519"
	"github.com/bftledger/ledger/types"
)

// RoundStateReader is the read access the request handler needs to the
// consensus state of the current height.
type RoundStateReader interface {
	// ID is the validator id of this node.
	ID() types.ValidatorID
	// Height is the height being decided now.
	Height() uint64
	// PublicKeyOf returns the key of a validator of the current set.
	PublicKeyOf(id types.ValidatorID) (ed25519.PubKey, bool)

	Propose(hash crypto.Hash) *types.Propose
	Transaction(hash crypto.Hash) *types.Transaction
	Prevotes(round uint32, proposeHash crypto.Hash) []*types.Prevote
	Precommits(round uint32, proposeHash, blockHash crypto.Hash) []*types.Precommit

	// Peers returns the Connect message of every known peer.
	Peers() []*types.Connect
	// PeerAddress returns the network address announced by the peer with
	// the given key.
	PeerAddress(pubKey ed25519.PubKey) (string, bool)
}

type prevoteKey struct {
	round       uint32
	proposeHash crypto.Hash
}

type precommitKey struct {
	round       uint32
	proposeHash crypto.Hash
	blockHash   crypto.Hash
}

// RoundState is the volatile consensus state of one node. Proposes and votes
// are kept for the current height only and dropped when the height
// advances. Pending transactions and peers outlive heights.
type RoundState struct {
	mtx sync.RWMutex

	id         types.ValidatorID
	validators []ed25519.PubKey

	height uint64
	round  uint32

	proposes   map[crypto.Hash]*types.Propose
	txs        map[crypto.Hash]*types.Transaction
	prevotes   map[prevoteKey]map[types.ValidatorID]*types.Prevote
	precommits map[precommitKey]map[types.ValidatorID]*types.Precommit
	// peers are keyed by public key, non-validators have no id.
	peers map[string]*types.Connect
}

var _ RoundStateReader = (*RoundState)(nil)

// NewRoundState returns the state of validator id at the start of height.
// The id of a validator is its position in validators.
func NewRoundState(id types.ValidatorID, validators []ed25519.PubKey, height uint64) *RoundState {
	rs := &RoundState{
		id:         id,
		validators: append([]ed25519.PubKey(nil), validators...),
		txs:        make(map[crypto.Hash]*types.Transaction),
		peers:      make(map[string]*types.Connect),
	}
	rs.resetHeight(height)
	return rs
}

func (rs *RoundState) resetHeight(height uint64) {
	rs.height = height
	rs.round = 0
	rs.proposes = make(map[crypto.Hash]*types.Propose)
	rs.prevotes = make(map[prevoteKey]map[types.ValidatorID]*types.Prevote)
	rs.precommits = make(map[precommitKey]map[types.ValidatorID]*types.Precommit)
}

// NewHeight moves the state to height. Proposes and votes of the previous
// height are discarded, as are the pending transactions in committed.
func (rs *RoundState) NewHeight(height uint64, committed []crypto.Hash) {
	rs.mtx.Lock()
	defer rs.mtx.Unlock()

	rs.resetHeight(height)
	for _, hash := range committed {
		delete(rs.txs, hash)
	}
}

// NewRound moves the state to round of the current height.
func (rs *RoundState) NewRound(round uint32) {
	rs.mtx.Lock()
	defer rs.mtx.Unlock()
	rs.round = round
}

// Round returns the current round.
func (rs *RoundState) Round() uint32 {
	rs.mtx.RLock()
	defer rs.mtx.RUnlock()
	return rs.round
}

func (rs *RoundState) ID() types.ValidatorID {
	return rs.id
}

func (rs *RoundState) Height() uint64 {
	rs.mtx.RLock()
	defer rs.mtx.RUnlock()
	return rs.height
}

func (rs *RoundState) PublicKeyOf(id types.ValidatorID) (ed25519.PubKey, bool) {
	if int(id) >= len(rs.validators) {
		return nil, false
	}
	return rs.validators[id], true
}

// AddPropose stores a propose of the current height. It reports whether the
// propose was new.
func (rs *RoundState) AddPropose(p *types.Propose) bool {
	rs.mtx.Lock()
	defer rs.mtx.Unlock()

	if p.Height() != rs.height {
		return false
	}
	hash := p.Hash()
	if _, ok := rs.proposes[hash]; ok {
		return false
	}
	rs.proposes[hash] = p
	return true
}

// AddTransaction stores a pending transaction. It reports whether the
// transaction was new.
func (rs *RoundState) AddTransaction(tx *types.Transaction) bool {
	rs.mtx.Lock()
	defer rs.mtx.Unlock()

	hash := tx.Hash()
	if _, ok := rs.txs[hash]; ok {
		return false
	}
	rs.txs[hash] = tx
	return true
}

// AddPrevote stores a prevote of the current height, one per validator for
// each (round, propose).
func (rs *RoundState) AddPrevote(v *types.Prevote) bool {
	rs.mtx.Lock()
	defer rs.mtx.Unlock()

	if v.Height() != rs.height {
		return false
	}
	key := prevoteKey{round: v.Round(), proposeHash: v.ProposeHash()}
	votes, ok := rs.prevotes[key]
	if !ok {
		votes = make(map[types.ValidatorID]*types.Prevote)
		rs.prevotes[key] = votes
	}
	if _, ok := votes[v.Validator()]; ok {
		return false
	}
	votes[v.Validator()] = v
	return true
}

// AddPrecommit stores a precommit of the current height, one per validator
// for each (round, propose, block).
func (rs *RoundState) AddPrecommit(v *types.Precommit) bool {
	rs.mtx.Lock()
	defer rs.mtx.Unlock()

	if v.Height() != rs.height {
		return false
	}
	key := precommitKey{round: v.Round(), proposeHash: v.ProposeHash(), blockHash: v.BlockHash()}
	votes, ok := rs.precommits[key]
	if !ok {
		votes = make(map[types.ValidatorID]*types.Precommit)
		rs.precommits[key] = votes
	}
	if _, ok := votes[v.Validator()]; ok {
		return false
	}
	votes[v.Validator()] = v
	return true
}

// AddPeer records the Connect message of a peer. An older Connect never
// replaces a newer one.
func (rs *RoundState) AddPeer(c *types.Connect) bool {
	rs.mtx.Lock()
	defer rs.mtx.Unlock()

	key := string(c.PubKey())
	if known, ok := rs.peers[key]; ok && !c.Time().After(known.Time()) {
		return false
	}
	rs.peers[key] = c
	return true
}

func (rs *RoundState) Propose(hash crypto.Hash) *types.Propose {
	rs.mtx.RLock()
	defer rs.mtx.RUnlock()
	return rs.proposes[hash]
}

func (rs *RoundState) Transaction(hash crypto.Hash) *types.Transaction {
	rs.mtx.RLock()
	defer rs.mtx.RUnlock()
	return rs.txs[hash]
}

// Prevotes returns the known prevotes for (round, proposeHash) ordered by
// validator id.
func (rs *RoundState) Prevotes(round uint32, proposeHash crypto.Hash) []*types.Prevote {
	rs.mtx.RLock()
	defer rs.mtx.RUnlock()

	votes := rs.prevotes[prevoteKey{round: round, proposeHash: proposeHash}]
	res := make([]*types.Prevote, 0, len(votes))
	for _, v := range votes {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Validator() < res[j].Validator() })
	return res
}

// Precommits returns the known precommits for (round, proposeHash,
// blockHash) ordered by validator id.
func (rs *RoundState) Precommits(round uint32, proposeHash, blockHash crypto.Hash) []*types.Precommit {
	rs.mtx.RLock()
	defer rs.mtx.RUnlock()

	votes := rs.precommits[precommitKey{round: round, proposeHash: proposeHash, blockHash: blockHash}]
	res := make([]*types.Precommit, 0, len(votes))
	for _, v := range votes {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Validator() < res[j].Validator() })
	return res
}

// Peers returns the known Connect messages ordered by public key.
func (rs *RoundState) Peers() []*types.Connect {
	rs.mtx.RLock()
	defer rs.mtx.RUnlock()

	res := make([]*types.Connect, 0, len(rs.peers))
	for _, c := range rs.peers {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return bytes.Compare(res[i].PubKey(), res[j].PubKey()) < 0 })
	return res
}

func (rs *RoundState) PeerAddress(pubKey ed25519.PubKey) (string, bool) {
	rs.mtx.RLock()
	defer rs.mtx.RUnlock()

	c, ok := rs.peers[string(pubKey)]
	if !ok {
		return "", false
	}
	return c.Addr(), true
}
