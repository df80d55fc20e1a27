package consensus

import (
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/crypto/ed25519"
	"github.com/bftledger/ledger/types"
)

func TestRequestFreshness(t *testing.T) {
	testCases := []struct {
		name     string
		lifetime time.Duration
		answered bool
	}{
		{"just sent", 0, true},
		{"one second old", time.Second, true},
		{"exactly the window", RequestAlive, true},
		{"one nanosecond past the window", RequestAlive + time.Nanosecond, false},
		{"from the future", -time.Nanosecond, false},
		{"far in the past", 100 * 365 * 24 * time.Hour, false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			node := newTestNode(t, 2, 2)
			propose := types.NewPropose(2, 2, 0, node.chain[1].block.Hash(), nil, node.keys[2])
			require.True(t, node.state.AddPropose(propose))

			if tc.answered {
				node.expectReply(peerID, propose)
			}
			req := types.NewRequestPropose(peerID, nodeID, node.now().Add(-tc.lifetime), 2, propose.Hash(), node.keys[peerID])
			node.handler.HandleRequest(req)

			if !tc.answered {
				node.sender.AssertNotCalled(t, "SendToValidator", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRequestValidation(t *testing.T) {
	testCases := map[string]func(n *testNode, proposeHash crypto.Hash) types.Request{
		"wrong recipient": func(n *testNode, h crypto.Hash) types.Request {
			return types.NewRequestPropose(peerID, 3, n.now(), 2, h, n.keys[peerID])
		},
		"unknown sender": func(n *testNode, h crypto.Hash) types.Request {
			return types.NewRequestPropose(9, nodeID, n.now(), 2, h, testKey(9))
		},
		"signed by another validator": func(n *testNode, h crypto.Hash) types.Request {
			return types.NewRequestPropose(peerID, nodeID, n.now(), 2, h, n.keys[2])
		},
	}
	for name, makeRequest := range testCases {
		makeRequest := makeRequest
		t.Run(name, func(t *testing.T) {
			node := newTestNode(t, 2, 2)
			propose := types.NewPropose(2, 2, 0, node.chain[1].block.Hash(), nil, node.keys[2])
			require.True(t, node.state.AddPropose(propose))

			node.handler.HandleRequest(makeRequest(node, propose.Hash()))
			node.sender.AssertNotCalled(t, "SendToValidator", mock.Anything, mock.Anything)
		})
	}
}

func TestRequestPropose(t *testing.T) {
	node := newTestNode(t, 3, 3)
	current := types.NewPropose(3, 3, 1, node.chain[2].block.Hash(), nil, node.keys[3])
	require.True(t, node.state.AddPropose(current))
	past := node.chain[1].propose

	node.expectReply(peerID, current)
	node.expectReply(peerID, past)

	request := func(height uint64, hash crypto.Hash) {
		node.handler.HandleRequest(types.NewRequestPropose(peerID, nodeID, node.now(), height, hash, node.keys[peerID]))
	}
	request(3, current.Hash())
	request(1, past.Hash())

	// Nothing is known above the current height, unknown hashes are skipped
	// and a past height is never served from the round state.
	request(4, current.Hash())
	request(3, crypto.Checksum([]byte("unknown")))
	request(1, current.Hash())
}

func TestRequestTransactions(t *testing.T) {
	t.Cleanup(leaktest.Check(t))

	node := newTestNode(t, 5, 5)
	pending := types.NewTransaction([]byte("pending"), node.keys[2])
	require.True(t, node.state.AddTransaction(pending))
	committed := node.chain[3].txs[0]

	node.expectReply(peerID, pending)
	node.expectReply(peerID, committed)

	node.handler.HandleRequest(types.NewRequestTransactions(
		peerID, nodeID, node.now(),
		[]crypto.Hash{pending.Hash(), committed.Hash(), crypto.Checksum([]byte("missing"))},
		node.keys[peerID],
	))
	node.sender.AssertNumberOfCalls(t, "SendToValidator", 2)
}

func TestRequestPrevotes(t *testing.T) {
	node := newTestNode(t, 5, 5)
	proposeHash := crypto.Checksum([]byte("propose"))

	// No known prevotes, no reply at all.
	node.handler.HandleRequest(types.NewRequestPrevotes(peerID, nodeID, node.now(), 5, 2, proposeHash, node.keys[peerID]))
	node.sender.AssertNotCalled(t, "SendToValidator", mock.Anything, mock.Anything)

	votes := []*types.Prevote{
		types.NewPrevote(2, 5, 2, proposeHash, 0, node.keys[2]),
		types.NewPrevote(3, 5, 2, proposeHash, 0, node.keys[3]),
	}
	for _, v := range votes {
		require.True(t, node.state.AddPrevote(v))
		node.expectReply(peerID, v)
	}
	// A prevote of another round is not part of the reply.
	require.True(t, node.state.AddPrevote(types.NewPrevote(2, 5, 1, proposeHash, 0, node.keys[2])))

	node.handler.HandleRequest(types.NewRequestPrevotes(peerID, nodeID, node.now(), 5, 2, proposeHash, node.keys[peerID]))

	// Prevotes of past heights are never stored.
	node.handler.HandleRequest(types.NewRequestPrevotes(peerID, nodeID, node.now(), 4, 2, proposeHash, node.keys[peerID]))
	node.sender.AssertNumberOfCalls(t, "SendToValidator", 2)
}

func TestRequestPrecommits(t *testing.T) {
	node := newTestNode(t, 4, 4)
	proposeHash := crypto.Checksum([]byte("propose"))
	blockHash := crypto.Checksum([]byte("block"))

	current := types.NewPrecommit(3, 4, 0, proposeHash, blockHash, node.now(), node.keys[3])
	require.True(t, node.state.AddPrecommit(current))
	node.expectReply(peerID, current)
	node.handler.HandleRequest(types.NewRequestPrecommits(
		peerID, nodeID, node.now(), 4, 0, proposeHash, blockHash, node.keys[peerID]))

	past := node.chain[2]
	for _, precommit := range past.precommits {
		node.expectReply(peerID, precommit)
	}
	node.handler.HandleRequest(types.NewRequestPrecommits(
		peerID, nodeID, node.now(), 2, 0, past.propose.Hash(), past.block.Hash(), node.keys[peerID]))

	node.handler.HandleRequest(types.NewRequestPrecommits(
		peerID, nodeID, node.now(), 5, 0, proposeHash, blockHash, node.keys[peerID]))
	node.sender.AssertNumberOfCalls(t, "SendToValidator", 1+len(past.precommits))
}

func TestRequestCommit(t *testing.T) {
	t.Cleanup(leaktest.Check(t))

	node := newTestNode(t, 10, 10)

	for _, precommit := range node.chain[3].precommits {
		node.expectReply(peerID, precommit)
	}
	node.handler.HandleRequest(types.NewRequestCommit(peerID, nodeID, node.now(), 3, node.keys[peerID]))
	node.sender.AssertNumberOfCalls(t, "SendToValidator", len(node.chain[3].precommits))

	// The requester is not behind.
	node.handler.HandleRequest(types.NewRequestCommit(peerID, nodeID, node.now(), 10, node.keys[peerID]))
	node.handler.HandleRequest(types.NewRequestCommit(peerID, nodeID, node.now(), 11, node.keys[peerID]))
	node.sender.AssertNumberOfCalls(t, "SendToValidator", len(node.chain[3].precommits))
}

func TestRequestCommitMissingHeight(t *testing.T) {
	// The round state is ahead of the durable chain.
	node := newTestNode(t, 3, 8)

	node.handler.HandleRequest(types.NewRequestCommit(peerID, nodeID, node.now(), 5, node.keys[peerID]))
	node.sender.AssertNotCalled(t, "SendToValidator", mock.Anything, mock.Anything)
}

func TestRequestPeers(t *testing.T) {
	t.Cleanup(leaktest.Check(t))

	node := newTestNode(t, 1, 1)

	self := types.NewConnect("tcp://10.0.0.1:2000", node.now(), node.keys[nodeID])
	requester := types.NewConnect("tcp://10.0.0.2:2000", node.now(), node.keys[peerID])
	auditor := types.NewConnect("tcp://10.0.0.9:2000", node.now(), testKey(42))
	for _, c := range []*types.Connect{self, requester, auditor} {
		require.True(t, node.state.AddPeer(c))
		node.sender.On("SendToAddress", "tcp://10.0.0.2:2000", c.Raw()).Return().Once()
	}

	node.handler.HandleRequest(types.NewRequestPeers(peerID, nodeID, node.now(), node.keys[peerID]))
	node.sender.AssertNotCalled(t, "SendToValidator", mock.Anything, mock.Anything)
}

func TestRequestPeersUnknownAddress(t *testing.T) {
	node := newTestNode(t, 1, 1)
	require.True(t, node.state.AddPeer(types.NewConnect("tcp://10.0.0.3:2000", node.now(), node.keys[2])))

	node.handler.HandleRequest(types.NewRequestPeers(peerID, nodeID, node.now(), node.keys[peerID]))
	node.sender.AssertNotCalled(t, "SendToAddress", mock.Anything, mock.Anything)
}

func TestReceive(t *testing.T) {
	node := newTestNode(t, 2, 2)
	propose := types.NewPropose(2, 2, 0, node.chain[1].block.Hash(), nil, node.keys[2])
	require.True(t, node.state.AddPropose(propose))

	node.handler.Receive([]byte("garbage"))
	node.handler.Receive(propose.Raw())
	node.sender.AssertNotCalled(t, "SendToValidator", mock.Anything, mock.Anything)

	node.expectReply(peerID, propose)
	req := types.NewRequestPropose(peerID, nodeID, node.now(), 2, propose.Hash(), node.keys[peerID])
	node.handler.Receive(req.Raw())
	node.sender.AssertNumberOfCalls(t, "SendToValidator", 1)
}

func TestRequestHandlerRecoversFromPanic(t *testing.T) {
	node := newTestNode(t, 1, 1)
	node.handler.state = panicState{node.state}

	assert.NotPanics(t, func() {
		node.handler.HandleRequest(types.NewRequestPeers(peerID, nodeID, node.now(), node.keys[peerID]))
	})
}

type panicState struct {
	*RoundState
}

func (panicState) PeerAddress(_ ed25519.PubKey) (string, bool) {
	panic("boom")
}
