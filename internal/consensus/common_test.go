package consensus

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/crypto/ed25519"
	"github.com/bftledger/ledger/internal/consensus/mocks"
	"github.com/bftledger/ledger/internal/storage"
	"github.com/bftledger/ledger/internal/store"
	"github.com/bftledger/ledger/libs/log"
	"github.com/bftledger/ledger/types"
)

const (
	nodeID types.ValidatorID = 0
	peerID types.ValidatorID = 1
)

var testTime = time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

func testKey(seed byte) ed25519.PrivKey {
	return ed25519.GenPrivKeyFromSeed(bytes.Repeat([]byte{seed}, ed25519.SeedSize))
}

type committedBlock struct {
	block      *types.Block
	propose    *types.Propose
	txs        []*types.Transaction
	precommits []*types.Precommit
}

// testNode is validator 0 of a four validator network with a committed chain
// and a mocked network.
type testNode struct {
	keys    []ed25519.PrivKey
	state   *RoundState
	chain   []committedBlock
	sender  *mocks.Sender
	clock   *clock.Mock
	handler *RequestHandler
}

// newTestNode returns a node with blocks committed heights and a round state
// at height.
func newTestNode(t *testing.T, blocks int, height uint64) *testNode {
	t.Helper()

	keys := []ed25519.PrivKey{testKey(1), testKey(2), testKey(3), testKey(4)}
	pubKeys := make([]ed25519.PubKey, len(keys))
	for i, key := range keys {
		pubKeys[i] = key.PubKey()
	}

	bc := store.NewBlockchain(storage.NewMemoryDB())
	chain := commitChain(t, bc, keys, blocks)

	c := clock.NewMock()
	c.Set(testTime)

	node := &testNode{
		keys:   keys,
		state:  NewRoundState(nodeID, pubKeys, height),
		chain:  chain,
		sender: mocks.NewSender(t),
		clock:  c,
	}
	node.handler = NewRequestHandler(log.NewTestingLogger(t), node.state, bc, node.sender, WithClock(c))
	return node
}

func commitChain(t *testing.T, bc *store.Blockchain, keys []ed25519.PrivKey, n int) []committedBlock {
	t.Helper()
	var (
		chain    []committedBlock
		prevHash = crypto.ZeroHash
	)
	for h := uint64(0); h < uint64(n); h++ {
		tx := types.NewTransaction([]byte(fmt.Sprintf("committed-%d", h)), keys[0])
		txHashes := []crypto.Hash{tx.Hash()}
		proposer := types.ValidatorID(h % uint64(len(keys)))
		propose := types.NewPropose(proposer, h, 0, prevHash, txHashes, keys[proposer])
		block := types.NewBlock(h, proposer, prevHash, txHashes)

		var precommits []*types.Precommit
		for i, key := range keys {
			precommits = append(precommits,
				types.NewPrecommit(types.ValidatorID(i), h, 0, propose.Hash(), block.Hash(), testTime, key))
		}
		require.NoError(t, bc.Commit(block, propose, []*types.Transaction{tx}, precommits))

		chain = append(chain, committedBlock{block: block, propose: propose, txs: []*types.Transaction{tx}, precommits: precommits})
		prevHash = block.Hash()
	}
	return chain
}

// now is the time a fresh request carries.
func (n *testNode) now() time.Time {
	return n.clock.Now()
}

func (n *testNode) expectReply(to types.ValidatorID, msg types.Message) {
	n.sender.On("SendToValidator", to, msg.Raw()).Return().Once()
}
