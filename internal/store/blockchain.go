package store

import (
	"errors"
	"fmt"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/internal/storage"
	"github.com/bftledger/ledger/types"
)

var (
	// ErrNonContiguousHeight is returned when a block does not extend the
	// chain by exactly one height.
	ErrNonContiguousHeight = errors.New("blocks must be committed at contiguous heights")
	// ErrAlreadyCommitted is returned when a block hash is already stored.
	ErrAlreadyCommitted = errors.New("block already committed")
)

// Blockchain owns the durable database of a node. Readers take snapshots and
// build a Schema over them, the consensus driver commits through a fork.
type Blockchain struct {
	db storage.Database
}

// NewBlockchain returns a Blockchain over db.
func NewBlockchain(db storage.Database) *Blockchain {
	return &Blockchain{db: db}
}

// Snapshot returns an isolated view of the committed chain.
func (bc *Blockchain) Snapshot() (storage.Snapshot, error) {
	return bc.db.Snapshot()
}

// Fork returns a writable overlay over the committed chain.
func (bc *Blockchain) Fork() (*storage.Fork, error) {
	return bc.db.Fork()
}

// Merge applies patch to the database atomically.
func (bc *Blockchain) Merge(patch *storage.Patch) error {
	return bc.db.Merge(patch)
}

// Commit writes a finalized block and everything that belongs to it in one
// atomic merge. See MutableSchema.CommitBlock.
func (bc *Blockchain) Commit(
	block *types.Block,
	propose *types.Propose,
	txs []*types.Transaction,
	precommits []*types.Precommit,
) error {
	fork, err := bc.db.Fork()
	if err != nil {
		return err
	}
	defer fork.Release()

	if err := NewMutableSchema(fork).CommitBlock(block, propose, txs, precommits); err != nil {
		return err
	}
	return bc.db.Merge(fork.Patch())
}

// Close closes the underlying database.
func (bc *Blockchain) Close() error {
	return bc.db.Close()
}

// MutableSchema is the write side of Schema. It can only be built over a
// fork.
type MutableSchema struct {
	*Schema
	fork *storage.Fork
}

// NewMutableSchema returns a schema that writes through fork.
func NewMutableSchema(fork *storage.Fork) *MutableSchema {
	return &MutableSchema{Schema: NewSchema(fork), fork: fork}
}

// CommitBlock records block as the next height of the chain together with
// its propose, its transactions and the precommits that finalized it.
//
// The block must be at the current height and, past genesis, point at the
// previous block. Its transaction count and Merkle root must match txs, and
// every precommit must be for this block. A propose may be nil for genesis.
// Transactions and proposes already stored are kept as they are, since their
// keys are content hashes.
//
// CommitBlock checkpoints the fork on entry and rolls back to that checkpoint
// if it fails, so a failed commit leaves the fork's earlier changes as they
// were. Any checkpoint the caller took before is replaced.
func (s *MutableSchema) CommitBlock(
	block *types.Block,
	propose *types.Propose,
	txs []*types.Transaction,
	precommits []*types.Precommit,
) (err error) {
	if block == nil {
		return errors.New("cannot commit a nil block")
	}

	s.fork.Checkpoint()
	defer func() {
		if err != nil {
			s.fork.Rollback()
		}
	}()

	height, err := s.Height()
	if err != nil {
		return err
	}
	if block.Height != height {
		return fmt.Errorf("%w: wanted %d, got %d", ErrNonContiguousHeight, height, block.Height)
	}
	if height > 0 {
		prevHash, _, err := s.BlockHash(height - 1)
		if err != nil {
			return err
		}
		if block.PrevHash != prevHash {
			return fmt.Errorf("block %d: wrong PrevHash: expected %v, got %v", height, prevHash, block.PrevHash)
		}
	}

	txHashes := make([]crypto.Hash, len(txs))
	for i, tx := range txs {
		txHashes[i] = tx.Hash()
	}
	if err := block.ValidateBasic(txHashes); err != nil {
		return fmt.Errorf("block %d: %w", height, err)
	}

	hash := block.Hash()
	for _, precommit := range precommits {
		if precommit.BlockHash() != hash || precommit.Height() != height {
			return fmt.Errorf("precommit %v is not for block %v at height %d", precommit.Hash(), hash, height)
		}
	}

	blocks := storage.NewMutableMapIndex(s.fork, blocksName)
	exists, err := blocks.Contains(hash.Bytes())
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %v", ErrAlreadyCommitted, hash)
	}

	if err := storage.NewMutableListIndex(s.fork, heightsName).Push(hash.Bytes()); err != nil {
		return err
	}
	blocks.Put(hash.Bytes(), block.Marshal())

	if propose != nil {
		if err := putOnce(storage.NewMutableMapIndex(s.fork, proposesName), propose); err != nil {
			return err
		}
	}

	transactions := storage.NewMutableMapIndex(s.fork, transactionsName)
	blockTxs := storage.NewMutableListIndexInFamily(s.fork, blockTxsName, storage.Uint64Key(height))
	for i, tx := range txs {
		if err := putOnce(transactions, tx); err != nil {
			return err
		}
		if err := blockTxs.Push(txHashes[i].Bytes()); err != nil {
			return err
		}
	}

	list := storage.NewMutableListIndexInFamily(s.fork, precommitsName, hash.Bytes())
	for _, precommit := range precommits {
		if err := list.Push(precommit.Raw()); err != nil {
			return err
		}
	}
	return nil
}

func putOnce(m *storage.MutableMapIndex, msg types.Message) error {
	key := msg.Hash().Bytes()
	exists, err := m.Contains(key)
	if err != nil || exists {
		return err
	}
	m.Put(key, msg.Raw())
	return nil
}
