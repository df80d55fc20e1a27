package store

import (
	"fmt"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/internal/storage"
	"github.com/bftledger/ledger/types"
)

const (
	heightsName      = "core.heights"
	blocksName       = "core.blocks"
	precommitsName   = "core.precommits"
	proposesName     = "core.proposes"
	transactionsName = "core.transactions"
	blockTxsName     = "core.block_txs"
)

/*
Schema is the read side of the durable chain. It is built over a storage
view, usually a snapshot, and every lookup sees that one consistent state.

There are six tables:
  - heights:      list, height -> block hash
  - blocks:       map, block hash -> canonical block encoding
  - precommits:   list family keyed by block hash, raw precommit messages
  - proposes:     map, propose hash -> raw propose message
  - transactions: map, transaction hash -> raw transaction message
  - block_txs:    list family keyed by height, transaction hashes of the block

All tables are append-only and every key is written once, when its height is
committed. Lookups return nil (or false) for missing data. Errors are only
returned when the view fails or stored bytes do not decode.
*/
type Schema struct {
	view storage.View
}

// NewSchema returns a schema over view.
func NewSchema(view storage.View) *Schema {
	return &Schema{view: view}
}

func (s *Schema) Heights() *storage.ListIndex {
	return storage.NewListIndex(s.view, heightsName)
}

func (s *Schema) Blocks() *storage.MapIndex {
	return storage.NewMapIndex(s.view, blocksName)
}

func (s *Schema) Precommits(blockHash crypto.Hash) *storage.ListIndex {
	return storage.NewListIndexInFamily(s.view, precommitsName, blockHash.Bytes())
}

func (s *Schema) Proposes() *storage.MapIndex {
	return storage.NewMapIndex(s.view, proposesName)
}

func (s *Schema) Transactions() *storage.MapIndex {
	return storage.NewMapIndex(s.view, transactionsName)
}

func (s *Schema) BlockTxs(height uint64) *storage.ListIndex {
	return storage.NewListIndexInFamily(s.view, blockTxsName, storage.Uint64Key(height))
}

// Height returns the number of committed blocks, which is also the height of
// the block being decided now.
func (s *Schema) Height() (uint64, error) {
	return s.Heights().Len()
}

// BlockHash returns the hash of the block committed at height. The bool is
// false if there is no such block.
func (s *Schema) BlockHash(height uint64) (crypto.Hash, bool, error) {
	bz, err := s.Heights().Get(height)
	if err != nil || bz == nil {
		return crypto.ZeroHash, false, err
	}
	hash, err := crypto.HashFromBytes(bz)
	if err != nil {
		return crypto.ZeroHash, false, fmt.Errorf("height %d: %w", height, err)
	}
	return hash, true, nil
}

// Block returns the block with the given hash, or nil.
func (s *Schema) Block(hash crypto.Hash) (*types.Block, error) {
	bz, err := s.Blocks().Get(hash.Bytes())
	if err != nil || bz == nil {
		return nil, err
	}
	block, err := types.UnmarshalBlock(bz)
	if err != nil {
		return nil, fmt.Errorf("block %v: %w", hash, err)
	}
	return block, nil
}

// BlockAt returns the block committed at height, or nil.
func (s *Schema) BlockAt(height uint64) (*types.Block, error) {
	hash, ok, err := s.BlockHash(height)
	if err != nil || !ok {
		return nil, err
	}
	return s.Block(hash)
}

// LastBlock returns the most recently committed block, or nil for an empty
// chain.
func (s *Schema) LastBlock() (*types.Block, error) {
	bz, err := s.Heights().Last()
	if err != nil || bz == nil {
		return nil, err
	}
	hash, err := crypto.HashFromBytes(bz)
	if err != nil {
		return nil, fmt.Errorf("last block hash: %w", err)
	}
	return s.Block(hash)
}

// Propose returns the committed propose with the given hash, or nil.
func (s *Schema) Propose(hash crypto.Hash) (*types.Propose, error) {
	bz, err := s.Proposes().Get(hash.Bytes())
	if err != nil || bz == nil {
		return nil, err
	}
	propose, err := types.DecodePropose(bz)
	if err != nil {
		return nil, fmt.Errorf("propose %v: %w", hash, err)
	}
	return propose, nil
}

// Transaction returns the committed transaction with the given hash, or nil.
func (s *Schema) Transaction(hash crypto.Hash) (*types.Transaction, error) {
	bz, err := s.Transactions().Get(hash.Bytes())
	if err != nil || bz == nil {
		return nil, err
	}
	tx, err := types.DecodeTransaction(bz)
	if err != nil {
		return nil, fmt.Errorf("transaction %v: %w", hash, err)
	}
	return tx, nil
}

// BlockPrecommits returns the precommits that finalized the block with the
// given hash, in the order they were stored.
func (s *Schema) BlockPrecommits(blockHash crypto.Hash) ([]*types.Precommit, error) {
	raws, err := s.Precommits(blockHash).Values()
	if err != nil {
		return nil, err
	}
	precommits := make([]*types.Precommit, 0, len(raws))
	for i, raw := range raws {
		precommit, err := types.DecodePrecommit(raw)
		if err != nil {
			return nil, fmt.Errorf("precommit %d of block %v: %w", i, blockHash, err)
		}
		precommits = append(precommits, precommit)
	}
	return precommits, nil
}

// BlockTransactions returns the transaction hashes of the block committed at
// height.
func (s *Schema) BlockTransactions(height uint64) ([]crypto.Hash, error) {
	raws, err := s.BlockTxs(height).Values()
	if err != nil {
		return nil, err
	}
	hashes := make([]crypto.Hash, 0, len(raws))
	for _, raw := range raws {
		hash, err := crypto.HashFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("transactions of height %d: %w", height, err)
		}
		hashes = append(hashes, hash)
	}
	return hashes, nil
}
