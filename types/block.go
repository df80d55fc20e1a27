package types

import (
	"errors"
	"fmt"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/crypto/merkle"
)

// Block is the header of a committed height. The transactions themselves are
// stored separately and committed to by TxHash.
type Block struct {
	Height     uint64      `json:"height"`
	ProposerID ValidatorID `json:"proposer_id"`
	PrevHash   crypto.Hash `json:"prev_hash"`
	// TxHash is the Merkle root of the block's transaction hashes.
	TxHash  crypto.Hash `json:"tx_hash"`
	TxCount uint32      `json:"tx_count"`
}

// NewBlock makes a block for the given transactions, committing to them with
// their Merkle root.
func NewBlock(height uint64, proposer ValidatorID, prevHash crypto.Hash, txs []crypto.Hash) *Block {
	return &Block{
		Height:     height,
		ProposerID: proposer,
		PrevHash:   prevHash,
		TxHash:     merkle.HashFromHashes(txs),
		TxCount:    uint32(len(txs)),
	}
}

// ValidateBasic performs stateless checks against the given transaction
// hashes.
func (b *Block) ValidateBasic(txs []crypto.Hash) error {
	if b == nil {
		return errors.New("nil block")
	}
	if int(b.TxCount) != len(txs) {
		return fmt.Errorf("wrong TxCount: expected %d, got %d", len(txs), b.TxCount)
	}
	if root := merkle.HashFromHashes(txs); root != b.TxHash {
		return fmt.Errorf("wrong TxHash: expected %v, got %v", root, b.TxHash)
	}
	return nil
}

// Marshal returns the canonical encoding of the block.
func (b *Block) Marshal() []byte {
	e := &encoder{}
	e.uint(b.Height)
	e.uint(uint64(b.ProposerID))
	e.hash(b.PrevHash)
	e.hash(b.TxHash)
	e.uint(uint64(b.TxCount))
	return e.buf
}

// UnmarshalBlock decodes a block produced by Marshal.
func UnmarshalBlock(bz []byte) (*Block, error) {
	d := newDecoder(bz)
	b := &Block{
		Height:     d.uint(),
		ProposerID: ValidatorID(d.uint32()),
		PrevHash:   d.hash(),
		TxHash:     d.hash(),
		TxCount:    d.uint32(),
	}
	if err := d.finish(); err != nil {
		return nil, fmt.Errorf("decoding block: %w", err)
	}
	return b, nil
}

// Hash is the sha256 of the canonical encoding.
func (b *Block) Hash() crypto.Hash {
	return crypto.Checksum(b.Marshal())
}

func (b *Block) String() string {
	if b == nil {
		return "nil-Block"
	}
	return fmt.Sprintf("Block{#%d by %d, %d txs, prev %s}", b.Height, b.ProposerID, b.TxCount, b.PrevHash.ShortString())
}
