package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/crypto/merkle"
)

func TestBlockMarshalAndHash(t *testing.T) {
	txs := []crypto.Hash{crypto.Checksum([]byte("a")), crypto.Checksum([]byte("b")), crypto.Checksum([]byte("c"))}
	block := NewBlock(4, 1, crypto.Checksum([]byte("prev")), txs)
	require.NoError(t, block.ValidateBasic(txs))
	assert.Equal(t, merkle.HashFromHashes(txs), block.TxHash)

	decoded, err := UnmarshalBlock(block.Marshal())
	require.NoError(t, err)
	assert.Equal(t, block, decoded)
	assert.Equal(t, block.Hash(), decoded.Hash())

	other := *block
	other.Height++
	assert.NotEqual(t, block.Hash(), other.Hash())
}

func TestBlockValidateBasic(t *testing.T) {
	txs := []crypto.Hash{crypto.Checksum([]byte("a"))}
	block := NewBlock(1, 0, crypto.ZeroHash, txs)

	assert.Error(t, block.ValidateBasic(nil))
	assert.Error(t, block.ValidateBasic([]crypto.Hash{crypto.Checksum([]byte("b"))}))

	var nilBlock *Block
	assert.Error(t, nilBlock.ValidateBasic(nil))

	_, err := UnmarshalBlock([]byte{0xff})
	assert.Error(t, err)
}
