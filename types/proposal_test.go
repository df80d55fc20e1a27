package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bftledger/ledger/crypto"
)

func TestProposeRoundTrip(t *testing.T) {
	key := testKey(4)
	prev := crypto.Checksum([]byte("prev"))
	txs := []crypto.Hash{crypto.Checksum([]byte("a")), crypto.Checksum([]byte("b"))}

	testCases := map[string][]crypto.Hash{
		"no transactions":  nil,
		"two transactions": txs,
	}
	for name, txs := range testCases {
		txs := txs
		t.Run(name, func(t *testing.T) {
			propose := NewPropose(2, 10, 1, prev, txs, key)
			decoded, err := DecodePropose(propose.Raw())
			require.NoError(t, err)

			assert.Equal(t, ValidatorID(2), decoded.Validator())
			assert.EqualValues(t, 10, decoded.Height())
			assert.EqualValues(t, 1, decoded.Round())
			assert.Equal(t, prev, decoded.PrevHash())
			assert.Equal(t, len(txs), len(decoded.Transactions()))
			for i := range txs {
				assert.Equal(t, txs[i], decoded.Transactions()[i])
			}
			assert.True(t, decoded.Verify(key.PubKey()))
		})
	}
}

func TestDecodeAsWrongType(t *testing.T) {
	key := testKey(4)
	vote := NewPrevote(1, 1, 1, crypto.ZeroHash, 0, key)

	_, err := DecodePropose(vote.Raw())
	require.ErrorIs(t, err, ErrInvalidMessageType)
}
