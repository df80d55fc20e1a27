package consensus

import (
	"github.com/bftledger/ledger/types"
)

//go:generate ../../scripts/mockery_generate.sh Sender

// Sender delivers raw messages to other nodes. Sends are fire-and-forget:
// implementations queue the message and return without waiting for the
// network.
type Sender interface {
	// SendToValidator sends raw to the validator with the given id.
	SendToValidator(id types.ValidatorID, raw []byte)
	// SendToAddress sends raw to a network address, for peers that may not
	// be validators.
	SendToAddress(addr string, raw []byte)
}
