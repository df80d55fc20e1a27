package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version = LedgerSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// LedgerSemVer is the current version of the ledger node.
	// It's the Semantic Version of the software.
	LedgerSemVer = "0.1.0"
)

// Protocol is used for implementation agnostic versioning.
type Protocol uint64

// Uint64 returns the Protocol version as a uint64.
func (p Protocol) Uint64() uint64 {
	return uint64(p)
}

// WireProtocol versions the encoding of signed messages and the catch-up
// requests.
const WireProtocol Protocol = 1
