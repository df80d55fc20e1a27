package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bftledger/ledger/config"
	"github.com/bftledger/ledger/crypto"
	"github.com/bftledger/ledger/internal/store"
	"github.com/bftledger/ledger/types"
)

// BlockchainDBID names the database holding the committed chain.
const BlockchainDBID = "blockchain"

// InspectCmd reads the committed chain from a read-only snapshot of the
// local store. The node must not hold the database open.
func InspectCmd(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print committed chain data as JSON",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "height",
			Short: "Print the number of committed blocks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSchema(conf, func(schema *store.Schema) error {
					height, err := schema.Height()
					if err != nil {
						return err
					}
					return printJSON(cmd, struct {
						Height uint64 `json:"height"`
					}{height})
				})
			},
		},
		&cobra.Command{
			Use:   "block [height]",
			Short: "Print the block committed at height with its transaction hashes",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				height, err := parseHeight(args[0])
				if err != nil {
					return err
				}
				return withSchema(conf, func(schema *store.Schema) error {
					hash, err := committedHash(schema, height)
					if err != nil {
						return err
					}
					block, err := schema.Block(hash)
					if err != nil {
						return err
					}
					txs, err := schema.BlockTransactions(height)
					if err != nil {
						return err
					}
					return printJSON(cmd, blockInfo{Hash: hash, Block: block, Transactions: txs})
				})
			},
		},
		&cobra.Command{
			Use:   "precommits [height]",
			Short: "Print the precommits that finalized the block at height",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				height, err := parseHeight(args[0])
				if err != nil {
					return err
				}
				return withSchema(conf, func(schema *store.Schema) error {
					hash, err := committedHash(schema, height)
					if err != nil {
						return err
					}
					precommits, err := schema.BlockPrecommits(hash)
					if err != nil {
						return err
					}
					infos := make([]precommitInfo, 0, len(precommits))
					for _, pc := range precommits {
						infos = append(infos, newPrecommitInfo(pc))
					}
					return printJSON(cmd, infos)
				})
			},
		},
	)
	return cmd
}

type blockInfo struct {
	Hash         crypto.Hash   `json:"hash"`
	Block        *types.Block  `json:"block"`
	Transactions []crypto.Hash `json:"transactions"`
}

type precommitInfo struct {
	Hash        crypto.Hash       `json:"hash"`
	Validator   types.ValidatorID `json:"validator"`
	Height      uint64            `json:"height"`
	Round       uint32            `json:"round"`
	ProposeHash crypto.Hash       `json:"propose_hash"`
	BlockHash   crypto.Hash       `json:"block_hash"`
	Time        time.Time         `json:"time"`
}

func newPrecommitInfo(pc *types.Precommit) precommitInfo {
	return precommitInfo{
		Hash:        pc.Hash(),
		Validator:   pc.Validator(),
		Height:      pc.Height(),
		Round:       pc.Round(),
		ProposeHash: pc.ProposeHash(),
		BlockHash:   pc.BlockHash(),
		Time:        pc.Time(),
	}
}

func withSchema(conf *config.Config, fn func(*store.Schema) error) (err error) {
	db, err := config.DefaultDBProvider(&config.DBContext{ID: BlockchainDBID, Config: conf})
	if err != nil {
		return err
	}
	bc := store.NewBlockchain(db)
	defer func() {
		if cerr := bc.Close(); err == nil {
			err = cerr
		}
	}()

	snapshot, err := bc.Snapshot()
	if err != nil {
		return err
	}
	defer snapshot.Release()

	return fn(store.NewSchema(snapshot))
}

func committedHash(schema *store.Schema, height uint64) (crypto.Hash, error) {
	hash, ok, err := schema.BlockHash(height)
	if err != nil {
		return crypto.ZeroHash, err
	}
	if !ok {
		current, err := schema.Height()
		if err != nil {
			return crypto.ZeroHash, err
		}
		return crypto.ZeroHash, fmt.Errorf("no block at height %d, chain height is %d", height, current)
	}
	return hash, nil
}

func parseHeight(arg string) (uint64, error) {
	height, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid height %q: %w", arg, err)
	}
	return height, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
