package config

import (
	"github.com/bftledger/ledger/internal/storage"
)

// DBContext specifies config information for loading a new DB.
type DBContext struct {
	ID     string
	Config *Config
}

// DBProvider takes a DBContext and returns an instantiated DB.
type DBProvider func(*DBContext) (storage.Database, error)

// DefaultDBProvider returns a database using the DBBackend and DBDir
// specified in the Config.
func DefaultDBProvider(ctx *DBContext) (storage.Database, error) {
	dbType := storage.BackendType(ctx.Config.DBBackend)

	return storage.NewDB(dbType, ctx.ID, ctx.Config.DBDir())
}
