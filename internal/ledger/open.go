package ledger

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/immortaldarkveil/Symulator/internal/config"
	"github.com/immortaldarkveil/Symulator/internal/storage"
	chstore "github.com/immortaldarkveil/Symulator/internal/storage/clickhouse"
	"github.com/immortaldarkveil/Symulator/internal/storage/memory"
	"github.com/immortaldarkveil/Symulator/internal/storage/migrations"
	pgstore "github.com/immortaldarkveil/Symulator/internal/storage/postgres"
	"github.com/immortaldarkveil/Symulator/internal/storage/sqlite"
)

// Stores holds the ledger backends selected by the runtime config.
type Stores struct {
	Rounds    storage.RoundRecordStore
	Snapshots storage.NetworkSnapshotStore
	Backend   string
}

// OpenStores connects the round store chosen by cfg.Store and, when a
// ClickHouse DSN is set, the network snapshot store. In memory mode the
// snapshots are kept in memory too. The returned cleanup closes every
// connection.
func OpenStores(ctx context.Context, cfg *config.Runtime, logger *log.Logger) (*Stores, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	stores := &Stores{Backend: cfg.Store}

	switch cfg.Store {
	case config.StorePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.Rounds = pgstore.NewRoundRecordStore(pool)
		logger.Println("Round ledger: postgres")

	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { db.Close() })
		stores.Rounds = sqlite.NewRoundRecordStore(db)
		logger.Printf("Round ledger: sqlite (%s)", cfg.SQLitePath)

	default:
		stores.Rounds = memory.NewRoundRecordStore()
		stores.Snapshots = memory.NewNetworkSnapshotStore()
		logger.Println("Round ledger: memory")
	}

	if cfg.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		stores.Snapshots = chstore.NewNetworkSnapshotStore(conn)
		logger.Println("Network snapshots: clickhouse")
	}

	return stores, cleanup, nil
}
