// Package pg implements internal/store's interfaces over Postgres using
// database/sql and the pgx/v5 stdlib driver — the same pairing used
// throughout vanducng-goclaw/internal/store/pg.
package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/caravanleads/caravan/internal/store"
)

// OpenDB opens a pgx-backed *sql.DB and applies the configured pool
// bounds, following the sql.Open("pgx", dsn) pattern in
// vanducng-goclaw/cmd/migrate.go.
func OpenDB(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPGStores builds every storage backend over one shared *sql.DB,
// mirroring vanducng-goclaw/internal/store/pg/factory.go's NewPGStores.
func NewPGStores(cfg store.StoreConfig) (*store.Stores, error) {
	db, err := OpenDB(cfg.PostgresDSN, cfg.MaxOpenConn, cfg.MaxIdleConn)
	if err != nil {
		return nil, err
	}

	return &store.Stores{
		Sessions:     NewSessionStore(db),
		Leads:        NewLeadStore(db),
		InboundDedup: NewInboundDedupStore(db),
		Jobs:         NewJobStore(db),
		Media:        NewMediaStore(db),
		Tenants:      NewTenantStore(db),
	}, nil
}
