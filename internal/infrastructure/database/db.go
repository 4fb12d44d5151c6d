package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
	"github.com/conmuninw/gameruleTh-Bot/pkg/db"
)

//go:embed schema/*.sql
var schemaFS embed.FS

type DBManager struct {
	Db     *sql.DB
	logger zerolog.Logger
}

func New(cfg *config.DatabaseConfig, logger zerolog.Logger) (*DBManager, error) {
	Db, err := sql.Open("postgres", db.GetDBDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	Db.SetMaxOpenConns(cfg.MaxOpenConns)
	Db.SetMaxIdleConns(cfg.MaxIdleConns)
	Db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := Db.Ping(); err != nil {
		Db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DBManager{
		Db:     Db,
		logger: logger,
	}, nil
}

// Migrate applies every embedded schema file in name order. The files are
// idempotent, so running them on each start is safe.
func (dm *DBManager) Migrate(ctx context.Context) error {
	names, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list schema files: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		stmt, err := schemaFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := dm.Db.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
		dm.logger.Info().Str("file", name).Msg("Applied schema migration")
	}
	return nil
}

func (dm *DBManager) Ping(ctx context.Context) error {
	return dm.Db.PingContext(ctx)
}

func (dm *DBManager) ShutDown() {
	if dm.Db != nil {
		dm.Db.Close()
	}
}
