package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/dbconfig"
)

// setupDatabase connects to Postgres when DB_ENABLED is set. Without it the
// process runs purely in memory, seeded from config.
func setupDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	if !getEnvAsBool("DB_ENABLED", false) {
		return nil, nil
	}

	dbConfig := dbconfig.NewConfigFromEnv()

	db, err := pgxpool.New(ctx, dbConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("connected to database")
	return db, nil
}
