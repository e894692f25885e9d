package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"docassist/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   repositories.DBTX
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Folders         string
	Documents       string
	Notes           string
	Audio           string
	Todos           string
	Notifications   string
	ChatMessages    string
	UserPreferences string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Folders:         fmt.Sprintf("%sfolders", prefix),
		Documents:       fmt.Sprintf("%sdocuments", prefix),
		Notes:           fmt.Sprintf("%snotes", prefix),
		Audio:           fmt.Sprintf("%saudio_recordings", prefix),
		Todos:           fmt.Sprintf("%stodos", prefix),
		Notifications:   fmt.Sprintf("%snotifications", prefix),
		ChatMessages:    fmt.Sprintf("%schat_messages", prefix),
		UserPreferences: fmt.Sprintf("%suser_preferences", prefix),
	}
}

// All returns every table name in drop order (dependents first)
func (t *TableNames) All() []string {
	return []string{
		t.ChatMessages,
		t.Notifications,
		t.Todos,
		t.Audio,
		t.Notes,
		t.Documents,
		t.Folders,
		t.UserPreferences,
	}
}

// CreateConnectionPool creates a new pgx connection pool with automatic PgBouncer compatibility.
//
// Port 6543 is the Supabase transaction pooler, which does not support prepared
// statements. For that port the pool switches to QueryExecModeCacheDescribe, which
// keeps the extended protocol (needed to encode map[string]interface{} as JSONB)
// without creating named statements. An explicit default_query_exec_mode in the
// connection string takes precedence.
//
// Table prefixes (dev_, test_, prod_) are interpolated with fmt.Sprintf before the
// SQL reaches the server, so each environment gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
