package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/unihelp/unihelp/pkg/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const createEventsTableSQL = `
CREATE TABLE IF NOT EXISTS analytics_events (
    id VARCHAR(64) NOT NULL,
    event VARCHAR(128) NOT NULL,
    session_id VARCHAR(64),
    data TEXT,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id)
);

CREATE INDEX IF NOT EXISTS idx_events_event ON analytics_events(event);
CREATE INDEX IF NOT EXISTS idx_events_session_id ON analytics_events(session_id);
`

// SQLSink persists events to a relational database. It exists for
// deployments that want analytics queryable alongside other bookkeeping;
// the default file sink needs no database at all.
type SQLSink struct {
	db      *sql.DB
	dialect string
}

// NewSQLSink wraps an open database connection.
func NewSQLSink(db *sql.DB, dialect string) (*SQLSink, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	switch dialect {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported dialect: %s (supported: postgres, mysql, sqlite)", dialect)
	}

	s := &SQLSink{
		db:      db,
		dialect: dialect,
	}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// NewSQLSinkFromConfig opens the configured database and wraps it.
func NewSQLSinkFromConfig(cfg *config.DatabaseConfig) (*SQLSink, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	driverName := cfg.Driver
	if driverName == "sqlite" {
		driverName = "sqlite3"
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	return NewSQLSink(db, cfg.Driver)
}

func (s *SQLSink) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, createEventsTableSQL); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}
	return nil
}

// Append inserts one event.
func (s *SQLSink) Append(ctx context.Context, e Event) error {
	dataJSON, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	query := `
INSERT INTO analytics_events (id, event, session_id, data, created_at)
VALUES (?, ?, ?, ?, ?)
`
	if s.dialect == "postgres" {
		query = `
INSERT INTO analytics_events (id, event, session_id, data, created_at)
VALUES ($1, $2, $3, $4, $5)
`
	}

	_, err = s.db.ExecContext(ctx, query,
		e.ID, e.Event, e.SessionID, string(dataJSON), e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Summary returns per-event-name counts.
func (s *SQLSink) Summary(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT event, COUNT(*) FROM analytics_events GROUP BY event`)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer rows.Close()

	summary := make(map[string]int, 8)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary: %w", err)
	}
	return summary, nil
}

// Close closes the database connection.
func (s *SQLSink) Close() error {
	return s.db.Close()
}
