package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // Postgres driver
)

// psql builds every query with Postgres-style $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresDB implements the Database interface for PostgreSQL.
type PostgresDB struct {
	db          *sql.DB
	competitors CompetitorRepository
	signals     SignalRepository
	preferences PreferencesRepository
	profiles    ProfileRepository
}

// NewPostgresDB opens a PostgreSQL connection and verifies it.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pgDB := &PostgresDB{db: db}
	pgDB.competitors = &postgresCompetitorRepo{db: db}
	pgDB.signals = &postgresSignalRepo{db: db}
	pgDB.preferences = &postgresPreferencesRepo{db: db}
	pgDB.profiles = &postgresProfileRepo{db: db}

	return pgDB, nil
}

// Competitors returns the competitor repository.
func (p *PostgresDB) Competitors() CompetitorRepository { return p.competitors }

// Signals returns the signal repository.
func (p *PostgresDB) Signals() SignalRepository { return p.signals }

// Preferences returns the preferences repository.
func (p *PostgresDB) Preferences() PreferencesRepository { return p.preferences }

// Profiles returns the profile repository.
func (p *PostgresDB) Profiles() ProfileRepository { return p.profiles }

// Ping verifies the connection is still alive.
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (p *PostgresDB) Close() error {
	return p.db.Close()
}
