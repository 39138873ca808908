// Package persistence provides the relational store behind the pipeline.
package persistence

import (
	"context"
	"time"

	"signalhound/internal/core"
)

// CompetitorRepository reads tracked competitors. The pipeline never writes them.
type CompetitorRepository interface {
	ListAll(ctx context.Context) ([]core.Competitor, error)
	ListByUser(ctx context.Context, userID string) ([]core.Competitor, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]core.Competitor, error)
}

// SignalRepository persists and reads signals.
type SignalRepository interface {
	// Insert stores the signal unless another signal with the same content
	// hash already exists. It reports whether a row was actually created,
	// so a lost insert race surfaces as created=false, not as an error.
	Insert(ctx context.Context, signal *core.Signal) (created bool, err error)

	// ExistsByHash reports whether any signal carries the given content hash.
	ExistsByHash(ctx context.Context, contentHash string) (bool, error)

	// ListUndelivered returns the user's signals with no delivery timestamp
	// created at or after since, newest first.
	ListUndelivered(ctx context.Context, userID string, since time.Time) ([]core.Signal, error)

	// MarkNotified sets the delivery timestamp on every listed signal in one update.
	MarkNotified(ctx context.Context, ids []string, at time.Time) error
}

// PreferencesRepository reads user preference records.
type PreferencesRepository interface {
	// Get returns (nil, nil) when the user has no preference record; the
	// preference filter depends on telling absence apart from failure.
	Get(ctx context.Context, userID string) (*core.UserPreferences, error)

	// ListEmailEnabled returns every preference record with email delivery on.
	ListEmailEnabled(ctx context.Context) ([]core.UserPreferences, error)
}

// ProfileRepository reads user account profiles.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*core.UserProfile, error)
}

// Database bundles the repositories over one connection.
type Database interface {
	Competitors() CompetitorRepository
	Signals() SignalRepository
	Preferences() PreferencesRepository
	Profiles() ProfileRepository

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
