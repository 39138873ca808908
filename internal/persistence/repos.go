package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"signalhound/internal/core"
)

var competitorColumns = []string{"id", "user_id", "name", "website", "rss_feeds", "created_at", "updated_at"}

var signalColumns = []string{
	"id", "competitor_id", "user_id", "title", "summary", "signal_type", "sentiment",
	"source_url", "source_name", "is_high_priority", "published_at", "created_at",
	"notified_at", "content_hash",
}

var preferencesColumns = []string{
	"id", "user_id", "signal_types", "delivery_email", "delivery_dashboard",
	"check_frequency_hours", "email_digest_frequency_hours", "created_at", "updated_at",
}

// postgresCompetitorRepo implements CompetitorRepository for PostgreSQL.
type postgresCompetitorRepo struct {
	db *sql.DB
}

func (r *postgresCompetitorRepo) ListAll(ctx context.Context) ([]core.Competitor, error) {
	query, args, err := psql.Select(competitorColumns...).
		From("competitors").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build competitor query: %w", err)
	}
	return r.queryCompetitors(ctx, query, args)
}

func (r *postgresCompetitorRepo) ListByUser(ctx context.Context, userID string) ([]core.Competitor, error) {
	query, args, err := psql.Select(competitorColumns...).
		From("competitors").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build competitor query: %w", err)
	}
	return r.queryCompetitors(ctx, query, args)
}

func (r *postgresCompetitorRepo) GetByIDs(ctx context.Context, ids []string) (map[string]core.Competitor, error) {
	if len(ids) == 0 {
		return map[string]core.Competitor{}, nil
	}

	query, args, err := psql.Select(competitorColumns...).
		From("competitors").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build competitor query: %w", err)
	}

	competitors, err := r.queryCompetitors(ctx, query, args)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]core.Competitor, len(competitors))
	for _, competitor := range competitors {
		byID[competitor.ID] = competitor
	}
	return byID, nil
}

func (r *postgresCompetitorRepo) queryCompetitors(ctx context.Context, query string, args []interface{}) ([]core.Competitor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var competitors []core.Competitor
	for rows.Next() {
		var (
			competitor core.Competitor
			website    sql.NullString
			feeds      pq.StringArray
		)
		if err := rows.Scan(&competitor.ID, &competitor.UserID, &competitor.Name, &website,
			&feeds, &competitor.CreatedAt, &competitor.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		competitor.Website = website.String
		competitor.RSSFeeds = []string(feeds)
		competitors = append(competitors, competitor)
	}
	return competitors, rows.Err()
}

// postgresSignalRepo implements SignalRepository for PostgreSQL.
type postgresSignalRepo struct {
	db *sql.DB
}

func (r *postgresSignalRepo) Insert(ctx context.Context, signal *core.Signal) (bool, error) {
	var sourceName interface{}
	if signal.SourceName != "" {
		sourceName = signal.SourceName
	}
	var sentiment interface{}
	if signal.Sentiment != "" {
		sentiment = string(signal.Sentiment)
	}

	// The UNIQUE constraint on content_hash plus DO NOTHING makes the dedup
	// check race-safe under concurrent runs; a lost race is a normal outcome.
	query, args, err := psql.Insert("signals").
		Columns(signalColumns...).
		Values(signal.ID, signal.CompetitorID, signal.UserID, signal.Title, signal.Summary,
			string(signal.SignalType), sentiment, signal.SourceURL, sourceName,
			signal.IsHighPriority, signal.PublishedAt, signal.CreatedAt, signal.NotifiedAt,
			signal.ContentHash).
		Suffix("ON CONFLICT (content_hash) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build signal insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert signal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected > 0, nil
}

func (r *postgresSignalRepo) ExistsByHash(ctx context.Context, contentHash string) (bool, error) {
	query, args, err := psql.Select("1").
		From("signals").
		Where(sq.Eq{"content_hash": contentHash}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build hash lookup: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check content hash: %w", err)
	}
	return true, nil
}

func (r *postgresSignalRepo) ListUndelivered(ctx context.Context, userID string, since time.Time) ([]core.Signal, error) {
	query, args, err := psql.Select(signalColumns...).
		From("signals").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"notified_at": nil}).
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build signal query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var signals []core.Signal
	for rows.Next() {
		signal, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		signals = append(signals, signal)
	}
	return signals, rows.Err()
}

func (r *postgresSignalRepo) MarkNotified(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := psql.Update("signals").
		Set("notified_at", at).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build notified update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark signals notified: %w", err)
	}
	return nil
}

func scanSignal(rows *sql.Rows) (core.Signal, error) {
	var (
		signal     core.Signal
		signalType string
		sentiment  sql.NullString
		sourceName sql.NullString
	)
	if err := rows.Scan(&signal.ID, &signal.CompetitorID, &signal.UserID, &signal.Title,
		&signal.Summary, &signalType, &sentiment, &signal.SourceURL, &sourceName,
		&signal.IsHighPriority, &signal.PublishedAt, &signal.CreatedAt, &signal.NotifiedAt,
		&signal.ContentHash); err != nil {
		return core.Signal{}, fmt.Errorf("failed to scan signal: %w", err)
	}
	signal.SignalType = core.SignalType(signalType)
	signal.Sentiment = core.Sentiment(sentiment.String)
	signal.SourceName = sourceName.String
	return signal, nil
}

// postgresPreferencesRepo implements PreferencesRepository for PostgreSQL.
type postgresPreferencesRepo struct {
	db *sql.DB
}

func (r *postgresPreferencesRepo) Get(ctx context.Context, userID string) (*core.UserPreferences, error) {
	query, args, err := psql.Select(preferencesColumns...).
		From("user_preferences").
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build preferences query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	prefs, err := scanPreferences(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (r *postgresPreferencesRepo) ListEmailEnabled(ctx context.Context) ([]core.UserPreferences, error) {
	query, args, err := psql.Select(preferencesColumns...).
		From("user_preferences").
		Where(sq.Eq{"delivery_email": true}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build preferences query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var all []core.UserPreferences
	for rows.Next() {
		prefs, err := scanPreferences(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, *prefs)
	}
	return all, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPreferences(row rowScanner) (*core.UserPreferences, error) {
	var (
		prefs core.UserPreferences
		types pq.StringArray
	)
	if err := row.Scan(&prefs.ID, &prefs.UserID, &types, &prefs.DeliveryEmail,
		&prefs.DeliveryDashboard, &prefs.CheckFrequencyHours, &prefs.EmailDigestFrequencyHours,
		&prefs.CreatedAt, &prefs.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan preferences: %w", err)
	}

	prefs.SignalTypes = make([]core.SignalType, 0, len(types))
	for _, t := range types {
		prefs.SignalTypes = append(prefs.SignalTypes, core.SignalType(t))
	}
	return &prefs, nil
}

// postgresProfileRepo implements ProfileRepository for PostgreSQL.
type postgresProfileRepo struct {
	db *sql.DB
}

func (r *postgresProfileRepo) Get(ctx context.Context, userID string) (*core.UserProfile, error) {
	query, args, err := psql.Select("id", "email", "created_at", "updated_at").
		From("user_profiles").
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile query: %w", err)
	}

	var profile core.UserProfile
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&profile.ID, &profile.Email, &profile.CreatedAt, &profile.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no profile for user %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &profile, nil
}
