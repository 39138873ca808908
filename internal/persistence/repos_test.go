package persistence

import (
	"strings"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// The repositories build all SQL through squirrel; these tests pin the query
// shapes that carry pipeline invariants without needing a live database.

func TestInsertUsesConflictSkip(t *testing.T) {
	query, _, err := psql.Insert("signals").
		Columns(signalColumns...).
		Values("id", "cid", "uid", "t", "s", "funding", nil, "url", nil, false, nil, time.Now(), nil, "hash").
		Suffix("ON CONFLICT (content_hash) DO NOTHING").
		ToSql()
	if err != nil {
		t.Fatalf("Failed to build insert: %v", err)
	}

	if !strings.Contains(query, "ON CONFLICT (content_hash) DO NOTHING") {
		t.Errorf("Insert must rely on the content_hash unique constraint, got: %s", query)
	}
	if !strings.Contains(query, "$14") {
		t.Errorf("Expected 14 dollar placeholders, got: %s", query)
	}
}

func TestUndeliveredQueryShape(t *testing.T) {
	since := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	query, args, err := psql.Select(signalColumns...).
		From("signals").
		Where(sq.Eq{"user_id": "user-1"}).
		Where(sq.Eq{"notified_at": nil}).
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		t.Fatalf("Failed to build query: %v", err)
	}

	if !strings.Contains(query, "notified_at IS NULL") {
		t.Errorf("Undelivered query must filter NULL notified_at, got: %s", query)
	}
	if !strings.Contains(query, "created_at >= $") {
		t.Errorf("Undelivered query must bound the window, got: %s", query)
	}
	if !strings.Contains(query, "ORDER BY created_at DESC") {
		t.Errorf("Undelivered query must order newest first, got: %s", query)
	}
	if len(args) != 2 {
		t.Errorf("Expected 2 bound args (user, since), got %d", len(args))
	}
}

func TestMarkNotifiedUsesInClause(t *testing.T) {
	at := time.Now().UTC()
	query, args, err := psql.Update("signals").
		Set("notified_at", at).
		Where(sq.Eq{"id": []string{"a", "b", "c"}}).
		ToSql()
	if err != nil {
		t.Fatalf("Failed to build update: %v", err)
	}

	if !strings.Contains(query, "id IN ($2,$3,$4)") {
		t.Errorf("Bulk update must use a single IN clause, got: %s", query)
	}
	if len(args) != 4 {
		t.Errorf("Expected timestamp plus 3 ids, got %d args", len(args))
	}
}

func TestSchemaEnforcesHashUniqueness(t *testing.T) {
	var signalsDDL string
	for _, statement := range schema {
		if strings.Contains(statement, "CREATE TABLE IF NOT EXISTS signals") {
			signalsDDL = statement
		}
	}
	if signalsDDL == "" {
		t.Fatal("Schema missing signals table")
	}
	if !strings.Contains(signalsDDL, "content_hash     TEXT NOT NULL UNIQUE") {
		t.Error("signals.content_hash must carry a UNIQUE constraint")
	}
}
