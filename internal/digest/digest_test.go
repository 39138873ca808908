package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"signalhound/internal/core"
	"signalhound/internal/email"
	"signalhound/internal/persistence"
)

type fakeCompetitorRepo struct {
	byID map[string]core.Competitor
}

func (f *fakeCompetitorRepo) ListAll(ctx context.Context) ([]core.Competitor, error) {
	var all []core.Competitor
	for _, c := range f.byID {
		all = append(all, c)
	}
	return all, nil
}

func (f *fakeCompetitorRepo) ListByUser(ctx context.Context, userID string) ([]core.Competitor, error) {
	return nil, nil
}

func (f *fakeCompetitorRepo) GetByIDs(ctx context.Context, ids []string) (map[string]core.Competitor, error) {
	result := make(map[string]core.Competitor)
	for _, id := range ids {
		if c, ok := f.byID[id]; ok {
			result[id] = c
		}
	}
	return result, nil
}

type fakeSignalRepo struct {
	undelivered map[string][]core.Signal // keyed by user ID
	marked      []string
	markedAt    time.Time
	listErr     error
}

func (f *fakeSignalRepo) Insert(ctx context.Context, signal *core.Signal) (bool, error) {
	return true, nil
}

func (f *fakeSignalRepo) ExistsByHash(ctx context.Context, contentHash string) (bool, error) {
	return false, nil
}

func (f *fakeSignalRepo) ListUndelivered(ctx context.Context, userID string, since time.Time) ([]core.Signal, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.undelivered[userID], nil
}

func (f *fakeSignalRepo) MarkNotified(ctx context.Context, ids []string, at time.Time) error {
	f.marked = append(f.marked, ids...)
	f.markedAt = at
	return nil
}

type fakePreferencesRepo struct {
	emailEnabled []core.UserPreferences
	listErr      error
}

func (f *fakePreferencesRepo) Get(ctx context.Context, userID string) (*core.UserPreferences, error) {
	return nil, nil
}

func (f *fakePreferencesRepo) ListEmailEnabled(ctx context.Context) ([]core.UserPreferences, error) {
	return f.emailEnabled, f.listErr
}

type fakeProfileRepo struct {
	byID map[string]core.UserProfile
}

func (f *fakeProfileRepo) Get(ctx context.Context, userID string) (*core.UserProfile, error) {
	profile, ok := f.byID[userID]
	if !ok {
		return nil, errors.New("no profile")
	}
	return &profile, nil
}

type fakeDB struct {
	competitors *fakeCompetitorRepo
	signals     *fakeSignalRepo
	preferences *fakePreferencesRepo
	profiles    *fakeProfileRepo
}

func (f *fakeDB) Competitors() persistence.CompetitorRepository { return f.competitors }
func (f *fakeDB) Signals() persistence.SignalRepository         { return f.signals }
func (f *fakeDB) Preferences() persistence.PreferencesRepository {
	return f.preferences
}
func (f *fakeDB) Profiles() persistence.ProfileRepository { return f.profiles }
func (f *fakeDB) Migrate(ctx context.Context) error       { return nil }
func (f *fakeDB) Ping(ctx context.Context) error          { return nil }
func (f *fakeDB) Close() error                            { return nil }

type fakeSender struct {
	sent []sentEmail
	err  error
}

type sentEmail struct {
	to      string
	subject string
	html    string
}

func (f *fakeSender) Send(ctx context.Context, to, subject, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, html: html})
	return nil
}

func signalFor(id, competitorID, userID string) core.Signal {
	return core.Signal{
		ID:           id,
		CompetitorID: competitorID,
		UserID:       userID,
		Title:        "signal " + id,
		Summary:      "summary " + id,
		SignalType:   core.SignalOther,
		SourceURL:    "https://example.com/" + id,
		CreatedAt:    time.Now().UTC(),
	}
}

func newTestDB() *fakeDB {
	return &fakeDB{
		competitors: &fakeCompetitorRepo{byID: map[string]core.Competitor{
			"comp-x": {ID: "comp-x", UserID: "user-1", Name: "Xerxes Corp"},
			"comp-y": {ID: "comp-y", UserID: "user-1", Name: "Yoyodyne"},
		}},
		signals: &fakeSignalRepo{undelivered: map[string][]core.Signal{
			"user-1": {
				signalFor("1", "comp-x", "user-1"),
				signalFor("2", "comp-y", "user-1"),
				signalFor("3", "comp-x", "user-1"),
			},
		}},
		preferences: &fakePreferencesRepo{emailEnabled: []core.UserPreferences{
			{UserID: "user-1", DeliveryEmail: true, EmailDigestFrequencyHours: 24},
		}},
		profiles: &fakeProfileRepo{byID: map[string]core.UserProfile{
			"user-1": {ID: "user-1", Email: "user1@example.com"},
		}},
	}
}

func newTestBatcher(t *testing.T, db *fakeDB, sender email.Sender) *Batcher {
	t.Helper()
	renderer, err := email.NewRenderer(nil)
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	b := NewBatcher(db, renderer, sender)
	b.now = func() time.Time { return time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC) }
	return b
}

func TestGroupSignalsInsertionOrder(t *testing.T) {
	competitors := map[string]core.Competitor{
		"comp-x": {ID: "comp-x", Name: "Xerxes Corp"},
		"comp-y": {ID: "comp-y", Name: "Yoyodyne"},
	}
	signals := []core.Signal{
		signalFor("1", "comp-x", "user-1"),
		signalFor("2", "comp-y", "user-1"),
		signalFor("3", "comp-x", "user-1"),
	}

	groups := GroupSignals(signals, competitors)

	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if groups[0].CompetitorName != "Xerxes Corp" || groups[1].CompetitorName != "Yoyodyne" {
		t.Errorf("Groups out of insertion order: %s, %s", groups[0].CompetitorName, groups[1].CompetitorName)
	}
	if len(groups[0].Signals) != 2 || groups[0].Signals[0].ID != "1" || groups[0].Signals[1].ID != "3" {
		t.Errorf("Expected X group to hold signals 1 and 3, got %+v", groups[0].Signals)
	}
	if len(groups[1].Signals) != 1 || groups[1].Signals[0].ID != "2" {
		t.Errorf("Expected Y group to hold signal 2, got %+v", groups[1].Signals)
	}
}

func TestGroupSignalsUnknownCompetitor(t *testing.T) {
	groups := GroupSignals([]core.Signal{signalFor("1", "ghost", "user-1")}, nil)
	if len(groups) != 1 || groups[0].CompetitorName != "Unknown competitor" {
		t.Errorf("Expected a fallback group name, got %+v", groups)
	}
}

func TestRunSendsAndMarks(t *testing.T) {
	db := newTestDB()
	sender := &fakeSender{}
	batcher := newTestBatcher(t, db, sender)

	report, err := batcher.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.EmailsSent != 1 {
		t.Errorf("Expected 1 email sent, got %d", report.EmailsSent)
	}
	if len(sender.sent) != 1 || sender.sent[0].to != "user1@example.com" {
		t.Fatalf("Unexpected deliveries: %+v", sender.sent)
	}
	if sender.sent[0].subject != "Competitor Intelligence Digest - 3 New Signals" {
		t.Errorf("Unexpected subject: %q", sender.sent[0].subject)
	}

	if len(db.signals.marked) != 3 {
		t.Errorf("Expected all 3 signals marked notified, got %v", db.signals.marked)
	}
}

func TestRunLeavesSignalsOnDeliveryFailure(t *testing.T) {
	db := newTestDB()
	sender := &fakeSender{err: errors.New("smtp down")}
	batcher := newTestBatcher(t, db, sender)

	report, err := batcher.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.EmailsSent != 0 {
		t.Errorf("Expected 0 emails sent, got %d", report.EmailsSent)
	}
	if len(report.Errors) != 1 {
		t.Errorf("Expected the failure in the report, got %v", report.Errors)
	}
	if len(db.signals.marked) != 0 {
		t.Errorf("No signals may be marked after a failed delivery, got %v", db.signals.marked)
	}
}

func TestRunSkipsUsersWithoutSignals(t *testing.T) {
	db := newTestDB()
	db.signals.undelivered = map[string][]core.Signal{}
	sender := &fakeSender{}
	batcher := newTestBatcher(t, db, sender)

	report, err := batcher.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.EmailsSent != 0 || len(report.Errors) != 0 {
		t.Errorf("Expected a clean no-op run, got %+v", report)
	}
	if len(sender.sent) != 0 {
		t.Errorf("Expected no deliveries, got %d", len(sender.sent))
	}
}

func TestRunIsolatesUserFailures(t *testing.T) {
	db := newTestDB()
	db.preferences.emailEnabled = append(db.preferences.emailEnabled, core.UserPreferences{
		UserID: "user-2", DeliveryEmail: true, EmailDigestFrequencyHours: 24,
	})
	db.signals.undelivered["user-2"] = []core.Signal{signalFor("9", "comp-x", "user-2")}
	// user-2 has no profile, so their digest fails; user-1 still gets theirs.

	sender := &fakeSender{}
	batcher := newTestBatcher(t, db, sender)

	report, err := batcher.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.EmailsSent != 1 {
		t.Errorf("Expected 1 successful digest, got %d", report.EmailsSent)
	}
	if len(report.Errors) != 1 {
		t.Errorf("Expected 1 per-user failure, got %v", report.Errors)
	}
}

func TestRunHardFailsWhenPreferencesUnavailable(t *testing.T) {
	db := newTestDB()
	db.preferences.listErr = errors.New("store down")
	batcher := newTestBatcher(t, db, &fakeSender{})

	if _, err := batcher.Run(context.Background()); err == nil {
		t.Error("Expected a hard failure when preferences cannot be listed")
	}
}
