// Package digest batches undelivered signals into per-user email digests.
package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signalhound/internal/core"
	"signalhound/internal/email"
	"signalhound/internal/logger"
	"signalhound/internal/persistence"
)

// Report summarizes one digest run.
type Report struct {
	UsersConsidered int
	EmailsSent      int
	Errors          []error
}

// Batcher assembles and delivers digests for every user with email delivery
// enabled. Per-user failures are isolated; a failed send leaves that user's
// signals unmarked so the next run picks them up again.
type Batcher struct {
	db       persistence.Database
	renderer *email.Renderer
	sender   email.Sender
	now      func() time.Time
}

// NewBatcher wires the digest batcher.
func NewBatcher(db persistence.Database, renderer *email.Renderer, sender email.Sender) *Batcher {
	return &Batcher{
		db:       db,
		renderer: renderer,
		sender:   sender,
		now:      time.Now,
	}
}

// Run executes one digest pass. Failing to list preferences at all is the
// only hard failure; everything after that is per-user.
func (b *Batcher) Run(ctx context.Context) (Report, error) {
	log := logger.Get()
	log.Info("Starting email digest run")

	prefs, err := b.db.Preferences().ListEmailEnabled(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list email-enabled preferences: %w", err)
	}

	report := Report{UsersConsidered: len(prefs)}
	for _, pref := range prefs {
		err := b.processUser(ctx, pref)
		switch {
		case errors.Is(err, errNothingToSend):
			// Expected skip, not a failure.
		case err != nil:
			log.Error("Digest failed for user", "error", err, "user_id", pref.UserID)
			report.Errors = append(report.Errors, fmt.Errorf("user %s: %w", pref.UserID, err))
		default:
			report.EmailsSent++
		}
	}

	log.Info("Email digest run completed", "emails_sent", report.EmailsSent, "errors", len(report.Errors))
	return report, nil
}

// errNothingToSend marks the no-signals case so processUser can skip without
// counting an email.
var errNothingToSend = errors.New("nothing to send")

func (b *Batcher) processUser(ctx context.Context, pref core.UserPreferences) error {
	log := logger.Get()
	now := b.now().UTC()

	hours := pref.EmailDigestFrequencyHours
	if hours <= 0 {
		hours = 24
	}
	since := now.Add(-time.Duration(hours) * time.Hour)

	signals, err := b.db.Signals().ListUndelivered(ctx, pref.UserID, since)
	if err != nil {
		return fmt.Errorf("failed to list undelivered signals: %w", err)
	}
	if len(signals) == 0 {
		log.Debug("No new signals for user", "user_id", pref.UserID)
		return errNothingToSend
	}

	competitorIDs := make([]string, 0, len(signals))
	seen := make(map[string]bool)
	for _, signal := range signals {
		if !seen[signal.CompetitorID] {
			seen[signal.CompetitorID] = true
			competitorIDs = append(competitorIDs, signal.CompetitorID)
		}
	}
	competitors, err := b.db.Competitors().GetByIDs(ctx, competitorIDs)
	if err != nil {
		return fmt.Errorf("failed to resolve competitors: %w", err)
	}

	profile, err := b.db.Profiles().Get(ctx, pref.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}

	data := email.DigestData{
		Date:   now,
		Groups: GroupSignals(signals, competitors),
	}

	html, err := b.renderer.Render(data)
	if err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	if err := b.sender.Send(ctx, profile.Email, email.Subject(data.TotalSignals()), html); err != nil {
		// Nothing is marked; these signals stay eligible for the next run.
		return fmt.Errorf("failed to deliver digest: %w", err)
	}

	ids := make([]string, len(signals))
	for i, signal := range signals {
		ids[i] = signal.ID
	}
	if err := b.db.Signals().MarkNotified(ctx, ids, now); err != nil {
		return fmt.Errorf("digest sent but failed to mark signals notified: %w", err)
	}

	log.Info("Sent digest", "user_id", pref.UserID, "recipient", profile.Email, "signals", len(signals))
	return nil
}

// GroupSignals groups signals by competitor, preserving the insertion order
// of each competitor's first appearance. It is a pure reduction; the input
// slice's order (newest first from the store) is kept within each group.
func GroupSignals(signals []core.Signal, competitors map[string]core.Competitor) []email.Group {
	index := make(map[string]int)
	var groups []email.Group

	for _, signal := range signals {
		i, ok := index[signal.CompetitorID]
		if !ok {
			name := "Unknown competitor"
			if competitor, found := competitors[signal.CompetitorID]; found {
				name = competitor.Name
			}
			i = len(groups)
			index[signal.CompetitorID] = i
			groups = append(groups, email.Group{CompetitorName: name})
		}
		groups[i].Signals = append(groups[i].Signals, signal)
	}

	return groups
}
