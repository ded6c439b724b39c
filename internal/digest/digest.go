// Package digest sends linked users a periodic reminder of goals that are
// due soon. Scheduling uses cron expressions; delivery goes through the
// same best-effort sender as the bot's replies.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alekspetrov/goaltrack/internal/identity"
	"github.com/alekspetrov/goaltrack/internal/logging"
	"github.com/alekspetrov/goaltrack/internal/storage"
)

// dueDateLayout matches the workflow's accepted deadline format.
const dueDateLayout = "2006-01-02"

// Config holds digest scheduler settings.
type Config struct {
	Enabled     bool   `yaml:"enabled"`
	Schedule    string `yaml:"schedule"` // cron expression
	Timezone    string `yaml:"timezone"`
	HorizonDays int    `yaml:"horizon_days"`
}

// DefaultConfig returns the digest defaults: disabled, weekday mornings.
func DefaultConfig() *Config {
	return &Config{
		Enabled:     false,
		Schedule:    "0 9 * * 1-5",
		Timezone:    "UTC",
		HorizonDays: 3,
	}
}

// IdentitySource lists identities linked to tracker accounts.
type IdentitySource interface {
	ListLinked(ctx context.Context) ([]identity.Identity, error)
}

// GoalSource lists goals owned by an account.
type GoalSource interface {
	ListGoals(ctx context.Context, accountID int64) ([]storage.Goal, error)
}

// Sender dispatches digest messages.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Generator builds and delivers due-goal digests.
type Generator struct {
	identities IdentitySource
	goals      GoalSource
	sender     Sender
	horizon    int
	now        func() time.Time
}

// NewGenerator creates a digest generator.
func NewGenerator(identities IdentitySource, goals GoalSource, sender Sender, horizonDays int) *Generator {
	if horizonDays <= 0 {
		horizonDays = 3
	}
	return &Generator{
		identities: identities,
		goals:      goals,
		sender:     sender,
		horizon:    horizonDays,
		now:        time.Now,
	}
}

// Run sends one digest round to every linked identity with due goals.
// A failure for one identity does not stop the rest.
func (g *Generator) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := logging.WithComponent("digest").With(slog.String("run_id", runID))

	identities, err := g.identities.ListLinked(ctx)
	if err != nil {
		return fmt.Errorf("failed to list linked identities: %w", err)
	}

	cutoff := g.now().AddDate(0, 0, g.horizon)
	sent := 0

	for _, ident := range identities {
		goals, err := g.goals.ListGoals(ctx, ident.AccountID)
		if err != nil {
			logger.Warn("Failed to list goals for digest",
				slog.Int64("account_id", ident.AccountID), slog.Any("error", err))
			continue
		}

		due := dueGoals(goals, cutoff)
		if len(due) == 0 {
			continue
		}

		if err := g.sender.SendMessage(ctx, ident.ChatID, formatDigest(due, g.horizon)); err != nil {
			logger.Warn("Failed to send digest",
				slog.Int64("chat_id", ident.ChatID), slog.Any("error", err))
			continue
		}
		sent++
	}

	logger.Info("Digest round complete", slog.Int("recipients", sent))
	return nil
}

// dueGoals filters open goals with a deadline on or before the cutoff.
// Overdue goals are included.
func dueGoals(goals []storage.Goal, cutoff time.Time) []storage.Goal {
	var due []storage.Goal
	for _, g := range goals {
		if g.Status == storage.StatusDone || g.Status == storage.StatusArchived {
			continue
		}
		if g.DueDate == "" {
			continue
		}
		d, err := time.Parse(dueDateLayout, g.DueDate)
		if err != nil {
			continue
		}
		if !d.After(cutoff) {
			due = append(due, g)
		}
	}
	return due
}

// formatDigest builds the reminder message.
func formatDigest(goals []storage.Goal, horizonDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goals due within %d days:\n", horizonDays)
	for _, g := range goals {
		fmt.Fprintf(&b, "%s (%s) due %s\n", g.Title, g.CategoryTitle, g.DueDate)
	}
	return b.String()
}
