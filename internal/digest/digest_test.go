package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alekspetrov/goaltrack/internal/identity"
	"github.com/alekspetrov/goaltrack/internal/storage"
)

type fakeIdentitySource struct {
	identities []identity.Identity
	err        error
}

func (f *fakeIdentitySource) ListLinked(ctx context.Context) ([]identity.Identity, error) {
	return f.identities, f.err
}

type fakeGoalSource struct {
	goals map[int64][]storage.Goal
	err   error
}

func (f *fakeGoalSource) ListGoals(ctx context.Context, accountID int64) ([]storage.Goal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.goals[accountID], nil
}

type fakeSender struct {
	sent map[int64][]string
	err  error
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[int64][]string)}
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent[chatID] = append(f.sent[chatID], text)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
}

func TestRunSendsDigestForDueGoals(t *testing.T) {
	identities := &fakeIdentitySource{identities: []identity.Identity{
		{UserID: 42, ChatID: 100, AccountID: 1},
		{UserID: 43, ChatID: 200, AccountID: 2},
	}}
	goals := &fakeGoalSource{goals: map[int64][]storage.Goal{
		1: {
			{Title: "Ship release", CategoryTitle: "Work", DueDate: "2026-08-30", Status: storage.StatusToDo},
			{Title: "Far future", CategoryTitle: "Work", DueDate: "2027-01-01", Status: storage.StatusToDo},
			{Title: "Already done", CategoryTitle: "Work", DueDate: "2026-08-29", Status: storage.StatusDone},
			{Title: "No deadline", CategoryTitle: "Work", Status: storage.StatusToDo},
		},
		2: {
			{Title: "Nothing soon", CategoryTitle: "Home", DueDate: "2026-12-01", Status: storage.StatusToDo},
		},
	}}
	sender := newFakeSender()

	g := NewGenerator(identities, goals, sender, 3)
	g.now = fixedNow

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	msgs := sender.sent[100]
	if len(msgs) != 1 {
		t.Fatalf("chat 100 got %d messages, want 1", len(msgs))
	}
	if !strings.Contains(msgs[0], "Ship release") {
		t.Errorf("digest missing due goal: %q", msgs[0])
	}
	for _, absent := range []string{"Far future", "Already done", "No deadline"} {
		if strings.Contains(msgs[0], absent) {
			t.Errorf("digest includes %q, should be filtered", absent)
		}
	}

	if len(sender.sent[200]) != 0 {
		t.Errorf("chat 200 got a digest with nothing due: %v", sender.sent[200])
	}
}

func TestRunIncludesOverdueGoals(t *testing.T) {
	identities := &fakeIdentitySource{identities: []identity.Identity{
		{UserID: 42, ChatID: 100, AccountID: 1},
	}}
	goals := &fakeGoalSource{goals: map[int64][]storage.Goal{
		1: {{Title: "Overdue", CategoryTitle: "Work", DueDate: "2026-08-01", Status: storage.StatusInProgress}},
	}}
	sender := newFakeSender()

	g := NewGenerator(identities, goals, sender, 3)
	g.now = fixedNow

	if err := g.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent[100]) != 1 || !strings.Contains(sender.sent[100][0], "Overdue") {
		t.Errorf("overdue goal not included: %v", sender.sent[100])
	}
}

func TestRunToleratesPerIdentityFailures(t *testing.T) {
	identities := &fakeIdentitySource{identities: []identity.Identity{
		{UserID: 42, ChatID: 100, AccountID: 1},
	}}
	goals := &fakeGoalSource{err: errors.New("store down")}
	sender := newFakeSender()

	g := NewGenerator(identities, goals, sender, 3)
	g.now = fixedNow

	if err := g.Run(context.Background()); err != nil {
		t.Errorf("Run() should tolerate per-identity failures, got %v", err)
	}
}

func TestRunPropagatesIdentityListFailure(t *testing.T) {
	identities := &fakeIdentitySource{err: errors.New("identity store down")}
	g := NewGenerator(identities, &fakeGoalSource{}, newFakeSender(), 3)

	if err := g.Run(context.Background()); err == nil {
		t.Error("Run() should fail when identities cannot be listed")
	}
}

func TestSchedulerDisabled(t *testing.T) {
	g := NewGenerator(&fakeIdentitySource{}, &fakeGoalSource{}, newFakeSender(), 3)
	s := NewScheduler(g, &Config{Enabled: false})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("disabled scheduler reported running")
	}
	if !s.NextRun().IsZero() {
		t.Error("disabled scheduler has a next run")
	}
	s.Stop()
}

func TestSchedulerStartStop(t *testing.T) {
	g := NewGenerator(&fakeIdentitySource{}, &fakeGoalSource{}, newFakeSender(), 3)
	s := NewScheduler(g, &Config{
		Enabled:  true,
		Schedule: "0 9 * * *",
		Timezone: "UTC",
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("scheduler not running after Start")
	}
	if s.NextRun().IsZero() {
		t.Error("running scheduler has no next run")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler still running after Stop")
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	g := NewGenerator(&fakeIdentitySource{}, &fakeGoalSource{}, newFakeSender(), 3)
	s := NewScheduler(g, &Config{Enabled: true, Schedule: "not a cron spec", Timezone: "UTC"})

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() accepted an invalid schedule")
	}
}

func TestSchedulerInvalidTimezoneFallsBack(t *testing.T) {
	g := NewGenerator(&fakeIdentitySource{}, &fakeGoalSource{}, newFakeSender(), 3)
	// Must not panic; falls back to UTC.
	s := NewScheduler(g, &Config{Enabled: false, Timezone: "Mars/Olympus"})
	if s == nil {
		t.Fatal("NewScheduler returned nil")
	}
}
