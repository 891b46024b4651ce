package janitor

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/debate-trainer/internal/domain"
	"github.com/ashureev/debate-trainer/internal/store"
	"github.com/ashureev/debate-trainer/internal/trainer"
)

type fakeSweeper struct {
	mu    sync.Mutex
	calls int
	ttls  []time.Duration
	n     int
	err   error
}

func (f *fakeSweeper) SealStale(_ context.Context, ttl time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ttls = append(f.ttls, ttl)
	return f.n, f.err
}

func (f *fakeSweeper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSweepReturnsSealedCount(t *testing.T) {
	t.Parallel()

	f := &fakeSweeper{n: 4}
	if got := Sweep(context.Background(), f, time.Hour); got != 4 {
		t.Fatalf("expected 4 sealed, got %d", got)
	}
	if f.ttls[0] != time.Hour {
		t.Fatalf("expected ttl to be passed through, got %v", f.ttls[0])
	}
}

func TestSweepSwallowsErrors(t *testing.T) {
	t.Parallel()

	f := &fakeSweeper{n: 2, err: errors.New("database is locked")}
	if got := Sweep(context.Background(), f, time.Hour); got != 2 {
		t.Fatalf("expected partial count 2 on error, got %d", got)
	}
}

func TestStartSweepsUntilCanceled(t *testing.T) {
	t.Parallel()

	f := &fakeSweeper{}
	ctx, cancel := context.WithCancel(context.Background())
	done := Start(ctx, f, time.Hour, 5*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for f.callCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("janitor did not sweep in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestSweepKeepsTranscriptInStore(t *testing.T) {
	t.Parallel()

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "janitor.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()

	idle := time.Now().Add(-8 * 24 * time.Hour)
	d := &domain.Debate{
		ID:          "d-stale",
		UserID:      "alice",
		Topic:       "tariffs",
		Personality: domain.PersonaCentrist,
		Round:       2,
		CreatedAt:   idle,
		UpdatedAt:   idle,
	}
	d.AddTurn(domain.SpeakerAI, "opening", idle)
	d.AddTurn(domain.SpeakerUser, "I believe they always hurt", idle)
	d.AddTurn(domain.SpeakerAI, "reply", idle)
	if err := repo.CreateDebate(ctx, d); err != nil {
		t.Fatalf("CreateDebate failed: %v", err)
	}

	if got := Sweep(ctx, trainer.NewService(repo), 7*24*time.Hour); got != 1 {
		t.Fatalf("expected 1 sealed debate, got %d", got)
	}

	got, err := repo.GetDebate(ctx, "d-stale")
	if err != nil || got == nil {
		t.Fatalf("expected debate to survive the sweep, got %v, %v", got, err)
	}
	if !got.Ended || got.Grade != domain.GradeD {
		t.Fatalf("expected sealed debate graded D, got ended=%v grade=%q", got.Ended, got.Grade)
	}
	if len(got.History) != 3 || got.History[1].Argument != "I believe they always hurt" {
		t.Fatalf("transcript changed: %+v", got.History)
	}
}
