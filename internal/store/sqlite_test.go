package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/debate-trainer/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "data", "debates.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleDebate(id string) *domain.Debate {
	now := time.Unix(1_700_000_000, 0).UTC()
	return &domain.Debate{
		ID:          id,
		UserID:      "user-1",
		Topic:       "nuclear power",
		Personality: domain.PersonaCentrist,
		History: []domain.Turn{
			{Speaker: domain.SpeakerAI, Argument: "opening", Timestamp: now},
		},
		Round:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDebateRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestStore(t)

	want := sampleDebate("d-1")
	require.NoError(t, repo.CreateDebate(ctx, want))

	got, err := repo.GetDebate(ctx, "d-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, want.UserID, got.UserID)
	require.Equal(t, want.Topic, got.Topic)
	require.Equal(t, want.Personality, got.Personality)
	require.Equal(t, 1, got.Round)
	require.False(t, got.Ended)
	require.Len(t, got.History, 1)
	require.Equal(t, domain.SpeakerAI, got.History[0].Speaker)
	require.True(t, want.History[0].Timestamp.Equal(got.History[0].Timestamp))
	require.Empty(t, got.Grade)
	require.Nil(t, got.ImprovementTips)
}

func TestGetDebateMissingReturnsNil(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)

	got, err := repo.GetDebate(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpdateDebateOptimisticRound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestStore(t)

	d := sampleDebate("d-2")
	require.NoError(t, repo.CreateDebate(ctx, d))

	d.AddTurn(domain.SpeakerUser, "for example", time.Now())
	d.Round = 2
	require.NoError(t, repo.UpdateDebate(ctx, d, 1))

	// A writer that read round 1 loses.
	d.Round = 3
	require.ErrorIs(t, repo.UpdateDebate(ctx, d, 1), ErrStaleDebate)

	got, err := repo.GetDebate(ctx, "d-2")
	require.NoError(t, err)
	require.Equal(t, 2, got.Round)
	require.Len(t, got.History, 2)
}

func TestSealedDebateIsImmutable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestStore(t)

	d := sampleDebate("d-3")
	require.NoError(t, repo.CreateDebate(ctx, d))

	d.Seal(domain.GradeReport{
		Grade:           domain.GradeB,
		Description:     "Solid effort!",
		ImprovementTips: []string{"one", "two"},
	})
	require.NoError(t, repo.UpdateDebate(ctx, d, 1))

	got, err := repo.GetDebate(ctx, "d-3")
	require.NoError(t, err)
	require.True(t, got.Ended)
	require.Equal(t, domain.GradeB, got.Grade)
	require.Equal(t, "Solid effort!", got.GradeDescription)
	require.Equal(t, []string{"one", "two"}, got.ImprovementTips)

	got.AddTurn(domain.SpeakerUser, "late", time.Now())
	require.ErrorIs(t, repo.UpdateDebate(ctx, got, got.Round), ErrStaleDebate)
}

func TestListStaleDebates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestStore(t)

	old := sampleDebate("old")
	old.AddTurn(domain.SpeakerUser, "for example, a study", time.Now())
	old.Round = 2
	old.UpdatedAt = time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, repo.CreateDebate(ctx, old))

	fresh := sampleDebate("fresh")
	fresh.UpdatedAt = time.Now()
	require.NoError(t, repo.CreateDebate(ctx, fresh))

	finished := sampleDebate("finished")
	finished.UpdatedAt = time.Now().Add(-8 * 24 * time.Hour)
	finished.Seal(domain.GradeReport{Grade: domain.GradeD, Description: "x", ImprovementTips: []string{"a", "b"}})
	require.NoError(t, repo.CreateDebate(ctx, finished))

	stale, err := repo.ListStaleDebates(ctx, 7*24*time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Equal(t, "old", stale[0].ID)
	require.Len(t, stale[0].History, len(old.History))

	none, err := repo.ListStaleDebates(ctx, 7*24*time.Hour, 0)
	require.NoError(t, err)
	require.Empty(t, none)

	for _, id := range []string{"old", "fresh", "finished"} {
		got, err := repo.GetDebate(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got, id)
	}
}

func TestUserUpsertAndLastSeen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestStore(t)

	now := time.Unix(1_700_000_000, 0)
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{
		UserID: "anon_1", Username: "anon-user", LastSeenAt: now, CreatedAt: now, UpdatedAt: now,
	}))

	later := now.Add(time.Hour)
	require.NoError(t, repo.UpdateLastSeen(ctx, "anon_1", later))

	u, err := repo.GetUser(ctx, "anon_1")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, later.Unix(), u.LastSeenAt.Unix())

	missing, err := repo.GetUser(ctx, "ghost")
	require.NoError(t, err)
	require.Nil(t, missing)
}
