// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/debate-trainer/internal/domain"
)

// ErrStaleDebate is returned when a debate changed between read and write.
var ErrStaleDebate = errors.New("debate was modified concurrently")

// Repository defines the interface for persisting users and debates.
type Repository interface {
	// GetUser retrieves a user by their user ID.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// CreateDebate persists a new debate document.
	CreateDebate(ctx context.Context, debate *domain.Debate) error

	// GetDebate retrieves a debate by ID. It returns nil, nil when absent.
	GetDebate(ctx context.Context, debateID string) (*domain.Debate, error)

	// UpdateDebate overwrites the mutable fields of an open debate.
	// The write only happens if the stored round still equals expectedRound
	// and the debate is not ended; otherwise ErrStaleDebate is returned.
	UpdateDebate(ctx context.Context, debate *domain.Debate, expectedRound int) error

	// ListStaleDebates returns up to limit unfinished debates not updated
	// within ttl. Debates are never deleted; callers seal them instead.
	ListStaleDebates(ctx context.Context, ttl time.Duration, limit int) ([]*domain.Debate, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
