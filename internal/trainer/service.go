package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/debate-trainer/internal/debate"
	"github.com/ashureev/debate-trainer/internal/domain"
	"github.com/ashureev/debate-trainer/internal/store"
	"github.com/google/uuid"
)

const (
	concludedMessage = "Debate concluded!"
	gaveUpMessage    = "You gave up. Check your summary."
)

// Recorder observes debate lifecycle events. Implementations must be safe
// for concurrent use.
type Recorder interface {
	DebateStarted(personality domain.Persona)
	ArgumentEvaluated(e domain.Evaluation)
	DebateConcluded(grade domain.Grade, reason string)
}

type nopRecorder struct{}

func (nopRecorder) DebateStarted(domain.Persona)         {}
func (nopRecorder) ArgumentEvaluated(domain.Evaluation)  {}
func (nopRecorder) DebateConcluded(domain.Grade, string) {}

// StartRequest carries the inputs of a new debate.
type StartRequest struct {
	Topic       string `json:"topic"`
	Personality string `json:"personality"`
	UserID      string `json:"userId"`
}

// StartResult is returned when a debate is created.
type StartResult struct {
	AIResponse string `json:"aiResponse"`
	DebateID   string `json:"debateId"`
}

// RespondRequest carries one user argument.
type RespondRequest struct {
	DebateID     string `json:"debateId"`
	UserArgument string `json:"userArgument"`
	UserID       string `json:"userId"`
}

// RespondResult is either the opponent's next reply with feedback on the
// submitted argument, or the final grade when the debate concluded.
type RespondResult struct {
	AIResponse     string             `json:"aiResponse,omitempty"`
	Evaluation     *domain.Evaluation `json:"evaluation,omitempty"`
	OutOfArguments bool               `json:"outOfArguments"`

	Ended            bool         `json:"ended,omitempty"`
	EndMessage       string       `json:"endMessage,omitempty"`
	Grade            domain.Grade `json:"grade,omitempty"`
	GradeDescription string       `json:"gradeDescription,omitempty"`
	ImprovementTips  []string     `json:"improvementTips,omitempty"`
}

// GiveUpRequest ends a debate early.
type GiveUpRequest struct {
	DebateID string `json:"debateId"`
	UserID   string `json:"userId"`
}

// GiveUpResult carries the grade of an abandoned debate.
type GiveUpResult struct {
	EndMessage       string       `json:"endMessage"`
	Grade            domain.Grade `json:"grade"`
	GradeDescription string       `json:"gradeDescription"`
	ImprovementTips  []string     `json:"improvementTips"`
}

// Service runs debates against the scripted opponent.
type Service struct {
	repo      store.Repository
	evaluator debate.Evaluator
	grader    *debate.Grader
	recorder  Recorder
	now       func() time.Time

	// locks serializes updates per debate ID.
	locks sync.Map
}

// Option configures a Service.
type Option func(*Service)

// WithEvaluator swaps the argument heuristic used for feedback and grading.
func WithEvaluator(ev debate.Evaluator) Option {
	return func(s *Service) {
		if ev != nil {
			s.evaluator = ev
		}
	}
}

// WithRecorder attaches a lifecycle observer.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock overrides the time source used for turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a debate service backed by repo.
func NewService(repo store.Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		evaluator: debate.KeywordEvaluator{},
		recorder:  nopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.grader = debate.NewGrader(s.evaluator)
	return s
}

// Start creates a debate seeded with the opponent's opening statement.
func (s *Service) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	if err := required("topic", req.Topic, "personality", req.Personality, "userId", req.UserID); err != nil {
		return nil, err
	}
	personality, err := debate.ParsePersona(req.Personality)
	if err != nil {
		return nil, err
	}

	opening, err := debate.SelectResponse(req.Topic, personality, 1, "")
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := &domain.Debate{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Topic:       req.Topic,
		Personality: personality,
		Round:       1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	d.AddTurn(domain.SpeakerAI, opening, now)

	if err := s.repo.CreateDebate(ctx, d); err != nil {
		return nil, fmt.Errorf("create debate: %w", err)
	}

	s.recorder.DebateStarted(personality)
	slog.Info("Debate started", "debate_id", d.ID, "user_id", d.UserID, "personality", personality)
	return &StartResult{AIResponse: opening, DebateID: d.ID}, nil
}

// Respond records a user argument and either returns the opponent's next
// reply or, once the opponent is out of arguments, seals and grades the debate.
func (s *Service) Respond(ctx context.Context, req RespondRequest) (*RespondResult, error) {
	if err := required("debateId", req.DebateID, "userArgument", req.UserArgument, "userId", req.UserID); err != nil {
		return nil, err
	}

	unlock, err := s.lock(req.DebateID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.loadOwned(ctx, req.DebateID, req.UserID)
	if err != nil {
		return nil, err
	}

	previousRound := d.Round
	newRound := previousRound + 1
	outOfArguments := newRound > domain.MaxRounds

	aiResponse, err := debate.SelectResponse(d.Topic, d.Personality, newRound, req.UserArgument)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d.AddTurn(domain.SpeakerUser, req.UserArgument, now)
	if !outOfArguments {
		d.AddTurn(domain.SpeakerAI, aiResponse, now)
	}
	d.Round = newRound
	d.UpdatedAt = now

	var report domain.GradeReport
	if outOfArguments {
		report = s.grader.Grade(d.History)
		d.Seal(report)
	}

	if err := s.repo.UpdateDebate(ctx, d, previousRound); err != nil {
		if errors.Is(err, store.ErrStaleDebate) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("update debate: %w", err)
	}

	if outOfArguments {
		s.forget(d.ID)
		s.recorder.DebateConcluded(report.Grade, "completed")
		slog.Info("Debate concluded", "debate_id", d.ID, "grade", report.Grade, "score", report.Score)
		return &RespondResult{
			OutOfArguments:   true,
			Ended:            true,
			EndMessage:       concludedMessage,
			Grade:            report.Grade,
			GradeDescription: report.Description,
			ImprovementTips:  report.ImprovementTips,
		}, nil
	}

	evaluation := s.evaluator.Evaluate(req.UserArgument)
	s.recorder.ArgumentEvaluated(evaluation)
	return &RespondResult{
		AIResponse:     aiResponse,
		Evaluation:     &evaluation,
		OutOfArguments: false,
	}, nil
}

// GiveUp grades the transcript so far and seals the debate.
func (s *Service) GiveUp(ctx context.Context, req GiveUpRequest) (*GiveUpResult, error) {
	if err := required("debateId", req.DebateID, "userId", req.UserID); err != nil {
		return nil, err
	}

	unlock, err := s.lock(req.DebateID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.loadOwned(ctx, req.DebateID, req.UserID)
	if err != nil {
		return nil, err
	}

	report, err := s.seal(ctx, d)
	if err != nil {
		return nil, err
	}

	s.recorder.DebateConcluded(report.Grade, "gave_up")
	slog.Info("Debate abandoned", "debate_id", d.ID, "grade", report.Grade, "score", report.Score)
	return &GiveUpResult{
		EndMessage:       gaveUpMessage,
		Grade:            report.Grade,
		GradeDescription: report.Description,
		ImprovementTips:  report.ImprovementTips,
	}, nil
}

// staleBatch bounds how many debates a single SealStale call handles.
const staleBatch = 100

// SealStale grades and seals unfinished debates idle for longer than ttl.
// Transcripts are kept; the debate just stops accepting arguments, exactly
// as if its owner had given up. It returns how many debates were sealed.
func (s *Service) SealStale(ctx context.Context, ttl time.Duration) (int, error) {
	debates, err := s.repo.ListStaleDebates(ctx, ttl, staleBatch)
	if err != nil {
		return 0, fmt.Errorf("list stale debates: %w", err)
	}

	sealed := 0
	for _, d := range debates {
		if err := ctx.Err(); err != nil {
			return sealed, err
		}

		unlock, err := s.lock(d.ID)
		if err != nil {
			// In use right now, so not stale.
			continue
		}
		report, err := s.seal(ctx, d)
		unlock()
		if errors.Is(err, ErrBusy) {
			continue
		}
		if err != nil {
			return sealed, err
		}

		sealed++
		s.recorder.DebateConcluded(report.Grade, "expired")
		slog.Info("Stale debate sealed", "debate_id", d.ID, "grade", report.Grade, "score", report.Score)
	}
	return sealed, nil
}

// seal grades the transcript as it stands and closes the debate. The caller
// must hold the debate lock.
func (s *Service) seal(ctx context.Context, d *domain.Debate) (domain.GradeReport, error) {
	report := s.grader.Grade(d.History)
	d.Seal(report)
	d.UpdatedAt = s.now()

	if err := s.repo.UpdateDebate(ctx, d, d.Round); err != nil {
		if errors.Is(err, store.ErrStaleDebate) {
			return report, ErrBusy
		}
		return report, fmt.Errorf("seal debate: %w", err)
	}
	s.forget(d.ID)
	return report, nil
}

// Summary returns the stored debate for its owner.
func (s *Service) Summary(ctx context.Context, debateID, userID string) (*domain.Debate, error) {
	if err := required("debateId", debateID, "userId", userID); err != nil {
		return nil, err
	}
	d, err := s.repo.GetDebate(ctx, debateID)
	if err != nil {
		return nil, fmt.Errorf("get debate: %w", err)
	}
	if d == nil || d.UserID != userID {
		return nil, ErrUnauthorized
	}
	return d, nil
}

// loadOwned fetches an open debate owned by userID.
func (s *Service) loadOwned(ctx context.Context, debateID, userID string) (*domain.Debate, error) {
	d, err := s.Summary(ctx, debateID, userID)
	if err != nil {
		return nil, err
	}
	if d.Ended {
		return nil, ErrDebateEnded
	}
	return d, nil
}

// lock claims the per-debate mutex. A second concurrent caller gets ErrBusy.
// The mutex stays in the map after unlock so every caller contends on the
// same one.
func (s *Service) lock(debateID string) (func(), error) {
	l, _ := s.locks.LoadOrStore(debateID, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	if !mu.TryLock() {
		slog.Warn("Debate update already in progress", "debate_id", debateID)
		return nil, ErrBusy
	}
	return mu.Unlock, nil
}

// forget drops the mutex of a sealed debate. Every later update fails with
// ErrDebateEnded whichever mutex it holds, so the entry is no longer needed.
func (s *Service) forget(debateID string) {
	s.locks.Delete(debateID)
}
