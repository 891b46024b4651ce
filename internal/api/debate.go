package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/debate-trainer/internal/domain"
	"github.com/ashureev/debate-trainer/internal/trainer"
	"github.com/ashureev/debate-trainer/web"
	"github.com/go-chi/chi/v5"
)

// DebateService is the subset of trainer.Service the HTTP layer drives.
type DebateService interface {
	Start(ctx context.Context, req trainer.StartRequest) (*trainer.StartResult, error)
	Respond(ctx context.Context, req trainer.RespondRequest) (*trainer.RespondResult, error)
	GiveUp(ctx context.Context, req trainer.GiveUpRequest) (*trainer.GiveUpResult, error)
	Summary(ctx context.Context, debateID, userID string) (*domain.Debate, error)
}

// DebateHandler serves the debate JSON API and the rendered summary.
type DebateHandler struct {
	svc   DebateService
	views Renderer
}

// NewDebateHandler creates a debate handler.
func NewDebateHandler(svc DebateService, views Renderer) *DebateHandler {
	return &DebateHandler{svc: svc, views: views}
}

// RegisterRoutes registers debate routes.
func (h *DebateHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/debate", func(r chi.Router) {
		r.Post("/start", h.Start)
		r.Post("/respond", h.Respond)
		r.Post("/give-up", h.GiveUp)
		r.Get("/summary/{debateId}", h.Summary)
	})
}

// Start opens a debate and returns the opponent's opening statement.
func (h *DebateHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req trainer.StartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Start(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Failed to start debate")
		return
	}
	JSON(w, http.StatusOK, res)
}

// Respond submits one user argument.
func (h *DebateHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req trainer.RespondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Respond(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Failed to process response")
		return
	}
	JSON(w, http.StatusOK, res)
}

// GiveUp ends the debate early and returns its grade.
func (h *DebateHandler) GiveUp(w http.ResponseWriter, r *http.Request) {
	var req trainer.GiveUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.GiveUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Failed to process give-up")
		return
	}
	JSON(w, http.StatusOK, res)
}

// Summary renders the debate summary page, or returns the stored debate as
// JSON when the client asks for it.
func (h *DebateHandler) Summary(w http.ResponseWriter, r *http.Request) {
	debateID := chi.URLParam(r, "debateId")
	userID := r.URL.Query().Get("userId")

	d, err := h.svc.Summary(r.Context(), debateID, userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch summary")
		return
	}

	if wantsJSON(r) {
		JSON(w, http.StatusOK, d)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.views.Render(w, "debate-summary", summaryPage{
		Title:            "Debate Summary",
		Grade:            string(d.Grade),
		GradeDescription: d.GradeDescription,
		DebateHistory:    d.History,
		ImprovementTips:  d.ImprovementTips,
	}, web.Layout); err != nil {
		slog.Error("Failed to render summary", "debate_id", debateID, "error", err)
	}
}

type summaryPage struct {
	Title            string
	Grade            string
	GradeDescription string
	DebateHistory    []domain.Turn
	ImprovementTips  []string
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
