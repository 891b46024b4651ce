package api

import (
	"log/slog"
	"net/http"

	"github.com/ashureev/debate-trainer/internal/domain"
	"github.com/ashureev/debate-trainer/internal/identity"
	"github.com/ashureev/debate-trainer/internal/store"
	"github.com/ashureev/debate-trainer/web"
	"github.com/go-chi/chi/v5"
)

// PagesHandler serves the server-rendered pages and client bootstrap data.
type PagesHandler struct {
	repo  store.Repository
	views Renderer
}

// NewPagesHandler creates a pages handler.
func NewPagesHandler(repo store.Repository, views Renderer) *PagesHandler {
	return &PagesHandler{repo: repo, views: views}
}

// RegisterRoutes registers page and bootstrap routes.
func (h *PagesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.page("index", "Debate Trainer AI"))
	r.Get("/select-ai", h.page("select-ai", "Select AI Personality"))
	r.Get("/debate-battle", h.page("debate-battle", "Debate Battle"))
	r.Get("/debate-summary", h.EmptySummary)
	r.Get("/config", h.GetConfig)
	r.Get("/api/me", h.GetMe)
}

func (h *PagesHandler) page(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, name, map[string]interface{}{
			"Title":         title,
			"Personalities": domain.Personas(),
		})
	}
}

// EmptySummary renders the summary page before any debate has finished.
func (h *PagesHandler) EmptySummary(w http.ResponseWriter, r *http.Request) {
	h.render(w, "debate-summary", summaryPage{
		Title:            "Debate Summary",
		Grade:            "N/A",
		GradeDescription: "No debate completed",
	})
}

// GetConfig returns the settings the client needs to drive a debate.
func (h *PagesHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"personalities": domain.Personas(),
		"maxRounds":     domain.MaxRounds,
	})
}

// GetMe returns the current anonymous identity.
func (h *PagesHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.repo.GetUser(r.Context(), userID)
	if err != nil || user == nil {
		Error(w, http.StatusUnauthorized, "user not found")
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"userId":   user.UserID,
		"username": user.Username,
	})
}

func (h *PagesHandler) render(w http.ResponseWriter, name string, binding interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.views.Render(w, name, binding, web.Layout); err != nil {
		slog.Error("Failed to render page", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
