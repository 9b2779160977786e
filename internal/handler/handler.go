package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/skilltest/internal/exam"
	appI18n "github.com/pavelanni/skilltest/internal/i18n"
	"github.com/pavelanni/skilltest/internal/model"
)

const maxBodyBytes = 1 << 20

// Config holds transport options set via CLI flags.
type Config struct {
	// RedactAnswers hides correct answers and keywords from GET /api/test/{testID}.
	RedactAnswers bool
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	svc    *exam.Service
	config Config
}

// New creates a new Handler.
func New(svc *exam.Service, cfg Config) *Handler {
	return &Handler{svc: svc, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/create-test", h.handleCreateTest)
		r.Get("/test/{testID}", h.handleGetTest)
		r.Post("/submit-test", h.handleSubmitTest)
		r.Get("/admin/submissions", h.handleSubmissions)
		r.Get("/admin/tests", h.handleTests)
	})
}

func (h *Handler) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	var params exam.SessionParams
	if !h.decode(w, r, &params) {
		return
	}

	sess, err := h.svc.CreateSession(r.Context(), params)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			slog.Info("rejected test parameters", "error", err)
			h.writeError(w, r, http.StatusBadRequest, "InvalidInput")
			return
		}
		slog.Error("failed to create test", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"testId": sess.Code})
}

func (h *Handler) handleGetTest(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "testID"))
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			h.writeError(w, r, http.StatusNotFound, "TestNotFound")
			return
		}
		slog.Error("failed to load test", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if h.config.RedactAnswers {
		sess = sess.Redacted()
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleSubmitTest(w http.ResponseWriter, r *http.Request) {
	var sub exam.Submission
	if !h.decode(w, r, &sub) {
		return
	}

	res, err := h.svc.Submit(r.Context(), sub)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			h.writeError(w, r, http.StatusNotFound, "TestExpired")
			return
		}
		slog.Error("failed to score submission", "test_id", sub.TestID, "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.SubmissionResult{"result": res})
}

func (h *Handler) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.Submissions(r.Context())
	if err != nil {
		slog.Error("failed to list submissions", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if results == nil {
		results = []model.SubmissionResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) handleTests(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.Sessions(r.Context())
	if err != nil {
		slog.Error("failed to list tests", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Info("malformed request body", "path", r.URL.Path, "error", err)
		h.writeError(w, r, http.StatusBadRequest, "MalformedRequest")
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeJSON(w, status, map[string]string{"error": appI18n.T(r.Context(), msgID)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
