// Package api exposes the wizard over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alexanderramin/mandalart/internal/intelligence"
	"github.com/alexanderramin/mandalart/internal/llm"
	"github.com/alexanderramin/mandalart/internal/service"
	"github.com/alexanderramin/mandalart/internal/session"
)

// DefaultSessionID addresses the single-user session slot.
const DefaultSessionID = "default"

const maxBodyBytes = 1 << 20

// Handler serves the session and wizard endpoints.
type Handler struct {
	wizard service.WizardService
	log    *slog.Logger
}

// NewHandler creates a Handler over wizard.
func NewHandler(wizard service.WizardService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{wizard: wizard, log: logger}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// statusFor maps use-case errors to HTTP status codes. Suggestion failures
// are upstream failures; state preconditions are conflicts.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, session.ErrUnknownAction),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrWrongStep),
		errors.Is(err, service.ErrMissingContext),
		errors.Is(err, service.ErrNothingToRegenerate),
		errors.Is(err, service.ErrSessionChanged):
		return http.StatusConflict
	case errors.Is(err, intelligence.ErrNoMoreQuestions):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, llm.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrUnavailable),
		errors.Is(err, llm.ErrRetryExhausted),
		errors.Is(err, llm.ErrInvalidOutput),
		errors.Is(err, intelligence.ErrShortResult),
		errors.Is(err, intelligence.ErrUnknownArchetype):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	Error(w, status, err.Error())
}

var errBadRequest = errors.New("bad request")

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", errBadRequest, err)
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// sessionKey resolves the {id} path parameter to a storage slot.
func sessionKey(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if id == DefaultSessionID {
		id = ""
	}
	return session.KeyFor(id)
}

func queryInt(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
