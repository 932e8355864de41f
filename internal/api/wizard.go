package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/session"
)

// RegisterRoutes registers the session and wizard routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/actions", h.ListActions)
		r.Get("/discovery/questions/{index}", h.GetDiscoveryQuestion)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.ResetSession)
			r.Get("/history", h.GetHistory)
			r.Get("/events", h.StreamEvents)
			r.Post("/actions", h.DispatchAction)

			r.Post("/quick-context", h.SubmitQuickContext)
			r.Post("/goal", h.SubmitGoal)
			r.Post("/back", h.BackToGoalInput)

			r.Post("/interview/questions", h.StartInterview)
			r.Post("/interview/complete", h.CompleteInterview)

			r.Post("/pillars/toggle", h.TogglePillar)
			r.Post("/pillars/custom", h.AddCustomPillar)
			r.Post("/pillars/regenerate", h.RegeneratePillars)

			r.Post("/actions/start", h.StartActions)
			r.Post("/actions/toggle", h.ToggleAction)
			r.Post("/actions/custom", h.AddCustomAction)
			r.Post("/actions/regenerate", h.RegenerateActions)
			r.Post("/actions/complete", h.CompletePillar)
			r.Post("/actions/auto", h.AutoGenerate)

			r.Post("/discovery/start", h.StartDiscovery)
			r.Post("/discovery/answer", h.AnswerDiscovery)
			r.Post("/discovery/goals", h.SuggestGoals)

			r.Post("/blessing", h.Bless)
		})
	})
}

// respond writes v on success or the mapped error.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, v)
}

func (h *Handler) ListActions(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string][]string{"actions": session.ActionNames()})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.wizard.Snapshot(r.Context(), sessionKey(r))
	h.respond(w, r, s, err)
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	u, err := h.wizard.Reset(r.Context(), sessionKey(r))
	h.respond(w, r, u, err)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.wizard.History(r.Context(), sessionKey(r), queryInt(r, "limit", 50))
	h.respond(w, r, map[string]any{"events": events}, err)
}

type actionRequest struct {
	Type string `json:"type"`
}

// DispatchAction applies one store action named by the "type" field. The
// remaining fields of the body are the action's own fields.
func (h *Handler) DispatchAction(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decode(r, &raw); err != nil {
		h.fail(w, r, err)
		return
	}
	var req actionRequest
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			Error(w, http.StatusBadRequest, "body must be a JSON object")
			return
		}
	}
	if req.Type == "" {
		Error(w, http.StatusBadRequest, "type is required")
		return
	}
	a, err := session.DecodeAction(req.Type, raw)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.wizard.Dispatch(r.Context(), sessionKey(r), a)
	h.respond(w, r, u, err)
}

func (h *Handler) SubmitQuickContext(w http.ResponseWriter, r *http.Request) {
	var qc domain.QuickContext
	if err := decode(r, &qc); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.wizard.SubmitQuickContext(r.Context(), sessionKey(r), qc)
	h.respond(w, r, u, err)
}

func (h *Handler) SubmitGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Goal string `json:"goal"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.wizard.SubmitGoal(r.Context(), sessionKey(r), req.Goal)
	h.respond(w, r, u, err)
}

func (h *Handler) BackToGoalInput(w http.ResponseWriter, r *http.Request) {
	u, err := h.wizard.BackToGoalInput(r.Context(), sessionKey(r))
	h.respond(w, r, u, err)
}

func (h *Handler) StartInterview(w http.ResponseWriter, r *http.Request) {
	u, err := h.wizard.StartInterview(r.Context(), sessionKey(r))
	h.respond(w, r, u, err)
}

func (h *Handler) CompleteInterview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers []domain.InterviewAnswer `json:"answers"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.wizard.CompleteInterview(r.Context(), sessionKey(r), req.Answers)
	h.respond(w, r, u, err)
}

type idRequest struct {
	ID string `json:"id"`
}

func (h *Handler) TogglePillar(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.wizard.TogglePillar(r.Context(), sessionKey(r), req.ID)
	h.respond(w, r, u, err)
}

func (h *Handler) AddCustomPillar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.wizard.AddCustomPillar(r.Context(), sessionKey(r), req.Title, req.Description)
	h.respond(w, r, u, err)
}

func (h *Handler) RegeneratePillars(w http.ResponseWriter, r *http.Request) {
	u, err := h.wizard.RegeneratePillars(r.Context(), sessionKey(r))
	h.respond(w, r, u, err)
}

func (h *Handler) StartActions(w http.ResponseWriter, r *http.Request) {
	u, err := h.wizard.StartActions(r.Context(), sessionKey(r))
	h.respond(w, r, u, err)
}

func (h *Handler) ToggleAction(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.wizard.ToggleAction(r.Context(), sessionKey(r), req.ID)
	h.respond(w, r, u, err)
}

func (h *Handler) AddCustomAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.wizard.AddCustomAction(r.Context(), sessionKey(r), req.Text)
	h.respond(w, r, u, err)
}

func (h *Handler) RegenerateActions(w http.ResponseWriter, r *http.Request) {
	u, err := h.wizard.RegenerateActions(r.Context(), sessionKey(r))
	h.respond(w, r, u, err)
}

func (h *Handler) CompletePillar(w http.ResponseWriter, r *http.Request) {
	u, err := h.wizard.CompletePillar(r.Context(), sessionKey(r))
	h.respond(w, r, u, err)
}

func (h *Handler) AutoGenerate(w http.ResponseWriter, r *http.Request) {
	u, err := h.wizard.AutoGenerate(r.Context(), sessionKey(r))
	h.respond(w, r, u, err)
}

func (h *Handler) StartDiscovery(w http.ResponseWriter, r *http.Request) {
	u, err := h.wizard.StartDiscovery(r.Context(), sessionKey(r))
	h.respond(w, r, u, err)
}

func (h *Handler) GetDiscoveryQuestion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		Error(w, http.StatusBadRequest, "index must be a number")
		return
	}
	q, err := h.wizard.DiscoveryQuestion(index)
	h.respond(w, r, q, err)
}

func (h *Handler) AnswerDiscovery(w http.ResponseWriter, r *http.Request) {
	var answer domain.InterviewAnswer
	if err := decode(r, &answer); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.wizard.AnswerDiscovery(r.Context(), sessionKey(r), answer)
	h.respond(w, r, u, err)
}

func (h *Handler) SuggestGoals(w http.ResponseWriter, r *http.Request) {
	u, err := h.wizard.SuggestGoals(r.Context(), sessionKey(r))
	h.respond(w, r, u, err)
}

func (h *Handler) Bless(w http.ResponseWriter, r *http.Request) {
	blessing, err := h.wizard.Bless(r.Context(), sessionKey(r))
	h.respond(w, r, map[string]string{"blessing": blessing}, err)
}
