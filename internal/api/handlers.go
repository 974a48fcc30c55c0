package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkleber/kaltrack/internal/actions"
	"github.com/mkleber/kaltrack/internal/chat"
	"github.com/mkleber/kaltrack/internal/config"
	"github.com/mkleber/kaltrack/internal/foodkb"
	"github.com/mkleber/kaltrack/internal/ledger"
	"github.com/mkleber/kaltrack/internal/models"
	"github.com/mkleber/kaltrack/internal/temporal"
)

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type Handlers struct {
	cfg      *config.Config
	chat     *chat.Service
	manager  *actions.Manager
	store    *ledger.Store
	resolver *foodkb.Resolver
}

func NewHandlers(cfg *config.Config, chatSvc *chat.Service, manager *actions.Manager, store *ledger.Store, resolver *foodkb.Resolver) *Handlers {
	return &Handlers{
		cfg:      cfg,
		chat:     chatSvc,
		manager:  manager,
		store:    store,
		resolver: resolver,
	}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:  "ok",
		Model:   h.cfg.GeminiModel,
		Ledger:  h.checkLedger(),
		Version: "1.0.0",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) checkLedger() string {
	if h.store == nil {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := h.store.GetProfile(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "connected"
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message      string `json:"message"`
	SelectedDate string `json:"selected_date,omitempty"`
}

// Chat handles POST /chat
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required", "MISSING_MESSAGE")
		return
	}
	if req.SelectedDate != "" {
		if _, err := time.Parse(temporal.ISODate, req.SelectedDate); err != nil {
			writeError(w, http.StatusBadRequest, "selected_date must be YYYY-MM-DD", "INVALID_DATE")
			return
		}
	}

	resp := h.chat.HandleMessage(r.Context(), req.Message, req.SelectedDate)
	writeJSON(w, http.StatusOK, resp)
}

// ChatReset handles POST /chat/reset
func (h *Handlers) ChatReset(w http.ResponseWriter, r *http.Request) {
	h.chat.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Actions handles GET /actions
func (h *Handlers) Actions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"actions": h.manager.List()})
}

// ConfirmAction handles POST /actions/{id}/confirm
func (h *Handlers) ConfirmAction(w http.ResponseWriter, r *http.Request) {
	p, err := h.manager.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// RejectAction handles POST /actions/{id}/reject
func (h *Handlers) RejectAction(w http.ResponseWriter, r *http.Request) {
	p, err := h.manager.Reject(chi.URLParam(r, "id"))
	if err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, actions.ErrNotFound):
		writeError(w, http.StatusNotFound, "action not found", "NOT_FOUND")
	case errors.Is(err, actions.ErrNotPending):
		writeError(w, http.StatusConflict, "action already settled", "NOT_PENDING")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
	}
}

// ConfirmAll handles POST /actions/confirm-all
func (h *Handlers) ConfirmAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"actions": h.manager.ConfirmAll(r.Context())})
}

// RejectAll handles POST /actions/reject-all
func (h *Handlers) RejectAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"actions": h.manager.RejectAll()})
}

// Day handles GET /days/{date}
func (h *Handlers) Day(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(temporal.ISODate, date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", "INVALID_DATE")
		return
	}

	entry, err := h.store.GetEntry(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Days handles GET /days?from=...&to=... and returns the range plus its
// aggregate stats.
func (h *Handlers) Days(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if _, err := time.Parse(temporal.ISODate, from); err != nil {
		writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD", "INVALID_DATE")
		return
	}
	if _, err := time.Parse(temporal.ISODate, to); err != nil {
		writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD", "INVALID_DATE")
		return
	}

	entries, err := h.store.GetRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
		return
	}
	stats, err := h.store.Stats(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"days": entries, "stats": stats})
}

// Foods handles GET /foods
func (h *Handlers) Foods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.store.ListCustomFoods(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
		return
	}
	if foods == nil {
		foods = []models.FoodRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"foods": foods})
}

// SaveFood handles POST /foods
func (h *Handlers) SaveFood(w http.ResponseWriter, r *http.Request) {
	var rec models.FoodRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}
	if rec.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "MISSING_NAME")
		return
	}

	saved, err := h.store.SaveCustomFood(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// DeleteFood handles DELETE /foods/{id}
func (h *Handlers) DeleteFood(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCustomFood(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SearchFoods handles GET /foods/search?q=...&remote=true
func (h *Handlers) SearchFoods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required", "MISSING_QUERY")
		return
	}
	includeRemote := h.cfg.RemoteLookup && r.URL.Query().Get("remote") == "true"

	results := h.resolver.Search(r.Context(), q, includeRemote)
	if results == nil {
		results = []models.FoodRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"foods": results})
}

// Profile handles GET /profile
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetProfile(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SaveProfile handles PUT /profile
func (h *Handlers) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}
	if err := h.store.SaveProfile(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
		return
	}
	saved, err := h.store.GetProfile(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
