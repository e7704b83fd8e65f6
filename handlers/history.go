package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinewatch/models"
	"cinewatch/services/history"
)

type historyService interface {
	Sync(ctx context.Context, userID string, event *models.UnifiedPlayerEvent, completed bool) models.ActionResponse
	ListRecent(ctx context.Context, userID string, limit int) ([]models.HistoryRecord, error)
	LastPosition(ctx context.Context, userID string, mediaID int64, mediaType string, season, episode int) float64
}

var _ historyService = (*history.Service)(nil)

type HistoryHandler struct {
	Service historyService
	Enabled bool
}

func NewHistoryHandler(service historyService, enabled bool) *HistoryHandler {
	return &HistoryHandler{Service: service, Enabled: enabled}
}

// saveHistoryRequest is a player event plus the caller's completion flag.
type saveHistoryRequest struct {
	models.UnifiedPlayerEvent
	Completed bool `json:"completed"`
}

// SaveHistory is the beacon target: every handled outcome is a 200 with a
// structured body, so senders that never read the response lose nothing.
// Only an unreadable body earns a 500.
func (h *HistoryHandler) SaveHistory(w http.ResponseWriter, r *http.Request) {
	var body saveHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Printf("[history] invalid save request: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ActionResponse{
			Success: false,
			Message: "An unexpected error occurred",
		})
		return
	}

	if !h.Enabled {
		writeJSON(w, http.StatusOK, models.ActionResponse{Success: false, Message: "History is disabled"})
		return
	}

	userID := UserIDFromContext(r.Context())
	res := h.Service.Sync(r.Context(), userID, &body.UnifiedPlayerEvent, body.Completed)
	writeJSON(w, http.StatusOK, res)
}

// List returns the user's recent history, most recently updated first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.ActionResponse{Success: false, Message: "User not authenticated"})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, models.ActionResponse{Success: false, Message: "Invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.Service.ListRecent(r.Context(), userID, limit)
	if err != nil {
		log.Printf("[history] list failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ActionResponse{Success: false, Message: "Failed to fetch history"})
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// MoviePosition returns the resume position for a movie. The UI treats the
// value as advisory, so every failure degrades to 0.
func (h *HistoryHandler) MoviePosition(w http.ResponseWriter, r *http.Request) {
	h.writePosition(w, r, models.MediaTypeMovie, 0, 0)
}

// TVPosition returns the resume position for a TV episode.
func (h *HistoryHandler) TVPosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	season, err := strconv.Atoi(vars["season"])
	if err != nil {
		writePlainNumber(w, 0)
		return
	}
	episode, err := strconv.Atoi(vars["episode"])
	if err != nil {
		writePlainNumber(w, 0)
		return
	}

	h.writePosition(w, r, models.MediaTypeTV, season, episode)
}

func (h *HistoryHandler) writePosition(w http.ResponseWriter, r *http.Request, mediaType string, season, episode int) {
	mediaID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writePlainNumber(w, 0)
		return
	}

	userID := UserIDFromContext(r.Context())
	writePlainNumber(w, h.Service.LastPosition(r.Context(), userID, mediaID, mediaType, season, episode))
}

func writePlainNumber(w http.ResponseWriter, value float64) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, "%g", value)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
