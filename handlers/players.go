package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinewatch/models"
	"cinewatch/services/players"
)

type playersService interface {
	MoviePlayers(id int64, startAt float64) []players.Source
	TVShowPlayers(id int64, season, episode int, startAt float64) []players.Source
}

var _ playersService = (*players.Service)(nil)

// PlayersHandler serves the embed source lists. When the request carries a
// session, resumable sources get the viewer's last position prefilled.
type PlayersHandler struct {
	Service playersService
	History historyService
}

func NewPlayersHandler(service playersService, history historyService) *PlayersHandler {
	return &PlayersHandler{Service: service, History: history}
}

func (h *PlayersHandler) Movie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid movie id", http.StatusBadRequest)
		return
	}

	startAt := h.History.LastPosition(r.Context(), UserIDFromContext(r.Context()), id, models.MediaTypeMovie, 0, 0)
	writeJSON(w, http.StatusOK, h.Service.MoviePlayers(id, startAt))
}

func (h *PlayersHandler) TVShow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid show id", http.StatusBadRequest)
		return
	}
	season, err := strconv.Atoi(vars["season"])
	if err != nil {
		http.Error(w, "invalid season", http.StatusBadRequest)
		return
	}
	episode, err := strconv.Atoi(vars["episode"])
	if err != nil {
		http.Error(w, "invalid episode", http.StatusBadRequest)
		return
	}

	startAt := h.History.LastPosition(r.Context(), UserIDFromContext(r.Context()), id, models.MediaTypeTV, season, episode)
	writeJSON(w, http.StatusOK, h.Service.TVShowPlayers(id, season, episode, startAt))
}
