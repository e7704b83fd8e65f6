package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"cinewatch/services/metadata"
)

type discoverService interface {
	DiscoverMovies(ctx context.Context, listType metadata.ListType, page int) (*metadata.MovieList, error)
}

var _ discoverService = (*metadata.Service)(nil)

type DiscoverHandler struct {
	Service discoverService
}

func NewDiscoverHandler(service discoverService) *DiscoverHandler {
	return &DiscoverHandler{Service: service}
}

// Movies handles GET /api/discover/movies?type=...&page=...
func (h *DiscoverHandler) Movies(w http.ResponseWriter, r *http.Request) {
	listType := metadata.ListType(r.URL.Query().Get("type"))
	if listType == "" {
		listType = metadata.ListDiscover
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return
		}
		page = parsed
	}

	list, err := h.Service.DiscoverMovies(r.Context(), listType, page)
	if err != nil {
		switch {
		case errors.Is(err, metadata.ErrUnknownListType):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, metadata.ErrNotConfigured):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		default:
			log.Printf("[discover] movies %s failed: %v", listType, err)
			http.Error(w, "failed to fetch listing", http.StatusBadGateway)
		}
		return
	}

	writeJSON(w, http.StatusOK, list)
}
