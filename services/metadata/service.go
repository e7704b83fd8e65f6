// Package metadata looks up display metadata and discovery listings from TMDB.
package metadata

import (
	"context"
	"errors"
	"net/http"

	"cinewatch/models"
)

// ErrNotConfigured is returned when the service has no TMDB API key.
var ErrNotConfigured = errors.New("tmdb api key not configured")

// ErrUnknownListType is returned for a discover list type the API does not serve.
var ErrUnknownListType = errors.New("unknown list type")

// ListType selects which TMDB movie listing Discover fetches.
type ListType string

const (
	ListDiscover         ListType = "discover"
	ListTodayTrending    ListType = "todayTrending"
	ListThisWeekTrending ListType = "thisWeekTrending"
	ListPopular          ListType = "popular"
	ListNowPlaying       ListType = "nowPlaying"
	ListUpcoming         ListType = "upcoming"
	ListTopRated         ListType = "topRated"
)

var listEndpoints = map[ListType][]string{
	ListDiscover:         {"discover", "movie"},
	ListTodayTrending:    {"trending", "movie", "day"},
	ListThisWeekTrending: {"trending", "movie", "week"},
	ListPopular:          {"movie", "popular"},
	ListNowPlaying:       {"movie", "now_playing"},
	ListUpcoming:         {"movie", "upcoming"},
	ListTopRated:         {"movie", "top_rated"},
}

// MovieList is one page of a discovery listing.
type MovieList struct {
	Page         int                `json:"page"`
	TotalPages   int                `json:"total_pages"`
	TotalResults int                `json:"total_results"`
	Results      []models.MediaInfo `json:"results"`
}

// Service exposes TMDB lookups to the rest of the application.
type Service struct {
	client *tmdbClient
}

// NewService builds a metadata service for the given API key and language.
func NewService(apiKey, language string) *Service {
	return &Service{client: newTMDBClient(apiKey, language, nil)}
}

// NewServiceWithHTTPClient is NewService with an injectable HTTP client.
func NewServiceWithHTTPClient(apiKey, language string, httpc *http.Client) *Service {
	return &Service{client: newTMDBClient(apiKey, language, httpc)}
}

// MovieInfo fetches the details of a single movie.
func (s *Service) MovieInfo(ctx context.Context, tmdbID int64) (*models.MediaInfo, error) {
	if !s.client.isConfigured() {
		return nil, ErrNotConfigured
	}

	payload, err := s.client.movieDetails(ctx, tmdbID)
	if err != nil {
		return nil, err
	}

	return &models.MediaInfo{
		ID:           payload.ID,
		Title:        payload.Title,
		Overview:     payload.Overview,
		Adult:        payload.Adult,
		PosterPath:   payload.PosterPath,
		BackdropPath: payload.BackdropPath,
		ReleaseDate:  payload.ReleaseDate,
		VoteAverage:  payload.VoteAverage,
		MediaType:    models.MediaTypeMovie,
	}, nil
}

// TVShowInfo fetches the details of a single TV show. The show's name and
// first air date map onto the movie-shaped title and release date fields.
func (s *Service) TVShowInfo(ctx context.Context, tmdbID int64) (*models.MediaInfo, error) {
	if !s.client.isConfigured() {
		return nil, ErrNotConfigured
	}

	payload, err := s.client.tvDetails(ctx, tmdbID)
	if err != nil {
		return nil, err
	}

	return &models.MediaInfo{
		ID:           payload.ID,
		Title:        payload.Name,
		Overview:     payload.Overview,
		Adult:        payload.Adult,
		PosterPath:   payload.PosterPath,
		BackdropPath: payload.BackdropPath,
		ReleaseDate:  payload.FirstAirDate,
		VoteAverage:  payload.VoteAverage,
		MediaType:    models.MediaTypeTV,
	}, nil
}

// DiscoverMovies fetches one page of the named movie listing.
func (s *Service) DiscoverMovies(ctx context.Context, listType ListType, page int) (*MovieList, error) {
	if !s.client.isConfigured() {
		return nil, ErrNotConfigured
	}

	segments, ok := listEndpoints[listType]
	if !ok {
		return nil, ErrUnknownListType
	}

	payload, err := s.client.movieList(ctx, segments, page)
	if err != nil {
		return nil, err
	}

	results := make([]models.MediaInfo, len(payload.Results))
	for i, r := range payload.Results {
		results[i] = models.MediaInfo{
			ID:           r.ID,
			Title:        r.Title,
			Overview:     r.Overview,
			Adult:        r.Adult,
			PosterPath:   r.PosterPath,
			BackdropPath: r.BackdropPath,
			ReleaseDate:  r.ReleaseDate,
			VoteAverage:  r.VoteAverage,
			MediaType:    models.MediaTypeMovie,
		}
	}

	return &MovieList{
		Page:         payload.Page,
		TotalPages:   payload.TotalPages,
		TotalResults: payload.TotalResults,
		Results:      results,
	}, nil
}
