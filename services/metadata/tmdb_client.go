package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	tmdbBaseURL = "https://api.themoviedb.org/3"

	// TMDB image CDN, exposed so callers can build absolute poster URLs.
	TMDBImageBaseURL = "https://image.tmdb.org/t/p"
)

type tmdbClient struct {
	apiKey   string
	language string
	httpc    *http.Client

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:      strings.TrimSpace(apiKey),
		language:    language,
		httpc:       httpc,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// endpoint joins path segments onto the API base and appends api_key and
// language to whatever query params the caller passed.
func (c *tmdbClient) endpoint(segments []string, query url.Values) (string, error) {
	joined, err := url.JoinPath(tmdbBaseURL, segments...)
	if err != nil {
		return "", err
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	if lang := strings.TrimSpace(c.language); lang != "" {
		query.Set("language", lang)
	} else {
		query.Set("language", "en-US")
	}

	return joined + "?" + query.Encode(), nil
}

// doGET performs a rate-limited GET and decodes the JSON body into v.
// Transport errors, 429s and 5xx responses are retried with backoff; any
// other 4xx aborts immediately.
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, v any) error {
	return retry.Do(
		func() error {
			c.throttleMu.Lock()
			since := time.Since(c.lastRequest)
			if since < c.minInterval {
				time.Sleep(c.minInterval - since)
			}
			c.lastRequest = time.Now()
			c.throttleMu.Unlock()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("tmdb request failed: %s", resp.Status)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(fmt.Errorf("tmdb request failed: %s", resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

type tmdbMovieResponse struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	Adult        bool    `json:"adult"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
}

type tmdbTVResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	Adult        bool    `json:"adult"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
}

type tmdbListResponse struct {
	Page         int                 `json:"page"`
	TotalPages   int                 `json:"total_pages"`
	TotalResults int                 `json:"total_results"`
	Results      []tmdbMovieResponse `json:"results"`
}

func (c *tmdbClient) movieDetails(ctx context.Context, tmdbID int64) (*tmdbMovieResponse, error) {
	endpoint, err := c.endpoint([]string{"movie", fmt.Sprintf("%d", tmdbID)}, nil)
	if err != nil {
		return nil, err
	}

	var payload tmdbMovieResponse
	if err := c.doGET(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) tvDetails(ctx context.Context, tmdbID int64) (*tmdbTVResponse, error) {
	endpoint, err := c.endpoint([]string{"tv", fmt.Sprintf("%d", tmdbID)}, nil)
	if err != nil {
		return nil, err
	}

	var payload tmdbTVResponse
	if err := c.doGET(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) movieList(ctx context.Context, segments []string, page int) (*tmdbListResponse, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", fmt.Sprintf("%d", page))
	}

	endpoint, err := c.endpoint(segments, query)
	if err != nil {
		return nil, err
	}

	var payload tmdbListResponse
	if err := c.doGET(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
