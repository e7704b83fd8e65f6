package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"cinewatch/handlers"
	"cinewatch/services/sessions"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// sessionMiddleware resolves the bearer token into a user ID on the request
// context. Requests without a valid session pass through anonymous; handlers
// that need a user enforce it themselves, which keeps the beacon and the
// history service's own "must be logged in" message reachable.
func sessionMiddleware(sessionsSvc *sessions.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := handlers.BearerToken(r); token != "" {
				if userID, err := sessionsSvc.Validate(token); err == nil {
					r = r.WithContext(handlers.ContextWithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	authHandler *handlers.AuthHandler,
	usersHandler *handlers.UsersHandler,
	historyHandler *handlers.HistoryHandler,
	playerEventsHandler *handlers.PlayerEventsHandler,
	playersHandler *handlers.PlayersHandler,
	discoverHandler *handlers.DiscoverHandler,
	imageHandler *handlers.ImageHandler,
	sessionsSvc *sessions.Service,
) {
	api := r.PathPrefix("/api").Subrouter()

	api.Use(corsMiddleware)
	api.Use(sessionMiddleware(sessionsSvc))

	// Auth
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	api.HandleFunc("/auth/me", handleOptions).Methods(http.MethodOptions)

	// Profiles
	api.HandleFunc("/users", usersHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users", usersHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}", usersHandler.Rename).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}", usersHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/color", usersHandler.SetColor).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/color", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/pin", usersHandler.SetPin).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/pin", usersHandler.ClearPin).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/pin", handleOptions).Methods(http.MethodOptions)

	// Playback progress. The save endpoint is the beacon target and accepts
	// token auth via query param since beacons cannot set headers.
	api.HandleFunc("/player/save-history", historyHandler.SaveHistory).Methods(http.MethodPost)
	api.HandleFunc("/player/save-history", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/player/events", playerEventsHandler.Stream).Methods(http.MethodGet)

	// History reads
	api.HandleFunc("/histories", historyHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/histories", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/histories/movie/{id}/position", historyHandler.MoviePosition).Methods(http.MethodGet)
	api.HandleFunc("/histories/tv/{id}/{season}/{episode}/position", historyHandler.TVPosition).Methods(http.MethodGet)

	// Embed player source lists
	api.HandleFunc("/players/movie/{id}", playersHandler.Movie).Methods(http.MethodGet)
	api.HandleFunc("/players/tv/{id}/{season}/{episode}", playersHandler.TVShow).Methods(http.MethodGet)

	// Discovery listings
	api.HandleFunc("/discover/movies", discoverHandler.Movies).Methods(http.MethodGet)

	// Image proxy (public, Image components cannot send auth headers)
	api.HandleFunc("/image/proxy", imageHandler.Proxy).Methods(http.MethodGet)
}
