// Package history persists per-user playback history keyed by the tuple
// (user, media, type, season, episode).
package history

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"cinewatch/models"
)

var ErrUserIDRequired = errors.New("user id is required")

// MetadataService fetches point-in-time display metadata for records. The
// fetched fields are denormalized into the row and never refreshed.
type MetadataService interface {
	MovieInfo(ctx context.Context, tmdbID int64) (*models.MediaInfo, error)
	TVShowInfo(ctx context.Context, tmdbID int64) (*models.MediaInfo, error)
}

// Service is the backend upsert/query surface for watch history.
type Service struct {
	db       *sql.DB
	metadata MetadataService
}

// NewService constructs a history service backed by the given database.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// SetMetadataService sets the metadata service used to enrich records.
func (s *Service) SetMetadataService(metadata MetadataService) {
	s.metadata = metadata
}

// Sync validates and upserts one playback event. Every outcome is reported as
// a structured ActionResponse; it never returns an error and never panics
// through to the caller.
//
// The season/episode presence check runs on the raw event before any caller
// backfill: a tv event whose provider omitted the fields entirely is rejected
// here, while an explicit or backfilled zero is accepted and persisted as 0.
func (s *Service) Sync(ctx context.Context, userID string, event *models.UnifiedPlayerEvent, completed bool) (resp models.ActionResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[history] unexpected error: %v", r)
			resp = models.ActionResponse{Success: false, Message: "An unexpected error occurred"}
		}
	}()

	if event == nil {
		return models.ActionResponse{Success: false, Message: "No data to save"}
	}

	log.Printf("[history] saving history: media=%s type=%s t=%.1f/%.1f", event.MediaID, event.MediaType, event.CurrentTime, event.Duration)

	if event.MediaType == models.MediaTypeTV && (event.Season == nil || event.Episode == nil) {
		return models.ActionResponse{Success: false, Message: "Missing season or episode"}
	}

	if strings.TrimSpace(userID) == "" {
		return models.ActionResponse{Success: false, Message: "You must be logged in to save history"}
	}

	if event.MediaID == "" || event.MediaType == "" {
		return models.ActionResponse{Success: false, Message: "Missing required fields"}
	}

	if event.MediaType != models.MediaTypeMovie && event.MediaType != models.MediaTypeTV {
		return models.ActionResponse{Success: false, Message: `Invalid content type. Must be "movie" or "tv"`}
	}

	mediaID, err := event.MediaID.Int64()
	if err != nil {
		log.Printf("[history] non-numeric media id %q: %v", event.MediaID, err)
		return models.ActionResponse{Success: false, Message: "Failed to save history"}
	}

	var info *models.MediaInfo
	if event.MediaType == models.MediaTypeMovie {
		info, err = s.metadata.MovieInfo(ctx, mediaID)
	} else {
		info, err = s.metadata.TVShowInfo(ctx, mediaID)
	}
	if err != nil {
		log.Printf("[history] metadata lookup failed for %d: %v", mediaID, err)
		return models.ActionResponse{Success: false, Message: "An unexpected error occurred"}
	}

	record := models.HistoryRecord{
		UserID:       userID,
		MediaID:      mediaID,
		MediaType:    event.MediaType,
		Season:       event.SeasonOrZero(),
		Episode:      event.EpisodeOrZero(),
		Duration:     event.Duration,
		LastPosition: event.CurrentTime,
		Completed:    completed,
		Adult:        info.Adult,
		BackdropPath: info.BackdropPath,
		PosterPath:   info.PosterPath,
		ReleaseDate:  info.ReleaseDate,
		Title:        info.Title,
		VoteAverage:  info.VoteAverage,
	}

	if err := s.upsert(ctx, record); err != nil {
		log.Printf("[history] save error: %v", err)
		return models.ActionResponse{Success: false, Message: "Failed to save history"}
	}

	return models.ActionResponse{Success: true, Message: "History saved"}
}

// upsert writes the record, replacing the mutable fields of any existing row
// with the same identity tuple. Records are never deleted by this service.
func (s *Service) upsert(ctx context.Context, record models.HistoryRecord) error {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO histories (
			user_id, media_id, type, season, episode,
			duration, last_position, completed, adult,
			backdrop_path, poster_path, release_date, title, vote_average,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, media_id, type, season, episode) DO UPDATE SET
			duration      = excluded.duration,
			last_position = excluded.last_position,
			completed     = excluded.completed,
			adult         = excluded.adult,
			backdrop_path = excluded.backdrop_path,
			poster_path   = excluded.poster_path,
			release_date  = excluded.release_date,
			title         = excluded.title,
			vote_average  = excluded.vote_average,
			updated_at    = excluded.updated_at`,
		record.UserID, record.MediaID, record.MediaType, record.Season, record.Episode,
		record.Duration, record.LastPosition, record.Completed, record.Adult,
		record.BackdropPath, record.PosterPath, record.ReleaseDate, record.Title, record.VoteAverage,
		now, now,
	)
	return err
}

// ListRecent returns the user's history ordered by most recent update.
func (s *Service) ListRecent(ctx context.Context, userID string, limit int) ([]models.HistoryRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, media_id, type, season, episode,
		       duration, last_position, completed, adult,
		       backdrop_path, poster_path, release_date, title, vote_average,
		       created_at, updated_at
		FROM histories
		WHERE user_id = ?
		ORDER BY updated_at DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.HistoryRecord, 0, limit)
	for rows.Next() {
		var r models.HistoryRecord
		if err := rows.Scan(
			&r.UserID, &r.MediaID, &r.MediaType, &r.Season, &r.Episode,
			&r.Duration, &r.LastPosition, &r.Completed, &r.Adult,
			&r.BackdropPath, &r.PosterPath, &r.ReleaseDate, &r.Title, &r.VoteAverage,
			&r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// LastPosition returns the last known playback position for the identity
// tuple. Absence, a missing user, and backend errors all degrade to 0 since
// the read path only populates passive UI.
func (s *Service) LastPosition(ctx context.Context, userID string, mediaID int64, mediaType string, season, episode int) float64 {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0
	}

	var position float64
	err := s.db.QueryRowContext(ctx, `
		SELECT last_position FROM histories
		WHERE user_id = ? AND media_id = ? AND type = ? AND season = ? AND episode = ?`,
		userID, mediaID, mediaType, season, episode,
	).Scan(&position)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[history] position lookup failed: %v", err)
		}
		return 0
	}

	return position
}
