package models

import "time"

// HistoryRecord is one persisted playback history row, uniquely identified by
// the tuple (UserID, MediaID, MediaType, Season, Episode). Display metadata is
// denormalized at write time and never refreshed afterwards, so it can go
// stale relative to the content provider.
type HistoryRecord struct {
	UserID       string    `json:"userId"`
	MediaID      int64     `json:"mediaId"`
	MediaType    string    `json:"type"`
	Season       int       `json:"season"`
	Episode      int       `json:"episode"`
	Duration     float64   `json:"duration"`
	LastPosition float64   `json:"lastPosition"`
	Completed    bool      `json:"completed"`
	Adult        bool      `json:"adult"`
	BackdropPath string    `json:"backdropPath,omitempty"`
	PosterPath   string    `json:"posterPath,omitempty"`
	ReleaseDate  string    `json:"releaseDate,omitempty"`
	Title        string    `json:"title"`
	VoteAverage  float64   `json:"voteAverage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ActionResponse is the structured outcome of a history mutation. Failures are
// reported through Message, never as an error to the caller.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
