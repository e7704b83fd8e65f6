package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// PlayerEventType enumerates the playback events embedded players report.
type PlayerEventType string

const (
	PlayerEventPlay       PlayerEventType = "play"
	PlayerEventPause      PlayerEventType = "pause"
	PlayerEventSeeked     PlayerEventType = "seeked"
	PlayerEventEnded      PlayerEventType = "ended"
	PlayerEventTimeUpdate PlayerEventType = "timeupdate"
)

// Outer envelope tags. Embedded players post other message kinds on the same
// channel (e.g. media data dumps); only PLAYER_EVENT envelopes carry telemetry.
const (
	EnvelopePlayerEvent = "PLAYER_EVENT"
	EnvelopeMediaData   = "MEDIA_DATA"
)

// Media types accepted for history records.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// PlayerEnvelope is the outer shape of every message an embedded player posts.
type PlayerEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MediaID is a content identifier that providers report either as a JSON
// string or a number. It is stored in its textual form.
type MediaID string

func (m *MediaID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = MediaID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*m = MediaID(n.String())
	return nil
}

func (m MediaID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(m), 10, 64); err == nil {
		return []byte(m), nil
	}
	return json.Marshal(string(m))
}

// Int64 parses the identifier as a numeric TMDB id.
func (m MediaID) Int64() (int64, error) {
	return strconv.ParseInt(string(m), 10, 64)
}

// UnifiedPlayerEvent is the canonical shape all provider adapters produce.
// Season and Episode are pointers so that an event carrying an explicit zero
// can be told apart from one where the provider omitted the field entirely.
// currentTime <= duration is not guaranteed; providers may violate it.
type UnifiedPlayerEvent struct {
	Event       PlayerEventType `json:"event"`
	CurrentTime float64         `json:"currentTime"`
	Duration    float64         `json:"duration"`
	MediaID     MediaID         `json:"mediaId"`
	MediaType   string          `json:"mediaType"`
	Season      *int            `json:"season,omitempty"`
	Episode     *int            `json:"episode,omitempty"`
	Progress    float64         `json:"progress,omitempty"`
}

// SeasonOrZero returns the season number, or 0 when absent.
func (e *UnifiedPlayerEvent) SeasonOrZero() int {
	if e.Season == nil {
		return 0
	}
	return *e.Season
}

// EpisodeOrZero returns the episode number, or 0 when absent.
func (e *UnifiedPlayerEvent) EpisodeOrZero() int {
	if e.Episode == nil {
		return 0
	}
	return *e.Episode
}
