package player

import (
	"context"
	"log"
	"math"
	"sync"

	"cinewatch/models"
)

// syncThresholdSeconds bounds write frequency under periodic timeupdate
// events. An event is only admitted when its currentTime moved more than this
// many seconds away from the last successfully synced position.
const syncThresholdSeconds = 5

// Backend persists admitted events. Implementations must be idempotent per
// identity tuple; the last write wins when syncs overlap.
type Backend interface {
	Sync(ctx context.Context, userID string, event *models.UnifiedPlayerEvent, completed bool) models.ActionResponse
}

// Metadata carries the season/episode the page already knows about, used to
// backfill events from providers that omit them.
type Metadata struct {
	Season  int
	Episode int
}

// Gate decides whether a unified event is forwarded to the backend. Admission
// requires the save-history feature, an authenticated user, and passing the
// time-delta throttle; any miss is a silent no-op. The forced ended sync goes
// through the same checks, so an ended event landing within the threshold of
// the previous sync is still dropped.
type Gate struct {
	backend     Backend
	saveHistory bool
	userID      string
	meta        Metadata

	mu         sync.Mutex
	lastSynced float64
}

// NewGate builds a gate for one playback session. userID may be empty for
// anonymous sessions, in which case nothing is ever synced.
func NewGate(backend Backend, userID string, saveHistory bool, meta Metadata) *Gate {
	return &Gate{
		backend:     backend,
		saveHistory: saveHistory,
		userID:      userID,
		meta:        meta,
	}
}

// Sync forwards the event to the backend if all admission checks pass. It is
// best-effort and never returns an error; backend failures are logged and
// leave the throttle baseline unchanged so the next eligible event retries.
func (g *Gate) Sync(ctx context.Context, event *models.UnifiedPlayerEvent, completed bool) {
	if event == nil || !g.saveHistory || g.userID == "" {
		return
	}

	g.mu.Lock()
	baseline := g.lastSynced
	g.mu.Unlock()

	if math.Abs(event.CurrentTime-baseline) <= syncThresholdSeconds {
		return
	}

	payload := g.backfill(event)
	res := g.backend.Sync(ctx, g.userID, payload, completed)
	if !res.Success {
		log.Printf("[player] save history failed: %s", res.Message)
		return
	}

	g.mu.Lock()
	g.lastSynced = event.CurrentTime
	g.mu.Unlock()
}

// Flush hands the event to the backend without the throttle, used for the
// final best-effort write on teardown. Delivery is not guaranteed and must
// never be relied upon for correctness, only recency. No metadata backfill
// happens here; the payload goes out exactly as last observed.
func (g *Gate) Flush(ctx context.Context, event *models.UnifiedPlayerEvent) {
	if event == nil || !g.saveHistory || g.userID == "" {
		return
	}

	completed := event.Event == models.PlayerEventEnded
	if res := g.backend.Sync(ctx, g.userID, event, completed); !res.Success {
		log.Printf("[player] final flush failed: %s", res.Message)
	}
}

// backfill fills missing or zero season/episode from the session metadata,
// defaulting to 0. The original event is not mutated.
func (g *Gate) backfill(event *models.UnifiedPlayerEvent) *models.UnifiedPlayerEvent {
	payload := *event

	season := event.SeasonOrZero()
	if season == 0 {
		season = g.meta.Season
	}
	episode := event.EpisodeOrZero()
	if episode == 0 {
		episode = g.meta.Episode
	}

	payload.Season = &season
	payload.Episode = &episode
	return &payload
}
