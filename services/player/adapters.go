package player

import (
	"encoding/json"
	"sort"

	"cinewatch/models"
)

// Adapter translates one provider's raw messages into the unified event
// shape. Implementations do no unit normalization beyond field renaming;
// providers are assumed to report seconds.
type Adapter interface {
	// Origin is the exact scheme+host the provider serves its embed from.
	Origin() string
	// Parse converts a raw envelope into a unified event. It returns false
	// when the envelope does not carry playback telemetry.
	Parse(raw models.PlayerEnvelope) (*models.UnifiedPlayerEvent, bool)
}

// Registry maps trusted origins to adapters. The set is fixed at construction
// since trust is origin-based and must stay auditable.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a registry from the provided adapters. Each adapter must
// be registered under a unique origin.
func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Origin()] = a
	}
	return &Registry{adapters: m}
}

// DefaultRegistry returns the registry of all supported providers.
func DefaultRegistry() *Registry {
	return NewRegistry(VidLinkAdapter{}, VidKingAdapter{})
}

// Lookup returns the adapter registered for the exact origin. There is no
// wildcard or prefix matching.
func (r *Registry) Lookup(origin string) (Adapter, bool) {
	a, ok := r.adapters[origin]
	return a, ok
}

// Origins lists the trusted origins in sorted order.
func (r *Registry) Origins() []string {
	origins := make([]string, 0, len(r.adapters))
	for o := range r.adapters {
		origins = append(origins, o)
	}
	sort.Strings(origins)
	return origins
}

// VidLinkAdapter handles events from vidlink.pro, which reports the TMDB id
// in a provider-specific mtmdbId field.
type VidLinkAdapter struct{}

func (VidLinkAdapter) Origin() string { return "https://vidlink.pro" }

func (VidLinkAdapter) Parse(raw models.PlayerEnvelope) (*models.UnifiedPlayerEvent, bool) {
	if raw.Type != models.EnvelopePlayerEvent {
		return nil, false
	}

	var data struct {
		Event       models.PlayerEventType `json:"event"`
		CurrentTime float64                `json:"currentTime"`
		Duration    float64                `json:"duration"`
		MTMDBID     models.MediaID         `json:"mtmdbId"`
		MediaType   string                 `json:"mediaType"`
		Season      *int                   `json:"season"`
		Episode     *int                   `json:"episode"`
	}
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return nil, false
	}

	return &models.UnifiedPlayerEvent{
		Event:       data.Event,
		CurrentTime: data.CurrentTime,
		Duration:    data.Duration,
		MediaID:     data.MTMDBID,
		MediaType:   data.MediaType,
		Season:      data.Season,
		Episode:     data.Episode,
	}, true
}

// VidKingAdapter handles events from vidking.net, which uses a generic id
// field that may arrive as a string or a number, plus a provider-computed
// progress percentage.
type VidKingAdapter struct{}

func (VidKingAdapter) Origin() string { return "https://www.vidking.net" }

func (VidKingAdapter) Parse(raw models.PlayerEnvelope) (*models.UnifiedPlayerEvent, bool) {
	if raw.Type != models.EnvelopePlayerEvent {
		return nil, false
	}

	var data struct {
		Event       models.PlayerEventType `json:"event"`
		CurrentTime float64                `json:"currentTime"`
		Duration    float64                `json:"duration"`
		ID          models.MediaID         `json:"id"`
		MediaType   string                 `json:"mediaType"`
		Season      *int                   `json:"season"`
		Episode     *int                   `json:"episode"`
		Progress    float64                `json:"progress"`
	}
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return nil, false
	}

	return &models.UnifiedPlayerEvent{
		Event:       data.Event,
		CurrentTime: data.CurrentTime,
		Duration:    data.Duration,
		MediaID:     data.ID,
		MediaType:   data.MediaType,
		Season:      data.Season,
		Episode:     data.Episode,
		Progress:    data.Progress,
	}, true
}
