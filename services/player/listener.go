package player

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/sourcegraph/conc"

	"cinewatch/models"
)

// Callbacks are invoked after the listener has updated its derived state for
// the matching event kind. All fields are optional.
type Callbacks struct {
	OnPlay       func(*models.UnifiedPlayerEvent)
	OnPause      func(*models.UnifiedPlayerEvent)
	OnSeeked     func(*models.UnifiedPlayerEvent)
	OnEnded      func(*models.UnifiedPlayerEvent)
	OnTimeUpdate func(*models.UnifiedPlayerEvent)
}

// State is the minimal derived view of playback the UI needs.
type State struct {
	IsPlaying   bool                   `json:"isPlaying"`
	CurrentTime float64                `json:"currentTime"`
	Duration    float64                `json:"duration"`
	LastEvent   models.PlayerEventType `json:"lastEvent,omitempty"`
}

// Listener consumes relayed player messages for one playback session. It
// normalizes raw messages through the registry, keeps the last known event in
// a single-owner slot, and drives history syncs through the gate. Syncs run
// in their own goroutines so a slow backend never blocks message handling;
// earlier syncs may race with newer events, which is tolerated because only
// eventual position accuracy matters.
type Listener struct {
	registry  *Registry
	gate      *Gate
	callbacks Callbacks

	mu     sync.Mutex
	last   *models.UnifiedPlayerEvent
	state  State
	closed bool

	wg conc.WaitGroup
}

// NewListener wires a listener to a registry and gate.
func NewListener(registry *Registry, gate *Gate, callbacks Callbacks) *Listener {
	return &Listener{
		registry:  registry,
		gate:      gate,
		callbacks: callbacks,
	}
}

// HandleMessage processes one relayed cross-origin message. origin must match
// a registered adapter exactly; anything else is ignored silently, which is
// the sole trust boundary for accepting telemetry. The payload may be an
// envelope object or a JSON string wrapping one.
func (l *Listener) HandleMessage(origin string, payload []byte) {
	adapter, ok := l.registry.Lookup(origin)
	if !ok {
		return
	}

	data := bytes.TrimSpace(payload)
	// Some players double-encode and deliver the envelope as a JSON string.
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			log.Printf("[player] invalid JSON from %s: %v", origin, err)
			return
		}
		data = []byte(inner)
	}

	var envelope models.PlayerEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.Printf("[player] invalid JSON from %s: %v", origin, err)
		return
	}

	event, ok := adapter.Parse(envelope)
	if !ok {
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.last = event
	l.state.LastEvent = event.Event
	switch event.Event {
	case models.PlayerEventPlay:
		l.state.IsPlaying = true
	case models.PlayerEventPause, models.PlayerEventEnded:
		l.state.IsPlaying = false
	case models.PlayerEventSeeked, models.PlayerEventTimeUpdate:
		l.state.CurrentTime = event.CurrentTime
		l.state.Duration = event.Duration
	}
	l.mu.Unlock()

	switch event.Event {
	case models.PlayerEventPlay:
		if l.callbacks.OnPlay != nil {
			l.callbacks.OnPlay(event)
		}
	case models.PlayerEventPause:
		if l.callbacks.OnPause != nil {
			l.callbacks.OnPause(event)
		}
	case models.PlayerEventEnded:
		l.dispatch(func() {
			l.gate.Sync(context.Background(), event, true)
		})
		if l.callbacks.OnEnded != nil {
			l.callbacks.OnEnded(event)
		}
	case models.PlayerEventSeeked:
		if l.callbacks.OnSeeked != nil {
			l.callbacks.OnSeeked(event)
		}
	case models.PlayerEventTimeUpdate:
		l.dispatch(func() {
			l.gate.Sync(context.Background(), event, false)
		})
		if l.callbacks.OnTimeUpdate != nil {
			l.callbacks.OnTimeUpdate(event)
		}
	}
}

// dispatch runs fn on the sync wait group unless the listener is closed.
// Spawning under the lock guarantees Close cannot start waiting in between.
func (l *Listener) dispatch(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.wg.Go(fn)
}

// VisibilityHidden flushes the last known event through the gate when the
// page goes to the background, a best-effort write before the user possibly
// navigates away.
func (l *Listener) VisibilityHidden() {
	l.mu.Lock()
	last := l.last
	l.mu.Unlock()

	if last == nil {
		return
	}

	l.dispatch(func() {
		l.gate.Sync(context.Background(), last, false)
	})
}

// State returns a snapshot of the derived playback state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Close performs the final last-resort flush of the last known event (with
// the completion flag computed from the event kind, bypassing the throttle)
// and stops the listener. In-flight syncs are never cancelled; Close waits
// for them to settle. It is safe to call more than once.
func (l *Listener) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	last := l.last
	if last != nil {
		l.wg.Go(func() {
			l.gate.Flush(context.Background(), last)
		})
	}
	l.mu.Unlock()

	l.wg.Wait()
}
