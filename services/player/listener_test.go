package player

import (
	"fmt"
	"testing"

	"cinewatch/models"
)

const (
	vidlinkOrigin = "https://vidlink.pro"
	vidkingOrigin = "https://www.vidking.net"
)

func playerMessage(event string, currentTime float64) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"PLAYER_EVENT","data":{"event":%q,"currentTime":%g,"duration":5400,"mtmdbId":550,"mediaType":"movie"}}`,
		event, currentTime,
	))
}

func TestListenerIgnoresUnknownOrigins(t *testing.T) {
	backend := newFakeBackend()
	listener := NewListener(DefaultRegistry(), NewGate(backend, "user-1", true, Metadata{}), Callbacks{})

	listener.HandleMessage("https://evil.example", playerMessage("timeupdate", 60))

	if state := listener.State(); state.LastEvent != "" || state.CurrentTime != 0 {
		t.Fatalf("expected untouched state, got %+v", state)
	}
	listener.Close()
	if backend.callCount() != 0 {
		t.Fatal("expected no syncs for untrusted origin")
	}
}

func TestListenerDropsMalformedJSON(t *testing.T) {
	backend := newFakeBackend()
	listener := NewListener(DefaultRegistry(), NewGate(backend, "user-1", true, Metadata{}), Callbacks{})

	listener.HandleMessage(vidlinkOrigin, []byte(`{"type":"PLAYER_EVENT","data":`))
	listener.HandleMessage(vidlinkOrigin, []byte(`"not an envelope`))

	if state := listener.State(); state.LastEvent != "" {
		t.Fatalf("expected untouched state, got %+v", state)
	}
	listener.Close()
	if backend.callCount() != 0 {
		t.Fatal("expected no syncs for malformed payloads")
	}
}

func TestListenerAcceptsStringWrappedEnvelope(t *testing.T) {
	backend := newFakeBackend()
	listener := NewListener(DefaultRegistry(), NewGate(backend, "user-1", true, Metadata{}), Callbacks{})

	wrapped := fmt.Sprintf("%q", string(playerMessage("timeupdate", 60)))
	listener.HandleMessage(vidlinkOrigin, []byte(wrapped))

	if state := listener.State(); state.CurrentTime != 60 {
		t.Fatalf("expected string-wrapped envelope to be handled, got %+v", state)
	}
}

func TestListenerDerivedState(t *testing.T) {
	backend := newFakeBackend()
	listener := NewListener(DefaultRegistry(), NewGate(backend, "", false, Metadata{}), Callbacks{})

	listener.HandleMessage(vidlinkOrigin, playerMessage("play", 0))
	if state := listener.State(); !state.IsPlaying || state.LastEvent != models.PlayerEventPlay {
		t.Fatalf("unexpected state after play: %+v", state)
	}

	listener.HandleMessage(vidlinkOrigin, playerMessage("timeupdate", 42))
	if state := listener.State(); state.CurrentTime != 42 || state.Duration != 5400 {
		t.Fatalf("unexpected state after timeupdate: %+v", state)
	}

	listener.HandleMessage(vidlinkOrigin, playerMessage("pause", 42))
	if state := listener.State(); state.IsPlaying {
		t.Fatalf("expected paused state, got %+v", state)
	}

	listener.HandleMessage(vidlinkOrigin, playerMessage("seeked", 300))
	if state := listener.State(); state.CurrentTime != 300 {
		t.Fatalf("unexpected state after seeked: %+v", state)
	}

	listener.HandleMessage(vidlinkOrigin, playerMessage("ended", 5400))
	if state := listener.State(); state.IsPlaying || state.LastEvent != models.PlayerEventEnded {
		t.Fatalf("unexpected state after ended: %+v", state)
	}
}

func TestListenerCallbacksFirePerEventKind(t *testing.T) {
	backend := newFakeBackend()
	seen := make(map[models.PlayerEventType]int)
	callbacks := Callbacks{
		OnPlay:       func(ev *models.UnifiedPlayerEvent) { seen[ev.Event]++ },
		OnPause:      func(ev *models.UnifiedPlayerEvent) { seen[ev.Event]++ },
		OnSeeked:     func(ev *models.UnifiedPlayerEvent) { seen[ev.Event]++ },
		OnEnded:      func(ev *models.UnifiedPlayerEvent) { seen[ev.Event]++ },
		OnTimeUpdate: func(ev *models.UnifiedPlayerEvent) { seen[ev.Event]++ },
	}
	listener := NewListener(DefaultRegistry(), NewGate(backend, "", false, Metadata{}), callbacks)

	for _, event := range []string{"play", "timeupdate", "pause", "seeked", "ended"} {
		listener.HandleMessage(vidlinkOrigin, playerMessage(event, 10))
	}
	listener.Close()

	for _, event := range []models.PlayerEventType{
		models.PlayerEventPlay,
		models.PlayerEventPause,
		models.PlayerEventSeeked,
		models.PlayerEventEnded,
		models.PlayerEventTimeUpdate,
	} {
		if seen[event] != 1 {
			t.Fatalf("expected exactly one %s callback, got %d", event, seen[event])
		}
	}
}

func TestListenerSyncsTimeUpdatesThroughGate(t *testing.T) {
	backend := newFakeBackend()
	listener := NewListener(DefaultRegistry(), NewGate(backend, "user-1", true, Metadata{}), Callbacks{})

	listener.HandleMessage(vidlinkOrigin, playerMessage("timeupdate", 10))
	listener.HandleMessage(vidlinkOrigin, playerMessage("pause", 12)) // pause never syncs
	listener.Close()                                                  // waits for in-flight syncs, then flushes the pause event

	if got := backend.callCount(); got != 2 {
		t.Fatalf("expected timeupdate sync plus final flush, got %d", got)
	}
	if backend.call(0).completed {
		t.Fatal("timeupdate sync must not be marked completed")
	}
	if last := backend.call(1); last.completed || last.event.Event != models.PlayerEventPause {
		t.Fatalf("unexpected final flush %+v", last)
	}
}

func TestListenerEndedForcesCompletedSync(t *testing.T) {
	backend := newFakeBackend()
	listener := NewListener(DefaultRegistry(), NewGate(backend, "user-1", true, Metadata{}), Callbacks{})

	listener.HandleMessage(vidkingOrigin, []byte(
		`{"type":"PLAYER_EVENT","data":{"event":"ended","currentTime":5400,"duration":5400,"id":"550","mediaType":"movie"}}`,
	))
	listener.Close()

	// One gated sync for the ended event, one final flush on Close.
	if got := backend.callCount(); got != 2 {
		t.Fatalf("expected 2 syncs, got %d", got)
	}
	if !backend.call(0).completed || !backend.call(1).completed {
		t.Fatalf("expected both writes to carry the completion flag: %+v", backend.calls)
	}
}

func TestListenerVisibilityHiddenFlushesLastEvent(t *testing.T) {
	backend := newFakeBackend()
	listener := NewListener(DefaultRegistry(), NewGate(backend, "user-1", true, Metadata{}), Callbacks{})

	listener.VisibilityHidden() // nothing observed yet: no-op

	listener.HandleMessage(vidlinkOrigin, playerMessage("pause", 42))
	listener.VisibilityHidden()
	listener.Close()

	// Visibility sync (gated, delta 42 > 5) plus the Close flush.
	if got := backend.callCount(); got != 2 {
		t.Fatalf("expected 2 syncs, got %d", got)
	}
}

func TestListenerCloseIsIdempotentAndStopsIntake(t *testing.T) {
	backend := newFakeBackend()
	listener := NewListener(DefaultRegistry(), NewGate(backend, "user-1", true, Metadata{}), Callbacks{})

	listener.HandleMessage(vidlinkOrigin, playerMessage("timeupdate", 10))
	listener.Close()
	listener.Close()
	listener.HandleMessage(vidlinkOrigin, playerMessage("timeupdate", 100))
	listener.VisibilityHidden()

	if got := backend.callCount(); got != 2 {
		t.Fatalf("expected no writes after close, got %d", got)
	}
}
