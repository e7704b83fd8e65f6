package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"cinewatch/services/player"
)

// PlayerEventsHandler bridges the front-end's relayed postMessage stream
// onto a per-connection event listener. The page opens one socket per
// playback session and forwards every embed message as a frame; closing the
// socket is the unload signal and triggers the final flush.
type PlayerEventsHandler struct {
	Registry *player.Registry
	Backend  player.Backend
	Enabled  bool

	upgrader websocket.Upgrader
}

func NewPlayerEventsHandler(registry *player.Registry, backend player.Backend, enabled bool) *PlayerEventsHandler {
	return &PlayerEventsHandler{
		Registry: registry,
		Backend:  backend,
		Enabled:  enabled,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is checked per message against the adapter registry,
			// not per connection: the socket comes from our own front-end.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// eventFrame is one relayed message. Either origin+message is set (a
// postMessage from an embed) or signal is set (a page lifecycle event).
type eventFrame struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
	Signal  string          `json:"signal"`
}

// Stream handles GET /api/player/events.
func (h *PlayerEventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	save := h.Enabled
	if r.URL.Query().Get("save") == "false" {
		save = false
	}

	meta := player.Metadata{
		Season:  queryInt(r, "season"),
		Episode: queryInt(r, "episode"),
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[player] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	gate := player.NewGate(h.Backend, userID, save, meta)
	listener := player.NewListener(h.Registry, gate, player.Callbacks{})
	defer listener.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[player] websocket read error: %v", err)
			}
			return
		}

		var frame eventFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			log.Printf("[player] invalid frame: %v", err)
			continue
		}

		switch {
		case frame.Signal == "hidden":
			listener.VisibilityHidden()
		case frame.Origin != "":
			listener.HandleMessage(frame.Origin, frame.Message)
		}
	}
}

func queryInt(r *http.Request, key string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return value
}
