package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/surajmandalcell/asrpro-sub001/internal/orchestrator"
)

// subscriber buffer; a consumer this far behind is dropped rather than
// allowed to stall lifecycle operations.
const eventBuffer = 64

// EventHub fans orchestrator events out to websocket subscribers. It
// implements orchestrator.EventPublisher, so it can be passed straight into
// orchestrator.Config.
type EventHub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
	now  func() time.Time
}

// NewEventHub constructs an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan []byte]struct{}), now: time.Now}
}

// Publish marshals the event and broadcasts it. Slow subscribers are
// disconnected instead of blocking the publisher.
func (h *EventHub) Publish(e orchestrator.Event) {
	payload := map[string]any{
		"event": e.Name,
		"ts":    h.now().Unix(),
	}
	if e.ModelID != "" {
		payload["model_id"] = e.ModelID
	}
	for k, v := range e.Fields {
		payload[k] = v
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- buf:
		default:
			delete(h.subs, ch)
			close(ch)
		}
	}
	h.mu.Unlock()
}

func (h *EventHub) subscribe() chan []byte {
	ch := make(chan []byte, eventBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *EventHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Subscribers reports the current subscriber count.
func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEvents upgrades the connection and relays hub events until the client
// goes away or the server shuts down.
func (h *EventHub) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		zlog.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// Drain client frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	for {
		select {
		case buf, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, buf); err != nil {
				return
			}
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			return
		}
	}
}
