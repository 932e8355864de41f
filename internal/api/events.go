package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alexanderramin/mandalart/internal/session"
)

// KeepaliveInterval is how often an idle event stream sends a comment line.
var KeepaliveInterval = 15 * time.Second

// latestOnly keeps at most one pending change in ch, replacing an unsent
// older one. The store publishes changes one at a time, so the send after
// the drain never blocks.
func latestOnly(ch chan session.Change) func(session.Change) {
	return func(c session.Change) {
		select {
		case <-ch:
		default:
		}
		ch <- c
	}
}

// StreamEvents streams the session as server-sent events: the current
// snapshot first, then the newest state after each applied mutation. Every
// event carries the store version as its id, and versions never go down.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error": "streaming not supported"}`, http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	key := sessionKey(r)

	updates := make(chan session.Change, 1)
	current, unsubscribe, err := h.wizard.Watch(ctx, key, latestOnly(updates))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeSessionEvent(w, current); err != nil {
		return
	}
	flusher.Flush()
	sent := current.Version

	keepalive := time.NewTicker(KeepaliveInterval)
	defer keepalive.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-updates:
			if c.Version <= sent {
				continue
			}
			if err := writeSessionEvent(w, c); err != nil {
				h.log.Warn("failed to write session event", "session", key, "error", err)
				return
			}
			sent = c.Version
			flusher.Flush()
		case <-keepalive.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSessionEvent(w io.Writer, c session.Change) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\n", c.Version)
	if err != nil {
		return err
	}
	return writeSSE(w, "session", string(data))
}

func writeSSE(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
