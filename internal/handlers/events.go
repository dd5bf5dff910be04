package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alextreichler/lessonshop/internal/shop"
)

// liveState is what the page script needs to redraw the notification bar,
// the message banner and the cart counter.
type liveState struct {
	Kind           shop.EventKind `json:"kind"`
	CartCount      int            `json:"cartCount"`
	CartTotal      float64        `json:"cartTotal"`
	Notice         string         `json:"notice"`
	NoticeProgress float64        `json:"noticeProgress"`
	MessageType    string         `json:"messageType"`
	Message        string         `json:"message"`
}

// Events streams storefront changes of the session as server-sent events
// until the client disconnects.
func (h *ShopHandler) Events(w http.ResponseWriter, r *http.Request) {
	session, front := h.storefront(r)
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := make(chan shop.EventKind, 64)
	unsubscribe := front.Subscribe(func(e shop.Event) {
		select {
		case events <- e.Kind:
		default:
			// The client is behind; it catches up with the next event.
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case kind := <-events:
			snap := front.Snapshot()
			payload, err := json.Marshal(liveState{
				Kind:           kind,
				CartCount:      snap.CartCount,
				CartTotal:      snap.CartTotal,
				Notice:         snap.Notice,
				NoticeProgress: snap.NoticeProgress,
				MessageType:    snap.Message.Type,
				Message:        snap.Message.Text,
			})
			if err != nil {
				slog.Error("Failed to encode event", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", kind, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
