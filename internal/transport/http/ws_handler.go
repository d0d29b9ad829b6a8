package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizhub/internal/app"
	"quizhub/internal/domain"
)

// WSHandler pushes leaderboard updates to connected observers.
type WSHandler struct {
	broadcaster *app.Broadcaster
	upgrader    websocket.Upgrader
}

func NewWSHandler(broadcaster *app.Broadcaster) *WSHandler {
	return &WSHandler{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string                    `json:"type"`
	Payload []domain.LeaderboardEntry `json:"payload"`
}

// ServeWS upgrades the connection and subscribes it to leaderboard
// broadcasts. The observer receives the current snapshot immediately and a
// fresh leaderboard after every settled ledger update; the read loop exists
// only to notice the disconnect and drop the subscription.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.broadcaster.Subscribe(r.Context())
	if err != nil {
		log.Printf("ws subscribe failed: %v", err)
		_ = conn.WriteJSON(map[string]string{"type": "error", "message": "leaderboard unavailable"})
		return
	}
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for entries := range updates {
			if err := conn.WriteJSON(outboundMessage{Type: "leaderboardUpdated", Payload: entries}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-writerDone
}
