package relay

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/briwylde08/dead-mans-draw/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  MaxMessageBytes,
	WriteBufferSize: MaxMessageBytes,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeDeadline = 5 * time.Second

// wireMessage is the JSON envelope a client sends and receives over the
// websocket connection. SessionID travels in the URL the caller dispatches
// on (e.g. /relay/{sessionId}), not in the message body.
type wireMessage struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Serve upgrades an HTTP request to a websocket, joins sessionID's room on
// broker, and relays messages bidirectionally until the client disconnects.
// It never blocks game progress: if the socket drops mid-session the
// caller's on-chain state remains authoritative and the client falls back
// to timed polling.
func Serve(broker Broker, sessionID uint32, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Warnw("relay: closing connection", "sessionId", sessionID, "error", err)
		}
	}()

	id, events := broker.Join(sessionID)
	defer broker.Leave(sessionID, id)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for evt := range events {
			if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
				return
			}
			if err := conn.WriteJSON(wireMessage{Type: evt.Type, Payload: evt.Payload}); err != nil {
				log.Warnw("relay: write failed", "sessionId", sessionID, "client", id, "error", err)
				return
			}
		}
	}()

	for {
		var msg wireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warnw("relay: read error", "sessionId", sessionID, "client", id, "error", err)
			}
			break
		}
		if err := broker.Publish(sessionID, id, msg.Type, msg.Payload); err != nil {
			log.Warnw("relay: publish rejected", "sessionId", sessionID, "client", id, "error", err)
		}
	}

	<-writerDone
	return nil
}
