// Package messaging provides the live stats stream. Open browser tabs
// subscribe over a websocket and receive the user's stats record after
// every persisted update, keeping streak and study-time displays in sync
// without polling.
package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
	"github.com/gorilla/websocket"
)

// StatsBroadcaster manages per-user websocket subscriptions.
type StatsBroadcaster struct {
	subscribers map[string][]*subscriber // userId -> connections
	mu          sync.Mutex
	logger      *logging.ChanneledLogger
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// NewStatsBroadcaster creates a broadcaster.
func NewStatsBroadcaster(logger *logging.ChanneledLogger) *StatsBroadcaster {
	return &StatsBroadcaster{
		subscribers: make(map[string][]*subscriber),
		logger:      logger,
	}
}

// Subscribe registers a websocket connection for a user and starts its
// writer loop. The connection is closed and unregistered when the send
// buffer stalls or the peer goes away.
func (b *StatsBroadcaster) Subscribe(userID string, conn *websocket.Conn) {
	sub := &subscriber{conn: conn, send: make(chan []byte, 8)}

	b.mu.Lock()
	b.subscribers[userID] = append(b.subscribers[userID], sub)
	count := len(b.subscribers[userID])
	b.mu.Unlock()

	b.logger.Stream().Debug("Stats stream client registered", "userId", userID, "connections", count)

	go b.writeLoop(userID, sub)
	go b.readLoop(userID, sub)
}

// Publish sends a payload to every connection a user has open. Slow
// connections are dropped rather than blocking the caller.
func (b *StatsBroadcaster) Publish(userID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Stream().Error("Failed to marshal stream payload", "error", err.Error(), "userId", userID)
		return
	}

	// Sends happen under the mutex so remove cannot close a send channel
	// while a send is in flight. The channels are buffered and drained
	// without the lock, so this never blocks.
	b.mu.Lock()
	var stalled []*subscriber
	for _, sub := range b.subscribers[userID] {
		select {
		case sub.send <- data:
		default:
			stalled = append(stalled, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range stalled {
		b.remove(userID, sub)
	}
}

// ConnectionCount returns the number of open connections for a user.
func (b *StatsBroadcaster) ConnectionCount(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[userID])
}

func (b *StatsBroadcaster) writeLoop(userID string, sub *subscriber) {
	heartbeat := time.NewTicker(time.Duration(config.StreamHeartbeatSeconds) * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case data, ok := <-sub.send:
			if !ok {
				return
			}
			sub.conn.SetWriteDeadline(time.Now().Add(config.StreamWriteTimeout))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				b.remove(userID, sub)
				return
			}
		case <-heartbeat.C:
			sub.conn.SetWriteDeadline(time.Now().Add(config.StreamWriteTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				b.remove(userID, sub)
				return
			}
		}
	}
}

// readLoop drains the connection so pongs and close frames are processed.
func (b *StatsBroadcaster) readLoop(userID string, sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			b.remove(userID, sub)
			return
		}
	}
}

func (b *StatsBroadcaster) remove(userID string, sub *subscriber) {
	b.mu.Lock()
	subs := b.subscribers[userID]
	for i, s := range subs {
		if s == sub {
			b.subscribers[userID] = append(subs[:i], subs[i+1:]...)
			close(s.send)
			s.conn.Close()
			break
		}
	}
	if len(b.subscribers[userID]) == 0 {
		delete(b.subscribers, userID)
	}
	b.mu.Unlock()

	b.logger.Stream().Debug("Stats stream client unregistered", "userId", userID)
}
