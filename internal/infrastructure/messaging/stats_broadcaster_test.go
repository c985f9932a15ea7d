package messaging

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
)

func newTestBroadcaster(t *testing.T) *StatsBroadcaster {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	require.NoError(t, err)
	return NewStatsBroadcaster(logger)
}

// dialSubscriber connects a real websocket client whose server side is
// registered with the broadcaster.
func dialSubscriber(t *testing.T, b *StatsBroadcaster, userID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.Subscribe(userID, conn)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func waitForConnections(t *testing.T, b *StatsBroadcaster, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ConnectionCount(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, want, b.ConnectionCount(userID))
}

func TestPublishReachesSubscriber(t *testing.T) {
	b := newTestBroadcaster(t)
	client := dialSubscriber(t, b, "user-1")
	waitForConnections(t, b, "user-1", 1)

	b.Publish("user-1", map[string]int{"studyMinutes": 45})

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "studyMinutes")
}

func TestPublishIsScopedToUser(t *testing.T) {
	b := newTestBroadcaster(t)
	client := dialSubscriber(t, b, "user-2")
	waitForConnections(t, b, "user-2", 1)

	b.Publish("user-1", map[string]int{"studyMinutes": 45})

	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := client.ReadMessage()
	assert.Error(t, err, "a publish for another user must not reach this client")
}

func TestPublishRacingAbruptDisconnects(t *testing.T) {
	b := newTestBroadcaster(t)

	for i := 0; i < 10; i++ {
		client := dialSubscriber(t, b, "user-1")
		client.Close()
	}

	// Publishing while the read loops are tearing the connections down
	// must never send on a closed channel.
	for i := 0; i < 500; i++ {
		b.Publish("user-1", map[string]int{"i": i})
	}

	waitForConnections(t, b, "user-1", 0)
}
