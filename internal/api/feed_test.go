package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(allowedOrigins []string) *Feed {
	return &Feed{
		allowedOrigins: allowedOrigins,
		conns:          make(map[uuid.UUID]map[*feedClient]struct{}),
	}
}

func (f *Feed) addTestClient(userID uuid.UUID) *feedClient {
	client := &feedClient{send: make(chan []byte, feedSendBuffer)}
	f.mu.Lock()
	if f.conns[userID] == nil {
		f.conns[userID] = make(map[*feedClient]struct{})
	}
	f.conns[userID][client] = struct{}{}
	f.mu.Unlock()
	return client
}

func TestFeedPublish_QueuesEventForConnectedClient(t *testing.T) {
	feed := newTestFeed(nil)
	userID := uuid.New()
	client := feed.addTestClient(userID)

	feed.Publish(userID, map[string]string{"event": "new_notification"})

	select {
	case out := <-client.send:
		assert.Contains(t, string(out), "new_notification")
	default:
		t.Fatal("expected a queued event")
	}
}

func TestFeedPublish_DropsClientWithFullQueue(t *testing.T) {
	feed := newTestFeed(nil)
	userID := uuid.New()
	client := feed.addTestClient(userID)

	// No writeLoop is draining, so the queue fills up and the next
	// event must disconnect the client instead of blocking.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i <= feedSendBuffer; i++ {
			feed.Publish(userID, map[string]int{"seq": i})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked on a client that stopped reading")
	}

	feed.mu.RLock()
	_, registered := feed.conns[userID]
	feed.mu.RUnlock()
	assert.False(t, registered, "slow client should be unregistered")

	for {
		if _, open := <-client.send; !open {
			break
		}
	}
}

func TestFeedPublish_SlowClientDoesNotStarveOthers(t *testing.T) {
	feed := newTestFeed(nil)
	userID := uuid.New()
	slow := feed.addTestClient(userID)
	healthy := feed.addTestClient(userID)

	for i := 0; i < feedSendBuffer; i++ {
		slow.send <- []byte("{}")
	}

	feed.Publish(userID, map[string]string{"event": "new_notification"})

	feed.mu.RLock()
	_, slowRegistered := feed.conns[userID][slow]
	_, healthyRegistered := feed.conns[userID][healthy]
	feed.mu.RUnlock()
	assert.False(t, slowRegistered, "client with a full queue should be dropped")
	assert.True(t, healthyRegistered)

	select {
	case out := <-healthy.send:
		assert.Contains(t, string(out), "new_notification")
	default:
		t.Fatal("healthy client should still receive events")
	}
}

func TestFeedRemove_IsIdempotent(t *testing.T) {
	feed := newTestFeed(nil)
	userID := uuid.New()
	client := feed.addTestClient(userID)

	feed.remove(userID, client)
	feed.remove(userID, client)

	_, open := <-client.send
	assert.False(t, open)
}

func TestFeedCheckOrigin(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		origin         string
		host           string
		want           bool
	}{
		{
			name:   "no origin header allowed",
			origin: "",
			host:   "selapp.app",
			want:   true,
		},
		{
			name:   "empty list allows same host",
			origin: "https://selapp.app",
			host:   "selapp.app",
			want:   true,
		},
		{
			name:   "empty list rejects foreign host",
			origin: "https://evil.example",
			host:   "selapp.app",
			want:   false,
		},
		{
			name:           "listed origin allowed",
			allowedOrigins: []string{"https://selapp.app"},
			origin:         "https://selapp.app",
			host:           "api.selapp.app",
			want:           true,
		},
		{
			name:           "unlisted origin rejected",
			allowedOrigins: []string{"https://selapp.app"},
			origin:         "https://evil.example",
			host:           "api.selapp.app",
			want:           false,
		},
		{
			name:           "wildcard allows any origin",
			allowedOrigins: []string{"*"},
			origin:         "https://anything.example",
			host:           "api.selapp.app",
			want:           true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := newTestFeed(tt.allowedOrigins)

			req, err := http.NewRequest(http.MethodGet, "/ws/notifications", nil)
			require.NoError(t, err)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			assert.Equal(t, tt.want, feed.checkOrigin(req))
		})
	}
}
