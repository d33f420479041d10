package api

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"selapp/pkg/auth"
	"selapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	feedWriteWait  = 10 * time.Second
	feedSendBuffer = 16
)

// feedClient is one websocket connection. Events are queued on send
// and flushed by writeLoop so a stalled socket never blocks Publish.
type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed fans live notification events out to a user's connected
// websocket clients. Implements service.FeedPublisher.
type Feed struct {
	a              *auth.JWTAuth
	allowedOrigins []string
	upgrader       websocket.Upgrader

	mu    sync.RWMutex
	conns map[uuid.UUID]map[*feedClient]struct{}
}

func NewFeed(handler *gin.RouterGroup, a *auth.JWTAuth, allowedOrigins []string) *Feed {
	f := &Feed{
		a:              a,
		allowedOrigins: allowedOrigins,
		conns:          make(map[uuid.UUID]map[*feedClient]struct{}),
	}
	f.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     f.checkOrigin,
	}

	h := handler.Group("/ws")
	h.Use(a.AuthMiddleware())
	h.GET("/notifications", f.handleWebSocket)

	return f
}

// checkOrigin mirrors the HTTP CORS policy: an empty allow-list only
// accepts same-host browsers, otherwise the origin must be listed
// ("*" opens it up again).
func (f *Feed) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(f.allowedOrigins) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range f.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (f *Feed) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &feedClient{
		conn: conn,
		send: make(chan []byte, feedSendBuffer),
	}

	f.mu.Lock()
	if f.conns[userID] == nil {
		f.conns[userID] = make(map[*feedClient]struct{})
	}
	f.conns[userID][client] = struct{}{}
	f.mu.Unlock()

	go f.writeLoop(client)
	go f.readLoop(userID, client)
}

// readLoop drains incoming frames until the client goes away, then
// removes the connection from the registry.
func (f *Feed) readLoop(userID uuid.UUID, client *feedClient) {
	defer f.remove(userID, client)

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Logger().Info("websocket unexpected close", zap.Error(err))
			}
			return
		}
	}
}

// writeLoop flushes the send queue under a write deadline. A closed
// send channel means the client was removed.
func (f *Feed) writeLoop(client *feedClient) {
	defer client.conn.Close()

	for out := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := client.conn.WriteMessage(websocket.TextMessage, out); err != nil {
			logger.Logger().Info("failed to write feed event", zap.Error(err))
			return
		}
	}

	client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// remove unregisters the client and closes its send channel exactly
// once. Queueing happens under the read lock and close under the
// write lock, so Publish can never send on a closed channel.
func (f *Feed) remove(userID uuid.UUID, client *feedClient) {
	f.mu.Lock()
	if _, ok := f.conns[userID][client]; ok {
		delete(f.conns[userID], client)
		if len(f.conns[userID]) == 0 {
			delete(f.conns, userID)
		}
		close(client.send)
	}
	f.mu.Unlock()
}

// Publish queues the event for every open connection of the user.
// Dropped silently when the user has no connection; clients whose
// queue is full are disconnected rather than waited on.
func (f *Feed) Publish(userID uuid.UUID, event interface{}) {
	log := logger.Logger()

	out, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal feed event", zap.Error(err))
		return
	}

	var slow []*feedClient
	f.mu.RLock()
	for client := range f.conns[userID] {
		select {
		case client.send <- out:
		default:
			slow = append(slow, client)
		}
	}
	f.mu.RUnlock()

	for _, client := range slow {
		log.Info("dropping slow feed client", zap.String("user_id", userID.String()))
		f.remove(userID, client)
	}
}
