package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/voiceflow/cms/auth"
	"github.com/voiceflow/cms/internal/config"
	"github.com/voiceflow/cms/internal/slogging"
)

var (
	errSendBufferFull   = errors.New("send buffer full")
	errConnectionClosed = errors.New("connection closed")
)

// ConnectionManager orchestrates the lifecycle of realtime connections:
// accept, register, announce presence, dispatch inbound events, and tear down
// on disconnect.
type ConnectionManager struct {
	registry    *SessionRegistry
	members     *MembershipTable
	broadcaster *Broadcaster
	interpreter *CommandInterpreter
	config      config.WebSocketConfig
	upgrader    websocket.Upgrader
}

// NewConnectionManager wires the lifecycle manager over its collaborators
func NewConnectionManager(registry *SessionRegistry, members *MembershipTable, broadcaster *Broadcaster, interpreter *CommandInterpreter, cfg config.WebSocketConfig) *ConnectionManager {
	m := &ConnectionManager{
		registry:    registry,
		members:     members,
		broadcaster: broadcaster,
		interpreter: interpreter,
		config:      cfg,
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     m.checkOrigin,
	}
	return m
}

func (m *ConnectionManager) checkOrigin(r *http.Request) bool {
	if len(m.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range m.config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// WSClient is one live websocket connection. It owns a read goroutine and a
// write goroutine; outbound messages go through a bounded buffered channel so
// a stalled peer is dropped instead of stalling a broadcast.
type WSClient struct {
	manager     *ConnectionManager
	conn        *websocket.Conn
	userID      string
	workspaceID string
	createdAt   time.Time

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

// UserID returns the owning user's id
func (c *WSClient) UserID() string {
	return c.userID
}

// WorkspaceID returns the workspace the connection is bound to, empty when
// the client connected without one
func (c *WSClient) WorkspaceID() string {
	return c.workspaceID
}

// Send queues a message for the write pump. It never blocks: a full buffer or
// a closed connection yields an error the caller swallows.
func (c *WSClient) Send(message []byte) error {
	select {
	case <-c.closed:
		return errConnectionClosed
	default:
	}

	select {
	case c.send <- message:
		return nil
	default:
		return errSendBufferFull
	}
}

// HandleWS upgrades an authenticated HTTP request to a websocket connection
// and runs the connection lifecycle. The optional workspace_id query
// parameter binds the connection to a workspace for its lifetime.
func (m *ConnectionManager) HandleWS(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}
	workspaceID := c.Query("workspace_id")

	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slogging.Get().Warn("Failed to upgrade connection for user %s: %v", userID, err)
		return
	}

	client := &WSClient{
		manager:     m,
		conn:        conn,
		userID:      userID,
		workspaceID: workspaceID,
		createdAt:   time.Now().UTC(),
		send:        make(chan []byte, m.config.SendBufferSize),
		closed:      make(chan struct{}),
	}

	m.connect(client)

	go client.writePump()
	go client.readPump()
}

// connect registers the client and, when bound to a workspace, joins the
// membership table and announces presence to the other members.
func (m *ConnectionManager) connect(client *WSClient) {
	m.registry.Register(client.userID, client)
	metrics.activeConnections.Inc()

	if client.workspaceID != "" {
		m.members.Join(client.workspaceID, client.userID, client)
		m.broadcaster.Broadcast(client.workspaceID,
			NewEnvelope(EventUserJoined, client.userID, nil), client.userID)
	}

	slogging.Get().Info("Realtime connection opened user=%s workspace=%s", client.userID, client.workspaceID)
}

// disconnect tears the client down. It is idempotent: cleanup runs once no
// matter how many paths race into it, and a broadcast iterating a stale
// snapshot simply fails delivery to this client silently.
func (m *ConnectionManager) disconnect(client *WSClient) {
	client.closeOnce.Do(func() {
		close(client.closed)

		m.registry.Unregister(client.userID, client)
		metrics.activeConnections.Dec()

		if client.workspaceID != "" {
			m.members.Leave(client.workspaceID, client)
			m.broadcaster.Broadcast(client.workspaceID,
				NewEnvelope(EventUserLeft, client.userID, nil), "")
		}

		slogging.Get().Info("Realtime connection closed user=%s workspace=%s", client.userID, client.workspaceID)
	})
}

// handleEvent classifies one inbound event and maps it to a broadcast.
// Malformed or unknown events are logged and skipped without closing the
// connection. Every outbound envelope is re-stamped with a server timestamp;
// all types except voice_command exclude the sender.
func (m *ConnectionManager) handleEvent(client *WSClient, raw []byte) {
	var event inboundEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		slogging.Get().Debug("Ignoring malformed event from user %s: %v", client.userID, err)
		metrics.eventsReceived.WithLabelValues("malformed").Inc()
		return
	}

	switch event.Type {
	case EventVoiceStream:
		metrics.eventsReceived.WithLabelValues(event.Type).Inc()
		var data map[string]any
		if len(event.Data) == 0 || json.Unmarshal(event.Data, &data) != nil {
			slogging.Get().Debug("Ignoring voice_stream without data from user %s", client.userID)
			return
		}
		payload := map[string]any{"voice_data": data}
		if position, ok := data["spatial_position"]; ok {
			payload["spatial_position"] = position
		}
		m.broadcaster.Broadcast(client.workspaceID,
			NewEnvelope(EventVoiceStream, client.userID, payload), client.userID)

	case EventSpatialUpdate:
		metrics.eventsReceived.WithLabelValues(event.Type).Inc()
		var position any
		if len(event.Position) == 0 || json.Unmarshal(event.Position, &position) != nil {
			slogging.Get().Debug("Ignoring spatial_update without position from user %s", client.userID)
			return
		}
		m.broadcaster.Broadcast(client.workspaceID,
			NewEnvelope(EventUserMoved, client.userID, map[string]any{
				"position": position,
			}), client.userID)

	case EventVoiceCommand:
		metrics.eventsReceived.WithLabelValues(event.Type).Inc()
		if event.Command == "" {
			slogging.Get().Debug("Ignoring voice_command without command from user %s", client.userID)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		result := m.interpreter.Interpret(ctx, event.Command)
		cancel()
		// Command results go to every member including the sender.
		m.broadcaster.Broadcast(client.workspaceID,
			NewEnvelope(EventVoiceCommandExecuted, client.userID, map[string]any{
				"command": event.Command,
				"result":  result,
			}), "")

	case EventContentCollaboration:
		metrics.eventsReceived.WithLabelValues(event.Type).Inc()
		var changes any
		if event.ContentID == "" || len(event.Changes) == 0 || json.Unmarshal(event.Changes, &changes) != nil {
			slogging.Get().Debug("Ignoring content_collaboration without content_id/changes from user %s", client.userID)
			return
		}
		m.broadcaster.Broadcast(client.workspaceID,
			NewEnvelope(EventContentUpdated, client.userID, map[string]any{
				"content_id": event.ContentID,
				"changes":    changes,
			}), client.userID)

	default:
		metrics.eventsReceived.WithLabelValues("unknown").Inc()
		slogging.Get().Debug("Ignoring event with unknown type %q from user %s", event.Type, client.userID)
	}
}

// readPump pumps messages from the websocket to the lifecycle manager
func (c *WSClient) readPump() {
	defer func() {
		c.manager.disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.manager.config.ReadLimitBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.manager.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.manager.config.PongTimeout))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slogging.Get().Warn("WebSocket read error user=%s: %v", c.userID, err)
			}
			break
		}
		c.manager.handleEvent(c, message)
	}
}

// writePump pumps queued messages to the websocket and keeps the connection
// alive with pings
func (c *WSClient) writePump() {
	ticker := time.NewTicker(c.manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.closed:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
