package api

import (
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceflow/cms/auth"
	"github.com/voiceflow/cms/internal/config"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				Secret:            "test-secret-for-websocket-tests",
				ExpirationSeconds: 3600,
			},
		},
		WebSocket: config.WebSocketConfig{
			ReadLimitBytes: 65536,
			SendBufferSize: 256,
			PongTimeout:    60 * time.Second,
			WriteTimeout:   10 * time.Second,
			PingInterval:   30 * time.Second,
		},
	}
}

type testServer struct {
	http        *httptest.Server
	api         *Server
	authService *auth.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := newTestConfig()
	authService, err := auth.NewService(auth.Config{
		JWTSecret:         cfg.Auth.JWT.Secret,
		ExpirationSeconds: cfg.Auth.JWT.ExpirationSeconds,
	})
	require.NoError(t, err)

	server := NewServer(cfg, authService, NewInMemoryContentStore(), NewInMemoryWorkspaceStore())
	router := gin.New()
	server.RegisterHandlers(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &testServer{http: ts, api: server, authService: authService}
}

func (ts *testServer) registerUser(t *testing.T, email string) (auth.User, string) {
	t.Helper()
	user, err := ts.authService.CreateUser(email, "password123", "Test User")
	require.NoError(t, err)
	token, _, err := ts.authService.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func (ts *testServer) dialWS(t *testing.T, token, workspaceID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws?token=" + token
	if workspaceID != "" {
		url += "&workspace_id=" + workspaceID
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func expectNoMessage(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	netErr, ok := err.(net.Error)
	require.True(t, ok, "expected a timeout, got: %v", err)
	assert.True(t, netErr.Timeout())
}

func sendEvent(t *testing.T, conn *websocket.Conn, event map[string]any) {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestWebSocketRejectsUnauthenticated(t *testing.T) {
	ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws?workspace_id=w1"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestWorkspacePresenceAndSpatialUpdates(t *testing.T) {
	ts := newTestServer(t)

	_, tokenA := ts.registerUser(t, "a@example.com")
	userB, tokenB := ts.registerUser(t, "b@example.com")

	connA := ts.dialWS(t, tokenA, "w1")

	// B joins the workspace; A is told, B gets no echo of its own join.
	connB := ts.dialWS(t, tokenB, "w1")

	joined := readEnvelope(t, connA)
	requireEventType(t, joined, EventUserJoined)
	assert.Equal(t, userB.ID, joined["user_id"])

	// B moves; A sees user_moved with the position, B gets no echo.
	sendEvent(t, connB, map[string]any{
		"type":     EventSpatialUpdate,
		"position": map[string]any{"x": 1.0, "y": 2.0, "z": 0.0},
	})

	moved := readEnvelope(t, connA)
	requireEventType(t, moved, EventUserMoved)
	assert.Equal(t, userB.ID, moved["user_id"])
	position := moved["position"].(map[string]any)
	assert.Equal(t, 1.0, position["x"])
	assert.Equal(t, 2.0, position["y"])
	assert.Equal(t, 0.0, position["z"])

	expectNoMessage(t, connB, 300*time.Millisecond)

	// B disconnects; A sees user_left and B's membership entry is gone.
	require.NoError(t, connB.Close())

	left := readEnvelope(t, connA)
	requireEventType(t, left, EventUserLeft)
	assert.Equal(t, userB.ID, left["user_id"])

	require.Eventually(t, func() bool {
		for _, entry := range ts.api.members.ListMembers("w1") {
			if entry.UserID == userB.ID {
				return false
			}
		}
		return true
	}, 2*time.Second, 20*time.Millisecond)
}

func TestVoiceStreamRelay(t *testing.T) {
	ts := newTestServer(t)

	_, tokenA := ts.registerUser(t, "a@example.com")
	userB, tokenB := ts.registerUser(t, "b@example.com")

	connA := ts.dialWS(t, tokenA, "w1")
	connB := ts.dialWS(t, tokenB, "w1")
	readEnvelope(t, connA) // B's user_joined

	sendEvent(t, connB, map[string]any{
		"type": EventVoiceStream,
		"data": map[string]any{
			"chunk":            "b64audio",
			"spatial_position": map[string]any{"x": 5.0, "y": 0.0, "z": 1.0},
		},
	})

	stream := readEnvelope(t, connA)
	requireEventType(t, stream, EventVoiceStream)
	assert.Equal(t, userB.ID, stream["user_id"])
	voiceData := stream["voice_data"].(map[string]any)
	assert.Equal(t, "b64audio", voiceData["chunk"])
	spatial := stream["spatial_position"].(map[string]any)
	assert.Equal(t, 5.0, spatial["x"])

	expectNoMessage(t, connB, 300*time.Millisecond)
}

func TestVoiceCommandIncludesSender(t *testing.T) {
	ts := newTestServer(t)

	_, tokenA := ts.registerUser(t, "a@example.com")
	userB, tokenB := ts.registerUser(t, "b@example.com")

	connA := ts.dialWS(t, tokenA, "w1")
	connB := ts.dialWS(t, tokenB, "w1")
	readEnvelope(t, connA) // B's user_joined

	sendEvent(t, connB, map[string]any{
		"type":    EventVoiceCommand,
		"command": "save the draft",
	})

	// Unlike other event types, command results reach the sender too.
	for _, conn := range []*websocket.Conn{connA, connB} {
		executed := readEnvelope(t, conn)
		requireEventType(t, executed, EventVoiceCommandExecuted)
		assert.Equal(t, userB.ID, executed["user_id"])
		assert.Equal(t, "save the draft", executed["command"])
		result := executed["result"].(map[string]any)
		assert.Equal(t, "save_content", result["action"])
	}
}

func TestContentCollaborationRelay(t *testing.T) {
	ts := newTestServer(t)

	_, tokenA := ts.registerUser(t, "a@example.com")
	userB, tokenB := ts.registerUser(t, "b@example.com")

	connA := ts.dialWS(t, tokenA, "w1")
	connB := ts.dialWS(t, tokenB, "w1")
	readEnvelope(t, connA) // B's user_joined

	sendEvent(t, connB, map[string]any{
		"type":       EventContentCollaboration,
		"content_id": "doc-42",
		"changes":    map[string]any{"title": "New title"},
	})

	updated := readEnvelope(t, connA)
	requireEventType(t, updated, EventContentUpdated)
	assert.Equal(t, userB.ID, updated["user_id"])
	assert.Equal(t, "doc-42", updated["content_id"])
	changes := updated["changes"].(map[string]any)
	assert.Equal(t, "New title", changes["title"])

	expectNoMessage(t, connB, 300*time.Millisecond)
}

func TestMalformedEventsAreIgnored(t *testing.T) {
	ts := newTestServer(t)

	_, tokenA := ts.registerUser(t, "a@example.com")
	userB, tokenB := ts.registerUser(t, "b@example.com")

	connA := ts.dialWS(t, tokenA, "w1")
	connB := ts.dialWS(t, tokenB, "w1")
	readEnvelope(t, connA) // B's user_joined

	// Invalid JSON, unknown type, and a missing required field: each is
	// dropped without closing the connection.
	require.NoError(t, connB.WriteMessage(websocket.TextMessage, []byte("not json")))
	sendEvent(t, connB, map[string]any{"type": "mystery"})
	sendEvent(t, connB, map[string]any{"type": EventSpatialUpdate})

	sendEvent(t, connB, map[string]any{
		"type":     EventSpatialUpdate,
		"position": map[string]any{"x": 9.0, "y": 9.0, "z": 9.0},
	})

	moved := readEnvelope(t, connA)
	requireEventType(t, moved, EventUserMoved)
	assert.Equal(t, userB.ID, moved["user_id"])
}

func TestConnectionWithoutWorkspace(t *testing.T) {
	ts := newTestServer(t)

	userA, tokenA := ts.registerUser(t, "a@example.com")
	connA := ts.dialWS(t, tokenA, "")

	// Registered for unicast but not a member of any workspace.
	require.Eventually(t, func() bool {
		return ts.api.registry.HasUser(userA.ID)
	}, 2*time.Second, 20*time.Millisecond)

	ts.api.broadcaster.Unicast(userA.ID, NewEnvelope(EventVoiceSessionStarted, "host", map[string]any{
		"session_id": "s1",
	}))

	msg := readEnvelope(t, connA)
	requireEventType(t, msg, EventVoiceSessionStarted)
}
