package api

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeConn is an in-process Connection for exercising the registry,
// membership table and broadcaster without a websocket transport.
type fakeConn struct {
	userID string

	mu       sync.Mutex
	messages [][]byte
	fail     bool
}

func newFakeConn(userID string) *fakeConn {
	return &fakeConn{userID: userID}
}

func (f *fakeConn) UserID() string {
	return f.userID
}

func (f *fakeConn) Send(message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("connection closed")
	}
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeConn) setFailing() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = true
}

func (f *fakeConn) received() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	decoded := make([]map[string]any, 0, len(f.messages))
	for _, raw := range f.messages {
		var msg map[string]any
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		decoded = append(decoded, msg)
	}
	return decoded
}

func (f *fakeConn) receivedTypes() []string {
	types := make([]string, 0)
	for _, msg := range f.received() {
		if t, ok := msg["type"].(string); ok {
			types = append(types, t)
		}
	}
	return types
}

func requireEventType(t *testing.T, msg map[string]any, eventType string) {
	t.Helper()
	require.Equal(t, eventType, msg["type"])
	require.NotEmpty(t, msg["timestamp"])
}
