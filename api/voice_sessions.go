package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Voice session status values
const (
	VoiceSessionActive = "active"
	VoiceSessionEnded  = "ended"
)

// VoiceSession is an ad-hoc voice call grouping. Its lifecycle is independent
// of the connection layer: a participant's network disconnect never removes
// them from the session, only the host explicitly ending it does.
type VoiceSession struct {
	ID           string    `json:"id"`
	HostUserID   string    `json:"host_user_id"`
	WorkspaceID  string    `json:"workspace_id,omitempty"`
	Status       string    `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	Participants []string  `json:"participants"`
}

// VoiceSessionStore tracks active voice sessions and notifies workspace
// members of lifecycle changes through the broadcaster.
type VoiceSessionStore struct {
	broadcaster *Broadcaster

	mu       sync.RWMutex
	sessions map[string]*VoiceSession
}

// NewVoiceSessionStore creates an empty store
func NewVoiceSessionStore(broadcaster *Broadcaster) *VoiceSessionStore {
	return &VoiceSessionStore{
		broadcaster: broadcaster,
		sessions:    make(map[string]*VoiceSession),
	}
}

// Start creates an active session hosted by hostUserID with the host as its
// only participant. When the session is linked to a workspace, its members
// are notified.
func (s *VoiceSessionStore) Start(hostUserID, workspaceID string) VoiceSession {
	session := &VoiceSession{
		ID:           uuid.New().String(),
		HostUserID:   hostUserID,
		WorkspaceID:  workspaceID,
		Status:       VoiceSessionActive,
		StartedAt:    time.Now().UTC(),
		Participants: []string{hostUserID},
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	if workspaceID != "" {
		s.broadcaster.Broadcast(workspaceID, NewEnvelope(EventVoiceSessionStarted, hostUserID, map[string]any{
			"session_id":   session.ID,
			"host_user_id": hostUserID,
		}), "")
	}

	return *session
}

// Join adds the user to the session's participant list. Joining twice has no
// duplicate effect. Returns NotFound for an unknown session.
func (s *VoiceSessionStore) Join(sessionID, userID string) (VoiceSession, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return VoiceSession{}, NotFoundError("Voice session not found")
	}

	found := false
	for _, participant := range session.Participants {
		if participant == userID {
			found = true
			break
		}
	}
	if !found {
		session.Participants = append(session.Participants, userID)
	}
	snapshot := *session
	snapshot.Participants = append([]string(nil), session.Participants...)
	workspaceID := session.WorkspaceID
	s.mu.Unlock()

	if workspaceID != "" {
		s.broadcaster.Broadcast(workspaceID, NewEnvelope(EventUserJoinedVoiceSession, userID, map[string]any{
			"session_id": sessionID,
		}), "")
	}

	return snapshot, nil
}

// End removes the session. Only the host may end it: any other actor gets
// Forbidden and the session is left unchanged.
func (s *VoiceSessionStore) End(sessionID, requestingUserID string) error {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return NotFoundError("Voice session not found")
	}
	if session.HostUserID != requestingUserID {
		s.mu.Unlock()
		return ForbiddenError("Only the session host can end the session")
	}
	workspaceID := session.WorkspaceID
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if workspaceID != "" {
		s.broadcaster.Broadcast(workspaceID, NewEnvelope(EventVoiceSessionEnded, requestingUserID, map[string]any{
			"session_id": sessionID,
		}), "")
	}

	return nil
}

// Get returns a copy of the session, or NotFound
func (s *VoiceSessionStore) Get(sessionID string) (VoiceSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return VoiceSession{}, NotFoundError("Voice session not found")
	}
	snapshot := *session
	snapshot.Participants = append([]string(nil), session.Participants...)
	return snapshot, nil
}

// Count returns the number of active sessions
func (s *VoiceSessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
