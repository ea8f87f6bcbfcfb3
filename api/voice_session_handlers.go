package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voiceflow/cms/auth"
)

// VoiceSessionHandler serves the voice session REST endpoints
type VoiceSessionHandler struct {
	sessions *VoiceSessionStore
}

// NewVoiceSessionHandler creates a handler over the given store
func NewVoiceSessionHandler(sessions *VoiceSessionStore) *VoiceSessionHandler {
	return &VoiceSessionHandler{sessions: sessions}
}

type startSessionRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

// StartSession handles POST /api/voice/start-session
func (h *VoiceSessionHandler) StartSession(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleRequestError(c, InvalidInputError(err.Error()))
		return
	}

	session := h.sessions.Start(userID, req.WorkspaceID)
	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"status":     "started",
	})
}

// JoinSession handles POST /api/voice/join-session/:id
func (h *VoiceSessionHandler) JoinSession(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	session, err := h.sessions.Join(c.Param("id"), userID)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Joined voice session successfully",
		"participants": session.Participants,
	})
}

// EndSession handles POST /api/voice/end-session/:id
func (h *VoiceSessionHandler) EndSession(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	if err := h.sessions.End(c.Param("id"), userID); err != nil {
		HandleRequestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Voice session ended successfully"})
}
