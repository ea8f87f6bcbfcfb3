package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voiceflow/cms/auth"
	"github.com/voiceflow/cms/internal/slogging"
)

const analyticsCacheTTL = 5 * time.Minute

// AnalyticsSummary is the per-user dashboard payload
type AnalyticsSummary struct {
	TotalContent       int `json:"total_content"`
	TotalWorkspaces    int `json:"total_workspaces"`
	VoiceSessions      int `json:"voice_sessions"`
	SpatialInteractions int `json:"spatial_interactions"`
	AIEnhancementsUsed int `json:"ai_enhancements_used"`
	VoiceFilesUploaded int `json:"voice_files_uploaded"`
}

// AnalyticsHandler serves the dashboard endpoint, caching results in Redis
type AnalyticsHandler struct {
	content    ContentStore
	workspaces WorkspaceStore
	sessions   *VoiceSessionStore
	cache      *CacheService
}

// NewAnalyticsHandler creates a handler over the stores and cache
func NewAnalyticsHandler(content ContentStore, workspaces WorkspaceStore, sessions *VoiceSessionStore, cache *CacheService) *AnalyticsHandler {
	return &AnalyticsHandler{
		content:    content,
		workspaces: workspaces,
		sessions:   sessions,
		cache:      cache,
	}
}

// Dashboard handles GET /api/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	cacheKey := "analytics:" + userID

	var cached AnalyticsSummary
	if hit, err := h.cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil && hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	summary := AnalyticsSummary{
		TotalContent: len(h.content.List(func(item Content) bool {
			return item.AuthorID == userID
		})),
		TotalWorkspaces: len(h.workspaces.List(func(workspace Workspace) bool {
			return workspace.HasMember(userID)
		})),
		VoiceSessions: h.sessions.Count(),
	}

	if err := h.cache.SetJSON(c.Request.Context(), cacheKey, summary, analyticsCacheTTL); err != nil {
		slogging.Get().Warn("Failed to cache analytics for user %s: %v", userID, err)
	}

	c.JSON(http.StatusOK, summary)
}
