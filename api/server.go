package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voiceflow/cms/auth"
	"github.com/voiceflow/cms/internal/config"
)

// Server is the main API server instance. It owns the realtime coordination
// layer and the REST handlers around it.
type Server struct {
	authService *auth.Service

	registry      *SessionRegistry
	members       *MembershipTable
	broadcaster   *Broadcaster
	voiceSessions *VoiceSessionStore
	connManager   *ConnectionManager

	contentHandler      *ContentHandler
	workspaceHandler    *WorkspaceHandler
	voiceSessionHandler *VoiceSessionHandler
	aiHandler           *AIHandler
	analyticsHandler    *AnalyticsHandler
	authHandlers        *auth.Handlers
}

// NewServer wires the server from configuration. Stores are injected rather
// than accessed as package globals so tests can build isolated instances.
func NewServer(cfg *config.Config, authService *auth.Service, contentStore ContentStore, workspaceStore WorkspaceStore) *Server {
	registry := NewSessionRegistry()
	members := NewMembershipTable()
	broadcaster := NewBroadcaster(registry, members)
	voiceSessions := NewVoiceSessionStore(broadcaster)
	interpreter := NewCommandInterpreter(cfg.OpenAI)
	enhancer := NewContentEnhancer(cfg.OpenAI)
	cache := NewCacheService(cfg.Redis)

	return &Server{
		authService:         authService,
		registry:            registry,
		members:             members,
		broadcaster:         broadcaster,
		voiceSessions:       voiceSessions,
		connManager:         NewConnectionManager(registry, members, broadcaster, interpreter, cfg.WebSocket),
		contentHandler:      NewContentHandler(contentStore),
		workspaceHandler:    NewWorkspaceHandler(workspaceStore),
		voiceSessionHandler: NewVoiceSessionHandler(voiceSessions),
		aiHandler:           NewAIHandler(interpreter, enhancer, cache),
		analyticsHandler:    NewAnalyticsHandler(contentStore, workspaceStore, voiceSessions, cache),
		authHandlers:        auth.NewHandlers(authService),
	}
}

// RegisterHandlers registers all routes with the router
func (s *Server) RegisterHandlers(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "VoiceFlow CMS API",
			"version": Version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.authHandlers.RegisterRoutes(r)

	protected := r.Group("/", s.authService.Middleware())

	// Realtime channel; workspace_id binds the connection to a workspace
	protected.GET("/ws", s.connManager.HandleWS)

	content := protected.Group("/api/content")
	content.POST("", s.contentHandler.CreateContent)
	content.GET("", s.contentHandler.ListContent)
	content.GET("/:id", s.contentHandler.GetContent)
	content.PUT("/:id", s.contentHandler.UpdateContent)
	content.DELETE("/:id", s.contentHandler.DeleteContent)

	workspaces := protected.Group("/api/workspaces")
	workspaces.POST("", s.workspaceHandler.CreateWorkspace)
	workspaces.GET("", s.workspaceHandler.ListWorkspaces)

	voice := protected.Group("/api/voice")
	voice.POST("/start-session", s.voiceSessionHandler.StartSession)
	voice.POST("/join-session/:id", s.voiceSessionHandler.JoinSession)
	voice.POST("/end-session/:id", s.voiceSessionHandler.EndSession)
	voice.POST("/process-command", s.aiHandler.ProcessCommand)

	protected.POST("/api/ai/enhance-content", s.aiHandler.EnhanceContent)
	protected.GET("/api/analytics/dashboard", s.analyticsHandler.Dashboard)
}

// Broadcaster exposes the event router for collaborators outside the api
// package
func (s *Server) Broadcaster() *Broadcaster {
	return s.broadcaster
}
