package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voiceflow/cms/auth"
)

// WorkspaceHandler serves the workspace endpoints
type WorkspaceHandler struct {
	store WorkspaceStore
}

// NewWorkspaceHandler creates a handler over the given store
func NewWorkspaceHandler(store WorkspaceStore) *WorkspaceHandler {
	return &WorkspaceHandler{store: store}
}

type workspaceRequest struct {
	Name          string         `json:"name" binding:"required"`
	Description   string         `json:"description" binding:"required"`
	SpatialConfig map[string]any `json:"spatial_config" binding:"required"`
}

// CreateWorkspace handles POST /api/workspaces; the creator becomes owner
// and first member
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	var req workspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleRequestError(c, InvalidInputError(err.Error()))
		return
	}

	created := h.store.Create(Workspace{
		Name:          req.Name,
		Description:   req.Description,
		SpatialConfig: req.SpatialConfig,
		OwnerID:       userID,
		Members:       []string{userID},
	})

	c.JSON(http.StatusOK, created)
}

// ListWorkspaces handles GET /api/workspaces, returning the workspaces the
// caller belongs to
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	results := h.store.List(func(workspace Workspace) bool {
		return workspace.HasMember(userID)
	})

	c.JSON(http.StatusOK, results)
}
