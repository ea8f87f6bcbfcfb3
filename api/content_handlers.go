package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voiceflow/cms/auth"
)

// ContentHandler serves the content CRUD endpoints. Records are scoped to
// their author: any access by another user yields Forbidden.
type ContentHandler struct {
	store ContentStore
}

// NewContentHandler creates a handler over the given store
func NewContentHandler(store ContentStore) *ContentHandler {
	return &ContentHandler{store: store}
}

type contentRequest struct {
	Title           string    `json:"title" binding:"required"`
	Content         string    `json:"content" binding:"required"`
	ContentType     string    `json:"content_type" binding:"required"`
	SpatialPosition *Position `json:"spatial_position"`
	WorkspaceID     string    `json:"workspace_id"`
}

// CreateContent handles POST /api/content
func (h *ContentHandler) CreateContent(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleRequestError(c, InvalidInputError(err.Error()))
		return
	}

	item := Content{
		Title:       req.Title,
		Body:        req.Content,
		ContentType: req.ContentType,
		WorkspaceID: req.WorkspaceID,
		AuthorID:    userID,
		Status:      ContentStatusDraft,
	}
	if req.SpatialPosition != nil {
		item.SpatialPosition = *req.SpatialPosition
	}

	created := h.store.Create(item)
	c.JSON(http.StatusOK, created)
}

// ListContent handles GET /api/content, optionally filtered by workspace_id
func (h *ContentHandler) ListContent(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	workspaceID := c.Query("workspace_id")
	results := h.store.List(func(item Content) bool {
		if item.AuthorID != userID {
			return false
		}
		return workspaceID == "" || item.WorkspaceID == workspaceID
	})

	c.JSON(http.StatusOK, results)
}

// GetContent handles GET /api/content/:id
func (h *ContentHandler) GetContent(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	item, err := h.store.Get(c.Param("id"))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	if item.AuthorID != userID {
		HandleRequestError(c, ForbiddenError("Access denied"))
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateContent handles PUT /api/content/:id
func (h *ContentHandler) UpdateContent(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	existing, err := h.store.Get(c.Param("id"))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	if existing.AuthorID != userID {
		HandleRequestError(c, ForbiddenError("Access denied"))
		return
	}

	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleRequestError(c, InvalidInputError(err.Error()))
		return
	}

	existing.Title = req.Title
	existing.Body = req.Content
	existing.ContentType = req.ContentType
	if req.SpatialPosition != nil {
		existing.SpatialPosition = *req.SpatialPosition
	}

	if err := h.store.Update(existing.ID, existing); err != nil {
		HandleRequestError(c, err)
		return
	}

	updated, err := h.store.Get(existing.ID)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteContent handles DELETE /api/content/:id
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	item, err := h.store.Get(c.Param("id"))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	if item.AuthorID != userID {
		HandleRequestError(c, ForbiddenError("Access denied"))
		return
	}

	if err := h.store.Delete(item.ID); err != nil {
		HandleRequestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content deleted successfully"})
}
