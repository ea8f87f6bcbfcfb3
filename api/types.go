package api

import "time"

// Content status values
const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
)

// Position is a location in a workspace's spatial layout
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Content is a CMS record authored by one user, optionally placed in a
// workspace at a spatial position
type Content struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Body            string    `json:"content"`
	ContentType     string    `json:"content_type"`
	SpatialPosition Position  `json:"spatial_position"`
	WorkspaceID     string    `json:"workspace_id,omitempty"`
	AuthorID        string    `json:"author_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Status          string    `json:"status"`
}

// Workspace is a named collaboration context with membership and a spatial
// configuration
type Workspace struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	SpatialConfig map[string]any `json:"spatial_config"`
	OwnerID       string         `json:"owner_id"`
	Members       []string       `json:"members"`
	CreatedAt     time.Time      `json:"created_at"`
}

// HasMember reports whether the user is a member of the workspace
func (w Workspace) HasMember(userID string) bool {
	for _, member := range w.Members {
		if member == userID {
			return true
		}
	}
	return false
}
