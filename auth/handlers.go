package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voiceflow/cms/internal/slogging"
)

// Handlers exposes the authentication HTTP endpoints
type Handlers struct {
	service *Service
}

// NewHandlers creates handlers backed by the given service
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes wires the auth endpoints onto the router. The register and
// login endpoints are public; the rest require the auth middleware.
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/voice-login", h.VoiceLogin)

	protected := r.Group("/api/auth", h.service.Middleware())
	protected.POST("/voice-biometric", h.SetupVoiceBiometric)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type voiceBiometricRequest struct {
	VoiceData  string `json:"voice_data" binding:"required"`
	Passphrase string `json:"passphrase" binding:"required"`
}

type tokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        userDetail `json:"user"`
}

type userDetail struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Register creates a new user account and returns a bearer token
func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_input",
			"error_description": err.Error(),
		})
		return
	}

	user, err := h.service.CreateUser(req.Email, req.Password, req.FullName)
	if err != nil {
		if err == ErrEmailExists {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             "invalid_input",
				"error_description": "Email already registered",
			})
			return
		}
		slogging.Get().Error("Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to create user",
		})
		return
	}

	h.respondWithToken(c, user)
}

// Login verifies credentials and returns a bearer token
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_input",
			"error_description": err.Error(),
		})
		return
	}

	user, err := h.service.Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "unauthorized",
			"error_description": "Invalid credentials",
		})
		return
	}

	h.respondWithToken(c, user)
}

// SetupVoiceBiometric enrolls a voice profile for the authenticated user
func (h *Handlers) SetupVoiceBiometric(c *gin.Context) {
	userID, ok := UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "unauthorized",
			"error_description": "User not authenticated",
		})
		return
	}

	var req voiceBiometricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_input",
			"error_description": err.Error(),
		})
		return
	}

	h.service.SetVoiceProfile(userID, req.VoiceData, req.Passphrase)
	c.JSON(http.StatusOK, gin.H{"message": "Voice biometric profile created successfully"})
}

// VoiceLogin is not implemented: authenticating by voice requires a real
// biometric matching backend, and issuing a token for an arbitrary enrolled
// user is not an acceptable stand-in.
func (h *Handlers) VoiceLogin(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{
		"error":             "not_implemented",
		"error_description": "Voice authentication requires a biometric matching provider",
	})
}

func (h *Handlers) respondWithToken(c *gin.Context, user User) {
	token, _, err := h.service.GenerateToken(user)
	if err != nil {
		slogging.Get().Error("Failed to generate token for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: userDetail{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
		},
	})
}
