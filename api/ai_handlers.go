package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voiceflow/cms/auth"
	"github.com/voiceflow/cms/internal/slogging"
)

const enhanceCacheTTL = 30 * time.Minute

// AIHandler serves the inference-backed endpoints
type AIHandler struct {
	interpreter *CommandInterpreter
	enhancer    *ContentEnhancer
	cache       *CacheService
}

// NewAIHandler creates a handler over the interpreter, enhancer and cache
func NewAIHandler(interpreter *CommandInterpreter, enhancer *ContentEnhancer, cache *CacheService) *AIHandler {
	return &AIHandler{
		interpreter: interpreter,
		enhancer:    enhancer,
		cache:       cache,
	}
}

type processCommandRequest struct {
	Command string `json:"command" binding:"required"`
}

// ProcessCommand handles POST /api/voice/process-command. An unavailable
// inference API degrades to the keyword rules instead of failing.
func (h *AIHandler) ProcessCommand(c *gin.Context) {
	if _, ok := auth.UserID(c); !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	var req processCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleRequestError(c, InvalidInputError(err.Error()))
		return
	}

	result := h.interpreter.Interpret(c.Request.Context(), req.Command)
	c.JSON(http.StatusOK, result)
}

type enhanceRequest struct {
	Text string `json:"text" binding:"required"`
	Task string `json:"task"`
}

// EnhanceContent handles POST /api/ai/enhance-content
func (h *AIHandler) EnhanceContent(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		HandleRequestError(c, UnauthorizedError("User not authenticated"))
		return
	}

	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleRequestError(c, InvalidInputError(err.Error()))
		return
	}

	if !h.enhancer.Available() {
		HandleRequestError(c, UnavailableError("AI service not available"))
		return
	}

	cacheKey := fmt.Sprintf("ai_enhanced:%s:%d", userID, hashText(req.Text))
	if cached, ok := h.cache.GetString(c.Request.Context(), cacheKey); ok {
		c.JSON(http.StatusOK, gin.H{
			"enhanced_text":   cached,
			"original_length": len(req.Text),
			"enhanced_length": len(cached),
		})
		return
	}

	enhanced, err := h.enhancer.Enhance(c.Request.Context(), req.Text)
	if err != nil {
		if reqErr, ok := err.(*RequestError); ok {
			HandleRequestError(c, reqErr)
			return
		}
		slogging.Get().Error("AI enhancement failed for user %s: %v", userID, err)
		HandleRequestError(c, ServerError("AI processing failed"))
		return
	}

	if err := h.cache.SetString(c.Request.Context(), cacheKey, enhanced, enhanceCacheTTL); err != nil {
		slogging.Get().Warn("Failed to cache enhanced text: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"enhanced_text":   enhanced,
		"original_length": len(req.Text),
		"enhanced_length": len(enhanced),
	})
}

func hashText(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return h.Sum64()
}
