package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"chatbot/internal/model"
	"chatbot/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles web chat HTTP requests
type ChatHandler struct {
	resolver *service.ResponseResolver
}

// NewChatHandler creates a new chat handler
func NewChatHandler(resolver *service.ResponseResolver) *ChatHandler {
	return &ChatHandler{resolver: resolver}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = fmt.Sprintf("web_%s", time.Now().Format("20060102_150405"))
	}

	result, err := h.resolver.Resolve(c.Request.Context(), req.Message, chatID, model.ChannelWeb)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Empty message"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{
		Response:   result.Response,
		Status:     "success",
		ChatID:     chatID,
		Intent:     result.Intent,
		Confidence: result.Confidence,
	})
}
