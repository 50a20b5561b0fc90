package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/service"
)

// ChatHandler handles the conversational endpoint.
type ChatHandler struct {
	answerService *service.AnswerService
}

// NewChatHandler creates a new chat handler.
// Parameters:
//   - answerService: answer composition service.
// Returns:
//   - *ChatHandler: initialized handler.
func NewChatHandler(answerService *service.AnswerService) *ChatHandler {
	return &ChatHandler{
		answerService: answerService,
	}
}

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages" binding:"required"`
	Domain   string               `json:"domain"`
}

// Chat handles POST /chat.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No messages provided",
		})
		return
	}

	answer, err := h.answerService.Answer(c.Request.Context(), req.Messages, req.Domain)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Chat failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, answer)
}
