package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-booking/services"
	"hotel-booking/utils"
)

const msgChatUnavailable = "I apologize, but I am having trouble connecting to the service. Please try again in a moment."

type ChatAsker interface {
	Ask(ctx context.Context, req services.ChatRequest, origin string) (string, error)
}

type ChatController struct {
	chat ChatAsker
}

func NewChatController(chat ChatAsker) *ChatController {
	return &ChatController{chat: chat}
}

// HandleChat handles POST /api/chat.
func (cc *ChatController) HandleChat(c *gin.Context) {
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONProblem(c, http.StatusBadRequest, "Invalid request", "Please type a message.")
		return
	}
	reply, err := cc.chat.Ask(c.Request.Context(), req, c.GetHeader("Origin"))
	if err != nil {
		utils.JSONProblem(c, http.StatusInternalServerError, "Failed to get response", msgChatUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": reply})
}
