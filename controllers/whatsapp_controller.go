package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-booking/services"
	"hotel-booking/utils"
)

type WhatsAppSender interface {
	SendText(ctx context.Context, phone, text string) (json.RawMessage, error)
	ContinueChat(ctx context.Context, phone string, history []services.ChatMessage) error
}

type sendMessagePayload struct {
	Phone string `json:"phone" binding:"required,notblank"`
	Text  string `json:"text" binding:"required,notblank"`
}

type continueChatPayload struct {
	ChatHistory []services.ChatMessage `json:"chatHistory" binding:"required,min=1,dive"`
	PhoneNumber string                 `json:"phoneNumber" binding:"required,notblank"`
}

type WhatsAppController struct {
	sender WhatsAppSender
}

func NewWhatsAppController(sender WhatsAppSender) *WhatsAppController {
	return &WhatsAppController{sender: sender}
}

// SendMessage handles POST /api/whatsapp/send.
func (wc *WhatsAppController) SendMessage(c *gin.Context) {
	var p sendMessagePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.JSONFailure(c, http.StatusBadRequest, "Phone number and text are required")
		return
	}

	data, err := wc.sender.SendText(c.Request.Context(), p.Phone, p.Text)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPhone) {
			utils.JSONFailure(c, http.StatusBadRequest, "Please enter a valid phone number")
			return
		}
		utils.JSONFailure(c, http.StatusInternalServerError, "Failed to send WhatsApp message. Please try again later.")
		return
	}

	resp := gin.H{"success": true, "message": "Message sent successfully"}
	if len(data) > 0 {
		resp["data"] = data
	}
	c.JSON(http.StatusOK, resp)
}

// ContinueChat handles POST /api/whatsapp/continue.
func (wc *WhatsAppController) ContinueChat(c *gin.Context) {
	var p continueChatPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if err := wc.sender.ContinueChat(c.Request.Context(), p.PhoneNumber, p.ChatHistory); err != nil {
		if errors.Is(err, services.ErrInvalidPhone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to continue chat on WhatsApp"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
