package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"hotel-booking/utils"
)

var ErrInvalidPhone = errors.New("phone number has no digits")

type ChatMessage struct {
	Sender  string `json:"sender" binding:"required,oneof=user ai"`
	Content string `json:"content" binding:"required"`
}

type sendTextPayload struct {
	Session string `json:"session"`
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
}

// WhatsAppService relays text messages through the WAHA gateway.
type WhatsAppService struct {
	api     *RelayClient
	waha    *RelayClient
	session string
}

func NewWhatsAppService(api, waha *RelayClient, session string) *WhatsAppService {
	if session == "" {
		session = "default"
	}
	return &WhatsAppService{api: api, waha: waha, session: session}
}

// SendText delivers text to phone and returns the gateway's answer.
func (s *WhatsAppService) SendText(ctx context.Context, phone, text string) (json.RawMessage, error) {
	chatID := utils.WhatsAppChatID(phone)
	if chatID == "" {
		return nil, ErrInvalidPhone
	}
	body, err := s.api.PostJSON(ctx, "/sendText", sendTextPayload{Session: s.session, ChatID: chatID, Text: text})
	if err != nil {
		log.Printf("❌ WhatsApp send to %s failed: %v", chatID, err)
		return nil, err
	}
	if !json.Valid(body) {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

// FormatChatHistory renders a web chat as "You: ..." and "AI: ..." lines.
func FormatChatHistory(history []ChatMessage) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		who := "AI"
		if msg.Sender == "user" {
			who = "You"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", who, strings.TrimSpace(msg.Content)))
	}
	return strings.Join(lines, "\n")
}

// ContinueChat hands a web chat over to WhatsApp by sending its transcript.
func (s *WhatsAppService) ContinueChat(ctx context.Context, phone string, history []ChatMessage) error {
	chatID := utils.WhatsAppChatID(phone)
	if chatID == "" {
		return ErrInvalidPhone
	}
	_, err := s.waha.PostJSON(ctx, "/api/sendText", sendTextPayload{
		Session: s.session,
		ChatID:  chatID,
		Text:    FormatChatHistory(history),
	})
	if err != nil {
		log.Printf("❌ WhatsApp chat continuation to %s failed: %v", chatID, err)
	}
	return err
}
