package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

type ChatRequest struct {
	Message         string          `json:"message" binding:"required,notblank"`
	History         json.RawMessage `json:"history,omitempty"`
	RewardProgramID string          `json:"rewardProgramId,omitempty"`
	SiteID          string          `json:"siteId,omitempty"`
}

type chatMetadata struct {
	SiteID          string `json:"siteId,omitempty"`
	RewardProgramID string `json:"rewardProgramId,omitempty"`
	Source          string `json:"source"`
	URL             string `json:"url,omitempty"`
}

type chatUpstreamRequest struct {
	Message  string          `json:"message"`
	History  json.RawMessage `json:"history,omitempty"`
	Metadata chatMetadata    `json:"metadata"`
}

type chatUpstreamResponse struct {
	Message  string `json:"message"`
	Response string `json:"response"`
	Reply    string `json:"reply"`
}

// ChatService forwards web chat messages to the AI chat backend.
type ChatService struct {
	client *RelayClient
}

func NewChatService(client *RelayClient) *ChatService {
	return &ChatService{client: client}
}

// Ask returns the assistant's reply. origin is the page the chat runs on.
func (s *ChatService) Ask(ctx context.Context, req ChatRequest, origin string) (string, error) {
	body, err := s.client.PostJSON(ctx, "/api/chat", chatUpstreamRequest{
		Message: req.Message,
		History: req.History,
		Metadata: chatMetadata{
			SiteID:          req.SiteID,
			RewardProgramID: req.RewardProgramID,
			Source:          "web_chat",
			URL:             origin,
		},
	})
	if err != nil {
		log.Printf("❌ AI chat service error: %v", err)
		return "", err
	}

	var out chatUpstreamResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: undecodable reply: %v", ErrUpstreamFailed, err)
	}
	for _, reply := range []string{out.Message, out.Response, out.Reply} {
		if strings.TrimSpace(reply) != "" {
			return reply, nil
		}
	}
	return "", fmt.Errorf("%w: empty reply", ErrUpstreamFailed)
}
