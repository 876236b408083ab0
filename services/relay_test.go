package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type capturedRequest struct {
	Path string
	Body map[string]interface{}
}

func relayServer(t *testing.T, status int, reply string, got *[]capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if got != nil {
			*got = append(*got, capturedRequest{Path: r.URL.Path, Body: body})
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRelayClientErrors(t *testing.T) {
	if _, err := NewRelayClient("", time.Second).PostJSON(context.Background(), "/x", nil); !errors.Is(err, ErrUpstreamFailed) {
		t.Fatalf("missing base url: expected ErrUpstreamFailed, got %v", err)
	}

	srv := relayServer(t, http.StatusBadGateway, `{"error":"down"}`, nil)
	if _, err := NewRelayClient(srv.URL, time.Second).PostJSON(context.Background(), "/x", nil); !errors.Is(err, ErrUpstreamFailed) {
		t.Fatalf("5xx: expected ErrUpstreamFailed, got %v", err)
	}

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()
	if _, err := NewRelayClient(slow.URL, 20*time.Millisecond).PostJSON(context.Background(), "/x", nil); !errors.Is(err, ErrUpstreamFailed) {
		t.Fatalf("timeout: expected ErrUpstreamFailed, got %v", err)
	}
}

func TestWhatsAppSendText(t *testing.T) {
	var got []capturedRequest
	srv := relayServer(t, http.StatusOK, `{"id":"msg-1"}`, &got)
	svc := NewWhatsAppService(NewRelayClient(srv.URL+"/", time.Second), nil, "")

	data, err := svc.SendText(context.Background(), "0712 345 678", "Hello")
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if string(data) != `{"id":"msg-1"}` {
		t.Fatalf("unexpected data %s", data)
	}
	if len(got) != 1 || got[0].Path != "/sendText" {
		t.Fatalf("unexpected requests %+v", got)
	}
	body := got[0].Body
	if body["chatId"] != "254712345678@c.us" || body["session"] != "default" || body["text"] != "Hello" {
		t.Fatalf("unexpected payload %v", body)
	}

	if _, err := svc.SendText(context.Background(), "call me", "Hello"); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestWhatsAppContinueChat(t *testing.T) {
	var got []capturedRequest
	srv := relayServer(t, http.StatusCreated, `{}`, &got)
	svc := NewWhatsAppService(nil, NewRelayClient(srv.URL, time.Second), "hotel")

	history := []ChatMessage{{Sender: "user", Content: "Do you have parking? "}, {Sender: "ai", Content: "Yes, free parking."}}
	if err := svc.ContinueChat(context.Background(), "+254 712 345 678", history); err != nil {
		t.Fatalf("ContinueChat: %v", err)
	}
	if len(got) != 1 || got[0].Path != "/api/sendText" {
		t.Fatalf("unexpected requests %+v", got)
	}
	want := "You: Do you have parking?\nAI: Yes, free parking."
	if got[0].Body["text"] != want || got[0].Body["session"] != "hotel" {
		t.Fatalf("unexpected payload %v", got[0].Body)
	}
}

func TestChatAsk(t *testing.T) {
	var got []capturedRequest
	srv := relayServer(t, http.StatusOK, `{"response":"We are open 24/7."}`, &got)
	svc := NewChatService(NewRelayClient(srv.URL, time.Second))

	reply, err := svc.Ask(context.Background(), ChatRequest{Message: "Hours?", SiteID: "site-1"}, "https://hotel.example")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "We are open 24/7." {
		t.Fatalf("unexpected reply %q", reply)
	}
	meta, _ := got[0].Body["metadata"].(map[string]interface{})
	if got[0].Path != "/api/chat" || meta["source"] != "web_chat" || meta["url"] != "https://hotel.example" || meta["siteId"] != "site-1" {
		t.Fatalf("unexpected upstream request %+v", got[0])
	}
}

func TestChatAskEmptyReply(t *testing.T) {
	srv := relayServer(t, http.StatusOK, `{"message":"  "}`, nil)
	svc := NewChatService(NewRelayClient(srv.URL, time.Second))
	_, err := svc.Ask(context.Background(), ChatRequest{Message: "hi"}, "")
	if !errors.Is(err, ErrUpstreamFailed) || !strings.Contains(err.Error(), "empty reply") {
		t.Fatalf("expected empty reply error, got %v", err)
	}
}
