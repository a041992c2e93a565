package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/client"
)

func sseBody(frames ...string) string {
	body := ""
	for _, f := range frames {
		body += "data: " + f + "\n\n"
	}
	return body
}

func TestChatGateway_StreamsDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseBody(
			`{"choices":[{"delta":{"content":"Hel"}}]}`,
			`{"choices":[{"delta":{"content":"lo"}}]}`,
			`{"choices":[{"delta":{"content":""}}]}`,
			"[DONE]",
		))
	}))
	defer srv.Close()

	gw := client.NewChatGatewayClient(srv.Client(), srv.URL, "test-key")
	stream, err := gw.StreamChat(context.Background(), &domain.GatewayChatRequest{
		Messages: []domain.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer stream.Close()

	var got string
	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		got += delta.Content
	}
	if got != "Hello" {
		t.Errorf("streamed content = %q, want %q", got, "Hello")
	}

	// Recv after EOF stays EOF.
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("Recv after done = %v, want io.EOF", err)
	}
}

func TestChatGateway_EOFWithoutSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseBody(`{"choices":[{"delta":{"content":"partial"}}]}`))
	}))
	defer srv.Close()

	gw := client.NewChatGatewayClient(srv.Client(), srv.URL, "")
	stream, err := gw.StreamChat(context.Background(), &domain.GatewayChatRequest{})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer stream.Close()

	delta, err := stream.Recv()
	if err != nil || delta.Content != "partial" {
		t.Fatalf("Recv = (%q, %v), want (partial, nil)", delta.Content, err)
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("Recv at end of body = %v, want io.EOF", err)
	}
}

func TestChatGateway_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limited", http.StatusTooManyRequests, func(err error) bool {
			var e *domain.ErrRateLimited
			return errors.As(err, &e)
		}},
		{"quota exceeded", http.StatusPaymentRequired, func(err error) bool {
			var e *domain.ErrQuotaExceeded
			return errors.As(err, &e)
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var e *domain.ErrExternalService
			return errors.As(err, &e)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			gw := client.NewChatGatewayClient(srv.Client(), srv.URL, "")
			_, err := gw.StreamChat(context.Background(), &domain.GatewayChatRequest{})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.check(err) {
				t.Errorf("error type mismatch: %v", err)
			}
		})
	}
}

func TestChatGateway_StreamOutlivesSetupTimeout(t *testing.T) {
	// Completions can stream for far longer than any connection-setup
	// deadline. The streaming client bounds setup only, so a body that
	// keeps flowing past that deadline must still arrive in full.
	const setupTimeout = 150 * time.Millisecond

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher.Flush()
		for i := 0; i < 6; i++ {
			io.WriteString(w, `data: {"choices":[{"delta":{"content":"tok "}}]}`+"\n\n")
			flusher.Flush()
			time.Sleep(60 * time.Millisecond) // 6 * 60ms > setupTimeout
		}
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	gw := client.NewChatGatewayClient(client.NewStreamingHTTPClient(setupTimeout), srv.URL, "")
	stream, err := gw.StreamChat(context.Background(), &domain.GatewayChatRequest{})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer stream.Close()

	var deltas int
	for {
		_, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("stream cut mid-completion after %d deltas: %v", deltas, err)
		}
		deltas++
	}
	if deltas != 6 {
		t.Errorf("received %d deltas, want 6", deltas)
	}
}

func TestChatGateway_SingleAttempt(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw := client.NewChatGatewayClient(&http.Client{Timeout: 2 * time.Second}, srv.URL, "")
	_, err := gw.StreamChat(context.Background(), &domain.GatewayChatRequest{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want exactly 1", calls)
	}
}
