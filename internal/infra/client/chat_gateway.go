package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// ChatGatewayClient forwards conversations to the hosted AI gateway and
// relays the SSE token stream back. Unlike the other upstream clients it
// makes exactly one attempt per call: retrying a partially consumed
// completion stream would re-bill tokens and duplicate output.
type ChatGatewayClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewStreamingHTTPClient returns an http.Client for long-lived event-stream
// responses. Client.Timeout would cover reading the body and cut completions
// that stream longer than the deadline, so instead only dialing, the TLS
// handshake, and the response headers are bounded; body reads end when the
// request context is cancelled or the stream is closed.
func NewStreamingHTTPClient(setupTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: setupTimeout}).DialContext,
			TLSHandshakeTimeout:   setupTimeout,
			ResponseHeaderTimeout: setupTimeout,
		},
	}
}

// NewChatGatewayClient creates a new ChatGatewayClient.
func NewChatGatewayClient(httpClient *http.Client, baseURL, apiKey string) *ChatGatewayClient {
	return &ChatGatewayClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// StreamChat opens a streaming completion. The returned stream yields text
// deltas until the gateway's [DONE] sentinel, after which Recv returns io.EOF.
func (c *ChatGatewayClient) StreamChat(ctx context.Context, req *domain.GatewayChatRequest) (port.ChatStream, error) {
	ctx, span := tracer.Start(ctx, "ChatGatewayClient.StreamChat")
	defer span.End()
	span.SetAttributes(attribute.Int("chat.messages", len(req.Messages)))

	req.Stream = true
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "chat-gateway", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return nil, &domain.ErrRateLimited{Service: "chat-gateway"}
		case http.StatusPaymentRequired:
			return nil, &domain.ErrQuotaExceeded{Service: "chat-gateway"}
		default:
			return nil, &domain.ErrExternalService{
				Service: "chat-gateway",
				Err:     fmt.Errorf("gateway returned status %d", resp.StatusCode),
			}
		}
	}

	return &sseStream{body: resp.Body, scanner: bufio.NewScanner(resp.Body)}, nil
}

// sseStream decodes "data: " lines from an event-stream body.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

// deltaFrame is the wire shape of one streamed chunk.
type deltaFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Recv returns the next non-empty text delta, or io.EOF after the [DONE]
// sentinel (or on clean end of body).
func (s *sseStream) Recv() (domain.ChatDelta, error) {
	if s.done {
		return domain.ChatDelta{}, io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue // comments, blank keep-alives, event names
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			s.done = true
			return domain.ChatDelta{}, io.EOF
		}

		var frame deltaFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			return domain.ChatDelta{}, fmt.Errorf("decode stream frame: %w", err)
		}
		if len(frame.Choices) == 0 || frame.Choices[0].Delta.Content == "" {
			continue
		}
		return domain.ChatDelta{Content: frame.Choices[0].Delta.Content}, nil
	}

	if err := s.scanner.Err(); err != nil {
		return domain.ChatDelta{}, &domain.ErrExternalService{Service: "chat-gateway", Err: err}
	}
	s.done = true
	return domain.ChatDelta{}, io.EOF
}

// Close aborts the underlying response body. Safe to call more than once.
func (s *sseStream) Close() error {
	s.done = true
	return s.body.Close()
}
