package domain

// ============================================================
// AI Coach — chat gateway contract
// ============================================================

// ChatMessage is one turn of the conversation history.
type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// ChatRequest is the body of POST /v1/chat. The server embeds the profile
// and current analysis into the system prompt; the client only sends history.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// GatewayChatRequest is the payload forwarded to the AI gateway.
type GatewayChatRequest struct {
	Messages    []ChatMessage      `json:"messages"`
	UserProfile *UserProfile       `json:"userProfile,omitempty"`
	Analysis    *FinancialAnalysis `json:"analysis,omitempty"`
	Stream      bool               `json:"stream"`
}

// ChatDelta is one streamed text fragment from the gateway.
type ChatDelta struct {
	Content string `json:"content"`
}

// TokenUsage tracks LLM token consumption for cost monitoring.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CoachMetrics is the snapshot returned by GET /v1/metrics/coach.
type CoachMetrics struct {
	TotalRequests       int64   `json:"totalRequests"`
	ErrorRate           float64 `json:"errorRate"`
	AvgTokensPerRequest float64 `json:"avgTokensPerRequest"`
	EstimatedCostUsd    float64 `json:"estimatedCostUsd"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	Period              string  `json:"period"`
}
