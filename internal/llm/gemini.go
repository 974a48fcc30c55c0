package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkleber/kaltrack/internal/models"
)

// Error classes for callers that want to vary the user-facing message.
// The parser runs its rule-based fallback on any of them.
var (
	ErrTimeout    = errors.New("model request timed out")
	ErrQuota      = errors.New("model quota exceeded")
	ErrConnection = errors.New("model unreachable")
)

const requestTimeout = 30 * time.Second

// Client talks to a Gemini-style generateContent API. Requests are not
// retried: the chat flow degrades to the rule-based parser instead of
// keeping the user waiting.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a model gateway client.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Model returns the configured model name, for the health endpoint.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Send submits a user message with conversation history and the system
// context, and returns the raw model text. Low temperature: nutrition
// capture needs accuracy, not creativity.
func (c *Client) Send(ctx context.Context, message string, history []models.ChatMessage, systemContext string) (string, error) {
	req := generateRequest{
		GenerationConfig: generationConfig{Temperature: 0.3, MaxOutputTokens: 8192},
	}
	if systemContext != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemContext}}}
	}
	for _, msg := range history {
		req.Contents = append(req.Contents, content{Role: msg.Role, Parts: []part{{Text: msg.Content}}})
	}
	req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: message}}})

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatusError(resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("model returned empty text")
	}
	return text, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}

func classifyStatusError(status int, body []byte) error {
	msg := strings.ToLower(string(body))
	if status == http.StatusTooManyRequests || strings.Contains(msg, "quota") || strings.Contains(msg, "limit") {
		return fmt.Errorf("%w: status %d", ErrQuota, status)
	}
	return fmt.Errorf("model returned status %d: %s", status, truncate(string(body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
