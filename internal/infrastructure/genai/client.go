package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned no text")

// APIError is a non-2xx response from the Generative Language API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generative API error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("generative API error: status=%d %s: %s", e.StatusCode, e.Status, e.Message)
}

// GeminiClient は Generative Language REST API の generateContent を呼び出す。
type GeminiClient struct {
	client *resty.Client
	apiKey string
}

// NewGeminiClient builds a client for baseURL (e.g. https://generativelanguage.googleapis.com).
// timeout <= 0 leaves the transport default in place.
func NewGeminiClient(baseURL, apiKey string, timeout time.Duration) *GeminiClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &GeminiClient{client: client, apiKey: apiKey}
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate は model に prompt を 1 回だけ送信し、最初の候補のテキストを返す。
// リトライは行わない。フォールバックは Processor 側の責務。
func (c *GeminiClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	var result generateContentResponse
	var apiErr errorResponse

	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(generateContentRequest{
			Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v1beta/" + modelPath(model) + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("generateContent request failed: %w", err)
	}

	if res.IsError() {
		message := apiErr.Error.Message
		if message == "" {
			message = strings.TrimSpace(truncate(res.String(), 512))
		}
		return "", &APIError{StatusCode: res.StatusCode(), Status: apiErr.Error.Status, Message: message}
	}

	if len(result.Candidates) == 0 {
		if reason := result.PromptFeedback.BlockReason; reason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, reason)
		}
		return "", ErrEmptyResponse
	}

	var builder strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		builder.WriteString(p.Text)
	}
	text := builder.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: finishReason=%s", ErrEmptyResponse, result.Candidates[0].FinishReason)
	}
	return text, nil
}

// modelPath は "gemini-2.0-flash" のような短縮名にも "models/" を補う。
func modelPath(model string) string {
	model = strings.Trim(strings.TrimSpace(model), "/")
	if strings.HasPrefix(model, "models/") || strings.HasPrefix(model, "tunedModels/") {
		return model
	}
	return "models/" + model
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
