package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrNoChoices = errors.New("completion returned no choices")

type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model            string                  `json:"model"`
	Messages         []ChatCompletionMessage `json:"messages"`
	Temperature      float64                 `json:"temperature"`
	MaxTokens        int                     `json:"max_tokens"`
	PresencePenalty  float64                 `json:"presence_penalty"`
	FrequencyPenalty float64                 `json:"frequency_penalty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatCompletionMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to an OpenAI compatible /chat/completions endpoint.
type Client struct {
	http  *resty.Client
	model string
}

func NewClient(baseURL, apiKey, model string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60*time.Second).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		})
	if apiKey != "" {
		rc.SetAuthToken(apiKey)
	}
	return &Client{http: rc, model: model}
}

func (c *Client) Complete(ctx context.Context, messages []ChatCompletionMessage) (string, error) {
	var out ChatCompletionResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(ChatCompletionRequest{
			Model:            c.model,
			Messages:         messages,
			Temperature:      0.7,
			MaxTokens:        500,
			PresencePenalty:  0.6,
			FrequencyPenalty: 0.3,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return "", fmt.Errorf("chat completion: status %d: %s", resp.StatusCode(), msg)
	}
	if len(out.Choices) == 0 {
		return "", ErrNoChoices
	}
	return out.Choices[0].Message.Content, nil
}
