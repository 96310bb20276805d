package dispatch

// #region imports
import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// #endregion

// #region bases

// Base URLs for the OpenAI-compatible providers.
const (
	BaseOpenRouter = "https://openrouter.ai/api/v1"
	BaseDeepSeek   = "https://api.deepseek.com"
	BaseProxyAPI   = "https://api.proxyapi.ru/openai/v1"
)

const completionTimeout = 60 * time.Second

// #endregion bases

// #region client

// OpenAIClient talks to any OpenAI-compatible chat completion
// endpoint. OpenRouter, DeepSeek and ProxyAPI all share this wire
// format and differ only in base URL and key.
type OpenAIClient struct {
	client   *http.Client
	apiKey   string
	baseURL  string
	provider string
}

// NewOpenAIClient builds a client for one provider. A non-nil proxy
// routes all traffic for this client through it.
func NewOpenAIClient(provider, baseURL, apiKey string, proxy *url.URL) *OpenAIClient {
	client := &http.Client{Timeout: completionTimeout}
	if proxy != nil {
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxy)}
	}
	return &OpenAIClient{
		client:   client,
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		provider: provider,
	}
}

// #endregion client

// #region wire

type chatRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
	MaxTokens        int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// #endregion wire

// #region complete

// Complete sends the chat completion request and returns the first
// choice. Credential checks run before any network traffic.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, fmt.Errorf("%s: %w", c.provider, ErrMissingCredentials)
	}

	messages := make([]Message, 0, len(req.History)+2)
	messages = append(messages, Message{Role: "system", Content: req.System})
	messages = append(messages, req.History...)
	messages = append(messages, Message{Role: "user", Content: req.User})

	payload, err := json.Marshal(chatRequest{
		Model:            req.Model,
		Messages:         messages,
		Temperature:      req.Sampling.Temperature,
		TopP:             req.Sampling.TopP,
		FrequencyPenalty: req.Sampling.FrequencyPenalty,
		PresencePenalty:  req.Sampling.PresencePenalty,
		MaxTokens:        req.Sampling.MaxTokens,
	})
	if err != nil {
		return Response{}, fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%s: request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("%s: unexpected status %s: %s",
			c.provider, resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Response{}, fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	if len(parsed.Choices) == 0 {
		return Response{}, fmt.Errorf("%s: empty choices in response", c.provider)
	}

	return Response{
		Text: parsed.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

// #endregion complete
