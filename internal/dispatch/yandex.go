package dispatch

// #region imports
import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// #endregion

// #region client

const yandexCompletionURL = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"

// YandexClient talks to the YandexGPT foundation-models completion
// endpoint. Its wire format differs from the OpenAI one: messages use
// a "text" field, the model id is a gpt:// URI scoped to the folder,
// and maxTokens goes over the wire as a string.
type YandexClient struct {
	client   *http.Client
	apiKey   string
	folderID string
	url      string
}

// NewYandexClient builds a client bound to one tenant's folder.
func NewYandexClient(apiKey, folderID string) *YandexClient {
	return &YandexClient{
		client:   &http.Client{Timeout: completionTimeout},
		apiKey:   apiKey,
		folderID: folderID,
		url:      yandexCompletionURL,
	}
}

// #endregion client

// #region wire

type yandexMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type yandexRequest struct {
	ModelURI          string `json:"modelUri"`
	CompletionOptions struct {
		Temperature float64 `json:"temperature"`
		MaxTokens   string  `json:"maxTokens"`
	} `json:"completionOptions"`
	Messages []yandexMessage `json:"messages"`
}

type yandexResponse struct {
	Result struct {
		Alternatives []struct {
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		} `json:"alternatives"`
		Usage struct {
			InputTextTokens  json.Number `json:"inputTextTokens"`
			CompletionTokens json.Number `json:"completionTokens"`
			TotalTokens      json.Number `json:"totalTokens"`
		} `json:"usage"`
	} `json:"result"`
}

// #endregion wire

// #region complete

// Complete sends the completion request and returns the first
// alternative.
func (c *YandexClient) Complete(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" || c.folderID == "" {
		return Response{}, fmt.Errorf("yandex: %w", ErrMissingCredentials)
	}

	messages := make([]yandexMessage, 0, len(req.History)+2)
	messages = append(messages, yandexMessage{Role: "system", Text: req.System})
	for _, m := range req.History {
		role := "assistant"
		if m.Role == "user" {
			role = "user"
		}
		messages = append(messages, yandexMessage{Role: role, Text: m.Content})
	}
	messages = append(messages, yandexMessage{Role: "user", Text: req.User})

	var wire yandexRequest
	wire.ModelURI = fmt.Sprintf("gpt://%s/%s", c.folderID, req.Model)
	wire.CompletionOptions.Temperature = req.Sampling.Temperature
	wire.CompletionOptions.MaxTokens = strconv.Itoa(req.Sampling.MaxTokens)
	wire.Messages = messages

	payload, err := json.Marshal(wire)
	if err != nil {
		return Response{}, fmt.Errorf("yandex: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("yandex: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Api-Key "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("yandex: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("yandex: unexpected status %s: %s",
			resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed yandexResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Response{}, fmt.Errorf("yandex: decode response: %w", err)
	}
	if len(parsed.Result.Alternatives) == 0 {
		return Response{}, fmt.Errorf("yandex: empty alternatives in response")
	}

	total, _ := parsed.Result.Usage.TotalTokens.Int64()
	prompt, _ := parsed.Result.Usage.InputTextTokens.Int64()
	completion, _ := parsed.Result.Usage.CompletionTokens.Int64()

	return Response{
		Text: parsed.Result.Alternatives[0].Message.Text,
		Usage: Usage{
			PromptTokens:     int(prompt),
			CompletionTokens: int(completion),
			TotalTokens:      int(total),
		},
	}, nil
}

// #endregion complete
