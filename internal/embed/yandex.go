// Package embed fetches query embeddings. Embeddings always use the
// project's own Yandex credentials, never tenant keys, so one tenant's
// broken key cannot take retrieval down for everyone.
package embed

// #region imports
import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// #endregion

// #region client

const (
	embeddingURL     = "https://llm.api.cloud.yandex.net/foundationModels/v1/textEmbedding"
	embeddingTimeout = 15 * time.Second
	defaultModel     = "text-search-query"
)

// YandexClient calls the Yandex foundation-models text embedding
// endpoint.
type YandexClient struct {
	client   *http.Client
	apiKey   string
	folderID string
	model    string
	url      string
}

// NewYandexClient builds an embedding client. An empty model selects
// text-search-query.
func NewYandexClient(apiKey, folderID, model string) *YandexClient {
	if model == "" {
		model = defaultModel
	}
	return &YandexClient{
		client:   &http.Client{Timeout: embeddingTimeout},
		apiKey:   apiKey,
		folderID: folderID,
		model:    model,
		url:      embeddingURL,
	}
}

// #endregion client

// #region wire

type embeddingRequest struct {
	ModelURI string `json:"modelUri"`
	Text     string `json:"text"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// #endregion wire

// #region embed

// Embed returns the embedding vector for one query text.
func (c *YandexClient) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.apiKey == "" || c.folderID == "" {
		return nil, fmt.Errorf("yandex embeddings: credentials not configured")
	}

	payload, err := json.Marshal(embeddingRequest{
		ModelURI: fmt.Sprintf("emb://%s/%s/latest", c.folderID, c.model),
		Text:     text,
	})
	if err != nil {
		return nil, fmt.Errorf("yandex embeddings: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("yandex embeddings: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yandex embeddings: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yandex embeddings: unexpected status %s: %s",
			resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("yandex embeddings: decode response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("yandex embeddings: empty embedding in response")
	}
	return parsed.Embedding, nil
}

// #endregion embed
