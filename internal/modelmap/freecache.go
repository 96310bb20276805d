package modelmap

// #region imports
import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// #endregion

// #region errors

// ErrNoFreeModels is returned when the cache is empty and no working
// free model can be named. The resolver never invents an id.
var ErrNoFreeModels = errors.New("no free alternative available")

// #endregion errors

// #region constants

const (
	listingURL     = "https://openrouter.ai/api/v1/models"
	cacheTTL       = time.Hour
	listingTimeout = 5 * time.Second
)

// #endregion constants

// #region model-info

// ModelInfo describes one free upstream model from the listing.
type ModelInfo struct {
	ID            string
	Name          string
	ContextLength int
	Description   string
}

// #endregion model-info

// #region preferred

// Preference lists for friendly free-tier names, most-preferred
// first. The first candidate present in the live cache wins.
var preferredFree = []struct {
	friendly   string
	candidates []string
}{
	{"deepseek-r1", []string{"deepseek/deepseek-r1", "deepseek/deepseek-r1-distill-llama-70b"}},
	{"deepseek-chat", []string{"deepseek/deepseek-chat"}},
	{"llama-3.3-70b", []string{"meta-llama/llama-3.3-70b-instruct:free"}},
	{"llama-3.2-90b-vision", []string{"meta-llama/llama-3.2-90b-vision-instruct:free"}},
	{"llama-3.2-11b-vision", []string{"meta-llama/llama-3.2-11b-vision-instruct:free"}},
	{"llama-3.2-3b", []string{"meta-llama/llama-3.2-3b-instruct:free"}},
	{"llama-3.2-1b", []string{"meta-llama/llama-3.2-1b-instruct:free"}},
	{"llama-3.1-405b", []string{"meta-llama/llama-3.1-405b-instruct:free"}},
	{"llama-3.1-70b", []string{"meta-llama/llama-3.1-70b-instruct:free"}},
	{"llama-3.1-8b", []string{"meta-llama/llama-3.1-8b-instruct:free"}},
	{"qwen-2.5-72b", []string{"qwen/qwen-2.5-72b-instruct:free"}},
	{"qwen-2.5-7b", []string{"qwen/qwen-2.5-7b-instruct:free"}},
	{"qwen-qwq-32b", []string{"qwen/qwq-32b-preview:free"}},
	{"gemma-2-27b", []string{"google/gemma-2-27b-it:free"}},
	{"gemma-2-9b", []string{"google/gemma-2-9b-it:free"}},
	{"mistral-7b", []string{"mistralai/mistral-7b-instruct:free"}},
	{"phi-3-medium", []string{"microsoft/phi-3-medium-128k-instruct:free"}},
	{"mythomist-7b", []string{"gryphe/mythomist-7b:free"}},
}

// #endregion preferred

// #region cache

// FreeModelCache keeps the list of currently-free upstream models,
// refreshed from the listing endpoint at most once per TTL. A stale
// cache is always preferred over a failed refresh, so a listing
// outage never fails requests that have a cache to fall back on.
type FreeModelCache struct {
	mu        sync.Mutex
	models    []ModelInfo
	fetchedAt time.Time

	client *http.Client
	url    string
	ttl    time.Duration
	log    zerolog.Logger
}

// NewFreeModelCache creates an empty cache. The first Models call
// triggers the initial fetch.
func NewFreeModelCache(log zerolog.Logger) *FreeModelCache {
	return &FreeModelCache{
		client: &http.Client{Timeout: listingTimeout},
		url:    listingURL,
		ttl:    cacheTTL,
		log:    log,
	}
}

// #endregion cache

// #region listing-wire

type listingResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		ContextLength int    `json:"context_length"`
		Description   string `json:"description"`
		Pricing       struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
	} `json:"data"`
}

// #endregion listing-wire

// #region models

// Models returns the current free-model list, refreshing it when the
// cache is older than the TTL. Refresh failures keep the previous
// cache and only log.
func (c *FreeModelCache) Models(ctx context.Context) []ModelInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl {
		return c.models
	}

	fresh, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("free model listing refresh failed, serving cached list")
		return c.models
	}

	c.models = fresh
	c.fetchedAt = time.Now()
	c.log.Info().Int("count", len(fresh)).Msg("refreshed free model list")
	return c.models
}

func (c *FreeModelCache) fetch(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	var listing listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	var free []ModelInfo
	for _, m := range listing.Data {
		if !isZeroPrice(m.Pricing.Prompt) || !isZeroPrice(m.Pricing.Completion) {
			continue
		}
		free = append(free, ModelInfo{
			ID:            m.ID,
			Name:          m.Name,
			ContextLength: m.ContextLength,
			Description:   m.Description,
		})
	}
	return free, nil
}

// isZeroPrice treats unparsable prices as paid, not free.
func isZeroPrice(price string) bool {
	if price == "" {
		return true
	}
	f, err := strconv.ParseFloat(price, 64)
	return err == nil && f == 0
}

// #endregion models

// #region resolve-free

// ResolveFree maps a requested free-tier model (friendly name or full
// upstream id) to a model currently present in the free list.
// Unknown or unavailable requests fall back to the first cached model
// with a warning; an empty cache is a hard error.
func (c *FreeModelCache) ResolveFree(ctx context.Context, requested string) (string, error) {
	models := c.Models(ctx)

	available := make(map[string]bool, len(models))
	for _, m := range models {
		available[m.ID] = true
	}

	for _, pref := range preferredFree {
		if pref.friendly != requested {
			continue
		}
		for _, candidate := range pref.candidates {
			if available[candidate] {
				return candidate, nil
			}
		}
		break
	}

	if available[requested] {
		return requested, nil
	}

	if len(models) > 0 {
		fallback := models[0].ID
		c.log.Warn().
			Str("requested", requested).
			Str("fallback", fallback).
			Msg("requested free model unavailable, using fallback")
		return fallback, nil
	}

	return "", fmt.Errorf("model %q unavailable: %w", requested, ErrNoFreeModels)
}

// #endregion resolve-free
