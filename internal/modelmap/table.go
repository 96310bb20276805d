package modelmap

// #region imports
import (
	"errors"
	"fmt"
)

// #endregion

// #region errors

// ErrUnsupportedModel marks a (provider, friendly name) pair with no
// mapping. A configuration error: surfaced to the caller, never
// silently defaulted.
var ErrUnsupportedModel = errors.New("unsupported model")

// #endregion errors

// #region table

// Friendly tenant-facing model names → concrete upstream ids, per
// provider. The same friendly name (e.g. deepseek-chat) may map
// differently under different providers. Lookups are exact and
// case-sensitive.
var providerModels = map[string]map[string]string{
	"yandex": {
		"yandexgpt":      "yandexgpt",
		"yandexgpt-lite": "yandexgpt-lite",
	},
	"deepseek": {
		"deepseek-chat":     "deepseek-chat",
		"deepseek-reasoner": "deepseek-reasoner",
	},
	"openrouter": {
		// Free tier
		"gemini-2.0-flash": "google/gemini-2.0-flash-exp:free",
		"llama-3.3-70b":    "meta-llama/llama-3.3-70b-instruct:free",
		"deepseek-v3":      "deepseek/deepseek-chat:free",
		"deepseek-r1":      "deepseek/deepseek-r1:free",
		"qwen-2.5-72b":     "qwen/qwen-2.5-72b-instruct:free",
		"mistral-small":    "mistralai/mistral-small-3.1-24b-instruct:free",
		"llama-3.1-405b":   "meta-llama/llama-3.1-405b-instruct:free",
		"olmo-3-32b":       "allenai/olmo-3.1-32b-think:free",
		// Budget paid (fast enough for voice)
		"gemini-flash-1.5": "google/gemini-flash-1.5",
		"deepseek-chat":    "deepseek/deepseek-chat",
		"gpt-4o-mini":      "openai/gpt-4o-mini",
		"claude-3-haiku":   "anthropic/claude-3-haiku",
		"qwen-2.5-7b":      "qwen/qwen-2.5-7b-instruct",
		"qwen-2.5-14b":     "qwen/qwen-2.5-14b-instruct",
		"qwen-2.5-32b":     "qwen/qwen-2.5-32b-instruct",
		"qwen-3-72b":       "qwen/qwen-3-72b-instruct",
		"llama-3.1-70b":    "meta-llama/llama-3.1-70b-instruct",
		// Flagship paid
		"gemini-pro-1.5":    "google/gemini-pro-1.5",
		"gpt-4o":            "openai/gpt-4o",
		"claude-3.5-sonnet": "anthropic/claude-3.5-sonnet",
		"claude-opus-4":     "anthropic/claude-opus-4-20250514",
	},
	"proxyapi": {
		"gpt-4o-mini":       "gpt-4o-mini-2024-07-18",
		"gpt-3.5-turbo":     "gpt-3.5-turbo-0125",
		"claude-3.5-haiku":  "claude-3-5-haiku-20241022",
		"o3-mini":           "o3-mini-2025-01-31",
		"gpt-5":             "gpt-5-2025-08-07",
		"o3":                "o3-2025-04-16",
		"gpt-4o":            "gpt-4o-2024-11-20",
		"claude-sonnet-4.5": "claude-sonnet-4-5-20250929",
		"o3-pro":            "o3-pro-2025-06-10",
		"claude-opus-4":     "claude-opus-4-20250514",
	},
}

// #endregion table

// #region resolve

// Resolve maps a tenant's friendly model name to the concrete
// upstream id for the given provider.
func Resolve(provider, friendlyModel string) (string, error) {
	models, ok := providerModels[provider]
	if !ok {
		return "", fmt.Errorf("model %q not supported for provider %q: %w",
			friendlyModel, provider, ErrUnsupportedModel)
	}
	id, ok := models[friendlyModel]
	if !ok {
		return "", fmt.Errorf("model %q not supported for provider %q: %w",
			friendlyModel, provider, ErrUnsupportedModel)
	}
	return id, nil
}

// #endregion resolve
