// Package tenant resolves per-tenant AI settings from the stored
// settings document. Documents are tenant-edited JSON, so every field
// is coerced defensively and falls back to the base value on junk.
package tenant

// #region imports
import (
	"strconv"
	"strings"

	"github.com/guestflow/ragcore/internal/dispatch"
	"github.com/guestflow/ragcore/internal/escalate"
	"github.com/guestflow/ragcore/internal/gate"
)

// #endregion

// #region settings

// Settings is the fully resolved per-tenant configuration for one
// request.
type Settings struct {
	Provider string
	Model    string

	// Voice overrides; both must be set to take effect.
	VoiceProvider string
	VoiceModel    string

	SystemPrompt      string
	VoiceSystemPrompt string

	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	MaxTokens        int // 0 means the channel default

	TopKDefault  int
	TopKFallback int

	PurePromptMode bool

	GateOverrides gate.Overrides

	// Proxies maps provider name to the stored proxy string, present
	// only for providers whose proxy flag is enabled.
	Proxies map[string]string
}

// DefaultSettings returns the baseline every tenant starts from.
func DefaultSettings() Settings {
	return Settings{
		Provider:     "yandex",
		Model:        "yandexgpt",
		Temperature:  0.7,
		TopP:         0.95,
		TopKDefault:  escalate.DefaultTopK,
		TopKFallback: escalate.DefaultTopKWide,
	}
}

// #endregion settings

// #region resolve

// ResolveModel returns the provider and friendly model for the
// channel. Voice uses the voice pair only when both are set.
func (s Settings) ResolveModel(voice bool) (provider, model string) {
	if voice && s.VoiceProvider != "" && s.VoiceModel != "" {
		return s.VoiceProvider, s.VoiceModel
	}
	return s.Provider, s.Model
}

// PromptTemplate picks the system prompt template for the channel.
// Voice prefers the voice prompt, falls back to the chat prompt, then
// to the given default; chat skips the voice prompt entirely.
func (s Settings) PromptTemplate(voice bool, defaultPrompt string) string {
	if voice && s.VoiceSystemPrompt != "" {
		return s.VoiceSystemPrompt
	}
	if s.SystemPrompt != "" {
		return s.SystemPrompt
	}
	return defaultPrompt
}

// Sampling materializes the generation parameters for the channel.
func (s Settings) Sampling(voice bool) dispatch.Sampling {
	out := dispatch.DefaultSampling(voice)
	out.Temperature = s.Temperature
	out.TopP = s.TopP
	out.FrequencyPenalty = s.FrequencyPenalty
	out.PresencePenalty = s.PresencePenalty
	if s.MaxTokens > 0 {
		out.MaxTokens = s.MaxTokens
	}
	return out
}

// Proxy returns the stored proxy string for a provider, or "".
func (s Settings) Proxy(provider string) string {
	return s.Proxies[provider]
}

// #endregion resolve

// #region from-document

// FromDocument overlays a stored settings document onto base. Unknown
// keys are ignored; fields that fail coercion keep the base value.
func FromDocument(base Settings, doc map[string]any) Settings {
	out := base

	if v := safeString(doc["provider"]); v != "" {
		out.Provider = v
	}
	if v := safeString(doc["model"]); v != "" {
		out.Model = v
	}
	if v := safeString(doc["voice_provider"]); v != "" {
		out.VoiceProvider = v
	}
	if v := safeString(doc["voice_model"]); v != "" {
		out.VoiceModel = v
	}
	if v := safeString(doc["system_prompt"]); v != "" {
		out.SystemPrompt = v
	}
	if v := safeString(doc["voice_system_prompt"]); v != "" {
		out.VoiceSystemPrompt = v
	}

	out.Temperature = safeFloat(doc["temperature"], base.Temperature)
	out.TopP = safeFloat(doc["top_p"], base.TopP)
	out.FrequencyPenalty = safeFloat(doc["frequency_penalty"], base.FrequencyPenalty)
	out.PresencePenalty = safeFloat(doc["presence_penalty"], base.PresencePenalty)
	out.MaxTokens = safeInt(doc["max_tokens"], base.MaxTokens)

	out.TopKDefault = safeInt(doc["rag_topk_default"], base.TopKDefault)
	out.TopKFallback = safeInt(doc["rag_topk_fallback"], base.TopKFallback)

	out.PurePromptMode = safeBool(doc["enable_pure_prompt_mode"], base.PurePromptMode)

	if overrides, ok := doc["quality_gate_settings"].(map[string]any); ok {
		merged := make(gate.Overrides, len(overrides))
		for category, raw := range overrides {
			if fields, ok := raw.(map[string]any); ok {
				merged[category] = fields
			}
		}
		if len(merged) > 0 {
			out.GateOverrides = merged
		}
	}

	out.Proxies = proxiesFromDocument(doc, base.Proxies)

	return out
}

// proxiesFromDocument collects per-provider proxy strings guarded by
// their use_proxy_* flags.
func proxiesFromDocument(doc map[string]any, base map[string]string) map[string]string {
	providers := []string{"deepseek", "openrouter", "proxyapi"}

	out := make(map[string]string, len(providers))
	for k, v := range base {
		out[k] = v
	}
	for _, p := range providers {
		enabled := safeBool(doc["use_proxy_"+p], false)
		raw := safeString(doc["proxy_"+p])
		if enabled && strings.TrimSpace(raw) != "" {
			out[p] = raw
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// #endregion from-document

// #region coerce

func safeString(v any) string {
	s, _ := v.(string)
	return s
}

// safeFloat accepts numbers and numeric strings, keeping the default
// on anything else.
func safeFloat(v any, def float64) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return def
}

// safeInt truncates floats and numeric strings the way the settings
// editor stores them.
func safeInt(v any, def int) int {
	switch x := v.(type) {
	case int:
		return x
	case float64:
		return int(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return int(f)
		}
	}
	return def
}

func safeBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// #endregion coerce
