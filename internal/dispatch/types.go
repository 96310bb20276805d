// Package dispatch sends a composed prompt to the tenant's chat
// provider. All upstreams are plain HTTP JSON; the OpenAI-compatible
// ones share a single client and Yandex gets its own wire format.
package dispatch

// #region imports
import (
	"context"
	"errors"
)

// #endregion

// #region errors

// ErrMissingCredentials is returned before any network call when the
// tenant has no API key stored for the selected provider.
var ErrMissingCredentials = errors.New("missing provider credentials")

// #endregion errors

// #region messages

// Message is one turn of the conversation sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// #endregion messages

// #region sampling

const (
	// DefaultMaxTokens caps chat answers; voice answers are cut
	// shorter to keep call latency down.
	DefaultMaxTokens      = 2000
	DefaultMaxTokensVoice = 500
)

// Sampling carries the generation parameters every provider accepts.
type Sampling struct {
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	MaxTokens        int
}

// DefaultSampling returns the production defaults for the channel.
func DefaultSampling(voice bool) Sampling {
	maxTokens := DefaultMaxTokens
	if voice {
		maxTokens = DefaultMaxTokensVoice
	}
	return Sampling{
		Temperature: 0.7,
		TopP:        0.95,
		MaxTokens:   maxTokens,
	}
}

// #endregion sampling

// #region request-response

// Request is a fully resolved completion request: concrete upstream
// model id, composed system prompt, gated history.
type Request struct {
	Model    string
	System   string
	History  []Message
	User     string
	Sampling Sampling
}

// Usage reports upstream token consumption for billing logs.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the assistant's answer plus usage accounting.
type Response struct {
	Text  string
	Usage Usage
}

// Completer is the single behavior the pipeline needs from a
// provider client.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// #endregion request-response
