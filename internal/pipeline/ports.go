// Package pipeline runs the full retrieval-to-answer flow for one
// chat turn: embed, rank, gate, escalate, compose, dispatch.
package pipeline

// #region imports
import (
	"context"
	"net/url"

	"github.com/guestflow/ragcore/internal/auditlog"
	"github.com/guestflow/ragcore/internal/dispatch"
	"github.com/guestflow/ragcore/internal/gate"
	"github.com/guestflow/ragcore/internal/scorer"
	"github.com/guestflow/ragcore/internal/tenant"
)

// #endregion

// #region ports

// Embedder produces the query embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// ChunkSource provides a tenant's document chunks.
type ChunkSource interface {
	Chunks(ctx context.Context, tenantID string) ([]scorer.Chunk, error)
	// RecentTexts returns the newest chunk texts, used as raw context
	// when embedding fails and scoring is impossible.
	RecentTexts(ctx context.Context, tenantID string, limit int) ([]string, error)
}

// SettingsSource resolves a tenant's stored settings.
type SettingsSource interface {
	Settings(ctx context.Context, tenantID string) (tenant.Settings, error)
}

// FreeModelResolver swaps a requested free-tier model for one that is
// currently listed as free.
type FreeModelResolver interface {
	ResolveFree(ctx context.Context, requested string) (string, error)
}

// AuditSink records gate outcomes.
type AuditSink interface {
	Log(ctx context.Context, e auditlog.Entry) error
}

// CompleterFactory builds the provider client for one request.
type CompleterFactory interface {
	Completer(ctx context.Context, tenantID, provider string, proxy *url.URL) (dispatch.Completer, error)
}

// #endregion ports

// #region request-result

// Request is one incoming chat turn.
type Request struct {
	TenantID string
	Message  string
	History  []dispatch.Message
	Voice    bool
}

// Result carries the answer plus everything the caller logs about how
// it was produced.
type Result struct {
	Answer   string
	Usage    dispatch.Usage
	Outcome  gate.Outcome
	Provider string
	Model    string

	// Widened is true when the request started at the fallback top-k;
	// Escalated when the second, wider gate pass ran.
	Widened   bool
	Escalated bool
}

// #endregion request-result
