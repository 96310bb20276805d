package pipeline

// #region imports
import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/guestflow/ragcore/internal/auditlog"
	"github.com/guestflow/ragcore/internal/dispatch"
	"github.com/guestflow/ragcore/internal/escalate"
	"github.com/guestflow/ragcore/internal/gate"
	"github.com/guestflow/ragcore/internal/modelmap"
	"github.com/guestflow/ragcore/internal/scorer"
	"github.com/guestflow/ragcore/internal/tenant"
)

// #endregion

// #region constants

const (
	// rawFallbackChunks is how many recent chunks stand in for scored
	// context when the embedding call fails.
	rawFallbackChunks = 3

	// maxHistory bounds the conversation window sent upstream.
	maxHistory = 10
)

// #endregion constants

// #region pipeline

// Deps wires the pipeline's collaborators.
type Deps struct {
	Embedder   Embedder
	Chunks     ChunkSource
	Settings   SettingsSource
	FreeModels FreeModelResolver
	Audit      AuditSink
	Completers CompleterFactory
	Escalator  *escalate.Controller

	// DefaultPrompt is the system prompt used when a tenant set none.
	DefaultPrompt string
}

// Pipeline answers chat turns.
type Pipeline struct {
	log  zerolog.Logger
	deps Deps
}

// New builds a pipeline. All Deps fields except Audit are required.
func New(log zerolog.Logger, deps Deps) *Pipeline {
	return &Pipeline{log: log, deps: deps}
}

// #endregion pipeline

// #region answer

// Answer runs one chat turn end to end and returns the assistant's
// reply together with the gate outcome that shaped it.
func (p *Pipeline) Answer(ctx context.Context, req Request) (Result, error) {
	settings, err := p.deps.Settings.Settings(ctx, req.TenantID)
	if err != nil {
		return Result{}, fmt.Errorf("load tenant settings: %w", err)
	}
	provider, friendly := settings.ResolveModel(req.Voice)

	var (
		asm       scorer.AssembledContext
		outcome   gate.Outcome
		widened   bool
		escalated bool
	)

	switch {
	case settings.PurePromptMode:
		// The tenant opted out of RAG entirely: no retrieval, gate
		// treated as passed with an empty context.
		outcome = gate.Outcome{
			Passed: true,
			Reason: gate.Reason{Code: gate.CodePurePrompt},
		}
		p.log.Debug().Str("tenant", req.TenantID).Msg("pure prompt mode, skipping retrieval")

	default:
		chunks, err := p.deps.Chunks.Chunks(ctx, req.TenantID)
		if err != nil {
			return Result{}, fmt.Errorf("load chunks: %w", err)
		}
		if len(chunks) == 0 {
			outcome = gate.Outcome{
				Passed: false,
				Reason: gate.Reason{Code: gate.CodeNoChunks},
			}
			break
		}

		vec, err := p.deps.Embedder.Embed(ctx, req.Message)
		if err != nil {
			asm, outcome = p.rawFallback(ctx, req.TenantID, err)
			break
		}

		asm, outcome, widened, escalated = p.gatedRetrieval(req.Message, vec, chunks, settings.TopKDefault, settings.TopKFallback, settings.GateOverrides)
		p.deps.Escalator.RecordOutcome(outcome.Reason)
	}

	if p.deps.Audit != nil {
		if err := p.deps.Audit.Log(ctx, auditlog.NewEntry(req.TenantID, req.Message, outcome)); err != nil {
			p.log.Error().Err(err).Msg("audit log write failed")
		}
	}

	resp, model, err := p.complete(ctx, req, settings, provider, friendly, asm.Text, outcome)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Answer:    resp.Text,
		Usage:     resp.Usage,
		Outcome:   outcome,
		Provider:  provider,
		Model:     model,
		Widened:   widened,
		Escalated: escalated,
	}, nil
}

// #endregion answer

// #region retrieval

// gatedRetrieval runs the scored retrieval with at most one wider
// retry. The returned outcome is the final verdict; intermediate
// failures rescued by the retry are logged but never recorded.
func (p *Pipeline) gatedRetrieval(message string, vec []float64, chunks []scorer.Chunk, topKDefault, topKFallback int, overrides gate.Overrides) (scorer.AssembledContext, gate.Outcome, bool, bool) {
	topK, widened := p.deps.Escalator.PickTopK(topKDefault, topKFallback)

	asm := scorer.Rank(vec, chunks, topK)
	outcome := gate.Evaluate(message, asm.Text, asm.Similarities, overrides)
	outcome.TopKUsed = topK
	p.logGate("rag_gate", outcome)

	if !p.deps.Escalator.ShouldEscalate(outcome.Reason, topK, topKFallback) {
		return asm, outcome, widened, false
	}

	asm2 := scorer.Rank(vec, chunks, topKFallback)
	outcome2 := gate.Evaluate(message, asm2.Text, asm2.Similarities, overrides)
	outcome2.TopKUsed = topKFallback
	p.logGate("rag_gate_fallback", outcome2)

	return asm2, outcome2, widened, true
}

// rawFallback assembles the newest chunks verbatim when embedding is
// down. The gate cannot pass without scores, so the turn is answered
// without document context instead of failing outright.
func (p *Pipeline) rawFallback(ctx context.Context, tenantID string, embedErr error) (scorer.AssembledContext, gate.Outcome) {
	p.log.Warn().Err(embedErr).Str("tenant", tenantID).Msg("embedding failed, using raw chunk fallback")

	texts, err := p.deps.Chunks.RecentTexts(ctx, tenantID, rawFallbackChunks)
	if err != nil {
		p.log.Error().Err(err).Msg("raw chunk fallback failed")
		texts = nil
	}

	return scorer.AssembledContext{Text: strings.Join(texts, "\n\n")}, gate.Outcome{
		Passed: false,
		Reason: gate.Reason{Code: gate.CodeEmbeddingErr},
	}
}

func (p *Pipeline) logGate(event string, out gate.Outcome) {
	ev := p.log.Debug().
		Bool("passed", out.Passed).
		Str("reason", out.Reason.String()).
		Int("context_len", out.ContextLen).
		Int("top_k", out.TopKUsed)
	if out.HasBestSim {
		ev = ev.Float64("best_similarity", out.BestSim)
	}
	if out.HasOverlap {
		ev = ev.Float64("overlap", out.Overlap)
	}
	ev.Msg(event)
}

// #endregion retrieval

// #region dispatch

// complete resolves the concrete model, composes the system prompt
// and sends the completion request.
func (p *Pipeline) complete(ctx context.Context, req Request, settings tenant.Settings, provider, friendly, contextText string, outcome gate.Outcome) (dispatch.Response, string, error) {
	model, err := modelmap.Resolve(provider, friendly)
	if err != nil {
		return dispatch.Response{}, "", err
	}
	if provider == "openrouter" && strings.HasSuffix(model, ":free") {
		model, err = p.deps.FreeModels.ResolveFree(ctx, model)
		if err != nil {
			return dispatch.Response{}, "", err
		}
	}

	system := dispatch.ComposeSystem(settings.PromptTemplate(req.Voice, p.deps.DefaultPrompt), contextText, outcome.Passed)

	// A failed gate also disables history, so stale answers built on
	// since-deleted documents cannot leak back in.
	history := req.History
	if !outcome.Passed {
		history = nil
		p.log.Warn().Str("reason", outcome.Reason.String()).Msg("gate failed, history disabled for this request")
	}
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	proxyURL, err := dispatch.ParseProxy(settings.Proxy(provider))
	if err != nil {
		p.log.Warn().Err(err).Str("provider", provider).Msg("ignoring malformed proxy")
		proxyURL = nil
	}

	completer, err := p.deps.Completers.Completer(ctx, req.TenantID, provider, proxyURL)
	if err != nil {
		return dispatch.Response{}, "", fmt.Errorf("build %s client: %w", provider, err)
	}

	resp, err := completer.Complete(ctx, dispatch.Request{
		Model:    model,
		System:   system,
		History:  history,
		User:     req.Message,
		Sampling: settings.Sampling(req.Voice),
	})
	if err != nil {
		return dispatch.Response{}, "", fmt.Errorf("completion: %w", err)
	}
	return resp, model, nil
}

// #endregion dispatch
