package pipeline

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/guestflow/ragcore/internal/auditlog"
	"github.com/guestflow/ragcore/internal/dispatch"
	"github.com/guestflow/ragcore/internal/escalate"
	"github.com/guestflow/ragcore/internal/gate"
	"github.com/guestflow/ragcore/internal/scorer"
	"github.com/guestflow/ragcore/internal/tenant"
)

// #region fakes

type fakeEmbedder struct {
	vec []float64
	err error
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.vec, f.err
}

type fakeChunks struct {
	chunks []scorer.Chunk
	recent []string
	called bool
}

func (f *fakeChunks) Chunks(ctx context.Context, tenantID string) ([]scorer.Chunk, error) {
	f.called = true
	return f.chunks, nil
}

func (f *fakeChunks) RecentTexts(ctx context.Context, tenantID string, limit int) ([]string, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

type fakeSettings struct{ s tenant.Settings }

func (f fakeSettings) Settings(ctx context.Context, tenantID string) (tenant.Settings, error) {
	return f.s, nil
}

type fakeFree struct {
	requested string
	out       string
}

func (f *fakeFree) ResolveFree(ctx context.Context, requested string) (string, error) {
	f.requested = requested
	return f.out, nil
}

type fakeAudit struct{ entries []auditlog.Entry }

func (f *fakeAudit) Log(ctx context.Context, e auditlog.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

type fakeCompleter struct {
	lastReq dispatch.Request
	calls   int
}

func (f *fakeCompleter) Complete(ctx context.Context, req dispatch.Request) (dispatch.Response, error) {
	f.lastReq = req
	f.calls++
	return dispatch.Response{Text: "ответ", Usage: dispatch.Usage{TotalTokens: 42}}, nil
}

type fakeFactory struct {
	completer *fakeCompleter
	provider  string
	proxy     *url.URL
}

func (f *fakeFactory) Completer(ctx context.Context, tenantID, provider string, proxy *url.URL) (dispatch.Completer, error) {
	f.provider = provider
	f.proxy = proxy
	return f.completer, nil
}

// #endregion fakes

// #region fixtures

type fixture struct {
	pipeline  *Pipeline
	chunks    *fakeChunks
	audit     *fakeAudit
	free      *fakeFree
	factory   *fakeFactory
	escalator *escalate.Controller
}

func newFixture(t *testing.T, settings tenant.Settings, embedder Embedder, chunks *fakeChunks) *fixture {
	t.Helper()
	f := &fixture{
		chunks:    chunks,
		audit:     &fakeAudit{},
		free:      &fakeFree{out: "deepseek/deepseek-r1"},
		factory:   &fakeFactory{completer: &fakeCompleter{}},
		escalator: escalate.NewController(escalate.DefaultConfig()),
	}
	f.pipeline = New(zerolog.Nop(), Deps{
		Embedder:      embedder,
		Chunks:        chunks,
		Settings:      fakeSettings{s: settings},
		FreeModels:    f.free,
		Audit:         f.audit,
		Completers:    f.factory,
		Escalator:     f.escalator,
		DefaultPrompt: "Ты помощник отеля.",
	})
	return f
}

func paidSettings() tenant.Settings {
	s := tenant.DefaultSettings()
	s.Provider, s.Model = "openrouter", "gpt-4o"
	return s
}

// tariffQuery has five meaningful tokens, so it is held to the
// overlap check.
const tariffQuery = "стоимость проживания завтрак апартаменты бассейн"

// overlapChunks builds a corpus where the top-12 chunks by similarity
// never mention the query's words, but the lower-ranked ones do.
func overlapChunks() []scorer.Chunk {
	filler := "Отель расположен возле соснового парка, территория охраняется круглосуточно."
	matching := "Стоимость проживания 5000 рублей, завтрак включен, апартаменты и бассейн доступны гостям."

	chunks := make([]scorer.Chunk, 0, 15)
	for i := 0; i < 12; i++ {
		chunks = append(chunks, scorer.Chunk{Text: filler, Vector: []float64{1, 0}})
	}
	for i := 0; i < 3; i++ {
		chunks = append(chunks, scorer.Chunk{Text: matching, Vector: []float64{0.5, 0.5}})
	}
	return chunks
}

var history = []dispatch.Message{
	{Role: "user", Content: "привет"},
	{Role: "assistant", Content: "здравствуйте"},
}

// #endregion fixtures

// #region tests

func TestAnswerEscalatesOnceAndReturnsFinalOutcome(t *testing.T) {
	f := newFixture(t, paidSettings(), fakeEmbedder{vec: []float64{1, 0}}, &fakeChunks{chunks: overlapChunks()})

	res, err := f.pipeline.Answer(context.Background(), Request{
		TenantID: "tenant-1",
		Message:  tariffQuery,
		History:  history,
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if !res.Escalated || res.Widened {
		t.Errorf("escalated=%v widened=%v, want escalated only", res.Escalated, res.Widened)
	}
	if !res.Outcome.Passed || res.Outcome.Reason.Code != gate.CodeOK {
		t.Errorf("final outcome: %+v", res.Outcome)
	}
	if res.Outcome.TopKUsed != 15 {
		t.Errorf("top_k_used: %d, want 15", res.Outcome.TopKUsed)
	}

	// Only the final outcome is audited and recorded in the window.
	if len(f.audit.entries) != 1 || !f.audit.entries[0].Outcome.Passed {
		t.Errorf("audit entries: %+v", f.audit.entries)
	}
	if f.escalator.Rate() != 0 {
		t.Errorf("rescued first pass must not count as failure, rate=%v", f.escalator.Rate())
	}

	// A passed gate keeps the conversation history.
	if len(f.factory.completer.lastReq.History) != len(history) {
		t.Errorf("history: %+v", f.factory.completer.lastReq.History)
	}
	if !strings.Contains(f.factory.completer.lastReq.System, "Стоимость проживания 5000 рублей") {
		t.Error("widened context must reach the system prompt")
	}
}

func TestAnswerNoChunksDisablesHistoryAndContext(t *testing.T) {
	f := newFixture(t, paidSettings(), fakeEmbedder{vec: []float64{1, 0}}, &fakeChunks{})

	res, err := f.pipeline.Answer(context.Background(), Request{
		TenantID: "tenant-1",
		Message:  tariffQuery,
		History:  history,
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if res.Outcome.Passed || res.Outcome.Reason.Code != gate.CodeNoChunks {
		t.Errorf("outcome: %+v", res.Outcome)
	}
	if res.Answer != "ответ" {
		t.Errorf("gate failure must still answer, got %q", res.Answer)
	}

	last := f.factory.completer.lastReq
	if len(last.History) != 0 {
		t.Error("failed gate must disable history")
	}
	if !strings.Contains(last.System, "Документы пока не загружены") {
		t.Errorf("system prompt must carry the placeholder: %q", last.System)
	}
}

func TestAnswerPurePromptSkipsRetrieval(t *testing.T) {
	settings := paidSettings()
	settings.PurePromptMode = true
	chunks := &fakeChunks{chunks: overlapChunks()}
	f := newFixture(t, settings, fakeEmbedder{err: errors.New("must not be called")}, chunks)

	res, err := f.pipeline.Answer(context.Background(), Request{
		TenantID: "tenant-1",
		Message:  tariffQuery,
		History:  history,
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if chunks.called {
		t.Error("pure prompt mode must not touch the chunk store")
	}
	if !res.Outcome.Passed || res.Outcome.Reason.Code != gate.CodePurePrompt {
		t.Errorf("outcome: %+v", res.Outcome)
	}
	if len(f.factory.completer.lastReq.History) != len(history) {
		t.Error("pure prompt mode keeps history")
	}
}

func TestAnswerEmbeddingErrorFallback(t *testing.T) {
	chunks := &fakeChunks{
		chunks: overlapChunks(),
		recent: []string{"недавний чанк один", "недавний чанк два", "недавний чанк три"},
	}
	f := newFixture(t, paidSettings(), fakeEmbedder{err: errors.New("embedding api down")}, chunks)

	res, err := f.pipeline.Answer(context.Background(), Request{
		TenantID: "tenant-1",
		Message:  tariffQuery,
		History:  history,
	})
	if err != nil {
		t.Fatalf("embedding failure must not fail the turn: %v", err)
	}

	if res.Outcome.Passed || res.Outcome.Reason.Code != gate.CodeEmbeddingErr {
		t.Errorf("outcome: %+v", res.Outcome)
	}
	if len(f.factory.completer.lastReq.History) != 0 {
		t.Error("embedding fallback must disable history")
	}
	if len(f.audit.entries) != 1 {
		t.Errorf("audit entries: %d", len(f.audit.entries))
	}
}

func TestAnswerResolvesFreeModel(t *testing.T) {
	settings := paidSettings()
	settings.Model = "deepseek-r1"
	f := newFixture(t, settings, fakeEmbedder{vec: []float64{1, 0}}, &fakeChunks{chunks: overlapChunks()})

	res, err := f.pipeline.Answer(context.Background(), Request{TenantID: "tenant-1", Message: tariffQuery})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if f.free.requested != "deepseek/deepseek-r1:free" {
		t.Errorf("free resolver input: %q", f.free.requested)
	}
	if res.Model != "deepseek/deepseek-r1" {
		t.Errorf("resolved model: %q", res.Model)
	}
}

func TestAnswerForwardsProxy(t *testing.T) {
	settings := paidSettings()
	settings.Proxies = map[string]string{"openrouter": "10.0.0.1:8080@u:p"}
	f := newFixture(t, settings, fakeEmbedder{vec: []float64{1, 0}}, &fakeChunks{chunks: overlapChunks()})

	if _, err := f.pipeline.Answer(context.Background(), Request{TenantID: "tenant-1", Message: tariffQuery}); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if f.factory.proxy == nil || f.factory.proxy.Host != "10.0.0.1:8080" {
		t.Errorf("proxy: %v", f.factory.proxy)
	}
	if f.factory.provider != "openrouter" {
		t.Errorf("provider: %q", f.factory.provider)
	}
}

func TestAnswerUnsupportedModelFailsFast(t *testing.T) {
	settings := paidSettings()
	settings.Model = "no-such-model"
	f := newFixture(t, settings, fakeEmbedder{vec: []float64{1, 0}}, &fakeChunks{chunks: overlapChunks()})

	_, err := f.pipeline.Answer(context.Background(), Request{TenantID: "tenant-1", Message: tariffQuery})
	if err == nil || f.factory.completer.calls != 0 {
		t.Fatalf("unsupported model must fail before dispatch, err=%v calls=%d", err, f.factory.completer.calls)
	}
}

func TestAnswerTrimsHistoryWindow(t *testing.T) {
	long := make([]dispatch.Message, 0, 14)
	for i := 0; i < 14; i++ {
		long = append(long, dispatch.Message{Role: "user", Content: "сообщение"})
	}
	f := newFixture(t, paidSettings(), fakeEmbedder{vec: []float64{1, 0}}, &fakeChunks{chunks: overlapChunks()})

	if _, err := f.pipeline.Answer(context.Background(), Request{TenantID: "tenant-1", Message: tariffQuery, History: long}); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got := len(f.factory.completer.lastReq.History); got != maxHistory {
		t.Errorf("history length: %d, want %d", got, maxHistory)
	}
}

// #endregion tests
