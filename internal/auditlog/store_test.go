package auditlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/guestflow/ragcore/internal/gate"
	"github.com/guestflow/ragcore/internal/textclass"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func passedOutcome() gate.Outcome {
	return gate.Outcome{
		Passed:     true,
		Reason:     gate.Reason{Code: gate.CodeOK, QueryType: textclass.QueryTariffs, Lang: textclass.LangRU},
		QueryType:  textclass.QueryTariffs,
		Lang:       textclass.LangRU,
		ContextLen: 700,
		BestSim:    0.41,
		HasBestSim: true,
		Overlap:    0.3,
		HasOverlap: true,
		TopKUsed:   12,
	}
}

func TestLogAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Log(ctx, NewEntry("tenant-1", "сколько стоит номер?", passedOutcome())); err != nil {
		t.Fatalf("Log: %v", err)
	}

	failed := gate.Outcome{
		Passed:    false,
		Reason:    gate.Reason{Code: gate.CodeLowSimilarity, QueryType: textclass.QueryTariffs, Metric: 0.2, HasMetric: true},
		QueryType: textclass.QueryTariffs,
		TopKUsed:  12,
	}
	if err := s.Log(ctx, NewEntry("tenant-1", "другой вопрос", failed)); err != nil {
		t.Fatalf("Log failed outcome: %v", err)
	}
	if err := s.Log(ctx, NewEntry("tenant-2", "чужой вопрос", passedOutcome())); err != nil {
		t.Fatalf("Log other tenant: %v", err)
	}

	st, err := s.Stats(ctx, "tenant-1", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 2 || st.Passed != 1 {
		t.Errorf("stats: total=%d passed=%d", st.Total, st.Passed)
	}
	if st.PassRate() != 0.5 {
		t.Errorf("pass rate: %v", st.PassRate())
	}
	if st.ReasonCounts["low_similarity:tariffs:0.20"] != 1 {
		t.Errorf("reason counts: %v", st.ReasonCounts)
	}
}

func TestStatsWindowExcludesOld(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := NewEntry("tenant-1", "старый вопрос", passedOutcome())
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	if err := s.Log(ctx, old); err != nil {
		t.Fatalf("Log: %v", err)
	}

	st, err := s.Stats(ctx, "tenant-1", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 0 {
		t.Errorf("old rows leaked into window: %+v", st)
	}
}

func TestStatsEmptyTenant(t *testing.T) {
	s := newTestStore(t)

	st, err := s.Stats(context.Background(), "nobody", time.Time{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 0 || st.PassRate() != 0 {
		t.Errorf("empty tenant: %+v", st)
	}
}
