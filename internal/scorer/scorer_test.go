package scorer

import (
	"math"
	"strings"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero-left", []float64{0, 0}, []float64{1, 1}, 0},
		{"zero-right", []float64{1, 1}, []float64{0, 0}, 0},
		{"length-mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.IsNaN(got) {
				t.Fatal("cosine must never be NaN")
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankOrdersBySimilarity(t *testing.T) {
	query := []float64{1, 0}
	chunks := []Chunk{
		{Text: "far", Vector: []float64{0, 1}},
		{Text: "close", Vector: []float64{1, 0.1}},
		{Text: "exact", Vector: []float64{2, 0}},
	}

	got := Rank(query, chunks, 3)
	if !strings.HasPrefix(got.Text, "exact") {
		t.Errorf("best chunk should lead the context, got %q", got.Text)
	}
	if len(got.Similarities) != 3 {
		t.Fatalf("similarities: got %d, want 3", len(got.Similarities))
	}
	for i := 1; i < len(got.Similarities); i++ {
		if got.Similarities[i] > got.Similarities[i-1] {
			t.Errorf("similarities not descending: %v", got.Similarities)
		}
	}
}

func TestRankTopKPrefixMonotonicity(t *testing.T) {
	query := []float64{1, 1, 0}
	chunks := []Chunk{
		{Text: "a", Vector: []float64{1, 1, 0}},
		{Text: "b", Vector: []float64{1, 0, 0}},
		{Text: "c", Vector: []float64{0, 1, 1}},
		{Text: "d", Vector: []float64{0, 0, 1}},
		{Text: "e", Vector: []float64{1, 1, 1}},
	}

	narrow := Rank(query, chunks, 2)
	wide := Rank(query, chunks, 4)

	if len(narrow.Similarities) != 2 || len(wide.Similarities) != 4 {
		t.Fatalf("unexpected lengths: %d, %d", len(narrow.Similarities), len(wide.Similarities))
	}
	for i, s := range narrow.Similarities {
		if s != wide.Similarities[i] {
			t.Errorf("narrow similarities are not a prefix of wide: %v vs %v",
				narrow.Similarities, wide.Similarities)
		}
	}
}

func TestRankStableOnTies(t *testing.T) {
	query := []float64{1, 0}
	chunks := []Chunk{
		{Text: "first", Vector: []float64{3, 0}},
		{Text: "second", Vector: []float64{5, 0}}, // same cosine as first
	}

	got := Rank(query, chunks, 2)
	if !strings.HasPrefix(got.Text, "first") {
		t.Errorf("tie must keep input order, got %q", got.Text)
	}
}

func TestRankDegenerateInputs(t *testing.T) {
	got := Rank([]float64{1, 0}, nil, 5)
	if got.Text != "" || len(got.Similarities) != 0 {
		t.Errorf("empty candidates: got %+v", got)
	}

	// Fewer candidates than top-k is fine.
	got = Rank([]float64{1, 0}, []Chunk{{Text: "only", Vector: []float64{1, 0}}}, 12)
	if got.Text != "only" || len(got.Similarities) != 1 {
		t.Errorf("single candidate: got %+v", got)
	}

	// Zero-magnitude chunk vectors score 0 but still assemble.
	got = Rank([]float64{1, 0}, []Chunk{{Text: "flat", Vector: []float64{0, 0}}}, 1)
	if got.Similarities[0] != 0 {
		t.Errorf("zero vector similarity: got %v", got.Similarities[0])
	}
}

func TestRankTruncatesLongChunks(t *testing.T) {
	long := strings.Repeat("я", 5000)
	got := Rank([]float64{1}, []Chunk{{Text: long, Vector: []float64{1}}}, 1)
	if n := len([]rune(got.Text)); n != 2200 {
		t.Errorf("truncated length: got %d runes, want 2200", n)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"page-number", "тариф page_number: 12 действует", "тариф действует"},
		{"similarity", "номер similarity=0.87 комфорт", "номер комфорт"},
		{"file-name", "file_name: pricing.pdf цены ниже", "цены ниже"},
		{"pdf-suffix", "см. каталог.pdf далее", "см. каталог далее"},
		{"ru-page-ref", "правила на стр. 14 описаны", "правила описаны"},
		{"ru-page-word", "страница 3 штрафы", "штрафы"},
		{"collapses-space", "много    пробелов", "много пробелов"},
		{"clean-text", "обычный текст", "обычный текст"},
		{"all-noise", "id: 42", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
