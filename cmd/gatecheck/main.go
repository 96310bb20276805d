// gatecheck runs the scorer and quality gate offline over a JSON
// fixture, printing the outcome. Useful for tuning tenant thresholds
// against a captured corpus without touching any provider.
package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/guestflow/ragcore/internal/gate"
	"github.com/guestflow/ragcore/internal/scorer"
)

// #endregion

// #region fixture

type fixture struct {
	Message     string                    `json:"message"`
	QueryVector []float64                 `json:"query_vector"`
	TopK        int                       `json:"top_k"`
	Overrides   map[string]map[string]any `json:"quality_gate_settings"`
	Chunks      []struct {
		Text   string    `json:"text"`
		Vector []float64 `json:"vector"`
	} `json:"chunks"`
}

// #endregion fixture

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to gate fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: gatecheck --fixture path/to/fixture.json")
		os.Exit(2)
	}
	os.Exit(run(*fixturePath))
}

func run(path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read fixture: %v\n", err)
		return 2
	}
	var f fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		fmt.Fprintf(os.Stderr, "parse fixture: %v\n", err)
		return 2
	}
	if f.TopK <= 0 {
		f.TopK = 12
	}

	chunks := make([]scorer.Chunk, 0, len(f.Chunks))
	for _, c := range f.Chunks {
		chunks = append(chunks, scorer.Chunk{Text: c.Text, Vector: c.Vector})
	}

	asm := scorer.Rank(f.QueryVector, chunks, f.TopK)
	out := gate.Evaluate(f.Message, asm.Text, asm.Similarities, f.Overrides)
	out.TopKUsed = f.TopK

	report := map[string]any{
		"passed":      out.Passed,
		"reason":      out.Reason.String(),
		"query_type":  out.QueryType,
		"lang":        out.Lang,
		"context_len": out.ContextLen,
		"top_k_used":  out.TopKUsed,
	}
	if out.HasBestSim {
		report["best_similarity"] = out.BestSim
	}
	if out.HasOverlap {
		report["overlap"] = out.Overlap
		report["key_tokens"] = out.KeyTokens
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
		return 2
	}

	if out.Passed {
		return 0
	}
	return 1
}

// #endregion main
