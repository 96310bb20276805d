package scorer

// #region imports
import (
	"math"
	"sort"
	"strings"
)

// #endregion

// #region constants

// maxChunkChars caps each sanitized chunk before joining, so a single
// oversized chunk cannot crowd out the rest of the context.
const maxChunkChars = 2200

const chunkSeparator = "\n\n"

// #endregion

// #region cosine

// Cosine returns the cosine similarity of two vectors. Zero-magnitude
// vectors and mismatched lengths score 0 rather than producing NaN.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// #endregion cosine

// #region score

// Score ranks every chunk against the query vector, descending by
// similarity. The sort is stable, so exact ties keep input order.
func Score(queryVec []float64, chunks []Chunk) []ScoredChunk {
	scored := make([]ScoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = ScoredChunk{
			Text:       c.Text,
			Similarity: Cosine(queryVec, c.Vector),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	return scored
}

// #endregion score

// #region rank

// Rank scores chunks, takes the top-k, sanitizes and caps each
// selected chunk, and joins the non-empty remainders into a single
// context string. An empty candidate list yields an empty context and
// an empty similarity list; that is not an error.
func Rank(queryVec []float64, chunks []Chunk, topK int) AssembledContext {
	if len(chunks) == 0 || topK <= 0 {
		return AssembledContext{}
	}

	scored := Score(queryVec, chunks)
	if topK < len(scored) {
		scored = scored[:topK]
	}

	parts := make([]string, 0, len(scored))
	sims := make([]float64, 0, len(scored))
	for _, sc := range scored {
		sims = append(sims, sc.Similarity)
		clean := Sanitize(sc.Text)
		if clean == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(truncateRunes(clean, maxChunkChars)))
	}

	return AssembledContext{
		Text:         strings.TrimSpace(strings.Join(parts, chunkSeparator)),
		Similarities: sims,
	}
}

// #endregion rank

// #region helpers

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// #endregion helpers
