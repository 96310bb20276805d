package scorer

// #region chunk
// Chunk is one stored document slice with its embedding. Produced by
// the external embedding step; read-only here.
type Chunk struct {
	Text   string
	Vector []float64
}

// #endregion chunk

// #region scored-chunk
// ScoredChunk pairs a chunk text with its similarity to the current
// query. Lives only for the duration of one request.
type ScoredChunk struct {
	Text       string
	Similarity float64
}

// #endregion scored-chunk

// #region assembled-context
// AssembledContext is the sanitized, capped, joined top-k context.
// Similarities holds the raw scores of the selected chunks in ranked
// order; its length may be below top-k when fewer candidates exist.
type AssembledContext struct {
	Text         string
	Similarities []float64
}

// #endregion assembled-context
