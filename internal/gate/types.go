package gate

// #region imports
import (
	"fmt"

	"github.com/guestflow/ragcore/internal/textclass"
)

// #endregion

// #region reason-code
// ReasonCode enumerates gate outcomes. Codes are matched directly
// (never by substring) but render to stable log strings that the
// analytics dashboard groups on.
type ReasonCode string

const (
	CodeOK            ReasonCode = "ok"
	CodeEmptyContext  ReasonCode = "empty_context"
	CodeNoChunks      ReasonCode = "no_chunks"
	CodeTooShort      ReasonCode = "too_short"
	CodeLowSimilarity ReasonCode = "low_similarity"
	CodeLowOverlap    ReasonCode = "low_overlap"
	CodeEmbeddingErr  ReasonCode = "embedding_error"
	CodePurePrompt    ReasonCode = "pure_prompt_mode_enabled"
	CodeNoChunksPure  ReasonCode = "no_chunks_pure_prompt_enabled"
)

// #endregion reason-code

// #region reason
// Reason is the structured gate verdict. It carries the fields the
// old string taxonomy packed into colon-separated segments.
type Reason struct {
	Code      ReasonCode
	QueryType textclass.QueryType
	Lang      textclass.Lang
	Metric    float64
	HasMetric bool
}

// String renders the reason in the durable log format, e.g.
// "low_overlap:services:ru:0.10" or "ok:tariffs:ru".
func (r Reason) String() string {
	switch r.Code {
	case CodeTooShort:
		return fmt.Sprintf("%s:%s", r.Code, r.QueryType)
	case CodeLowSimilarity:
		return fmt.Sprintf("%s:%s:%.2f", r.Code, r.QueryType, r.Metric)
	case CodeLowOverlap:
		return fmt.Sprintf("%s:%s:%s:%.2f", r.Code, r.QueryType, r.Lang, r.Metric)
	case CodeOK:
		return fmt.Sprintf("%s:%s:%s", r.Code, r.QueryType, r.Lang)
	default:
		return string(r.Code)
	}
}

// IsLowOverlap reports whether this reason should trigger retrieval
// escalation.
func (r Reason) IsLowOverlap() bool {
	return r.Code == CodeLowOverlap
}

// #endregion reason

// #region thresholds
// Thresholds is a fully resolved threshold set for one query type.
// Resolve guarantees every field is populated before comparison.
type Thresholds struct {
	MinLen       int
	MinSim       float64
	MinOverlapRU float64
	MinOverlapEN float64
}

// #endregion thresholds

// #region overrides
// Overrides is a tenant's quality-gate settings document: query-type
// key → field → value. Values arrive loosely typed (numbers or
// strings) and are coerced during Resolve.
type Overrides map[string]map[string]any

// #endregion overrides

// #region outcome
// Outcome is the loggable record of one gate evaluation. Metric
// fields carry Has flags because branches that fail early never
// compute the later metrics; absent values stay absent in the audit
// log instead of being fabricated.
type Outcome struct {
	Passed bool
	Reason Reason

	QueryType textclass.QueryType
	Lang      textclass.Lang

	ContextLen   int
	BestSim      float64
	HasBestSim   bool
	Overlap      float64
	HasOverlap   bool
	KeyTokens    int
	HasKeyTokens bool

	// TopKUsed is stamped by the escalation layer, not by Evaluate.
	TopKUsed int
}

// #endregion outcome
