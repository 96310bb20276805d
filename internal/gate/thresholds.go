package gate

// #region imports
import (
	"strconv"

	"github.com/guestflow/ragcore/internal/textclass"
)

// #endregion

// #region defaults

const defaultKey = "default"

// Built-in threshold sets per query type. Tariff queries tolerate
// shorter context and lower overlap because price tables are dense
// and query vocabulary rarely matches table cells.
var defaultThresholds = map[string]Thresholds{
	"tariffs":  {MinLen: 300, MinSim: 0.35, MinOverlapRU: 0.08, MinOverlapEN: 0.08},
	"rules":    {MinLen: 650, MinSim: 0.34, MinOverlapRU: 0.18, MinOverlapEN: 0.14},
	"services": {MinLen: 550, MinSim: 0.32, MinOverlapRU: 0.18, MinOverlapEN: 0.14},
	defaultKey: {MinLen: 650, MinSim: 0.34, MinOverlapRU: 0.18, MinOverlapEN: 0.14},
}

// #endregion defaults

// #region resolve

// Resolve merges a tenant's override document over the built-in
// defaults for the given query type, field by field. Override values
// may be numbers or numeric strings; a field that fails coercion
// keeps its default. The result is always a complete threshold set.
func Resolve(queryType textclass.QueryType, overrides Overrides) Thresholds {
	th, ok := defaultThresholds[string(queryType)]
	if !ok {
		th = defaultThresholds[defaultKey]
	}
	if overrides == nil {
		return th
	}

	doc, ok := overrides[string(queryType)]
	if !ok {
		doc = overrides[defaultKey]
	}
	if doc == nil {
		return th
	}

	if v, ok := coerceNumber(doc["min_len"]); ok {
		th.MinLen = int(v)
	}
	if v, ok := coerceNumber(doc["min_sim"]); ok {
		th.MinSim = v
	}
	if v, ok := coerceNumber(doc["min_overlap_ru"]); ok {
		th.MinOverlapRU = v
	}
	if v, ok := coerceNumber(doc["min_overlap_en"]); ok {
		th.MinOverlapEN = v
	}
	return th
}

// MinOverlap picks the overlap threshold for the detected language.
// Non-Russian falls to the English bar, matching the tokenizer's
// stopword selection.
func (t Thresholds) MinOverlap(lang textclass.Lang) float64 {
	if lang == textclass.LangRU {
		return t.MinOverlapRU
	}
	return t.MinOverlapEN
}

// #endregion resolve

// #region coercion

// coerceNumber accepts the value types a JSON settings document can
// produce. Malformed strings report !ok so the caller keeps its
// default; a bad override field must never fail the whole gate.
func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// #endregion coercion
