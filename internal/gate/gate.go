package gate

// #region imports
import (
	"unicode/utf8"

	"github.com/guestflow/ragcore/internal/textclass"
)

// #endregion

// #region constants

// minKeyTokens is the overlap-exemption floor: queries with fewer
// meaningful tokens ("цена", "22 мая") cannot be held to an overlap
// bar and skip that check entirely.
const minKeyTokens = 4

// #endregion

// #region evaluate

// Evaluate runs the single-pass gate decision over an assembled
// context. Checks run in fixed order — empty context, length, best
// similarity, keyword overlap — and the outcome records whatever
// metrics were computed before the verdict.
func Evaluate(userText, contextText string, sims []float64, overrides Overrides) Outcome {
	if contextText == "" {
		return Outcome{
			Passed: false,
			Reason: Reason{Code: CodeEmptyContext},
		}
	}

	qType := textclass.ClassifyQuery(userText)
	th := Resolve(qType, overrides)

	out := Outcome{
		QueryType:  qType,
		ContextLen: utf8.RuneCountInString(contextText),
	}
	if len(sims) > 0 {
		out.BestSim = maxOf(sims)
		out.HasBestSim = true
	}

	if out.ContextLen < th.MinLen {
		out.Reason = Reason{Code: CodeTooShort, QueryType: qType}
		return out
	}

	if out.HasBestSim && out.BestSim < th.MinSim {
		out.Reason = Reason{
			Code:      CodeLowSimilarity,
			QueryType: qType,
			Metric:    out.BestSim,
			HasMetric: true,
		}
		return out
	}

	lang := textclass.DetectLang(userText)
	overlap, keyTokens := textclass.OverlapRatio(userText, contextText, lang)
	out.Lang = lang
	out.Overlap = overlap
	out.HasOverlap = true
	out.KeyTokens = keyTokens
	out.HasKeyTokens = true

	if keyTokens >= minKeyTokens && overlap < th.MinOverlap(lang) {
		out.Reason = Reason{
			Code:      CodeLowOverlap,
			QueryType: qType,
			Lang:      lang,
			Metric:    overlap,
			HasMetric: true,
		}
		return out
	}

	out.Passed = true
	out.Reason = Reason{Code: CodeOK, QueryType: qType, Lang: lang}
	return out
}

// #endregion evaluate

// #region helpers

func maxOf(vals []float64) float64 {
	best := vals[0]
	for _, v := range vals[1:] {
		if v > best {
			best = v
		}
	}
	return best
}

// #endregion helpers
