package textclass

// #region imports
import (
	"regexp"
	"strings"
)

// #endregion

// #region date-patterns

// Bare-date prompts ("22 мая", "22.05", "2025-05-22") are almost
// always check-in date questions, so they route to tariffs before any
// keyword matching.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\d{1,2}\s+(янв|фев|мар|апр|мая|июн|июл|авг|сен|окт|ноя|дек)`),
	regexp.MustCompile(`^\s*\d{1,2}[./\-]\d{1,2}`),
	regexp.MustCompile(`^\s*\d{4}[./\-]\d{1,2}[./\-]\d{1,2}`),
}

// #endregion

// #region keywords

var tariffKeywords = []string{
	"цена", "цену", "стоимость", "сколько стоит", "тариф", "прайс",
	"заезд", "выезд", "ноч", "прожив", "сколько", "рубл", "стоит",
	"оплат", "платеж", "стандарт", "комфорт", "люкс", "видовой", "категор",
}

var ruleKeywords = []string{
	"правил", "нельзя", "запрет", "штраф", "курить", "документ",
	"ответствен", "выселен", "возмещен",
}

// #endregion

// #region detect-lang

// DetectLang picks the dominant script of text by counting Cyrillic
// vs Latin letters. No letters of either script means "other"; ties
// favor Russian.
func DetectLang(text string) Lang {
	var cyr, lat int
	for _, r := range text {
		switch {
		case (r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я') || r == 'ё' || r == 'Ё':
			cyr++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			lat++
		}
	}
	if cyr == 0 && lat == 0 {
		return LangOther
	}
	if cyr >= lat {
		return LangRU
	}
	return LangEN
}

// #endregion

// #region classify-query

// ClassifyQuery maps a raw user message to its query category.
// Checks run in fixed priority order: bare date → tariffs, tariff
// keywords → tariffs, rule keywords → rules, else services.
func ClassifyQuery(text string) QueryType {
	t := strings.ToLower(text)

	for _, p := range datePatterns {
		if p.MatchString(t) {
			return QueryTariffs
		}
	}

	for _, kw := range tariffKeywords {
		if strings.Contains(t, kw) {
			return QueryTariffs
		}
	}

	for _, kw := range ruleKeywords {
		if strings.Contains(t, kw) {
			return QueryRules
		}
	}

	return QueryServices
}

// #endregion
