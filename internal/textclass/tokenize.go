package textclass

// #region imports
import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// #endregion

// #region stopwords

var stopwordsRU = map[string]bool{
	"и": true, "в": true, "во": true, "на": true, "по": true, "к": true,
	"ко": true, "с": true, "со": true, "у": true, "из": true, "за": true,
	"для": true, "о": true, "об": true, "от": true, "до": true, "или": true,
	"а": true, "но": true, "что": true, "это": true, "как": true, "где": true,
	"когда": true, "сколько": true, "какой": true, "какая": true,
	"какие": true, "какое": true, "я": true, "мы": true, "вы": true,
	"они": true, "он": true, "она": true, "оно": true, "мне": true,
	"нам": true, "вам": true, "их": true, "его": true, "ее": true,
	"этот": true, "эта": true, "эти": true, "тут": true, "там": true,
	"здесь": true, "вот": true, "ли": true, "же": true, "бы": true,
	"то": true, "не": true, "нет": true, "да": true,
}

var stopwordsEN = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "to": true,
	"of": true, "in": true, "on": true, "for": true, "with": true,
	"about": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "as": true, "at": true,
	"by": true, "from": true, "this": true, "that": true, "these": true,
	"those": true, "it": true, "its": true, "i": true, "we": true,
	"you": true, "they": true, "my": true, "our": true, "your": true,
	"their": true, "me": true, "us": true, "them": true, "please": true,
}

// #endregion stopwords

// #region tokenize

// Everything except Latin/Cyrillic letters, digits, whitespace and
// hyphens is noise for overlap scoring.
var tokenNoise = regexp.MustCompile(`(?i)[^a-zа-я0-9\s\-]+`)

const minTokenLen = 3

// Tokenize lowercases text, strips punctuation, drops tokens shorter
// than 3 runes, then drops stopwords of the given language. LangOther
// keeps all surviving tokens.
func Tokenize(text string, lang Lang) []string {
	cleaned := tokenNoise.ReplaceAllString(strings.ToLower(text), " ")

	var tokens []string
	for _, t := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(t) < minTokenLen {
			continue
		}
		switch lang {
		case LangRU:
			if stopwordsRU[t] {
				continue
			}
		case LangEN:
			if stopwordsEN[t] {
				continue
			}
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// #endregion tokenize

// #region overlap

// OverlapRatio computes |unique query tokens ∩ unique context tokens|
// divided by the unique query token count. Returns the ratio and the
// query's meaningful token count (used for the short-query exemption).
func OverlapRatio(userText, contextText string, lang Lang) (float64, int) {
	qSet := uniqueSet(Tokenize(userText, lang))
	if len(qSet) == 0 {
		return 0, 0
	}
	cSet := uniqueSet(Tokenize(contextText, lang))

	shared := 0
	for t := range qSet {
		if cSet[t] {
			shared++
		}
	}
	return float64(shared) / float64(len(qSet)), len(qSet)
}

func uniqueSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// #endregion overlap
