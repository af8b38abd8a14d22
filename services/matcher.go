package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"issuu-scraper/config"
)

// Matcher decides whether a listing's author is plausibly the queried
// company. The decision is a pure function of the two strings and the
// configured threshold.
//
// Both sides are case folded, stripped of accents and split into tokens on
// anything that is not a letter or digit. They match when:
//   - the joined tokens are equal, or
//   - one joined form contains the other, the shorter one has at least
//     MinContainLength runes, and it is either a slug spanning several of
//     the longer side's tokens or covers at least half of them, or
//   - they share at least one token and
//     max(levenshtein ratio of the joined forms, token jaccard) >= Threshold.
//
// A single word that is one token among many ("group" against "Springer
// Media Group") does not count as containment, and names with no token in
// common never match on edit distance alone.
type Matcher struct {
	threshold  float64
	minContain int
}

func NewMatcher(cfg config.MatchConfig) *Matcher {
	return &Matcher{
		threshold:  cfg.Threshold,
		minContain: cfg.MinContainLength,
	}
}

func (m *Matcher) Match(authorName, companyName string) bool {
	author, company := Normalize(authorName), Normalize(companyName)
	if len(author) == 0 || len(company) == 0 {
		return false
	}

	a, c := strings.Join(author, ""), strings.Join(company, "")
	if a == c {
		return true
	}

	if m.minContain > 0 {
		short, long := a, c
		if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
			short, long = long, short
		}
		if utf8.RuneCountInString(short) >= m.minContain && strings.Contains(long, short) {
			shortTokens, longTokens := author, company
			if short != a {
				shortTokens, longTokens = company, author
			}
			if containsSignificant(shortTokens, longTokens) {
				return true
			}
		}
	}

	if !sharesToken(author, company) {
		return false
	}
	return score(author, company) >= m.threshold
}

// containsSignificant reports whether the shorter name carries enough of the
// longer one to stand for it.
func containsSignificant(short, long []string) bool {
	if len(short) == 1 && !tokenSet(long)[short[0]] {
		return true
	}
	return 2*len(short) >= len(long)
}

func sharesToken(a, b []string) bool {
	set := tokenSet(a)
	for _, t := range b {
		if set[t] {
			return true
		}
	}
	return false
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// Score is the similarity in [0, 1] used for the threshold test. It is only
// consulted when the names share a token.
func (m *Matcher) Score(authorName, companyName string) float64 {
	return score(Normalize(authorName), Normalize(companyName))
}

func score(author, company []string) float64 {
	if len(author) == 0 || len(company) == 0 {
		return 0
	}
	ratio := levenshteinRatio(strings.Join(author, ""), strings.Join(company, ""))
	if j := jaccard(author, company); j > ratio {
		return j
	}
	return ratio
}

// Normalize folds case, removes diacritics and splits s into alphanumeric
// tokens. "Sécurité-Et Signalisation S.A.S." becomes
// [securite et signalisation s a s].
func Normalize(s string) []string {
	folded := cases.Fold().String(s)

	// Transformers keep internal state, build a fresh chain per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, folded)
	if err != nil {
		stripped = folded
	}

	return strings.FieldsFunc(stripped, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func levenshteinRatio(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func jaccard(a, b []string) float64 {
	set := tokenSet(a)

	union := len(set)
	shared := 0
	seenB := make(map[string]bool, len(b))
	for _, t := range b {
		if seenB[t] {
			continue
		}
		seenB[t] = true
		if set[t] {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}
