package station

import (
	"strings"

	"github.com/treinwijzer/treinwijzer/internal/textnorm"
	"github.com/treinwijzer/treinwijzer/internal/transit"
)

// centerVariants are interchangeable "city center" station-name tokens.
var centerVariants = map[string]bool{
	"centraal": true,
	"centrum":  true,
	"central":  true,
	"center":   true,
	"cs":       true,
	"c":        true,
}

// tokenMatches is the loose per-token comparison: equality, a 3+-character
// prefix in either direction, or both tokens being center/centrum variants.
func tokenMatches(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) >= 3 && strings.HasPrefix(b, a) {
		return true
	}
	if len(b) >= 3 && strings.HasPrefix(a, b) {
		return true
	}
	return centerVariants[a] && centerVariants[b]
}

// query is a pre-tokenized search phrase.
type query struct {
	raw    string
	folded string
	tokens []string
	code   string
	uic    string
}

func newQuery(raw, codeHint, uicHint string) query {
	return query{
		raw:    raw,
		folded: textnorm.Fold(raw),
		tokens: textnorm.Tokens(raw),
		code:   strings.ToUpper(codeHint),
		uic:    uicHint,
	}
}

// candidateNames returns the folded name variants of a station, best first.
func candidateNames(st transit.Station) []string {
	names := make([]string, 0, 3)
	for _, n := range []string{st.NameLong, st.NameMedium, st.NameShort} {
		if n != "" {
			names = append(names, textnorm.Fold(n))
		}
	}
	if len(names) == 0 {
		names = append(names, textnorm.Fold(st.Code))
	}
	return names
}

// coverage returns the fraction of query tokens loosely matched by any
// token of name, plus whether the first tokens match.
func coverage(queryTokens []string, name string) (frac float64, firstMatch bool) {
	if len(queryTokens) == 0 {
		return 0, false
	}
	nameTokens := strings.Split(name, " ")

	matched := 0
	for _, qt := range queryTokens {
		for _, nt := range nameTokens {
			if tokenMatches(qt, nt) {
				matched++
				break
			}
		}
	}
	firstMatch = tokenMatches(queryTokens[0], nameTokens[0])
	return float64(matched) / float64(len(queryTokens)), firstMatch
}

// score rates how well a station candidate matches the query, 0..1.
// The ladder is ordered from exact identity down to weak containment.
func score(q query, st transit.Station) (s float64, firstTokenMatch bool) {
	stCode := strings.ToUpper(st.Code)

	bestCoverage := 0.0
	for _, name := range candidateNames(st) {
		frac, first := coverage(q.tokens, name)
		if first {
			firstTokenMatch = true
		}
		if frac > bestCoverage {
			bestCoverage = frac
		}
	}

	switch {
	case q.code != "" && q.code == stCode:
		return 1.0, firstTokenMatch
	case q.uic != "" && q.uic == st.UICCode:
		return 0.99, firstTokenMatch
	}

	for _, name := range candidateNames(st) {
		if q.folded != "" && q.folded == name {
			return 0.98, true
		}
	}
	for _, name := range candidateNames(st) {
		if q.folded != "" && strings.HasPrefix(name, q.folded) {
			return 0.9, firstTokenMatch
		}
	}

	switch {
	case firstTokenMatch && bestCoverage >= 0.99:
		return 0.97, firstTokenMatch
	case firstTokenMatch && bestCoverage >= 0.75:
		return 0.92, firstTokenMatch
	case bestCoverage >= 0.75:
		return 0.84, firstTokenMatch
	case firstTokenMatch && bestCoverage >= 0.5:
		return 0.76, firstTokenMatch
	}

	// Whole-phrase containment outranks bare half coverage: when both
	// apply, a name containing the full query is the stronger signal.
	for _, name := range candidateNames(st) {
		if q.folded != "" && strings.Contains(name, q.folded) {
			return 0.75, firstTokenMatch
		}
	}

	switch {
	case bestCoverage >= 0.5:
		return 0.68, firstTokenMatch
	case q.code != "" && strings.HasPrefix(stCode, q.code):
		return 0.7, firstTokenMatch
	}

	return 0.4, firstTokenMatch
}
