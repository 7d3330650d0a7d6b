// Package station resolves free-text station references against the
// upstream station search, with fuzzy scoring and disambiguation.
package station

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/treinwijzer/treinwijzer/internal/textnorm"
	"github.com/treinwijzer/treinwijzer/internal/transit"
)

// ErrNotFound is returned when a query matches no station and carries no
// usable code/UIC hint.
var ErrNotFound = errors.New("station not found")

const (
	// searchLimit bounds the upstream station-search call.
	searchLimit = 10

	// maxCandidates caps a disambiguation set.
	maxCandidates = 6

	// resolveThreshold is the minimum score for a unique first-token match.
	resolveThreshold = 0.9

	// confidentScore and confidentGap resolve a clear scored winner.
	confidentScore = 0.98
	confidentGap   = 0.12
)

// SearchFunc performs one upstream station search.
type SearchFunc func(ctx context.Context, query string, limit int) ([]transit.Station, error)

// Candidate is one scored disambiguation option.
type Candidate struct {
	Station transit.Station `json:"station"`
	Score   float64         `json:"score"`

	firstTokenMatch bool
}

// Resolution is the outcome of resolving one free-text reference: either
// Station is set, or Candidates holds a disambiguation set.
type Resolution struct {
	Station    *transit.Station
	Candidates []Candidate
}

// Resolver resolves free-text station references.
type Resolver struct {
	search SearchFunc
	logger zerolog.Logger
}

// NewResolver creates a resolver over the given search function.
func NewResolver(search SearchFunc, logger zerolog.Logger) *Resolver {
	return &Resolver{search: search, logger: logger}
}

var (
	bareCodeRe    = regexp.MustCompile(`^[A-Z]{2,6}$`)
	bareUICRe     = regexp.MustCompile(`^\d{6,9}$`)
	parenCodeRe   = regexp.MustCompile(`\(([A-Za-z]{2,6})\)`)
	digitRunRe    = regexp.MustCompile(`\d{6,9}`)
	parenStripRe  = regexp.MustCompile(`\s*\([^)]*\)`)
	whitespaceSeq = regexp.MustCompile(`\s+`)
)

// extractHints pulls a station-code and/or UIC hint out of the raw text.
func extractHints(raw string) (code, uic string) {
	trimmed := strings.TrimSpace(raw)

	if bareCodeRe.MatchString(trimmed) {
		return trimmed, ""
	}
	if bareUICRe.MatchString(trimmed) {
		return "", trimmed
	}
	if m := parenCodeRe.FindStringSubmatch(trimmed); m != nil {
		code = strings.ToUpper(m[1])
	}
	if m := digitRunRe.FindString(trimmed); m != "" {
		uic = m
	}
	return code, uic
}

// searchText strips hint decorations so the upstream search sees clean text.
func searchText(raw string) string {
	cleaned := parenStripRe.ReplaceAllString(raw, " ")
	cleaned = whitespaceSeq.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return strings.TrimSpace(raw)
	}
	return cleaned
}

// Resolve turns free text into one station, a disambiguation set, or
// ErrNotFound. Resolution is deterministic for identical upstream data.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Resolution, error) {
	codeHint, uicHint := extractHints(raw)
	q := newQuery(raw, codeHint, uicHint)

	results, err := r.search(ctx, searchText(raw), searchLimit)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		if codeHint != "" || uicHint != "" {
			st := transit.Synthesize(codeHint, uicHint)
			r.logger.Debug().
				Str("query", raw).
				Str("code", st.Code).
				Msg("station search empty, synthesized from hint")
			return &Resolution{Station: &st}, nil
		}
		return nil, ErrNotFound
	}

	// Exact identity wins before any scoring.
	if codeHint != "" {
		for i := range results {
			if strings.EqualFold(results[i].Code, codeHint) {
				return &Resolution{Station: &results[i]}, nil
			}
		}
	}
	if uicHint != "" {
		for i := range results {
			if results[i].UICCode == uicHint {
				return &Resolution{Station: &results[i]}, nil
			}
		}
	}

	// A unique exact-name match (diacritic-insensitive) resolves directly.
	if q.folded != "" {
		var exact []int
		for i := range results {
			for _, name := range candidateNames(results[i]) {
				if name == q.folded {
					exact = append(exact, i)
					break
				}
			}
		}
		if len(exact) == 1 {
			return &Resolution{Station: &results[exact[0]]}, nil
		}
	}

	if len(results) == 1 {
		return &Resolution{Station: &results[0]}, nil
	}

	return r.decide(q, results), nil
}

// decide scores all candidates and either picks a winner or emits a
// disambiguation set.
func (r *Resolver) decide(q query, results []transit.Station) *Resolution {
	candidates := make([]Candidate, 0, len(results))
	for i := range results {
		s, first := score(q, results[i])
		candidates = append(candidates, Candidate{
			Station:         results[i],
			Score:           s,
			firstTokenMatch: first,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Station.DisplayName() < candidates[j].Station.DisplayName()
	})

	// A single candidate clearing the threshold with a first-token match
	// resolves without disambiguation.
	strong := -1
	for i, c := range candidates {
		if c.Score >= resolveThreshold && c.firstTokenMatch {
			if strong >= 0 {
				strong = -1
				break
			}
			strong = i
		}
	}
	if strong >= 0 {
		return &Resolution{Station: &candidates[strong].Station}
	}

	// A clear scored winner also resolves.
	if candidates[0].Score >= confidentScore &&
		candidates[0].Score-candidates[1].Score >= confidentGap {
		return &Resolution{Station: &candidates[0].Station}
	}

	// Otherwise: the top candidate plus every plausible alternative.
	kept := make([]Candidate, 0, len(candidates))
	kept = append(kept, candidates[0])
	for _, c := range candidates[1:] {
		if c.firstTokenMatch || c.Score >= 0.7 {
			kept = append(kept, c)
		}
	}
	if len(kept) > maxCandidates {
		kept = kept[:maxCandidates]
	}

	r.logger.Debug().
		Str("query", q.raw).
		Int("candidates", len(kept)).
		Float64("top_score", kept[0].Score).
		Msg("station query ambiguous")

	return &Resolution{Candidates: kept}
}

// FirstTokenOf exposes the query's first folded token, used by callers that
// build disambiguation labels.
func FirstTokenOf(raw string) string {
	tokens := textnorm.Tokens(raw)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}
