// Package discover locates the post composer and submit control on a group
// page using a scored, multi-strategy heuristic over the page's interactive
// elements.
package discover

import (
	"regexp"
	"sort"
	"strings"

	"groupcast/internal/page"
)

// Kind selects which element the heuristics look for.
type Kind int

const (
	// KindComposer is the editable text-entry surface for composing a post.
	KindComposer Kind = iota
	// KindSubmit is the control that finalizes and publishes the post.
	KindSubmit
	// KindSurface is a clickable teaser that opens the composer dialog.
	KindSurface
)

func (k Kind) String() string {
	switch k {
	case KindComposer:
		return "composer"
	case KindSubmit:
		return "submit"
	case KindSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// Weights is the scoring table. The values are empirically tuned; treat
// them as configuration, not as a contract.
type Weights struct {
	RoleTextbox int // composer: role="textbox"
	Editable    int // composer: editable element
	ClassHint   int // composer: class name suggests a composer
	RoleButton  int // submit/surface: role="button" or button tag
	TestIDHit   int // submit: data-testid matches a known composer-post id
	KeywordHit  int // any: one keyword found in label, placeholder, or text
	MinScore    int // candidates below this are dropped
}

// DefaultWeights returns the tuned scoring table.
func DefaultWeights() Weights {
	return Weights{
		RoleTextbox: 2,
		Editable:    2,
		ClassHint:   1,
		RoleButton:  1,
		TestIDHit:   6,
		KeywordHit:  3,
		MinScore:    3,
	}
}

var (
	composerClassHint = regexp.MustCompile(`composer|notranslate|editable`)
	submitTestIDHint  = regexp.MustCompile(`react-composer-post-button|composer-post`)
)

// Scorer assigns confidence scores to candidates.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Scored pairs a candidate with its confidence score.
type Scored struct {
	Candidate page.Candidate
	Score     int
}

// Score computes the confidence that c is the element kind, given the
// lower-cased keyword list. Zero means structurally ineligible.
func (s *Scorer) Score(c page.Candidate, kind Kind, keywords []string) int {
	switch kind {
	case KindComposer:
		return s.scoreComposer(c, keywords)
	case KindSubmit:
		return s.scoreSubmit(c, keywords)
	case KindSurface:
		return s.scoreSurface(c, keywords)
	default:
		return 0
	}
}

func (s *Scorer) scoreComposer(c page.Candidate, keywords []string) int {
	// Structural gate: only editable surfaces qualify. Keyword-bearing
	// teasers are handled by the surface strategy instead.
	if !c.Editable && c.Role != "textbox" {
		return 0
	}
	score := 0
	if c.Role == "textbox" {
		score += s.weights.RoleTextbox
	}
	if c.Editable {
		score += s.weights.Editable
	}
	if composerClassHint.MatchString(c.Class) {
		score += s.weights.ClassHint
	}
	score += s.keywordHits(c, keywords)
	return score
}

func (s *Scorer) scoreSubmit(c page.Candidate, keywords []string) int {
	if !clickable(c) || c.Disabled {
		return 0
	}
	score := s.weights.RoleButton
	if submitTestIDHint.MatchString(c.TestID) {
		score += s.weights.TestIDHit
	}
	score += s.keywordHits(c, keywords)
	return score
}

// scoreSurface rates clickable, non-editable elements whose label reads
// like a composer prompt ("Write something...") and which therefore likely
// open the composer dialog when clicked.
func (s *Scorer) scoreSurface(c page.Candidate, keywords []string) int {
	if c.Editable || !clickable(c) || c.Disabled {
		return 0
	}
	hits := s.keywordHits(c, keywords)
	if hits == 0 {
		return 0
	}
	return s.weights.RoleButton + hits
}

// keywordHits adds the keyword weight once per keyword found in the
// accessible label, placeholder, or text content. Adding a matching keyword
// to any of those fields never lowers the score.
func (s *Scorer) keywordHits(c page.Candidate, keywords []string) int {
	score := 0
	for _, k := range keywords {
		if strings.Contains(c.AriaLabel, k) ||
			strings.Contains(c.Placeholder, k) ||
			strings.Contains(c.Text, k) {
			score += s.weights.KeywordHit
		}
	}
	return score
}

// Rank scores candidates and returns those at or above MinScore in
// descending score order. Ties keep DOM traversal order. Returns an empty
// slice, never an error, when nothing qualifies.
func (s *Scorer) Rank(cands []page.Candidate, kind Kind, keywords []string) []Scored {
	var ranked []Scored
	for _, c := range cands {
		if score := s.Score(c, kind, keywords); score >= s.weights.MinScore {
			ranked = append(ranked, Scored{Candidate: c, Score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Candidate.Order < ranked[j].Candidate.Order
	})
	return ranked
}

func clickable(c page.Candidate) bool {
	return c.Role == "button" || c.Tag == "button" ||
		(c.Tag == "input" && !c.Editable)
}
