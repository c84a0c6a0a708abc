// Package detect classifies raw statement text into a statement type and
// issuer by scanning for the weighted markers declared on pattern rules.
package detect

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

const (
	// headLines is how many leading lines count as the statement header.
	// Markers found there get extra weight: bank names and report titles
	// live at the top of the page.
	headLines = 15

	// headBonus multiplies the weight of a marker found in the header.
	headBonus = 1.5

	// scoreBaseline normalizes raw marker scores into a confidence:
	// confidence = score / (score + scoreBaseline). A handful of strong
	// marker hits lands well above 0.5; a single weak hit stays low.
	scoreBaseline = 6.0

	// tieEpsilon is the confidence margin within which two candidates are
	// considered tied. Ties resolve toward the issuer-specific candidate.
	tieEpsilon = 0.02

	// specificityEpsilon is the wider band used when a generic candidate
	// leads an issuer-specific one. Generic rules match ubiquitous column
	// labels and can outscore a specific rule on volume alone, so a
	// specific candidate this close to a leading generic one wins.
	specificityEpsilon = 0.05
)

// Shape boosts reward line formats that markers can't express. Each adds a
// fixed raw score to every candidate of its statement type.
var shapeBoosts = []struct {
	pattern *regexp.Regexp
	boost   float64
	t       model.StatementType
}{
	// Card rows timestamp their transactions.
	{t: model.StatementCreditCard, boost: 2.0,
		pattern: regexp.MustCompile(`\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}:\d{2}`)},
	// Masked card numbers.
	{t: model.StatementCreditCard, boost: 2.0,
		pattern: regexp.MustCompile(`(?i)(?:x{4}[\s-]?){2,3}\d{4}`)},
	// UPI amounts carry the rupee glyph and a Dr/Cr tag on their own line.
	{t: model.StatementUPI, boost: 2.0,
		pattern: regexp.MustCompile(`₹\s*[0-9,]+\.\d{2}`)},
	// VPA handles.
	{t: model.StatementUPI, boost: 1.0,
		pattern: regexp.MustCompile(`(?i)\b[a-z0-9.\-_]+@[a-z]{2,}\b`)},
	// Bank rows end with a running balance: two amounts on one line.
	{t: model.StatementBank, boost: 1.0,
		pattern: regexp.MustCompile(`[0-9,]+\.\d{2}\s+[0-9,]+\.\d{2}\s*$`)},
}

// markerRef ties one automaton dictionary entry back to the rules that
// declare the token.
type markerRef struct {
	ruleID string
	weight float64
}

// Detector classifies statement text. The marker automaton is built once
// at construction; rule confidences are read fresh from the registry on
// every call so learning feeds back into detection.
type Detector struct {
	registry *registry.Registry
	matcher  *ahocorasick.Matcher
	tokens   []string
	refs     map[string][]markerRef
}

// NewDetector builds a detector over every marker of every rule in the
// registry.
func NewDetector(reg *registry.Registry) *Detector {
	refs := make(map[string][]markerRef)
	var tokens []string
	for _, rule := range reg.All() {
		for _, m := range rule.Markers {
			token := strings.ToLower(m.Token)
			if _, seen := refs[token]; !seen {
				tokens = append(tokens, token)
			}
			refs[token] = append(refs[token], markerRef{ruleID: rule.ID, weight: m.Weight})
		}
	}

	return &Detector{
		registry: reg,
		matcher:  ahocorasick.NewStringMatcher(tokens),
		tokens:   tokens,
		refs:     refs,
	}
}

// Detect scores the text against all registered rules and returns the
// ranked candidates. A result with StatementUnknown and zero confidence
// means nothing matched at all.
func (d *Detector) Detect(text string) model.DetectionResult {
	lower := strings.ToLower(text)

	bodyHits := d.matchedTokens(lower)
	headHits := d.matchedTokens(headOf(lower))

	rules := make(map[string]model.PatternRule)
	for _, rule := range d.registry.All() {
		rules[rule.ID] = rule
	}

	// Raw score per (type, issuer): marker weight scaled by the owning
	// rule's learned confidence, with the header bonus applied when the
	// marker appears in the leading lines.
	type key struct {
		t      model.StatementType
		issuer string
	}
	scores := make(map[key]float64)
	for token := range bodyHits {
		bonus := 1.0
		if _, inHead := headHits[token]; inHead {
			bonus = headBonus
		}
		for _, ref := range d.refs[token] {
			rule, ok := rules[ref.ruleID]
			if !ok {
				continue
			}
			k := key{t: rule.Type, issuer: rule.Issuer}
			scores[k] += ref.weight * bonus * rule.Confidence
		}
	}

	for _, sb := range shapeBoosts {
		if !sb.pattern.MatchString(text) {
			continue
		}
		for k := range scores {
			if k.t == sb.t {
				scores[k] += sb.boost
			}
		}
	}

	candidates := make([]model.Candidate, 0, len(scores))
	for k, score := range scores {
		candidates = append(candidates, model.Candidate{
			Issuer:     k.issuer,
			Type:       k.t,
			Confidence: score / (score + scoreBaseline),
		})
	}
	sortCandidates(candidates)
	promoteSpecific(candidates)

	if len(candidates) == 0 {
		return model.DetectionResult{Type: model.StatementUnknown}
	}

	top := candidates[0]
	return model.DetectionResult{
		Type:       top.Type,
		Issuer:     top.Issuer,
		Confidence: top.Confidence,
		Candidates: candidates,
	}
}

// matchedTokens returns the set of dictionary tokens present in the text.
func (d *Detector) matchedTokens(lower string) map[string]struct{} {
	hits := d.matcher.Match([]byte(lower))
	out := make(map[string]struct{}, len(hits))
	for _, idx := range hits {
		out[d.tokens[idx]] = struct{}{}
	}
	return out
}

// sortCandidates orders candidates by confidence, resolving near-ties in
// favor of issuer-specific candidates and then alphabetically by issuer so
// the ranking is deterministic.
func sortCandidates(candidates []model.Candidate) {
	bucket := func(c float64) int {
		return int(math.Round(c / tieEpsilon))
	}
	sort.Slice(candidates, func(i, j int) bool {
		bi, bj := bucket(candidates[i].Confidence), bucket(candidates[j].Confidence)
		if bi != bj {
			return bi > bj
		}
		iSpecific := candidates[i].Issuer != ""
		jSpecific := candidates[j].Issuer != ""
		if iSpecific != jSpecific {
			return iSpecific
		}
		if candidates[i].Issuer != candidates[j].Issuer {
			return candidates[i].Issuer < candidates[j].Issuer
		}
		return candidates[i].Type < candidates[j].Type
	})
}

// promoteSpecific moves the best issuer-specific candidate to the front
// when a generic candidate leads it by no more than specificityEpsilon.
// A handful of shared column labels can put a generic rule narrowly on
// top of an issuer whose distinctive columns also matched; the issuer
// verdict is the more useful one.
func promoteSpecific(candidates []model.Candidate) {
	if len(candidates) == 0 || candidates[0].Issuer != "" {
		return
	}
	lead := candidates[0].Confidence
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Issuer == "" {
			continue
		}
		if lead-candidates[i].Confidence > specificityEpsilon {
			return
		}
		best := candidates[i]
		copy(candidates[1:i+1], candidates[:i])
		candidates[0] = best
		return
	}
}

func headOf(text string) string {
	lines := strings.SplitN(text, "\n", headLines+1)
	if len(lines) > headLines {
		lines = lines[:headLines]
	}
	return strings.Join(lines, "\n")
}
