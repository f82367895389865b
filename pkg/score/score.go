// Package score normalizes raw score tokens into their canonical "1".."5"
// form. Anything that no rule can claim passes through verbatim; the parser
// never rejects a value.
package score

import (
	"regexp"
	"strings"

	"github.com/umadb/umascope/internal/utils"
)

// Exception is a documented erratum: when the raw score for a given
// (entity, field) pair contains Pattern, it is replaced by Corrected.
type Exception struct {
	Entity    string
	Field     string
	Pattern   string
	Corrected string
}

// DefaultExceptions returns the known errata of the ratings/reviews corpora.
func DefaultExceptions() []Exception {
	return []Exception{
		{Entity: "Haru Urara", Field: "lv3", Pattern: "1? 3?", Corrected: "1"},
		{Entity: "Mayano Top Gun", Field: "trials", Pattern: "2?4?", Corrected: "4"},
		{Entity: "Curren Chan", Field: "trials", Pattern: "5?", Corrected: "5"},
	}
}

var (
	dualUncertainRe   = regexp.MustCompile(`^(\d)\?\s+\d\?`)
	rangeRe           = regexp.MustCompile(`^(\d)~\d`)
	singleUncertainRe = regexp.MustCompile(`^(\d)\?$`)
)

type Parser struct {
	// entity -> field -> exception
	exceptions map[string]map[string]Exception
}

func NewParser(exceptions []Exception) *Parser {
	p := &Parser{exceptions: make(map[string]map[string]Exception)}
	for _, e := range exceptions {
		byField, ok := p.exceptions[e.Entity]
		if !ok {
			byField = make(map[string]Exception)
			p.exceptions[e.Entity] = byField
		}
		byField[e.Field] = e
	}
	return p
}

// Parse normalizes a raw score. Rules are tried in a fixed order and the
// first match wins; the exception table must run before the generic
// heuristics so documented corrections override pattern-based ones.
// The boolean reports whether the value was modified.
func (p *Parser) Parse(raw, entity, field string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if entity != "" && field != "" {
		if e, ok := p.exceptions[entity][field]; ok && strings.Contains(s, e.Pattern) {
			utils.Log.Infof("normalized %s %s: %q -> %q", entity, field, s, e.Corrected)
			return e.Corrected, true
		}
	}

	if m := dualUncertainRe.FindStringSubmatch(s); m != nil {
		utils.Log.Infof("normalized ambiguous score: %q -> %q", s, m[1])
		return m[1], true
	}

	if m := rangeRe.FindStringSubmatch(s); m != nil {
		utils.Log.Infof("normalized range score: %q -> %q", s, m[1])
		return m[1], true
	}

	if m := singleUncertainRe.FindStringSubmatch(s); m != nil {
		utils.Log.Debugf("kept uncertain score: %q -> %q", s, m[1])
		return m[1], true
	}

	return s, false
}

// IsValid reports whether a score is a plain 1-5 digit.
func IsValid(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) == 1 && s[0] >= '1' && s[0] <= '5'
}
