// Package grammar holds the small line grammars shared by both corpus
// extractors: the three rating-line shapes, the review header shape, the
// ratings header pieces, and comma splitting that respects parentheses.
//
// Each grammar is an ordered set of rules tried in documented priority
// order; the first rule that claims a line wins.
package grammar

import (
	"regexp"
	"strings"

	"github.com/umadb/umascope/pkg/score"
	"github.com/umadb/umascope/pkg/unify"
	"github.com/umadb/umascope/pkg/vocab"
)

var (
	// "2 (5 Pace Chaser)" - outer score, nested score + note
	specialShapeRe = regexp.MustCompile(`^([\d?+/~\-\s]+)\s*\(([\d?+/~-]+)\s*(.+?)\)$`)
	// "2 (Late)" / "4 (Mile)" - outer score, single note
	noteShapeRe = regexp.MustCompile(`^([\d?+/~\-\s]+)\s*\((.+?)\)$`)
	// "Name (Variant)" or "Name [Variant]", anchored at both ends
	reviewHeaderRe = regexp.MustCompile(`^([^()\[\]]+)\s*(?:\(([^)]+)\)|\[([^\]]+)\])$`)
	// bracketed title inside a ratings header name part
	titleRe = regexp.MustCompile(`\[(.*?)\]`)
	// "(Distance | Style)" innate group of a ratings header
	innateGroupRe = regexp.MustCompile(`\(([^)]*\|[^)]*)\)`)
)

// Parser binds the line grammars to a score parser and a vocabulary.
type Parser struct {
	Scores *score.Parser
	Vocab  *vocab.Vocabulary
}

func NewParser(s *score.Parser, v *vocab.Vocabulary) *Parser {
	return &Parser{Scores: s, Vocab: v}
}

// ParseRatingLine parses one awakening-level rating line. The three shapes
// are tried in order: nested special score, score with note, bare score.
// A line matching none of them yields an all-null record; this never fails.
func (p *Parser) ParseRatingLine(line, entity, level string) unify.RatingLevel {
	line = strings.TrimSpace(line)
	if line == "" {
		return unify.RatingLevel{}
	}

	if rec, ok := p.matchSpecialShape(line, entity, level); ok {
		return rec
	}
	if rec, ok := p.matchNoteShape(line, entity, level); ok {
		return rec
	}
	return p.matchBareScore(line, entity, level)
}

func (p *Parser) matchSpecialShape(line, entity, level string) (unify.RatingLevel, bool) {
	m := specialShapeRe.FindStringSubmatch(line)
	if m == nil {
		return unify.RatingLevel{}, false
	}

	outer, _ := p.Scores.Parse(m[1], entity, level)
	inner, _ := p.Scores.Parse(m[2], "", "")
	return unify.RatingLevel{
		Score:        unify.Nullable(outer),
		SpecialScore: unify.Nullable(inner),
		SpecialStyle: unify.Nullable(p.Vocab.Standardize(m[3])),
	}, true
}

func (p *Parser) matchNoteShape(line, entity, level string) (unify.RatingLevel, bool) {
	m := noteShapeRe.FindStringSubmatch(line)
	if m == nil {
		return unify.RatingLevel{}, false
	}

	s, _ := p.Scores.Parse(m[1], entity, level)
	rec := unify.RatingLevel{Score: unify.Nullable(s)}

	// A note is a track type if any canonical distance appears in it;
	// distances are checked before styles, first match wins.
	note := strings.TrimSpace(m[2])
	for _, d := range p.Vocab.Distances() {
		if strings.Contains(note, d) {
			rec.TrackType = unify.Nullable(d)
			return rec, true
		}
	}
	rec.Style = unify.Nullable(p.Vocab.Standardize(note))
	return rec, true
}

func (p *Parser) matchBareScore(line, entity, level string) unify.RatingLevel {
	s, _ := p.Scores.Parse(line, entity, level)
	return unify.RatingLevel{Score: unify.Nullable(s)}
}

// ParseReviewHeader matches a reviews-corpus header line. The shape must
// cover the whole line; trailing text disqualifies it, which is what keeps
// in-body rating lines with parentheses out of the header set.
func ParseReviewHeader(line string) (name, variant string, ok bool) {
	m := reviewHeaderRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	name = strings.TrimSpace(m[1])
	if m[2] != "" {
		variant = strings.TrimSpace(m[2])
	} else {
		variant = strings.TrimSpace(m[3])
	}
	return name, variant, true
}

// SplitNameTitle separates a ratings header name part into base name and
// optional bracketed title ("Mayano Top Gun [Wedding]" -> base, "Wedding").
func SplitNameTitle(namePart string) (base, title string) {
	namePart = strings.TrimSpace(namePart)
	m := titleRe.FindStringSubmatch(namePart)
	if m == nil {
		return namePart, ""
	}
	title = m[1]
	base = strings.TrimSpace(strings.Replace(namePart, "["+title+"]", "", 1))
	return base, title
}

// InnateGroup extracts the "(DISTANCE | STYLE)" group of a ratings header.
func InnateGroup(header string) (string, bool) {
	m := innateGroupRe.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SplitOutsideParens splits text on delim, ignoring delimiters nested
// inside parentheses. Parts are trimmed and empties dropped.
func SplitOutsideParens(text string, delim byte) []string {
	var parts []string
	start := 0
	nest := 0

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			nest++
		case ')':
			nest--
		case delim:
			if nest == 0 {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, text[start:])

	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
