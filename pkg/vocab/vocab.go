// Package vocab canonicalizes the closed distance/style vocabulary used by
// both corpora. Unknown terms are kept verbatim so the audit tooling can
// flag them later; nothing is ever dropped here.
package vocab

import (
	"strings"
)

// Alias maps one raw spelling to its canonical token. Order matters when a
// caller consumes matched substrings, so aliases are kept as slices.
type Alias struct {
	Raw       string
	Canonical string
}

// Tables is the source of truth for normalization. It is passed in at
// construction so tests can substitute their own vocabulary.
type Tables struct {
	Distances       []string
	Styles          []string
	DistanceAliases []Alias
	StyleAliases    []Alias
	CategoryBanners []string
}

// DefaultTables returns the vocabulary of the game-character corpora.
func DefaultTables() Tables {
	return Tables{
		Distances: []string{"Sprint", "Mile", "Medium", "Long", "Dirt"},
		Styles:    []string{"Front Runner", "Pace Chaser", "Late Surger", "End Closer"},
		DistanceAliases: []Alias{
			{"Med.", "Medium"},
			{"Med", "Medium"},
			{"Mid", "Medium"},
		},
		StyleAliases: []Alias{
			{"Front", "Front Runner"},
			{"Fronts", "Front Runner"},
			{"Runaway", "Front Runner"},
			{"Pace", "Pace Chaser"},
			{"Late", "Late Surger"},
			{"End", "End Closer"},
		},
		CategoryBanners: []string{
			"1* Umas", "2* Umas", "3* Umas",
			"This Month's Reviews", "This Month's",
		},
	}
}

type Vocabulary struct {
	tables        Tables
	distanceSet   map[string]struct{}
	styleSet      map[string]struct{}
	distanceAlias map[string]string
	styleAlias    map[string]string
	bannerSet     map[string]struct{}
}

func New(t Tables) *Vocabulary {
	v := &Vocabulary{
		tables:        t,
		distanceSet:   make(map[string]struct{}, len(t.Distances)),
		styleSet:      make(map[string]struct{}, len(t.Styles)),
		distanceAlias: make(map[string]string, len(t.DistanceAliases)),
		styleAlias:    make(map[string]string, len(t.StyleAliases)),
		bannerSet:     make(map[string]struct{}, len(t.CategoryBanners)),
	}
	for _, d := range t.Distances {
		v.distanceSet[d] = struct{}{}
	}
	for _, s := range t.Styles {
		v.styleSet[s] = struct{}{}
	}
	for _, a := range t.DistanceAliases {
		v.distanceAlias[a.Raw] = a.Canonical
	}
	for _, a := range t.StyleAliases {
		v.styleAlias[a.Raw] = a.Canonical
	}
	for _, b := range t.CategoryBanners {
		v.bannerSet[b] = struct{}{}
	}
	return v
}

// Standardize canonicalizes a raw token, possibly "/"-separated. Sub-tokens
// are deduplicated preserving first-seen order and re-joined with "/".
// Returns "" for blank input.
func (v *Vocabulary) Standardize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var out []string
	seen := make(map[string]struct{})
	for _, word := range strings.Split(text, "/") {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}

		canonical := v.standardizeWord(word)
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}

	return strings.Join(out, "/")
}

func (v *Vocabulary) standardizeWord(word string) string {
	titled := TitleCase(word)

	if c, ok := v.distanceAlias[word]; ok {
		return c
	}
	if c, ok := v.distanceAlias[titled]; ok {
		return c
	}
	if c, ok := v.styleAlias[word]; ok {
		return c
	}
	if c, ok := v.styleAlias[titled]; ok {
		return c
	}
	if v.IsDistance(word) || v.IsStyle(word) {
		return word
	}
	if v.IsDistance(titled) || v.IsStyle(titled) {
		return titled
	}
	// Unknown term, keep verbatim.
	return word
}

func (v *Vocabulary) IsDistance(s string) bool {
	_, ok := v.distanceSet[s]
	return ok
}

func (v *Vocabulary) IsStyle(s string) bool {
	_, ok := v.styleSet[s]
	return ok
}

// Distances returns the canonical distance tokens in fixed scan order.
func (v *Vocabulary) Distances() []string {
	return v.tables.Distances
}

// Styles returns the canonical style tokens in fixed scan order.
func (v *Vocabulary) Styles() []string {
	return v.tables.Styles
}

// DistanceAliases returns the alias table in declaration order.
func (v *Vocabulary) DistanceAliases() []Alias {
	return v.tables.DistanceAliases
}

// IsCategoryBanner reports whether a line is a section banner that must
// never open or close an entity block.
func (v *Vocabulary) IsCategoryBanner(line string) bool {
	line = strings.TrimSpace(line)
	if _, ok := v.bannerSet[line]; ok {
		return true
	}
	return strings.Contains(line, "Umas") || strings.Contains(line, "Reviews")
}

// TitleCase uppercases the first letter of every word and lowercases the
// rest, like the corpora's own headings ("front runner" -> "Front Runner").
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		switch {
		case isLetter && !prevLetter:
			if r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
		case isLetter:
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
