// Package ratings extracts per-entity awakening ratings from the ratings
// corpus: one header line per entity followed by four positional rating
// lines (lv2..lv5).
package ratings

import (
	"os"
	"strings"

	"github.com/umadb/umascope/internal/utils"
	"github.com/umadb/umascope/pkg/grammar"
	"github.com/umadb/umascope/pkg/unify"
	"github.com/umadb/umascope/pkg/vocab"
)

// Levels in positional order after a header.
var levelTags = []string{"lv2", "lv3", "lv4", "lv5"}

// Column banner lines of the corpus. Never headers, never data.
var columnBanners = map[string]struct{}{
	"Uma":  {},
	"Lv 2": {},
	"Lv 3": {},
	"Lv 4": {},
	"Lv 5": {},
}

type Extractor struct {
	grammar *grammar.Parser
	vocab   *vocab.Vocabulary
}

func NewExtractor(g *grammar.Parser, v *vocab.Vocabulary) *Extractor {
	return &Extractor{grammar: g, vocab: v}
}

// ParseFile reads and parses a ratings corpus file.
func (e *Extractor) ParseFile(path string) ([]unify.RatingsEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.Parse(string(content)), nil
}

// Parse segments the corpus into header blocks and extracts one entry per
// well-formed block. A header not followed by a score-shaped line is
// malformed: it is skipped without consuming any level lines, so a bad
// header can never misalign the ones after it.
func (e *Extractor) Parse(content string) []unify.RatingsEntry {
	var lines []string
	for _, l := range strings.Split(content, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}

	var entries []unify.RatingsEntry
	byName := make(map[string]int)
	for i := 0; i < len(lines); {
		line := lines[i]

		if _, banner := columnBanners[line]; banner || e.vocab.IsCategoryBanner(line) {
			i++
			continue
		}

		namePart := line
		if idx := strings.IndexByte(line, '('); idx >= 0 {
			namePart = line[:idx]
		}
		namePart = strings.TrimSpace(namePart)
		if namePart == "" || strings.HasPrefix(line, "Ratings:") {
			i++
			continue
		}

		base, title := grammar.SplitNameTitle(namePart)
		innateDistance, innateStyle := e.parseInnate(line)

		if i+1 >= len(lines) || !looksLikeScore(lines[i+1]) {
			i++
			continue
		}

		levels := make(map[string]unify.RatingLevel, len(levelTags))
		for j, tag := range levelTags {
			if i+1+j < len(lines) {
				levels[tag] = e.grammar.ParseRatingLine(lines[i+1+j], base, tag)
			}
		}

		entry := unify.RatingsEntry{
			DisplayName:    namePart,
			BaseName:       base,
			Title:          title,
			InnateDistance: innateDistance,
			InnateStyle:    innateStyle,
			Levels:         levels,
		}
		// A republished header replaces the earlier block in place: one
		// entry per display name, latest data wins.
		if at, seen := byName[namePart]; seen {
			utils.Log.Debugf("duplicate ratings header %q, keeping later block", namePart)
			entries[at] = entry
		} else {
			byName[namePart] = len(entries)
			entries = append(entries, entry)
		}
		i += 1 + len(levelTags)
	}

	utils.Log.Infof("parsed %d entries from ratings corpus", len(entries))
	return entries
}

// parseInnate pulls the "(DISTANCE_LIST | STYLE_LIST)" group out of a
// header and normalizes each "/"-separated part into ordered sets.
func (e *Extractor) parseInnate(header string) (distances, styles []string) {
	group, ok := grammar.InnateGroup(header)
	if !ok {
		return nil, nil
	}

	parts := strings.SplitN(group, "|", 2)
	if len(parts) >= 1 {
		distances = e.normalizeList(parts[0])
	}
	if len(parts) >= 2 {
		styles = e.normalizeList(parts[1])
	}
	return distances, styles
}

func (e *Extractor) normalizeList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, "/") {
		if std := e.vocab.Standardize(part); std != "" {
			out = append(out, std)
		}
	}
	return out
}

// looksLikeScore reports whether a line can open the four-line rating run:
// it starts with a digit or carries an uncertainty marker.
func looksLikeScore(line string) bool {
	if line == "" {
		return false
	}
	if line[0] >= '0' && line[0] <= '9' {
		return true
	}
	return strings.Contains(line, "?")
}
