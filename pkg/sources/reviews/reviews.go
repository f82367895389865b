// Package reviews extracts per-entity records from the reviews corpus:
// freeform prose blocks with one semi-structured "Ratings:" line each.
package reviews

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/umadb/umascope/internal/utils"
	"github.com/umadb/umascope/pkg/grammar"
	"github.com/umadb/umascope/pkg/score"
	"github.com/umadb/umascope/pkg/unify"
	"github.com/umadb/umascope/pkg/vocab"
)

const ratingsMarker = "Ratings:"

// Star markers and the "Original" label all collapse to the default variant.
var defaultVariants = map[string]struct{}{
	"1*": {}, "2*": {}, "3*": {}, "Original": {},
}

// Header name parts that are section labels, never entities.
var bannerNames = map[string]struct{}{
	"1*": {}, "2*": {}, "3*": {}, "This Month's": {},
}

var (
	scoreTokenRe  = regexp.MustCompile(`\d[\d?+~-]*\??`)
	noteRe        = regexp.MustCompile(`\((.+?)\)`)
	parenRe       = regexp.MustCompile(`\(.+?\)`)
	debufferRe    = regexp.MustCompile(`(\w+)\s+Debuffer`)
	leadingTextRe = regexp.MustCompile(`^([^\d(]+)`)
	trialItemRe   = regexp.MustCompile(`(\d[\d?+~-]*)\s*(?:\(([^)]+)\))?`)
)

type Extractor struct {
	scores *score.Parser
	vocab  *vocab.Vocabulary
}

func NewExtractor(s *score.Parser, v *vocab.Vocabulary) *Extractor {
	return &Extractor{scores: s, vocab: v}
}

// ParseFile reads and parses a reviews corpus file.
func (e *Extractor) ParseFile(path string) ([]unify.ReviewEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.Parse(string(content)), nil
}

// block is the one open entity block during segmentation. It is closed
// deterministically when the next header arrives or input ends.
type block struct {
	entry     unify.ReviewEntry
	descLines []string
}

func (b *block) accumulate(line string) {
	b.descLines = append(b.descLines, line)
}

func (b *block) close(out []unify.ReviewEntry) []unify.ReviewEntry {
	if b == nil {
		return out
	}
	if len(b.descLines) > 0 {
		b.entry.Description = unify.Nullable(strings.Join(b.descLines, "\n\n"))
	}
	return append(out, b.entry)
}

// Parse segments the corpus and extracts one record per entity header.
// Header lines must consist of only name+variant; anything with trailing
// text is body prose. Category banners never open or close a block.
func (e *Extractor) Parse(content string) []unify.ReviewEntry {
	var out []unify.ReviewEntry
	var current *block

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ratingsMarker) {
			if current != nil {
				e.parseRatingsList(&current.entry, strings.TrimSpace(strings.TrimPrefix(line, ratingsMarker)))
				e.deriveTrialsStyle(&current.entry)
			}
			continue
		}

		if name, variant, ok := grammar.ParseReviewHeader(line); ok {
			if _, banner := bannerNames[name]; banner || e.vocab.IsCategoryBanner(name) {
				continue
			}
			out = current.close(out)
			current = openBlock(name, variant)
			continue
		}

		if current != nil && !e.vocab.IsCategoryBanner(line) {
			current.accumulate(line)
		}
	}

	out = current.close(out)
	utils.Log.Infof("parsed %d entries from reviews corpus", len(out))
	return out
}

func openBlock(name, variant string) *block {
	label := variant
	display := name
	if _, def := defaultVariants[variant]; def {
		label = "Original"
	} else {
		display = name + " [" + variant + "]"
	}
	return &block{entry: unify.ReviewEntry{
		Name:     display,
		BaseName: name,
		Variant:  label,
	}}
}

// parseRatingsList splits the rating list on commas outside parentheses and
// classifies each item by keyword, in fixed priority: Debuffer, Parent,
// Stadium, Team Trials, then generic per-style rating.
func (e *Extractor) parseRatingsList(entry *unify.ReviewEntry, content string) {
	for _, part := range grammar.SplitOutsideParens(content, ',') {
		var itemScore string
		if tokens := scoreTokenRe.FindAllString(part, -1); len(tokens) > 0 {
			itemScore, _ = e.scores.Parse(tokens[len(tokens)-1], entry.BaseName, "")
		}

		var note string
		if m := noteRe.FindStringSubmatch(part); m != nil {
			note = m[1]
		}

		switch {
		case strings.Contains(part, "Debuffer"):
			e.parseDebuffer(entry, part, note)
		case strings.Contains(part, "Parent"):
			e.parseParent(entry, itemScore, note)
		case strings.Contains(part, "Stadium"):
			e.parseStadiumHints(entry, note)
		case strings.Contains(part, "Team Trials"):
			e.parseTeamTrials(entry, part, itemScore)
		default:
			e.parseStyleRating(entry, part, itemScore, note)
		}
	}
}

func (e *Extractor) parseDebuffer(entry *unify.ReviewEntry, part, note string) {
	if m := debufferRe.FindStringSubmatch(part); m != nil {
		entry.Debuffer.Type = unify.Nullable(m[1])
	}
	if idx := strings.IndexByte(note, ','); idx >= 0 {
		entry.Debuffer.Effect = unify.Nullable(strings.TrimSpace(note[:idx]))
		entry.Debuffer.Note = unify.Nullable(strings.TrimSpace(note[idx+1:]))
	} else {
		entry.Debuffer.Effect = unify.Nullable(note)
	}
}

func (e *Extractor) parseParent(entry *unify.ReviewEntry, itemScore, note string) {
	// A ranged parent score keeps only its first numeral.
	if idx := strings.IndexByte(itemScore, '~'); idx >= 0 {
		itemScore = itemScore[:idx]
	}
	entry.Parent = unify.Parent{
		Score: unify.Nullable(itemScore),
		Note:  unify.Nullable(note),
	}
}

// parseStadiumHints stores distance/style tokens found in a Stadium note.
// The score itself is discarded; hints only seed innate fields later.
func (e *Extractor) parseStadiumHints(entry *unify.ReviewEntry, note string) {
	if note == "" {
		return
	}
	for _, d := range e.vocab.Distances() {
		if strings.Contains(note, d) {
			entry.Stadium.Distances = appendMissing(entry.Stadium.Distances, d)
		}
	}
	for _, s := range e.vocab.Styles() {
		if strings.Contains(note, s) {
			entry.Stadium.Styles = appendMissing(entry.Stadium.Styles, s)
		}
	}
}

// parseTeamTrials handles items like "Team Trials 4 (Mile Late Surger) 3
// (Pace Chaser)": zero or more score(note) runs whose scores join with
// " / " and whose note distances/styles union in first-seen order.
func (e *Extractor) parseTeamTrials(entry *unify.ReviewEntry, part, itemScore string) {
	rest := strings.ReplaceAll(part, "Team Trials", "")

	var foundScores, foundDistances, foundStyles []string
	for _, m := range trialItemRe.FindAllStringSubmatch(rest, -1) {
		sVal, _ := e.scores.Parse(strings.TrimSpace(m[1]), entry.BaseName, "trials")
		foundScores = append(foundScores, sVal)

		nVal := strings.TrimSpace(m[2])
		if nVal == "" {
			continue
		}

		dist, sty := e.splitTrialNote(nVal)
		if dist != "" {
			foundDistances = append(foundDistances, e.vocab.Standardize(dist))
		}
		if sty != "" {
			foundStyles = append(foundStyles, sty)
		}
	}

	finalScore := itemScore
	if len(foundScores) > 0 {
		finalScore = strings.Join(foundScores, " / ")
	}
	entry.Trials = unify.Trials{
		Score:    unify.Nullable(finalScore),
		Distance: unify.Nullable(strings.Join(dedupe(foundDistances), " / ")),
		Style:    unify.Nullable(strings.Join(dedupe(foundStyles), " / ")),
	}
}

// splitTrialNote pulls every distance token out of a trial note (canonical
// names first, then abbreviation aliases, consuming matched substrings) and
// classifies whatever remains as the style.
func (e *Extractor) splitTrialNote(note string) (dist, sty string) {
	var noteDistances []string
	remaining := note

	for _, d := range e.vocab.Distances() {
		if strings.Contains(remaining, d) {
			noteDistances = append(noteDistances, d)
			remaining = removeWord(remaining, d)
		}
	}
	for _, a := range e.vocab.DistanceAliases() {
		if strings.Contains(remaining, a.Raw) {
			noteDistances = append(noteDistances, a.Canonical)
			remaining = removeWord(remaining, a.Raw)
		}
	}

	remaining = strings.Trim(strings.TrimSpace(remaining), "/")
	if len(noteDistances) > 0 {
		dist = strings.Join(noteDistances, "/")
	}

	if strings.Contains(remaining, "/") {
		var parts []string
		for _, p := range strings.Split(remaining, "/") {
			if std := e.vocab.Standardize(p); std != "" {
				parts = append(parts, std)
			}
		}
		sty = strings.Join(parts, "/")
		return dist, sty
	}

	for _, s := range e.vocab.Styles() {
		if strings.Contains(remaining, s) {
			return dist, s
		}
	}
	if remaining != "" {
		sty = e.vocab.Standardize(remaining)
	}
	return dist, sty
}

// parseStyleRating handles the generic "Pace Chaser 4 (Sprint)" items,
// possibly "/"-compound. The item's single score is reused for every
// sub-part; the note normalizes as the recorded distance.
func (e *Extractor) parseStyleRating(entry *unify.ReviewEntry, part, itemScore, note string) {
	for _, subpart := range strings.Split(part, "/") {
		subpart = strings.TrimSpace(subpart)
		if subpart == "" {
			continue
		}

		clean := strings.TrimSpace(parenRe.ReplaceAllString(subpart, ""))
		styleType := subpart
		if m := leadingTextRe.FindStringSubmatch(clean); m != nil {
			styleType = strings.TrimSpace(m[1])
		}

		entry.StyleReviews = append(entry.StyleReviews, unify.StyleReview{
			Type:     unify.Nullable(e.vocab.Standardize(styleType)),
			Score:    unify.Nullable(itemScore),
			Distance: unify.Nullable(e.vocab.Standardize(note)),
		})
	}
}

// deriveTrialsStyle fills an unset trials style from the style reviews:
// entries with the highest numeric score win, with a fixed priority order
// breaking ties (End Closer > Late Surger = Pace Chaser > Front Runner);
// styles still tied after that join with "/".
func (e *Extractor) deriveTrialsStyle(entry *unify.ReviewEntry) {
	if entry.Trials.Style != nil || len(entry.StyleReviews) == 0 {
		return
	}

	priority := map[string]int{
		"End Closer":   4,
		"Late Surger":  3,
		"Pace Chaser":  3,
		"Front Runner": 2,
	}

	type scored struct {
		style    string
		severity int
	}
	var all []scored
	maxSeverity := 0
	for _, sr := range entry.StyleReviews {
		s := scored{style: unify.Deref(sr.Type), severity: severity(unify.Deref(sr.Score))}
		all = append(all, s)
		if s.severity > maxSeverity {
			maxSeverity = s.severity
		}
	}

	var top []string
	for _, s := range all {
		if s.severity == maxSeverity {
			top = append(top, s.style)
		}
	}
	if len(top) == 1 {
		entry.Trials.Style = unify.Nullable(top[0])
		return
	}

	maxPriority := 0
	for _, s := range top {
		if priority[s] > maxPriority {
			maxPriority = priority[s]
		}
	}
	var final []string
	for _, s := range top {
		if priority[s] == maxPriority {
			final = append(final, s)
		}
	}
	entry.Trials.Style = unify.Nullable(strings.Join(final, "/"))
}

// severity reads the leading numeral of a score string, with uncertainty
// markers stripped first. Anything non-numeric counts as zero.
func severity(s string) int {
	s = strings.NewReplacer("?", "", "+", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s[:1])
	if err != nil {
		return 0
	}
	return n
}

func removeWord(s, word string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.ReplaceAllString(s, "")
}

func appendMissing(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func dedupe(list []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
