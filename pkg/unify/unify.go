// Package unify reconciles the two per-source record sets into one
// normalized entity per (base name, variant) pair, then backfills missing
// classification fields from weaker sources.
package unify

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/umadb/umascope/internal/utils"
	"github.com/umadb/umascope/pkg/vocab"
)

// Anime-variant display names that match a review labeled with the literal
// "Anime" tag.
var animeVariantTitles = map[string]struct{}{
	"End of Sky":         {},
	"Beyond the Horizon": {},
}

// Labels equivalent to the default variant.
var originalLabels = map[string]struct{}{
	"Original": {}, "1*": {}, "2*": {}, "3*": {},
}

// Description keywords mapped to styles, scanned in declaration order.
var styleKeywords = []struct{ Keyword, Style string }{
	{"Front Runner", "Front Runner"},
	{"Runner", "Front Runner"},
	{"Pace Chaser", "Pace Chaser"},
	{"Chaser", "Pace Chaser"},
	{"Late Surger", "Late Surger"},
	{"Betweener", "Late Surger"},
	{"End Closer", "End Closer"},
	{"Closer", "End Closer"},
}

// Boilerplate phrases stripped from descriptions, apostrophe variants
// included.
var boilerplateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)This Month's Reviews`),
	regexp.MustCompile(`(?i)This Month’s Reviews`),
}

type Reconciler struct {
	vocab *vocab.Vocabulary
}

func NewReconciler(v *vocab.Vocabulary) *Reconciler {
	return &Reconciler{vocab: v}
}

// Unify merges both record sets. Ratings entries drive the scan: each takes
// the first matching review (reviews stay in the candidate pool, so one
// review may serve several ratings entries — accepted behavior). Reviews
// not represented afterwards become standalone entities seeded from their
// stadium hints. The backfill pass then fills empty innate fields from
// trials, style reviews, and description keywords, in that order.
func (r *Reconciler) Unify(ratings []RatingsEntry, reviews []ReviewEntry) []Entity {
	var entities []Entity
	byKey := make(map[string]int)

	for _, re := range ratings {
		var matched *ReviewEntry
		for i := range reviews {
			if matchesReview(&reviews[i], re.BaseName, re.Title) {
				matched = &reviews[i]
				break
			}
		}
		e := buildFromRatings(re, matched)
		// One entity per (base name, variant) pair; a repeated ratings
		// entry replaces the earlier one in place, latest data wins.
		key := e.BaseName + "\x00" + e.Variant
		if at, seen := byKey[key]; seen {
			entities[at] = e
			continue
		}
		byKey[key] = len(entities)
		entities = append(entities, e)
	}

	for i := range reviews {
		rev := &reviews[i]
		if representsReview(entities, rev) {
			continue
		}
		entities = append(entities, buildFromReview(rev))
	}

	entities = r.backfill(entities)

	sort.Slice(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })
	utils.Log.Infof("unified %d entities", len(entities))
	return entities
}

// matchesReview implements the variant-equivalence relation between a
// ratings entry and a review.
func matchesReview(rev *ReviewEntry, baseName, title string) bool {
	if rev.BaseName != baseName {
		return false
	}
	if title != "" {
		if rev.Variant == title {
			return true
		}
		if _, anime := animeVariantTitles[title]; anime && rev.Variant == "Anime" {
			return true
		}
		return false
	}
	_, original := originalLabels[rev.Variant]
	return original
}

// representsReview reports whether a review is already covered by an
// existing entity, by display name or by variant equivalence.
func representsReview(entities []Entity, rev *ReviewEntry) bool {
	for i := range entities {
		e := &entities[i]
		if e.Name == rev.Name {
			return true
		}
		if e.BaseName != rev.BaseName {
			continue
		}

		_, eOriginal := originalLabels[e.Variant]
		_, rOriginal := originalLabels[rev.Variant]
		switch {
		case eOriginal && rOriginal:
			return true
		case e.Variant == rev.Variant:
			return true
		default:
			if _, anime := animeVariantTitles[e.Variant]; anime && rev.Variant == "Anime" {
				return true
			}
		}
	}
	return false
}

func buildFromRatings(re RatingsEntry, matched *ReviewEntry) Entity {
	variant := re.Title
	if variant == "" {
		if matched != nil {
			variant = matched.Variant
		} else {
			variant = "Original"
		}
	}
	if _, original := originalLabels[variant]; original {
		variant = "Original"
	}

	e := Entity{
		Name:           re.DisplayName,
		BaseName:       re.BaseName,
		Variant:        variant,
		InnateDistance: append([]string(nil), re.InnateDistance...),
		InnateStyle:    append([]string(nil), re.InnateStyle...),
		Lv2:            re.Levels["lv2"],
		Lv3:            re.Levels["lv3"],
		Lv4:            re.Levels["lv4"],
		Lv5:            re.Levels["lv5"],
	}
	if matched != nil {
		e.Description = matched.Description
		e.Trials = matched.Trials
		e.Parent = matched.Parent
		e.Debuffer = matched.Debuffer
		e.StyleReviews = matched.StyleReviews
	}
	return e
}

func buildFromReview(rev *ReviewEntry) Entity {
	variant := rev.Variant
	if _, original := originalLabels[variant]; original {
		variant = "Original"
	}
	return Entity{
		Name:           rev.Name,
		BaseName:       rev.BaseName,
		Variant:        variant,
		Description:    rev.Description,
		InnateDistance: append([]string(nil), rev.Stadium.Distances...),
		InnateStyle:    append([]string(nil), rev.Stadium.Styles...),
		Trials:         rev.Trials,
		Parent:         rev.Parent,
		Debuffer:       rev.Debuffer,
		StyleReviews:   rev.StyleReviews,
	}
}

// backfill is a pure second stage: it takes the just-built entities and
// returns a new set with only the designated fields filled in.
func (r *Reconciler) backfill(entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		r.backfillEntity(&e)
		r.cleanDescription(&e)

		// Documented erratum: the End of Sky variant is a Pace Chaser even
		// when no source says so outright.
		if strings.Contains(e.Name, "End of Sky") {
			e.InnateStyle = appendMissing(e.InnateStyle, "Pace Chaser")
		}

		if e.InnateDistance == nil {
			e.InnateDistance = []string{}
		}
		if e.InnateStyle == nil {
			e.InnateStyle = []string{}
		}
		if e.StyleReviews == nil {
			e.StyleReviews = []StyleReview{}
		}
		out = append(out, e)
	}
	return out
}

func (r *Reconciler) backfillEntity(e *Entity) {
	if len(e.InnateStyle) == 0 {
		if s := Deref(e.Trials.Style); s != "" {
			for _, part := range strings.Split(s, "/") {
				if part = strings.TrimSpace(part); part != "" {
					e.InnateStyle = appendMissing(e.InnateStyle, part)
				}
			}
		}
		for _, sr := range e.StyleReviews {
			if t := Deref(sr.Type); t != "" {
				e.InnateStyle = appendMissing(e.InnateStyle, t)
			}
			if d := Deref(sr.Distance); d != "" && len(e.InnateDistance) == 0 {
				for _, known := range r.vocab.Distances() {
					if strings.Contains(d, known) {
						e.InnateDistance = appendMissing(e.InnateDistance, known)
					}
				}
			}
		}
	}

	if len(e.InnateDistance) == 0 {
		if d := Deref(e.Trials.Distance); d != "" {
			for _, part := range strings.Split(d, "/") {
				if part = strings.TrimSpace(part); part != "" {
					e.InnateDistance = appendMissing(e.InnateDistance, part)
				}
			}
		}
	}

	desc := Deref(e.Description)
	if desc == "" {
		return
	}
	if len(e.InnateDistance) == 0 {
		for _, d := range r.vocab.Distances() {
			if wholeWord(desc, d) {
				e.InnateDistance = appendMissing(e.InnateDistance, d)
			}
		}
	}
	if len(e.InnateStyle) == 0 {
		for _, kw := range styleKeywords {
			if wholeWord(desc, kw.Keyword) {
				e.InnateStyle = appendMissing(e.InnateStyle, kw.Style)
			}
		}
	}
}

func (r *Reconciler) cleanDescription(e *Entity) {
	if e.Description == nil {
		return
	}
	desc := *e.Description
	for _, re := range boilerplateRes {
		desc = re.ReplaceAllString(desc, "")
	}
	e.Description = Nullable(strings.TrimSpace(desc))
}

func wholeWord(text, word string) bool {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(text)
}

func appendMissing(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// WriteArtifact serializes the entity set to path. Regenerating is an
// idempotent overwrite.
func WriteArtifact(path string, entities []Entity) error {
	if entities == nil {
		entities = []Entity{}
	}
	data, err := json.MarshalIndent(entities, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadArtifact loads a previously written entity set.
func ReadArtifact(path string) ([]Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entities []Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}
