package unify

// The wire model of the unified artifact. Every scalar that can be absent
// is a *string so the artifact serializes null-for-absent with no field
// omission.

// RatingLevel is one awakening-level rating slot (lv2..lv5).
// TrackType and Style are mutually exclusive: a line's parenthetical note is
// classified as exactly one of them. The Special pair populates only for the
// nested score-inside-note shape.
type RatingLevel struct {
	Score        *string `json:"score"`
	Style        *string `json:"style"`
	TrackType    *string `json:"track_type"`
	SpecialScore *string `json:"special_score"`
	SpecialStyle *string `json:"special_style"`
}

// Trials is the team-trials rating bundle. Distance and Style may be
// "/"-joined compounds.
type Trials struct {
	Score    *string `json:"score"`
	Distance *string `json:"distance"`
	Style    *string `json:"style"`
}

// Parent is the parenting rating. A score containing "~" is truncated to
// its first numeral before storage.
type Parent struct {
	Score *string `json:"score"`
	Note  *string `json:"note"`
}

// Debuffer describes a debuffer role rating.
type Debuffer struct {
	Type   *string `json:"type"`
	Effect *string `json:"effect"`
	Note   *string `json:"note"`
}

// StyleReview is one per-style score from the reviews corpus.
type StyleReview struct {
	Type     *string `json:"type"`
	Score    *string `json:"score"`
	Distance *string `json:"distance"`
}

// StadiumHints carries distance/style information inferred from a review's
// "Stadium" rating line. It never reaches the artifact directly; it only
// seeds innate fields for entities that exist solely in the reviews corpus.
type StadiumHints struct {
	Distances []string
	Styles    []string
}

// Entity is the terminal unified record, one per (base name, variant) pair.
type Entity struct {
	Name           string        `json:"name"`
	BaseName       string        `json:"base_name"`
	Variant        string        `json:"variant"`
	Description    *string       `json:"description"`
	InnateDistance []string      `json:"innate_distance"`
	InnateStyle    []string      `json:"innate_style"`
	Lv2            RatingLevel   `json:"lv2"`
	Lv3            RatingLevel   `json:"lv3"`
	Lv4            RatingLevel   `json:"lv4"`
	Lv5            RatingLevel   `json:"lv5"`
	Trials         Trials        `json:"trials"`
	Parent         Parent        `json:"parent"`
	Debuffer       Debuffer      `json:"debuffer"`
	StyleReviews   []StyleReview `json:"style_reviews"`
}

// RatingsEntry is the per-entity intermediate record of the ratings corpus.
// Entries keep corpus order so reconciliation is deterministic.
type RatingsEntry struct {
	DisplayName    string // header text before "(", bracketed title included
	BaseName       string
	Title          string // "" when the header has no bracketed title
	InnateDistance []string
	InnateStyle    []string
	Levels         map[string]RatingLevel // keyed lv2..lv5
}

// ReviewEntry is the per-entity intermediate record of the reviews corpus.
type ReviewEntry struct {
	Name         string // display name, "[Variant]" suffix when non-default
	BaseName     string
	Variant      string // "Original" or the literal variant label
	Description  *string
	StyleReviews []StyleReview
	Trials       Trials
	Parent       Parent
	Debuffer     Debuffer
	Stadium      StadiumHints
}

// Nullable returns nil for the empty string, so "" propagates as JSON null.
func Nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref is the inverse of Nullable.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
