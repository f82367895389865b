// Package audit validates a generated artifact against the raw source
// corpora and reports discrepancies without mutating anything.
package audit

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	validDistances = []string{"Sprint", "Mile", "Medium", "Long", "Dirt"}
	validStyles    = []string{"Front Runner", "Pace Chaser", "Late Surger", "End Closer"}

	validScoreRe     = regexp.MustCompile(`^[1-5]$`)
	uncertainScoreRe = regexp.MustCompile(`[?~+]`)

	ratingsHeaderRe = regexp.MustCompile(`^([^(\n]+)\s*\([^|]+\|[^)]+\)`)
	scoreLineRe     = regexp.MustCompile(`^[\d?+~\-\s()a-zA-Z.]+$`)
	digitsOnlyRe    = regexp.MustCompile(`^\d+$`)
	reviewsHeaderRe = regexp.MustCompile(`^([^()\[\]]+)\s*(?:\(([^)]+)\)|\[([^\]]+)\])$`)
	bracketTitleRe  = regexp.MustCompile(`\s*\[.*?\]`)
)

// Non-standard terms the normalizer should have rewritten.
var (
	distanceSubstitutes = map[string]string{
		"Med.": "Medium", "Med": "Medium", "Mid": "Medium",
	}
	styleSubstitutes = map[string]string{
		"Front": "Front Runner", "Fronts": "Front Runner", "Runaway": "Front Runner",
		"Pace": "Pace Chaser", "Late": "Late Surger", "End": "End Closer",
	}
	// Compound or free-form styles that pass as informational only.
	toleratedStyles = map[string]struct{}{
		"Not-Front": {}, "Anything": {}, "Front/Pace": {}, "Late/End": {}, "Late/Pace": {},
	}
)

// Stat is one labeled summary figure, printed in insertion order.
type Stat struct {
	Key   string
	Value string
}

type Report struct {
	Errors   []string
	Warnings []string
	Info     []string
	Stats    []Stat
}

func (r *Report) addError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) addWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) addInfo(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

func (r *Report) addStat(key, value string) {
	r.Stats = append(r.Stats, Stat{Key: key, Value: value})
}

func (r *Report) HasErrors() bool { return len(r.Errors) > 0 }

// Write prints the report in its fixed sectioned layout.
func (r *Report) Write(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nDATA AUDIT REPORT\n%s\n", rule, rule)

	fmt.Fprintf(w, "\n--- SUMMARY STATISTICS ---\n")
	for _, s := range r.Stats {
		fmt.Fprintf(w, "  %s: %s\n", s.Key, s.Value)
	}

	writeSection(w, "ERRORS", "ERROR", r.Errors)
	writeSection(w, "WARNINGS", "WARN", r.Warnings)
	writeSection(w, "INFO", "INFO", r.Info)

	fmt.Fprintf(w, "\n%s\nTotal: %d errors, %d warnings, %d info\n%s\n\n",
		rule, len(r.Errors), len(r.Warnings), len(r.Info), rule)
}

func writeSection(w io.Writer, title, tag string, items []string) {
	fmt.Fprintf(w, "\n--- %s (%d) ---\n", title, len(items))
	if len(items) == 0 {
		fmt.Fprintf(w, "  None\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  [%s] %s\n", tag, item)
	}
}

// reviewName is one header extracted from the reviews corpus.
type reviewName struct {
	Name     string
	Variant  string
	FullName string
}

// Run audits the artifact against both raw corpora. Either corpus may be
// empty when its file is unavailable; cross-referencing then skips it.
func Run(artifact []byte, ratingsRaw, reviewsRaw string) *Report {
	report := &Report{}
	data := gjson.ParseBytes(artifact)

	ratingsNames := extractRatingsNames(ratingsRaw)
	reviewsNames := extractReviewsNames(reviewsRaw)

	entities := data.Array()
	report.addStat("Total characters in final data", fmt.Sprintf("%d", len(entities)))
	report.addStat("Total entries in ratings source", fmt.Sprintf("%d", len(ratingsNames)))
	report.addStat("Total entries in reviews source", fmt.Sprintf("%d", len(reviewsNames)))

	complete := 0
	for _, item := range entities {
		hasAwakening := false
		for _, lv := range []string{"lv2", "lv3", "lv4", "lv5"} {
			if item.Get(lv + ".score").Type == gjson.String {
				hasAwakening = true
			}
		}
		hasTrials := item.Get("trials.score").Type == gjson.String
		hasDescription := item.Get("description").String() != ""
		if hasAwakening && hasTrials && hasDescription {
			complete++
		}
	}
	report.addStat("Characters with complete data", fmt.Sprintf("%d", complete))
	if len(entities) > 0 {
		report.addStat("Coverage percentage", fmt.Sprintf("%.1f%%", float64(complete)/float64(len(entities))*100))
	}

	auditEntities(entities, report)
	crossReference(entities, ratingsNames, reviewsNames, report)
	checkKnownEdgeCases(entities, report)

	return report
}

func auditEntities(entities []gjson.Result, report *Report) {
	seen := map[string]bool{}

	for _, item := range entities {
		name := item.Get("name").String()
		if name == "" {
			name = "Unknown"
		}

		if seen[name] {
			report.addError("%s: Duplicate entry detected", name)
		}
		seen[name] = true

		allAwakeningNull := true
		for _, lv := range []string{"lv2", "lv3", "lv4", "lv5"} {
			score := item.Get(lv + ".score")
			if score.Type == gjson.String {
				allAwakeningNull = false
				validateScore(score.String(), lv, name, report)
			}
		}
		if allAwakeningNull {
			report.addWarning("%s: All awakening scores (lv2-lv5) are null", name)
		}

		innateDistance := item.Get("innate_distance").Array()
		if len(innateDistance) == 0 {
			report.addInfo("%s: Empty innate_distance array", name)
		} else {
			for _, d := range innateDistance {
				validateDistance(d.String(), name, report)
			}
		}

		innateStyle := item.Get("innate_style").Array()
		if len(innateStyle) == 0 {
			report.addInfo("%s: Empty innate_style array", name)
		} else {
			for _, s := range innateStyle {
				validateStyle(s.String(), name, report)
			}
		}

		if trialsScore := item.Get("trials.score"); trialsScore.Type != gjson.String {
			report.addInfo("%s: Missing trials score", name)
		} else {
			validateScore(trialsScore.String(), "trials", name, report)
		}
		if s := item.Get("trials.style").String(); s != "" {
			validateStyle(s, name, report)
		}
		if d := item.Get("trials.distance").String(); d != "" {
			validateDistance(d, name, report)
		}

		if parentScore := item.Get("parent.score"); parentScore.Type != gjson.String {
			report.addInfo("%s: Missing parent score", name)
		} else {
			validateScore(parentScore.String(), "parent", name, report)
		}

		if item.Get("description").String() == "" {
			report.addInfo("%s: Missing description", name)
		}

		for _, sr := range item.Get("style_reviews").Array() {
			if t := sr.Get("type").String(); t != "" {
				validateStyle(t, name, report)
			}
			if s := sr.Get("score").String(); s != "" {
				validateScore(s, "style_review", name, report)
			}
		}

		variant := item.Get("variant").String()
		if variant == "End of Sky" || variant == "Beyond the Horizon" {
			report.addInfo("%s: Anime variant mapped to '%s'", name, variant)
		}
	}
}

func validateScore(score, fieldName, charName string, report *Report) {
	score = strings.TrimSpace(score)

	if uncertainScoreRe.MatchString(score) {
		report.addWarning("%s: Uncertain score '%s' in %s", charName, score, fieldName)
		return
	}
	if strings.Contains(strings.ToLower(score), "but") {
		report.addWarning("%s: Special annotation '%s' in %s", charName, score, fieldName)
		return
	}
	if !validScoreRe.MatchString(score) {
		if strings.Contains(score, "/") {
			report.addInfo("%s: Compound score '%s' in %s", charName, score, fieldName)
		} else {
			report.addWarning("%s: Non-standard score '%s' in %s", charName, score, fieldName)
		}
	}
}

func validateDistance(distance, charName string, report *Report) {
	distance = strings.TrimSpace(distance)

	if canonical, ok := distanceSubstitutes[distance]; ok {
		report.addWarning("%s: Non-standard distance '%s' should be '%s'", charName, distance, canonical)
		return
	}
	if isMember(validDistances, distance) {
		return
	}
	if strings.Contains(distance, "/") {
		for _, part := range strings.Split(distance, "/") {
			part = strings.TrimSpace(part)
			if part != "" && !isMember(validDistances, part) {
				report.addWarning("%s: Unknown distance component '%s'", charName, part)
			}
		}
		return
	}
	report.addWarning("%s: Unknown distance '%s'", charName, distance)
}

func validateStyle(style, charName string, report *Report) {
	style = strings.TrimSpace(style)

	if canonical, ok := styleSubstitutes[style]; ok {
		report.addWarning("%s: Non-standard style '%s' should be '%s'", charName, style, canonical)
		return
	}
	if isMember(validStyles, style) {
		return
	}
	if strings.Contains(style, "/") {
		if _, tolerated := toleratedStyles[style]; tolerated {
			return
		}
		for _, part := range strings.Split(style, "/") {
			part = strings.TrimSpace(part)
			if part == "" || isMember(validStyles, part) {
				continue
			}
			if _, ok := styleSubstitutes[part]; ok {
				continue
			}
			report.addInfo("%s: Non-standard style component '%s'", charName, part)
		}
		return
	}
	if _, tolerated := toleratedStyles[style]; !tolerated {
		report.addInfo("%s: Non-standard style '%s'", charName, style)
	}
}

// extractRatingsNames pulls entity headers out of the ratings corpus with a
// stricter shape than the pipeline parser, so drift shows up as warnings.
func extractRatingsNames(content string) []string {
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "Uma" || line == "Lv 2" || line == "Lv 3" || line == "Lv 4" || line == "Lv 5" {
			continue
		}
		if scoreLineRe.MatchString(line) && !strings.Contains(line, "|") && !strings.Contains(line, "(") {
			continue
		}
		m := ratingsHeaderRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if !digitsOnlyRe.MatchString(name) {
			names = append(names, name)
		}
	}
	return names
}

func extractReviewsNames(content string) []reviewName {
	var names []reviewName
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Ratings:") {
			continue
		}
		m := reviewsHeaderRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		variant := strings.TrimSpace(m[2])
		if variant == "" {
			variant = strings.TrimSpace(m[3])
		}

		if name == "1*" || name == "2*" || name == "3*" || name == "This Month's" ||
			strings.Contains(name, "Umas") || strings.Contains(name, "Reviews") {
			continue
		}

		fullName := name
		if variant != "" && variant != "Original" && variant != "1*" && variant != "2*" && variant != "3*" {
			fullName = fmt.Sprintf("%s [%s]", name, variant)
		}
		names = append(names, reviewName{Name: name, Variant: variant, FullName: fullName})
	}
	return names
}

func crossReference(entities []gjson.Result, ratingsNames []string, reviewsNames []reviewName, report *Report) {
	finalNames := map[string]bool{}
	finalBaseNames := map[string]bool{}
	var finalNameList []string
	for _, item := range entities {
		name := item.Get("name").String()
		finalNames[name] = true
		finalNameList = append(finalNameList, name)
		base := item.Get("base_name").String()
		if base == "" {
			base = name
		}
		finalBaseNames[base] = true
	}

	for _, name := range ratingsNames {
		base := strings.TrimSpace(bracketTitleRe.ReplaceAllString(name, ""))
		if finalBaseNames[base] || finalNames[name] {
			continue
		}
		found := false
		for _, fn := range finalNameList {
			if strings.Contains(fn, base) {
				found = true
				break
			}
		}
		if !found {
			report.addWarning("Ratings source '%s' not found in final data", name)
		}
	}

	for _, r := range reviewsNames {
		if finalBaseNames[r.Name] || finalNames[r.FullName] {
			continue
		}
		found := false
		for _, fn := range finalNameList {
			if strings.Contains(fn, r.Name) {
				found = true
				break
			}
		}
		if !found {
			report.addWarning("Reviews source '%s' (%s) not found in final data", r.Name, r.Variant)
		}
	}
}

// checkKnownEdgeCases verifies the documented score corrections landed.
func checkKnownEdgeCases(entities []gjson.Result, report *Report) {
	for _, item := range entities {
		name := item.Get("name").String()

		if strings.Contains(name, "Haru Urara") {
			lv3 := item.Get("lv3.score").String()
			if strings.Contains(lv3, "?") {
				report.addError("Haru Urara: lv3 score '%s' should have been normalized", lv3)
			} else if lv3 == "1" {
				report.addInfo("Haru Urara: lv3 score correctly normalized to '1'")
			}
		}

		if name == "Mayano Top Gun" {
			trials := item.Get("trials.score").String()
			if strings.Contains(trials, "?") {
				report.addError("Mayano Top Gun: trials score '%s' should have been normalized", trials)
			} else if trials == "4" {
				report.addInfo("Mayano Top Gun: trials score correctly normalized to '4'")
			}
		}

		if name == "Curren Chan" {
			trials := item.Get("trials.score").String()
			if strings.Contains(trials, "?") {
				report.addError("Curren Chan: trials score '%s' should have been normalized", trials)
			} else if trials == "5" {
				report.addInfo("Curren Chan: trials score correctly normalized to '5'")
			}
		}

		if strings.Contains(name, "Smart Falcon") {
			for _, lv := range []string{"lv2", "lv3", "lv4", "lv5"} {
				if score := item.Get(lv + ".score").String(); strings.Contains(score, "but bad") {
					report.addWarning("Smart Falcon: %s contains 'but bad' annotation", lv)
				}
			}
		}
	}
}

func isMember(set []string, v string) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
