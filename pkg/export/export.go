// Package export renders the unified entity set as a markdown document:
// an index table up top, then one section per entity.
package export

import (
	"fmt"
	"strings"

	"github.com/umadb/umascope/pkg/unify"
)

const descriptionPreviewLen = 100

// Markdown renders entities in artifact order.
func Markdown(entities []unify.Entity) string {
	var b strings.Builder

	b.WriteString("# Character Ratings\n\n")
	b.WriteString("| Name | Variant | Trials | Parent | Description |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")

	for _, e := range entities {
		fmt.Fprintf(&b, "| [%s](#%s) | %s | %s | %s | %s |\n",
			escapeCell(e.Name), anchor(e.Name),
			escapeCell(e.Variant),
			escapeCell(unify.Deref(e.Trials.Score)),
			escapeCell(unify.Deref(e.Parent.Score)),
			escapeCell(descriptionPreview(unify.Deref(e.Description))))
	}

	b.WriteString("\n---\n\n")

	currentVariant := ""
	for _, e := range entities {
		if e.Variant != currentVariant {
			currentVariant = e.Variant
			fmt.Fprintf(&b, "## %s\n\n", currentVariant)
		}
		writeSection(&b, e)
	}

	return b.String()
}

func writeSection(b *strings.Builder, e unify.Entity) {
	fmt.Fprintf(b, "### %s\n", e.Name)

	if len(e.InnateDistance) > 0 || len(e.InnateStyle) > 0 {
		fmt.Fprintf(b, "*%s | %s*\n\n",
			strings.Join(e.InnateDistance, "/"), strings.Join(e.InnateStyle, "/"))
	}

	var ratings []string
	for _, entry := range []struct {
		Label string
		Level unify.RatingLevel
	}{
		{"Lv 2", e.Lv2}, {"Lv 3", e.Lv3}, {"Lv 4", e.Lv4}, {"Lv 5", e.Lv5},
	} {
		if entry.Level.Score == nil {
			continue
		}
		line := fmt.Sprintf("- **%s**: %s", entry.Label, *entry.Level.Score)
		if note := levelNote(entry.Level); note != "" {
			line += fmt.Sprintf(" *(%s)*", note)
		}
		ratings = append(ratings, line)
	}
	if len(ratings) > 0 {
		b.WriteString("**Awakening:**\n")
		b.WriteString(strings.Join(ratings, "\n"))
		b.WriteString("\n\n")
	}

	if s := unify.Deref(e.Trials.Score); s != "" {
		fmt.Fprintf(b, "- **Team Trials**: %s", s)
		if extra := joinNonEmpty(unify.Deref(e.Trials.Distance), unify.Deref(e.Trials.Style)); extra != "" {
			fmt.Fprintf(b, " *(%s)*", extra)
		}
		b.WriteString("\n")
	}
	if s := unify.Deref(e.Parent.Score); s != "" {
		fmt.Fprintf(b, "- **Parent**: %s", s)
		if n := unify.Deref(e.Parent.Note); n != "" {
			fmt.Fprintf(b, " *(%s)*", n)
		}
		b.WriteString("\n")
	}
	if t := unify.Deref(e.Debuffer.Type); t != "" {
		fmt.Fprintf(b, "- **%s Debuffer**: %s", t, unify.Deref(e.Debuffer.Effect))
		if n := unify.Deref(e.Debuffer.Note); n != "" {
			fmt.Fprintf(b, " *(%s)*", n)
		}
		b.WriteString("\n")
	}
	for _, sr := range e.StyleReviews {
		fmt.Fprintf(b, "- **%s**: %s", unify.Deref(sr.Type), unify.Deref(sr.Score))
		if d := unify.Deref(sr.Distance); d != "" {
			fmt.Fprintf(b, " *(%s)*", d)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if d := unify.Deref(e.Description); d != "" {
		b.WriteString(d)
		b.WriteString("\n\n")
	}
}

func levelNote(level unify.RatingLevel) string {
	if s := unify.Deref(level.SpecialScore); s != "" {
		return strings.TrimSpace(s + " " + unify.Deref(level.SpecialStyle))
	}
	return joinNonEmpty(unify.Deref(level.TrackType), unify.Deref(level.Style))
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func descriptionPreview(desc string) string {
	if len(desc) > descriptionPreviewLen {
		desc = desc[:descriptionPreviewLen] + "..."
	}
	return strings.ReplaceAll(desc, "\n", " ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func anchor(name string) string {
	a := strings.ToLower(name)
	for _, drop := range []string{"(", ")", ".", "[", "]", "*"} {
		a = strings.ReplaceAll(a, drop, "")
	}
	return strings.ReplaceAll(strings.TrimSpace(a), " ", "-")
}
