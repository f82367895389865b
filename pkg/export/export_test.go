package export

import (
	"strings"
	"testing"

	"github.com/umadb/umascope/pkg/unify"
)

func sp(s string) *string { return &s }

func TestMarkdownIndexAndSections(t *testing.T) {
	entities := []unify.Entity{
		{
			Name:           "Gold Ship",
			BaseName:       "Gold Ship",
			Variant:        "Original",
			Description:    sp("Line one.\n\nLine two."),
			InnateDistance: []string{"Long"},
			InnateStyle:    []string{"End Closer"},
			Lv2:            unify.RatingLevel{Score: sp("5")},
			Lv4:            unify.RatingLevel{Score: sp("3"), Style: sp("Late Surger")},
			Trials:         unify.Trials{Score: sp("4"), Distance: sp("Long"), Style: sp("End Closer")},
			Parent:         unify.Parent{Score: sp("2"), Note: sp("good skills")},
		},
		{
			Name:     "Mejiro McQueen [End of Sky]",
			BaseName: "Mejiro McQueen",
			Variant:  "End of Sky",
			Debuffer: unify.Debuffer{Type: sp("Speed"), Effect: sp("-0.25")},
			StyleReviews: []unify.StyleReview{
				{Type: sp("Pace Chaser"), Score: sp("5"), Distance: sp("Long")},
			},
		},
	}

	md := Markdown(entities)

	if !strings.HasPrefix(md, "# Character Ratings\n") {
		t.Fatalf("missing document title:\n%s", md[:80])
	}
	for _, want := range []string{
		"| [Gold Ship](#gold-ship) | Original | 4 | 2 | Line one. Line two. |",
		"| [Mejiro McQueen [End of Sky]](#mejiro-mcqueen-end-of-sky) | End of Sky |",
		"## Original\n",
		"## End of Sky\n",
		"### Gold Ship\n",
		"*Long | End Closer*",
		"- **Lv 2**: 5",
		"- **Lv 4**: 3 *(Late Surger)*",
		"- **Team Trials**: 4 *(Long End Closer)*",
		"- **Parent**: 2 *(good skills)*",
		"- **Speed Debuffer**: -0.25",
		"- **Pace Chaser**: 5 *(Long)*",
		"Line one.\n\nLine two.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestDescriptionPreviewTruncates(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := descriptionPreview(long)
	if got != strings.Repeat("a", 100)+"..." {
		t.Fatalf("preview = %q", got)
	}
	if descriptionPreview("short") != "short" {
		t.Fatal("short descriptions must pass through")
	}
}

func TestCellEscaping(t *testing.T) {
	entities := []unify.Entity{{
		Name:        "Weird | Name",
		BaseName:    "Weird | Name",
		Variant:     "Original",
		Description: sp("pipes | in | prose"),
	}}
	md := Markdown(entities)
	if !strings.Contains(md, `Weird \| Name`) {
		t.Fatalf("unescaped pipe in table:\n%s", md)
	}
}
