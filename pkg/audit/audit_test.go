package audit

import (
	"strings"
	"testing"
)

const artifact = `[
  {
    "name": "Curren Chan",
    "base_name": "Curren Chan",
    "variant": "Original",
    "description": "Sprint specialist.",
    "innate_distance": ["Sprint"],
    "innate_style": ["Front Runner"],
    "lv2": {"score": "4"},
    "lv3": {"score": "3"},
    "lv4": {"score": "2"},
    "lv5": {"score": "1"},
    "trials": {"score": "5", "distance": "Sprint", "style": "Front Runner"},
    "parent": {"score": "3", "note": null},
    "debuffer": {"type": null, "effect": null, "note": null},
    "style_reviews": []
  },
  {
    "name": "Broken Entry",
    "base_name": "Broken Entry",
    "variant": "Original",
    "description": null,
    "innate_distance": ["Med."],
    "innate_style": [],
    "lv2": {"score": "3?"},
    "lv3": {"score": null},
    "lv4": {"score": null},
    "lv5": {"score": null},
    "trials": {"score": null, "distance": null, "style": null},
    "parent": {"score": null, "note": null},
    "debuffer": {"type": null, "effect": null, "note": null},
    "style_reviews": []
  },
  {
    "name": "Broken Entry",
    "base_name": "Broken Entry",
    "variant": "Original",
    "innate_distance": [],
    "innate_style": [],
    "trials": {"score": null},
    "parent": {"score": null},
    "style_reviews": []
  }
]`

func hasEntry(items []string, substr string) bool {
	for _, item := range items {
		if strings.Contains(item, substr) {
			return true
		}
	}
	return false
}

func TestRunFlagsStructuralIssues(t *testing.T) {
	report := Run([]byte(artifact), "", "")

	if !report.HasErrors() {
		t.Fatal("duplicate entry must produce an error")
	}
	if !hasEntry(report.Errors, "Duplicate entry detected") {
		t.Errorf("errors = %v", report.Errors)
	}
	if !hasEntry(report.Warnings, "Uncertain score '3?'") {
		t.Errorf("uncertain score not flagged: %v", report.Warnings)
	}
	if !hasEntry(report.Warnings, "Non-standard distance 'Med.' should be 'Medium'") {
		t.Errorf("substitute distance not flagged: %v", report.Warnings)
	}
	if !hasEntry(report.Info, "Curren Chan: trials score correctly normalized to '5'") {
		t.Errorf("edge case confirmation missing: %v", report.Info)
	}
}

func TestCleanArtifactHasNoErrors(t *testing.T) {
	clean := `[
  {
    "name": "Curren Chan",
    "base_name": "Curren Chan",
    "variant": "Original",
    "description": "Sprint specialist.",
    "innate_distance": ["Sprint"],
    "innate_style": ["Front Runner"],
    "lv2": {"score": "4"},
    "lv3": {"score": "3"},
    "lv4": {"score": "2"},
    "lv5": {"score": "1"},
    "trials": {"score": "5", "distance": "Sprint", "style": "Front Runner"},
    "parent": {"score": "3", "note": null},
    "debuffer": {"type": null, "effect": null, "note": null},
    "style_reviews": [{"type": "Front Runner", "score": "5", "distance": null}]
  }
]`
	report := Run([]byte(clean), "", "")
	if report.HasErrors() {
		t.Fatalf("clean artifact produced errors: %v", report.Errors)
	}
	if hasEntry(report.Warnings, "Curren Chan") {
		t.Fatalf("clean artifact produced warnings: %v", report.Warnings)
	}
}

func TestCrossReferenceFindsMissingEntities(t *testing.T) {
	ratingsRaw := `Uma
Lv 2
Lv 3
Lv 4
Lv 5
Curren Chan (Sprint | Front)
5
4
3
2
Vanished Uma (Mile | Pace)
3
3
3
3
`
	reviewsRaw := `3* Umas

Curren Chan (3*)
Ratings: Front Runner 5

Ghost Review [Summer]
Ratings: Pace Chaser 4
`
	report := Run([]byte(artifact), ratingsRaw, reviewsRaw)

	if !hasEntry(report.Warnings, "Ratings source 'Vanished Uma' not found") {
		t.Errorf("missing ratings entity not flagged: %v", report.Warnings)
	}
	if !hasEntry(report.Warnings, "Reviews source 'Ghost Review' (Summer) not found") {
		t.Errorf("missing review entity not flagged: %v", report.Warnings)
	}
	if hasEntry(report.Warnings, "'Curren Chan' not found") {
		t.Errorf("covered entity flagged: %v", report.Warnings)
	}
}

func TestExtractRatingsNamesSkipsScoresAndBanners(t *testing.T) {
	content := `Uma
Lv 2
Curren Chan (Sprint | Front)
5
4 (Mile)
2 (5 Pace Chaser)
`
	got := extractRatingsNames(content)
	if len(got) != 1 || got[0] != "Curren Chan" {
		t.Fatalf("names = %v", got)
	}
}

func TestExtractReviewsNamesVariantHandling(t *testing.T) {
	content := `1* Umas
Haru Urara (1*)
Mejiro McQueen [Anime]
This Month's Reviews
Ratings: End Closer 1
`
	got := extractReviewsNames(content)
	if len(got) != 2 {
		t.Fatalf("names = %+v", got)
	}
	if got[0].FullName != "Haru Urara" {
		t.Errorf("star variant must not decorate the full name: %+v", got[0])
	}
	if got[1].FullName != "Mejiro McQueen [Anime]" {
		t.Errorf("bracket variant must decorate the full name: %+v", got[1])
	}
}
