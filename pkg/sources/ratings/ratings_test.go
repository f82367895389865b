package ratings

import (
	"reflect"
	"testing"

	"github.com/umadb/umascope/internal/utils"
	"github.com/umadb/umascope/pkg/grammar"
	"github.com/umadb/umascope/pkg/score"
	"github.com/umadb/umascope/pkg/unify"
	"github.com/umadb/umascope/pkg/vocab"
)

func init() {
	utils.SetLogLevel("error")
}

func newTestExtractor() *Extractor {
	v := vocab.New(vocab.DefaultTables())
	return NewExtractor(grammar.NewParser(score.NewParser(score.DefaultExceptions()), v), v)
}

func TestParseSingleEntry(t *testing.T) {
	e := newTestExtractor()

	content := `Uma
Lv 2
Lv 3
Lv 4
Lv 5
Agnes Tachyon (Med. | Pace)
4
3?
2 (Late)
1
`
	entries := e.Parse(content)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	got := entries[0]
	if got.DisplayName != "Agnes Tachyon" || got.BaseName != "Agnes Tachyon" || got.Title != "" {
		t.Fatalf("bad names: %+v", got)
	}
	if !reflect.DeepEqual(got.InnateDistance, []string{"Medium"}) {
		t.Fatalf("innate distance = %v", got.InnateDistance)
	}
	if !reflect.DeepEqual(got.InnateStyle, []string{"Pace Chaser"}) {
		t.Fatalf("innate style = %v", got.InnateStyle)
	}

	if s := unify.Deref(got.Levels["lv2"].Score); s != "4" {
		t.Errorf("lv2 score = %q", s)
	}
	if s := unify.Deref(got.Levels["lv3"].Score); s != "3" {
		t.Errorf("lv3 score = %q, want uncertain marker stripped", s)
	}
	lv4 := got.Levels["lv4"]
	if unify.Deref(lv4.Score) != "2" || unify.Deref(lv4.Style) != "Late Surger" {
		t.Errorf("lv4 = %+v", lv4)
	}
	if s := unify.Deref(got.Levels["lv5"].Score); s != "1" {
		t.Errorf("lv5 score = %q", s)
	}
}

func TestParseTitledHeader(t *testing.T) {
	e := newTestExtractor()

	content := `Mayano Top Gun [Wedding] (Med. | Not-Front)
3
3
4 (5 Pace Chaser)
5
`
	entries := e.Parse(content)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.BaseName != "Mayano Top Gun" || got.Title != "Wedding" {
		t.Fatalf("bad title split: %+v", got)
	}
	if got.DisplayName != "Mayano Top Gun [Wedding]" {
		t.Fatalf("display name = %q", got.DisplayName)
	}
	// Unknown style terms survive normalization verbatim.
	if !reflect.DeepEqual(got.InnateStyle, []string{"Not-Front"}) {
		t.Fatalf("innate style = %v", got.InnateStyle)
	}
	lv4 := got.Levels["lv4"]
	if unify.Deref(lv4.SpecialScore) != "5" || unify.Deref(lv4.SpecialStyle) != "Pace Chaser" {
		t.Fatalf("lv4 = %+v", lv4)
	}
}

func TestMalformedHeaderConsumesNoLines(t *testing.T) {
	e := newTestExtractor()

	// First header has no score lines after it; the next entity must still
	// parse with its own four lines.
	content := `Broken Entry (Mile | Front)
Agnes Tachyon (Med. | Pace)
4
3
2
1
`
	entries := e.Parse(content)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].BaseName != "Agnes Tachyon" {
		t.Fatalf("wrong entity survived: %q", entries[0].BaseName)
	}
	if s := unify.Deref(entries[0].Levels["lv2"].Score); s != "4" {
		t.Fatalf("lv2 = %q, header/data misalignment", s)
	}
}

func TestBannersNeverOpenBlocks(t *testing.T) {
	e := newTestExtractor()

	content := `1* Umas
Haru Urara (Sprint | End)
2
1? 3?
1
1
`
	entries := e.Parse(content)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].BaseName != "Haru Urara" {
		t.Fatalf("entity = %q", entries[0].BaseName)
	}
	// Entity context reaches the score parser's exception table.
	if s := unify.Deref(entries[0].Levels["lv3"].Score); s != "1" {
		t.Fatalf("lv3 = %q, documented correction not applied", s)
	}
}

func TestRepeatedHeaderKeepsLaterBlock(t *testing.T) {
	e := newTestExtractor()

	// Republished headers appear in corpus snapshots; the later block must
	// replace the earlier one, never produce a second entry.
	content := `Agnes Tachyon (Med. | Pace)
4
3?
2 (Late)
1
Agnes Tachyon (Med. | Pace)
5
4
3
2
`
	entries := e.Parse(content)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.DisplayName != "Agnes Tachyon" {
		t.Fatalf("display name = %q", got.DisplayName)
	}
	if s := unify.Deref(got.Levels["lv2"].Score); s != "5" {
		t.Fatalf("lv2 = %q, earlier block survived", s)
	}
	if s := unify.Deref(got.Levels["lv5"].Score); s != "2" {
		t.Fatalf("lv5 = %q, earlier block survived", s)
	}
}

func TestCompoundInnateLists(t *testing.T) {
	e := newTestExtractor()

	content := `Gold Ship (Med/Long | Late/End)
5
4
3
2
`
	entries := e.Parse(content)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !reflect.DeepEqual(entries[0].InnateDistance, []string{"Medium", "Long"}) {
		t.Fatalf("innate distance = %v", entries[0].InnateDistance)
	}
	if !reflect.DeepEqual(entries[0].InnateStyle, []string{"Late Surger", "End Closer"}) {
		t.Fatalf("innate style = %v", entries[0].InnateStyle)
	}
}
