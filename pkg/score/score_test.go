package score

import "testing"

func TestParseExceptionPrecedence(t *testing.T) {
	p := NewParser(DefaultExceptions())

	tests := []struct {
		raw, entity, field string
		want               string
		wantModified       bool
	}{
		{"1? 3?", "Haru Urara", "lv3", "1", true},
		{"2?4?", "Mayano Top Gun", "trials", "4", true},
		{"5?", "Curren Chan", "trials", "5", true},
		// The same raw string without entity context falls through to the
		// generic rules instead.
		{"1? 3?", "", "", "1", true},
		// Exception pattern matches by substring.
		{"maybe 5?", "Curren Chan", "trials", "5", true},
	}

	for _, tc := range tests {
		got, modified := p.Parse(tc.raw, tc.entity, tc.field)
		if got != tc.want || modified != tc.wantModified {
			t.Errorf("Parse(%q, %q, %q) = (%q, %v), want (%q, %v)",
				tc.raw, tc.entity, tc.field, got, modified, tc.want, tc.wantModified)
		}
	}
}

func TestParseGenericRules(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		raw          string
		want         string
		wantModified bool
	}{
		{"2~3", "2", true},
		{"5?", "5", true},
		{"4", "4", false},
		{"1? 3?", "1", true},
		{"  4  ", "4", false},
		{"4/3", "4/3", false},
		{"4 but bad", "4 but bad", false},
		{"", "", false},
		{"   ", "", false},
	}

	for _, tc := range tests {
		got, modified := p.Parse(tc.raw, "", "")
		if got != tc.want || modified != tc.wantModified {
			t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)",
				tc.raw, got, modified, tc.want, tc.wantModified)
		}
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"1", "5", " 3 "}
	for _, s := range valid {
		if !IsValid(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	invalid := []string{"", "0", "6", "4/3", "5?", "ten"}
	for _, s := range invalid {
		if IsValid(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
