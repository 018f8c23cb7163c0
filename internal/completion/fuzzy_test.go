package completion

import "testing"

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		text    string
		pattern string
		want    bool
	}{
		{"private", "pri", true},
		{"private", "pvt", true},
		{"private", "", true},
		{"private", "xyz", false},
		{"Private", "pri", true},
		{"fooBarBaz", "fbb", true},
		{"short", "shorter", false},
	}

	for _, tt := range tests {
		if got := fuzzyMatch(tt.text, tt.pattern); got != tt.want {
			t.Errorf("fuzzyMatch(%q, %q) = %v, want %v", tt.text, tt.pattern, got, tt.want)
		}
	}
}

func TestFuzzyScoreOrdering(t *testing.T) {
	exact := fuzzyScore("pri", "pri")
	prefix := fuzzyScore("private", "pri")
	substring := fuzzyScore("deprive", "pri")
	scattered := fuzzyScore("parseInt", "pri")

	if exact <= prefix {
		t.Errorf("exact (%d) should beat prefix (%d)", exact, prefix)
	}
	if prefix <= substring {
		t.Errorf("prefix (%d) should beat substring (%d)", prefix, substring)
	}
	if substring <= scattered {
		t.Errorf("substring (%d) should beat scattered (%d)", substring, scattered)
	}
}

func TestFuzzyScoreBoundaries(t *testing.T) {
	camel := fuzzyScore("fooBar", "fb")
	plain := fuzzyScore("ffffbr", "fb")
	if camel <= plain {
		t.Errorf("boundary match (%d) should beat plain subsequence (%d)", camel, plain)
	}
}
