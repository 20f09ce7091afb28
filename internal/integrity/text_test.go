package integrity

import (
	"math"
	"testing"
)

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "the quick brown fox", "the quick brown fox", 1.0},
		{"both empty", "", "", 0.0},
		{"one empty", "hello world", "", 0.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"half overlap", "a b c d", "a b e f", 2.0 / 6.0},
		{"case insensitive", "Hello World", "hello world", 1.0},
		{"duplicate words collapse", "go go go", "go", 1.0},
	}

	for _, tt := range tests {
		got := JaccardSimilarity(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: JaccardSimilarity(%q, %q) = %f, want %f", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestJaccardIdentity(t *testing.T) {
	for _, s := range []string{"x", "one two three", "  padded  "} {
		if got := JaccardSimilarity(s, s); got != 1.0 {
			t.Errorf("JaccardSimilarity(%q, %q) = %f, want 1.0", s, s, got)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
		{"café", "cafe", 1}, // rune-wise, not byte-wise
	}

	for _, tt := range tests {
		if got := LevenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLevenshteinSimilarity(t *testing.T) {
	// Both empty is defined as 1.
	if got := LevenshteinSimilarity("", ""); got != 1.0 {
		t.Errorf("LevenshteinSimilarity(\"\", \"\") = %f, want 1.0", got)
	}

	// 1 - distance/maxlen.
	got := LevenshteinSimilarity("kitten", "sitting")
	want := 1.0 - 3.0/7.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("LevenshteinSimilarity(kitten, sitting) = %f, want %f", got, want)
	}
}

func TestLevenshteinSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"", "abc"},
		{"the quick brown fox jumps", "a quick brown fox jumped"},
	}
	for _, p := range pairs {
		if LevenshteinSimilarity(p[0], p[1]) != LevenshteinSimilarity(p[1], p[0]) {
			t.Errorf("LevenshteinSimilarity not symmetric for %q / %q", p[0], p[1])
		}
	}
}
