package similarity

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical strings",
			a:    "ORD12345",
			b:    "ORD12345",
			want: 1.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 1.0,
		},
		{
			name: "one empty",
			a:    "ORD123",
			b:    "",
			want: 0.0,
		},
		{
			name: "completely disjoint",
			a:    "abc",
			b:    "xyz",
			want: 0.0,
		},
		{
			name: "last character differs short",
			a:    "ORD123",
			b:    "ORD124",
			want: 10.0 / 12.0,
		},
		{
			name: "last character differs long",
			a:    "ORD12345",
			b:    "ORD12346",
			want: 14.0 / 16.0,
		},
		{
			name: "shifted overlap",
			a:    "abcd",
			b:    "bcde",
			want: 0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("Ratio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"ORD123", "ORD456"},
		{"abcd", "bcde"},
		{"short", "a much longer identifier"},
	}

	for _, p := range pairs {
		ab := Ratio(p[0], p[1])
		ba := Ratio(p[1], p[0])
		if math.Abs(ab-ba) > epsilon {
			t.Errorf("Ratio(%q, %q) = %f but reversed = %f", p[0], p[1], ab, ba)
		}
	}
}

func TestRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"", "x"},
		{"ORD123", "ORD123456789"},
		{"aaaa", "aaab"},
	}

	for _, p := range pairs {
		got := Ratio(p[0], p[1])
		if got < 0.0 || got > 1.0 {
			t.Errorf("Ratio(%q, %q) = %f out of [0, 1]", p[0], p[1], got)
		}
	}
}

func TestLevenshteinScore(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical",
			a:    "ORD123",
			b:    "ORD123",
			want: 1.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 1.0,
		},
		{
			name: "classic distance three",
			a:    "kitten",
			b:    "sitting",
			want: 1.0 - 3.0/7.0,
		},
		{
			name: "single substitution",
			a:    "ORD123",
			b:    "ORD124",
			want: 1.0 - 1.0/6.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := levenshteinScore(tt.a, tt.b)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("levenshteinScore(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNewScorer(t *testing.T) {
	if got := NewScorer(AlgorithmLevenshtein).Score("ORD123", "ORD124"); math.Abs(got-(1.0-1.0/6.0)) > epsilon {
		t.Errorf("levenshtein scorer = %f", got)
	}
	if got := NewScorer(AlgorithmRatio).Score("ORD123", "ORD124"); math.Abs(got-10.0/12.0) > epsilon {
		t.Errorf("ratio scorer = %f", got)
	}

	// Unknown algorithms fall back to the ratio backend.
	if got := NewScorer("bogus").Score("ORD123", "ORD124"); math.Abs(got-10.0/12.0) > epsilon {
		t.Errorf("fallback scorer = %f", got)
	}
}

func TestAlgorithmIsValid(t *testing.T) {
	if !AlgorithmRatio.IsValid() || !AlgorithmLevenshtein.IsValid() {
		t.Error("expected built-in algorithms to be valid")
	}
	if Algorithm("bogus").IsValid() {
		t.Error("expected unknown algorithm to be invalid")
	}
}
