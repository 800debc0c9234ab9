package library

import (
	"math"
	"testing"
)

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "matrix", "matrix", 1.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"shifted overlap", "abcd", "bcde", 0.75},
		{"dropped letter", "terminator", "terminatr", 18.0 / 19.0},
		{"both empty", "", "", 1.0},
		{"one empty", "", "abc", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarityRatio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("similarityRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityRatioSymmetricEnough(t *testing.T) {
	// The recursion anchors on the longest common run, so swapping the
	// arguments must not change the count of matched characters.
	a, b := "the matrix reloaded", "matrix reloaded 2003"
	if got, rev := similarityRatio(a, b), similarityRatio(b, a); math.Abs(got-rev) > 1e-9 {
		t.Errorf("ratio not symmetric: %v vs %v", got, rev)
	}
}

func TestLongestCommonRunPrefersEarliestPosition(t *testing.T) {
	// "ab" occurs twice in each string; the first occurrence pair must win.
	ai, bi, size := longestCommonRun("abxab", "abyab")
	if size != 2 || ai != 0 || bi != 0 {
		t.Errorf("longestCommonRun = (%d, %d, %d), want (0, 0, 2)", ai, bi, size)
	}
}
