package library

import (
	"fmt"
	"math"
	"testing"
)

func matrixLibrary() *Library {
	lib := NewLibrary()
	lib.Add("Matrix 1999", "/m/Matrix.1999.mkv")
	lib.Add("Matrix Reloaded 2003", "/m/Matrix.Reloaded.2003.mp4")
	return lib
}

func TestSearchExactSubstringTier(t *testing.T) {
	matches := Search(matrixLibrary(), "matrix", 20, "")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	for i, match := range matches {
		if match.Score != 1.0 {
			t.Errorf("match %d score = %v, want 1.0", i, match.Score)
		}
	}
	// Ties keep library iteration order.
	if matches[0].DisplayName != "Matrix 1999" || matches[1].DisplayName != "Matrix Reloaded 2003" {
		t.Errorf("unexpected tie-break order: %q, %q", matches[0].DisplayName, matches[1].DisplayName)
	}
}

func TestSearchAllKeywordsTier(t *testing.T) {
	matches := Search(matrixLibrary(), "reloaded matrix", 20, "")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].DisplayName != "Matrix Reloaded 2003" {
		t.Fatalf("unexpected match: %q", matches[0].DisplayName)
	}
	if matches[0].Score != 0.9 {
		t.Fatalf("score = %v, want 0.9", matches[0].Score)
	}
}

func TestSearchSimilarityTier(t *testing.T) {
	lib := NewLibrary()
	lib.Add("terminator 2 1991", "/m/Terminator.2.1991.mkv")

	matches := Search(lib, "termnator 2 1991", 20, "")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	want := 32.0 / 33.0
	if math.Abs(matches[0].Score-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", matches[0].Score, want)
	}
}

func TestSearchPartialOverlapTier(t *testing.T) {
	lib := NewLibrary()
	lib.Add("Matrix 1999", "/m/Matrix.1999.mkv")

	matches := Search(lib, "matrix revolutions", 20, "")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if math.Abs(matches[0].Score-0.25) > 1e-9 {
		t.Fatalf("score = %v, want 0.25", matches[0].Score)
	}
}

func TestSearchExcludesZeroScores(t *testing.T) {
	lib := matrixLibrary()
	lib.Add("Totally Unrelated", "/m/Totally.Unrelated.avi")

	matches := Search(lib, "matrix", 20, "")
	for _, match := range matches {
		if match.DisplayName == "Totally Unrelated" {
			t.Fatal("zero-score entry leaked into results")
		}
	}
}

func TestSearchEmptyQueryListsInOrder(t *testing.T) {
	lib := NewLibrary()
	for i := 0; i < 8; i++ {
		lib.Add(fmt.Sprintf("Movie %02d", i), fmt.Sprintf("/m/movie%02d.mkv", i))
	}

	matches := Search(lib, "", 5, "")
	if len(matches) != 5 {
		t.Fatalf("expected limit of 5, got %d", len(matches))
	}
	for i, match := range matches {
		if match.Score != 1.0 {
			t.Errorf("match %d score = %v, want 1.0", i, match.Score)
		}
		if want := fmt.Sprintf("Movie %02d", i); match.DisplayName != want {
			t.Errorf("match %d = %q, want %q", i, match.DisplayName, want)
		}
	}
}

func TestSearchFormatHintBoost(t *testing.T) {
	lib := NewLibrary()
	lib.Add("Matrix Reloaded 2003", "/m/Matrix.Reloaded.2003.mkv")
	lib.Add("Matrix Reloaded Copy 2003", "/m/Matrix.Reloaded.Copy.2003.mp4")

	matches := Search(lib, "reloaded matrix", 20, "mkv")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].DisplayName != "Matrix Reloaded 2003" {
		t.Fatalf("expected boosted mkv entry first, got %q", matches[0].DisplayName)
	}
	if want := 0.9 * 1.1; math.Abs(matches[0].Score-want) > 1e-9 {
		t.Fatalf("boosted score = %v, want %v", matches[0].Score, want)
	}
	if matches[1].Score != 0.9 {
		t.Fatalf("unboosted score = %v, want 0.9", matches[1].Score)
	}
}

func TestSearchBoostCappedAtOne(t *testing.T) {
	matches := Search(matrixLibrary(), "matrix", 20, "mkv")
	for _, match := range matches {
		if match.Score > 1.0 {
			t.Fatalf("score %v exceeds 1.0 for %q", match.Score, match.DisplayName)
		}
	}
}

func TestSearchBoostNeverResurrectsZero(t *testing.T) {
	lib := NewLibrary()
	lib.Add("Unrelated Film", "/m/Unrelated.Film.mkv")

	if matches := Search(lib, "zzzzqqqq", 20, "mkv"); len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	lib := NewLibrary()
	for i := 0; i < 50; i++ {
		lib.Add(fmt.Sprintf("Matrix Part %02d", i), fmt.Sprintf("/m/matrix%02d.mkv", i))
	}

	if matches := Search(lib, "matrix", 7, ""); len(matches) != 7 {
		t.Fatalf("expected 7 matches, got %d", len(matches))
	}
	if matches := Search(lib, "", 3, ""); len(matches) != 3 {
		t.Fatalf("expected 3 matches for empty query, got %d", len(matches))
	}
}

func TestSearchScoreMonotonicity(t *testing.T) {
	lib := NewLibrary()
	lib.Add("inception 2010", "/m/Inception.2010.mkv")
	lib.Add("inceptoin 2010", "/m/Inceptoin.2010.mkv")

	matches := Search(lib, "inception", 20, "")
	if len(matches) < 1 {
		t.Fatal("expected at least the exact match")
	}
	if matches[0].DisplayName != "inception 2010" {
		t.Fatalf("exact substring match must rank first, got %q", matches[0].DisplayName)
	}
	for _, match := range matches[1:] {
		if match.Score > matches[0].Score {
			t.Fatalf("fuzzy match %q outranks exact match", match.DisplayName)
		}
	}
}

func TestSearchNilAndZeroLimit(t *testing.T) {
	if matches := Search(nil, "matrix", 5, ""); matches != nil {
		t.Fatalf("expected nil for nil library, got %v", matches)
	}
	if matches := Search(matrixLibrary(), "matrix", 0, ""); matches != nil {
		t.Fatalf("expected nil for zero limit, got %v", matches)
	}
}
