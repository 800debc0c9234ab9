package library

// similarityRatio is a Ratcliff/Obershelp sequence ratio in [0, 1]: twice
// the number of matching characters over the combined length. Matching
// characters are counted by taking the longest common substring and
// recursing on the unmatched pieces either side of it, so transposed words
// and small typos still score high.
func similarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matched := matchingChars(a, b)
	return 2 * float64(matched) / float64(len(a)+len(b))
}

func matchingChars(a, b string) int {
	ai, bi, size := longestCommonRun(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingChars(a[:ai], b[:bi])
	total += matchingChars(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonRun finds the longest common substring of a and b, preferring
// the earliest position in a (then b) on ties. Two-row dynamic programming;
// inputs here are short cleaned titles, so the quadratic cost is irrelevant.
func longestCommonRun(a, b string) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				curr[j] = 0
				continue
			}
			run := prev[j-1] + 1
			curr[j] = run
			if run > size {
				size = run
				ai = i - run
				bi = j - run
			}
		}
		prev, curr = curr, prev
	}
	return ai, bi, size
}
