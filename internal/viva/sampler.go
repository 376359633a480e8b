package viva

import (
	"math"
	"sort"

	"github.com/labworks/labviva-backend/internal/model"
)

// DefaultSampleSize is the maximum number of questions shown in one attempt.
const DefaultSampleSize = 10

// Sample deterministically selects up to maxCount questions from the bank
// for one student. Selection is randomized per student, but the returned
// questions always keep their original bank order, so a reload or a later
// replay shows exactly the same paper.
//
// Banks at or below maxCount are returned unchanged. Larger banks are
// shuffled with a seeded generator (seed derived from studentKey), then the
// first maxCount shuffled indices are re-sorted ascending and mapped back.
func Sample(bank []model.VivaQuestion, studentKey string, maxCount int) []model.VivaQuestion {
	if maxCount <= 0 {
		maxCount = DefaultSampleSize
	}
	if len(bank) <= maxCount {
		return bank
	}

	seed := seedFrom(studentKey)

	indices := make([]int, len(bank))
	for i := range indices {
		indices[i] = i
	}

	// Fisher-Yates from the end, re-seeded per step so the permutation is a
	// pure function of (bank length, studentKey).
	for i := len(indices) - 1; i > 0; i-- {
		j := int(seededRand(seed+i) * float64(i+1))
		indices[i], indices[j] = indices[j], indices[i]
	}

	picked := indices[:maxCount]
	sort.Ints(picked)

	selected := make([]model.VivaQuestion, maxCount)
	for i, idx := range picked {
		selected[i] = bank[idx]
	}
	return selected
}

// seedFrom sums the character codes of the student key. Faculty rely on the
// observed reproducibility of this derivation, so it must not change.
func seedFrom(studentKey string) int {
	sum := 0
	for _, r := range studentKey {
		sum += int(r)
	}
	return sum
}

// seededRand maps an integer seed to [0,1) via the fractional part of a
// scaled sine. Statistically weak, but stable across platforms, which is
// the property that matters here.
func seededRand(seed int) float64 {
	x := math.Sin(float64(seed)) * 10000
	return x - math.Floor(x)
}
