package evaluation

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

type rankedRow struct {
	score    float64
	label    float64
	tiebreak float64
}

// SortPredictionsAndLabels co-sorts scores and labels by descending score.
// Equal scores are ordered by a pseudo-random key drawn from seed, so the
// same (scores, labels, seed) always yields the same ranking. NaN scores rank last.
func SortPredictionsAndLabels(scores, labels []float64, seed int64) ([]float64, []float64, error) {
	if len(scores) != len(labels) {
		return nil, nil, fmt.Errorf("%w: %d scores, %d labels", apperrors.ErrLengthMismatch, len(scores), len(labels))
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed))) //nolint:gosec // reproducible tie-breaking, not security

	rows := make([]rankedRow, len(scores))
	for i := range scores {
		rows[i] = rankedRow{score: scores[i], label: labels[i], tiebreak: rng.Float64()}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rankKey(rows[i].score), rankKey(rows[j].score)
		if a != b {
			return a > b
		}

		return rows[i].tiebreak > rows[j].tiebreak
	})

	sortedScores := make([]float64, len(rows))
	sortedLabels := make([]float64, len(rows))

	for i, row := range rows {
		sortedScores[i] = row.score
		sortedLabels[i] = row.label
	}

	return sortedScores, sortedLabels, nil
}

func rankKey(score float64) float64 {
	if math.IsNaN(score) {
		return math.Inf(-1)
	}

	return score
}
