package evaluation

import (
	"math"

	"github.com/lueurxax/catwalk/internal/core/domain"
)

// GenerateBinaryAt marks the first cutoff positions of n ranked rows with 1
// and the rest with 0. The rows must already be sorted by descending score.
func GenerateBinaryAt(n int, threshold domain.Threshold) []float64 {
	cutoff := threshold.CutoffIndex(n)

	binary := make([]float64, n)
	for i := 0; i < cutoff; i++ {
		binary[i] = 1
	}

	return binary
}

// dropMissingLabels removes positions whose label is NaN from both sequences.
func dropMissingLabels(predictions, labels []float64) ([]float64, []float64) {
	keptPredictions := make([]float64, 0, len(labels))
	keptLabels := make([]float64, 0, len(labels))

	for i, label := range labels {
		if math.IsNaN(label) || math.IsInf(label, 0) {
			continue
		}

		keptPredictions = append(keptPredictions, predictions[i])
		keptLabels = append(keptLabels, label)
	}

	return keptPredictions, keptLabels
}
