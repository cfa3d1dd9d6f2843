package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"

	"github.com/lueurxax/catwalk/internal/core/domain"
)

func TestGenerateBinaryAt(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		threshold domain.Threshold
		want      []float64
	}{
		{name: "top 2 of 4", n: 4, threshold: domain.TopNThreshold(2), want: []float64{1, 1, 0, 0}},
		{name: "50 percent of 4", n: 4, threshold: domain.PercentileThreshold(50), want: []float64{1, 1, 0, 0}},
		{name: "50 percent of 5 floors", n: 5, threshold: domain.PercentileThreshold(50), want: []float64{1, 1, 0, 0, 0}},
		{name: "top n past the end", n: 3, threshold: domain.TopNThreshold(9), want: []float64{1, 1, 1}},
		{name: "no threshold", n: 3, threshold: domain.NoThreshold(), want: []float64{1, 1, 1}},
		{name: "empty", n: 0, threshold: domain.TopNThreshold(2), want: []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateBinaryAt(tt.n, tt.threshold))
		})
	}
}

func TestGenerateBinaryAt_Monotonic(t *testing.T) {
	const n = 37

	prev := -1.0

	for pct := 1.0; pct <= 100; pct++ {
		positives := floats.Sum(GenerateBinaryAt(n, domain.PercentileThreshold(pct)))
		assert.GreaterOrEqual(t, positives, prev)

		prev = positives
	}

	assert.Equal(t, float64(n), prev)
}

func TestDropMissingLabels(t *testing.T) {
	predictions := []float64{1, 1, 0, 0}
	labels := []float64{1, math.NaN(), 0, math.Inf(1)}

	keptPredictions, keptLabels := dropMissingLabels(predictions, labels)

	assert.Equal(t, []float64{1, 0}, keptPredictions)
	assert.Equal(t, []float64{1, 0}, keptLabels)
}
