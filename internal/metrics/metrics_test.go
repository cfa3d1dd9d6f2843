package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/catwalk/internal/core/domain"
	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

const delta = 1e-9

func TestBinaryMetrics(t *testing.T) {
	predictions := []float64{1, 1, 1, 0}
	labels := []float64{1, 0, 0, 0}

	tests := []struct {
		name   string
		params domain.Params
		want   float64
	}{
		{name: Precision, want: 1.0 / 3},
		{name: Recall, want: 1},
		{name: F1, want: 0.5},
		{name: FBeta, params: domain.Params{{Key: BetaParam, Value: 0.5}}, want: (1.25 * (1.0 / 3)) / (0.25/3 + 1)},
		{name: Accuracy, want: 0.5},
		{name: TruePositives, want: 1},
		{name: TrueNegatives, want: 1},
		{name: FalsePositives, want: 2},
		{name: FalseNegatives, want: 0},
		{name: FPR, want: 2.0 / 3},
	}

	registry := NewRegistry()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := registry.Lookup(tt.name)
			require.NoError(t, err)

			got, err := m.Func(nil, predictions, labels, tt.params)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, delta)
		})
	}
}

func TestBinaryMetrics_ZeroDivision(t *testing.T) {
	predictions := []float64{0, 0}
	labels := []float64{0, 0}

	for _, fn := range []Func{precision, recall, f1} {
		got, err := fn(nil, predictions, labels, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	}

	got, err := accuracy(nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestBinaryMetrics_SkipMissingLabels(t *testing.T) {
	got, err := recall(nil, []float64{1, 0}, []float64{math.NaN(), 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	tn, err := trueNegatives(nil, []float64{0, 0}, []float64{math.NaN(), 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, tn)
}

func TestFBeta_RequiresBeta(t *testing.T) {
	_, err := fbeta(nil, []float64{1}, []float64{1}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	_, err = fbeta(nil, []float64{1}, []float64{1}, domain.Params{{Key: BetaParam, Value: "high"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestRankingMetrics(t *testing.T) {
	scores := []float64{0.1, 0.4, 0.35, 0.8}
	labels := []float64{0, 0, 1, 1}

	auc, err := rocAUC(scores, nil, labels, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, auc, delta)

	ap, err := averagePrecision(scores, nil, labels, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.8333333333, ap, 1e-6)
}

func TestRankingMetrics_PerfectRanking(t *testing.T) {
	scores := []float64{0.9, 0.8, 0.2, 0.1}
	labels := []float64{1, 1, 0, 0}

	auc, err := rocAUC(scores, nil, labels, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, auc, delta)

	ap, err := averagePrecision(scores, nil, labels, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ap, delta)
}

func TestRankingMetrics_Undefined(t *testing.T) {
	tests := []struct {
		name   string
		fn     Func
		scores []float64
		labels []float64
	}{
		{name: "auc without scores", fn: rocAUC, scores: nil, labels: []float64{0, 1}},
		{name: "auc single class", fn: rocAUC, scores: []float64{0.2, 0.9}, labels: []float64{1, 1}},
		{name: "auc only missing labels", fn: rocAUC, scores: []float64{0.2, 0.9}, labels: []float64{math.NaN(), math.NaN()}},
		{name: "ap without positives", fn: averagePrecision, scores: []float64{0.2, 0.9}, labels: []float64{0, 0}},
		{name: "ap without scores", fn: averagePrecision, scores: nil, labels: []float64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn(tt.scores, []float64{1, 0}, tt.labels, nil)
			assert.ErrorIs(t, err, apperrors.ErrUndefinedMetric)
		})
	}
}

func TestBuiltinDirections(t *testing.T) {
	registry := NewRegistry()

	lowerIsBetter := map[string]bool{FalsePositives: true, FalseNegatives: true, FPR: true}

	for _, name := range registry.Names() {
		m, err := registry.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, !lowerIsBetter[name], m.GreaterIsBetter, name)
	}
}
