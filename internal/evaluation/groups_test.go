package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/catwalk/internal/core/domain"
	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

const testGroupsYAML = `
metric_groups:
  - metrics: [precision@, recall@]
    thresholds:
      percentiles: [5.0, 50]
      top_n: [2]
  - metrics: [fbeta@]
    parameters:
      - beta: 0.75
      - beta: 1.25
    thresholds:
      percentiles: [5.0]
  - metrics: [roc_auc]
training_metric_groups:
  - metrics: [accuracy]
`

func TestParseGroupConfig(t *testing.T) {
	cfg, err := ParseGroupConfig([]byte(testGroupsYAML))
	require.NoError(t, err)

	test, err := cfg.For(domain.MatrixTest)
	require.NoError(t, err)
	require.Len(t, test, 3)

	assert.Equal(t, []float64{5, 50}, test[0].Thresholds.Percentiles)
	assert.Equal(t, []int{2}, test[0].Thresholds.TopN)

	var identifiers []string
	for _, threshold := range test[0].Thresholds.List() {
		identifiers = append(identifiers, threshold.Params().String())
	}

	assert.Equal(t, []string{"5.0_pct", "50_pct", "2_abs"}, identifiers)
	assert.Equal(t, []domain.Params{{}}, test[0].ParameterCombinations())

	require.Len(t, test[1].Parameters, 2)
	assert.Equal(t, "0.75_beta", test[1].Parameters[0].String())
	assert.Nil(t, test[2].Thresholds)

	train, err := cfg.For(domain.MatrixTrain)
	require.NoError(t, err)
	assert.Len(t, train, 1)

	_, err = cfg.For(domain.MatrixUnknown)
	assert.ErrorIs(t, err, apperrors.ErrUnknownMatrixType)

	assert.Equal(t, []string{"precision@", "recall@", "fbeta@", "roc_auc", "accuracy"}, cfg.MetricNames())
}

func TestParseGroupConfig_KeepsParameterOrder(t *testing.T) {
	cfg, err := ParseGroupConfig([]byte(`
metric_groups:
  - metrics: [custom]
    parameters:
      - zeta: 1
        alpha: 0.5
        normalize: true
`))
	require.NoError(t, err)

	assert.Equal(t, "1_zeta/0.5_alpha/True_normalize", cfg.Test[0].Parameters[0].String())
}

func TestParseGroupConfig_NumericIdentifiers(t *testing.T) {
	cfg, err := ParseGroupConfig([]byte(`
metric_groups:
  - metrics: [fbeta@]
    parameters:
      - beta: 0.00001
      - beta: 2
    thresholds:
      percentiles: [50, 12.5]
`))
	require.NoError(t, err)

	group := cfg.Test[0]
	assert.Equal(t, "1e-05_beta", group.Parameters[0].String())
	assert.Equal(t, "2_beta", group.Parameters[1].String())

	thresholds := group.Thresholds.List()
	require.Len(t, thresholds, 2)
	assert.Equal(t, "50_pct", thresholds[0].Params().String())
	assert.Equal(t, "12.5_pct", thresholds[1].Params().String())
	assert.Equal(t, []float64{50, 12.5}, group.Thresholds.Percentiles)
}

func TestThresholdsList_Programmatic(t *testing.T) {
	thresholds := Thresholds{Percentiles: []float64{5}, TopN: []int{3}}.List()

	require.Len(t, thresholds, 2)
	assert.Equal(t, "5.0_pct", thresholds[0].Params().String())
	assert.Equal(t, "3_abs", thresholds[1].Params().String())
}

func TestParseGroupConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "no metrics", doc: "metric_groups:\n  - thresholds: {top_n: [1]}"},
		{name: "empty metric name", doc: "metric_groups:\n  - metrics: ['']"},
		{name: "percentile above 100", doc: "metric_groups:\n  - metrics: [f1]\n    thresholds: {percentiles: [101]}"},
		{name: "zero percentile", doc: "metric_groups:\n  - metrics: [f1]\n    thresholds: {percentiles: [0]}"},
		{name: "non-positive top n", doc: "metric_groups:\n  - metrics: [f1]\n    thresholds: {top_n: [0]}"},
		{name: "parameters not a mapping", doc: "metric_groups:\n  - metrics: [f1]\n    parameters: [3]"},
		{name: "malformed", doc: "metric_groups: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGroupConfig([]byte(tt.doc))
			assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
		})
	}
}

func TestLoadGroupConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testGroupsYAML), 0o600))

	cfg, err := LoadGroupConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Test, 3)

	_, err = LoadGroupConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
