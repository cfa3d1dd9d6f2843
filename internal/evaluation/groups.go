package evaluation

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lueurxax/catwalk/internal/core/domain"
	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const yamlIntTag = "!!int"

// Thresholds lists the cutoffs a metric group is evaluated at.
type Thresholds struct {
	Percentiles []float64 `yaml:"percentiles" validate:"dive,gt=0,lte=100"`
	TopN        []int     `yaml:"top_n" validate:"dive,gt=0"`

	wholePercentiles []bool
}

// UnmarshalYAML records which percentiles were written as integers.
func (t *Thresholds) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Percentiles []yaml.Node `yaml:"percentiles"`
		TopN        []int       `yaml:"top_n"`
	}

	if err := node.Decode(&raw); err != nil {
		return err
	}

	t.Percentiles, t.wholePercentiles = nil, nil

	for i := range raw.Percentiles {
		n := &raw.Percentiles[i]

		var pct float64
		if err := n.Decode(&pct); err != nil {
			return fmt.Errorf("%w: line %d: percentile %q: %w", apperrors.ErrInvalidConfig, n.Line, n.Value, err)
		}

		t.Percentiles = append(t.Percentiles, pct)
		t.wholePercentiles = append(t.wholePercentiles, n.ShortTag() == yamlIntTag)
	}

	t.TopN = raw.TopN

	return nil
}

// List returns the configured cutoffs, percentiles first.
func (t Thresholds) List() []domain.Threshold {
	thresholds := make([]domain.Threshold, 0, len(t.Percentiles)+len(t.TopN))

	for i, pct := range t.Percentiles {
		if i < len(t.wholePercentiles) && t.wholePercentiles[i] {
			thresholds = append(thresholds, domain.WholePercentileThreshold(int(pct)))

			continue
		}

		thresholds = append(thresholds, domain.PercentileThreshold(pct))
	}

	for _, n := range t.TopN {
		thresholds = append(thresholds, domain.TopNThreshold(n))
	}

	return thresholds
}

// MetricGroup is a set of metrics evaluated with the same parameter
// combinations and thresholds. A nil Thresholds means the group is scored on
// the full population.
type MetricGroup struct {
	Metrics    []string        `yaml:"metrics" validate:"required,min=1,dive,required"`
	Parameters []domain.Params `yaml:"parameters"`
	Thresholds *Thresholds     `yaml:"thresholds"`
}

// ParameterCombinations returns the configured parameters, or a single empty
// combination when none are configured.
func (g MetricGroup) ParameterCombinations() []domain.Params {
	if len(g.Parameters) == 0 {
		return []domain.Params{{}}
	}

	return g.Parameters
}

// UnmarshalYAML keeps parameter keys in document order.
func (g *MetricGroup) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Metrics    []string    `yaml:"metrics"`
		Parameters []yaml.Node `yaml:"parameters"`
		Thresholds *Thresholds `yaml:"thresholds"`
	}

	if err := node.Decode(&raw); err != nil {
		return err
	}

	params := make([]domain.Params, 0, len(raw.Parameters))

	for i := range raw.Parameters {
		p, err := decodeParams(&raw.Parameters[i])
		if err != nil {
			return err
		}

		params = append(params, p)
	}

	g.Metrics = raw.Metrics
	g.Parameters = params
	g.Thresholds = raw.Thresholds

	return nil
}

func decodeParams(node *yaml.Node) (domain.Params, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: parameters entry must be a mapping", apperrors.ErrInvalidConfig, node.Line)
	}

	params := make(domain.Params, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("decode parameter %q: %w", node.Content[i].Value, err)
		}

		params = append(params, domain.Param{Key: node.Content[i].Value, Value: value})
	}

	return params, nil
}

// GroupConfig holds the metric groups for each matrix kind.
type GroupConfig struct {
	Test  []MetricGroup `yaml:"metric_groups" validate:"dive"`
	Train []MetricGroup `yaml:"training_metric_groups" validate:"dive"`
}

// For returns the groups configured for kind.
func (c GroupConfig) For(kind domain.MatrixKind) ([]MetricGroup, error) {
	switch kind {
	case domain.MatrixTrain:
		return c.Train, nil
	case domain.MatrixTest:
		return c.Test, nil
	default:
		return nil, fmt.Errorf("metric set %s unrecognized: %w", kind, apperrors.ErrUnknownMatrixType)
	}
}

// MetricNames returns every metric name referenced by either matrix kind.
func (c GroupConfig) MetricNames() []string {
	seen := make(map[string]struct{})

	var names []string

	for _, groups := range [][]MetricGroup{c.Test, c.Train} {
		for _, g := range groups {
			for _, name := range g.Metrics {
				if _, ok := seen[name]; ok {
					continue
				}

				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}

	return names
}

// Validate checks the structural constraints of every group.
func (c GroupConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: metric groups: %w", apperrors.ErrInvalidConfig, err)
	}

	return nil
}

// ParseGroupConfig decodes and validates a YAML metric-group document.
func ParseGroupConfig(data []byte) (GroupConfig, error) {
	var cfg GroupConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GroupConfig{}, fmt.Errorf("%w: parse metric groups: %w", apperrors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return GroupConfig{}, err
	}

	return cfg, nil
}

// LoadGroupConfig reads metric groups from a YAML file.
func LoadGroupConfig(path string) (GroupConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GroupConfig{}, fmt.Errorf("read metric groups: %w", err)
	}

	return ParseGroupConfig(data)
}
