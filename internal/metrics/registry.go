package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

// Metric is a registered scoring function and its optimization direction.
type Metric struct {
	Name            string
	Func            Func
	GreaterIsBetter bool
}

// CustomMetric is a caller-supplied scoring function. GreaterIsBetter must be
// set: registration fails when the direction is left undeclared.
type CustomMetric struct {
	Func            Func
	GreaterIsBetter *bool
}

// Direction is a helper for declaring CustomMetric.GreaterIsBetter inline.
func Direction(greaterIsBetter bool) *bool {
	return &greaterIsBetter
}

// Registry maps metric names to scoring functions. Each evaluator owns its
// registry; configure it before evaluation starts and only read it afterwards.
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
}

// NewRegistry creates a registry holding the built-in metrics.
func NewRegistry() *Registry {
	r := &Registry{metrics: make(map[string]Metric)}

	for _, m := range builtins() {
		r.metrics[m.Name] = m
	}

	return r
}

// NewRegistryWithCustom creates a registry holding the built-in metrics and the
// given custom metrics. Custom metrics override built-ins of the same name.
func NewRegistryWithCustom(custom map[string]CustomMetric) (*Registry, error) {
	r := NewRegistry()

	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}

	// Sorted so the first reported failure does not depend on map order.
	sort.Strings(names)

	for _, name := range names {
		if err := r.RegisterCustom(name, custom[name]); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds or replaces a metric with a declared direction.
func (r *Registry) Register(name string, fn Func, greaterIsBetter bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", apperrors.ErrInvalidCustomMetric)
	}

	if fn == nil {
		return fmt.Errorf("%w: %s has no scoring function", apperrors.ErrInvalidCustomMetric, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics[name] = Metric{Name: name, Func: fn, GreaterIsBetter: greaterIsBetter}

	return nil
}

// RegisterCustom validates and adds a caller-supplied metric.
func (r *Registry) RegisterCustom(name string, m CustomMetric) error {
	if m.GreaterIsBetter == nil {
		return fmt.Errorf("%w: custom metric %s missing greater_is_better", apperrors.ErrInvalidCustomMetric, name)
	}

	return r.Register(name, m.Func, *m.GreaterIsBetter)
}

// Lookup returns the metric registered under name.
func (r *Registry) Lookup(name string) (Metric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.metrics[name]
	if !ok {
		return Metric{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownMetric, name)
	}

	return m, nil
}

// Names returns the registered metric names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedNames(r.metrics)
}

// Check returns ErrUnknownMetric for the first name that is not registered.
func (r *Registry) Check(names []string) error {
	for _, name := range names {
		if _, err := r.Lookup(name); err != nil {
			return err
		}
	}

	return nil
}
