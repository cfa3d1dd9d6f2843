// Package metrics provides the scoring functions used to evaluate binary
// classifiers and the registry that maps metric names to them.
//
// Every scoring function receives the continuous scores (nil when only binary
// predictions are available), the binary predictions, the ground-truth labels
// and a parameter combination. Positions whose label is NaN are ignored.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/lueurxax/catwalk/internal/core/domain"
	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

// Func scores one prediction set. It must be pure.
type Func func(scores, predictions, labels []float64, params domain.Params) (float64, error)

// Built-in metric names.
const (
	Precision        = "precision@"
	Recall           = "recall@"
	FBeta            = "fbeta@"
	F1               = "f1"
	Accuracy         = "accuracy"
	ROCAUC           = "roc_auc"
	AveragePrecision = "average precision score"
	TruePositives    = "true positives@"
	TrueNegatives    = "true negatives@"
	FalsePositives   = "false positives@"
	FalseNegatives   = "false negatives@"
	FPR              = "fpr@"
)

// BetaParam is the parameter key read by fbeta@.
const BetaParam = "beta"

type confusion struct {
	tp, fp, tn, fn float64
}

func (c confusion) total() float64 {
	return c.tp + c.fp + c.tn + c.fn
}

func confusionMatrix(predictions, labels []float64) confusion {
	var c confusion

	for i, label := range labels {
		if math.IsNaN(label) {
			continue
		}

		predicted := predictions[i] == 1
		actual := label == 1

		switch {
		case predicted && actual:
			c.tp++
		case predicted && !actual:
			c.fp++
		case !predicted && actual:
			c.fn++
		default:
			c.tn++
		}
	}

	return c
}

// ratio returns 0 when the denominator is empty, matching the zero-division
// convention used for precision and recall.
func ratio(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}

	return num / denom
}

func precision(_, predictions, labels []float64, _ domain.Params) (float64, error) {
	c := confusionMatrix(predictions, labels)
	return ratio(c.tp, c.tp+c.fp), nil
}

func recall(_, predictions, labels []float64, _ domain.Params) (float64, error) {
	c := confusionMatrix(predictions, labels)
	return ratio(c.tp, c.tp+c.fn), nil
}

func fbetaScore(c confusion, beta float64) float64 {
	p := ratio(c.tp, c.tp+c.fp)
	r := ratio(c.tp, c.tp+c.fn)
	b2 := beta * beta

	return ratio((1+b2)*p*r, b2*p+r)
}

func fbeta(_, predictions, labels []float64, params domain.Params) (float64, error) {
	beta, ok := params.Float(BetaParam)
	if !ok {
		return 0, fmt.Errorf("%s requires a numeric %q parameter: %w", FBeta, BetaParam, apperrors.ErrInvalidConfig)
	}

	return fbetaScore(confusionMatrix(predictions, labels), beta), nil
}

func f1(_, predictions, labels []float64, _ domain.Params) (float64, error) {
	return fbetaScore(confusionMatrix(predictions, labels), 1), nil
}

func accuracy(_, predictions, labels []float64, _ domain.Params) (float64, error) {
	c := confusionMatrix(predictions, labels)
	return ratio(c.tp+c.tn, c.total()), nil
}

func truePositives(_, predictions, labels []float64, _ domain.Params) (float64, error) {
	return confusionMatrix(predictions, labels).tp, nil
}

func trueNegatives(_, predictions, labels []float64, _ domain.Params) (float64, error) {
	return confusionMatrix(predictions, labels).tn, nil
}

func falsePositives(_, predictions, labels []float64, _ domain.Params) (float64, error) {
	return confusionMatrix(predictions, labels).fp, nil
}

func falseNegatives(_, predictions, labels []float64, _ domain.Params) (float64, error) {
	return confusionMatrix(predictions, labels).fn, nil
}

func fpr(_, predictions, labels []float64, _ domain.Params) (float64, error) {
	c := confusionMatrix(predictions, labels)
	return ratio(c.fp, c.fp+c.tn), nil
}

// labeledScores returns scores and classes for positions with a known label,
// sorted by ascending score.
func labeledScores(name string, scores, labels []float64) ([]float64, []bool, error) {
	if scores == nil {
		return nil, nil, fmt.Errorf("%s needs continuous scores: %w", name, apperrors.ErrUndefinedMetric)
	}

	y := make([]float64, 0, len(labels))
	classes := make([]bool, 0, len(labels))

	for i, label := range labels {
		if math.IsNaN(label) {
			continue
		}

		y = append(y, scores[i])
		classes = append(classes, label == 1)
	}

	stat.SortWeightedLabeled(y, classes, nil)

	return y, classes, nil
}

func countTrue(classes []bool) int {
	n := 0
	for _, c := range classes {
		if c {
			n++
		}
	}

	return n
}

func rocAUC(scores, _, labels []float64, _ domain.Params) (float64, error) {
	y, classes, err := labeledScores(ROCAUC, scores, labels)
	if err != nil {
		return 0, err
	}

	positives := countTrue(classes)
	if positives == 0 || positives == len(classes) {
		return 0, fmt.Errorf("%s with a single class present: %w", ROCAUC, apperrors.ErrUndefinedMetric)
	}

	tpr, falsePositiveRate, _ := stat.ROC(nil, y, classes, nil)

	return integrate.Trapezoidal(falsePositiveRate, tpr), nil
}

// averagePrecision sums precision at each distinct score cutoff weighted by
// the recall gained at that cutoff.
func averagePrecision(scores, _, labels []float64, _ domain.Params) (float64, error) {
	y, classes, err := labeledScores(AveragePrecision, scores, labels)
	if err != nil {
		return 0, err
	}

	positives := float64(countTrue(classes))
	if positives == 0 {
		return 0, fmt.Errorf("%s without positive labels: %w", AveragePrecision, apperrors.ErrUndefinedMetric)
	}

	// Walk from the highest score down, closing a step at each distinct value.
	var (
		tp, seen, prevRecall float64
		steps                []float64
	)

	for i := len(y) - 1; i >= 0; i-- {
		seen++

		if classes[i] {
			tp++
		}

		if i > 0 && y[i-1] == y[i] {
			continue
		}

		rec := tp / positives
		steps = append(steps, (rec-prevRecall)*(tp/seen))
		prevRecall = rec
	}

	return floats.Sum(steps), nil
}

func builtins() []Metric {
	return []Metric{
		{Name: Precision, Func: precision, GreaterIsBetter: true},
		{Name: Recall, Func: recall, GreaterIsBetter: true},
		{Name: FBeta, Func: fbeta, GreaterIsBetter: true},
		{Name: F1, Func: f1, GreaterIsBetter: true},
		{Name: Accuracy, Func: accuracy, GreaterIsBetter: true},
		{Name: ROCAUC, Func: rocAUC, GreaterIsBetter: true},
		{Name: AveragePrecision, Func: averagePrecision, GreaterIsBetter: true},
		{Name: TruePositives, Func: truePositives, GreaterIsBetter: true},
		{Name: TrueNegatives, Func: trueNegatives, GreaterIsBetter: true},
		{Name: FalsePositives, Func: falsePositives, GreaterIsBetter: false},
		{Name: FalseNegatives, Func: falseNegatives, GreaterIsBetter: false},
		{Name: FPR, Func: fpr, GreaterIsBetter: false},
	}
}

func sortedNames(m map[string]Metric) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
