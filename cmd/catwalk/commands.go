package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/lueurxax/catwalk/internal/core/domain"
	"github.com/lueurxax/catwalk/internal/evaluation"
	"github.com/lueurxax/catwalk/internal/metrics"
	"github.com/lueurxax/catwalk/internal/predictions"
)

const (
	flagModelID   = "model-id"
	flagStart     = "start"
	flagEnd       = "end"
	flagFrequency = "frequency"
	flagMatrix    = "matrix"
)

// keyFlags identifies one stored evaluation set.
type keyFlags struct {
	modelID   int64
	start     string
	end       string
	frequency string
	matrix    string
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&k.modelID, flagModelID, 0, "model identifier")
	cmd.Flags().StringVar(&k.start, flagStart, "", "evaluation window start")
	cmd.Flags().StringVar(&k.end, flagEnd, "", "evaluation window end")
	cmd.Flags().StringVar(&k.frequency, flagFrequency, "", "as-of-date frequency, e.g. 1d")
	cmd.Flags().StringVar(&k.matrix, flagMatrix, domain.MatrixTest.String(), "matrix type (Train or Test)")

	for _, name := range []string{flagModelID, flagStart, flagEnd, flagFrequency} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (k *keyFlags) key() (domain.EvaluationKey, error) {
	start, err := parseTime(k.start)
	if err != nil {
		return domain.EvaluationKey{}, fmt.Errorf("--%s: %w", flagStart, err)
	}

	end, err := parseTime(k.end)
	if err != nil {
		return domain.EvaluationKey{}, fmt.Errorf("--%s: %w", flagEnd, err)
	}

	matrix, err := domain.ParseMatrixKind(k.matrix)
	if err != nil {
		return domain.EvaluationKey{}, err
	}

	key := domain.EvaluationKey{
		ModelID:           k.modelID,
		Start:             start,
		End:               end,
		AsOfDateFrequency: k.frequency,
		Matrix:            matrix,
	}

	return key, key.Validate()
}

func parseTime(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}

	return t.UTC(), nil
}

func newMigrateCommand(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply evaluation table migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := rt.openApp(cmd.Context())
			if err != nil {
				return err
			}

			rt.logger.Info().Msg("migrations applied")

			return application.Close()
		},
	}
}

func newEvaluateCommand(rt *cliState) *cobra.Command {
	var (
		keys   keyFlags
		input  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score one prediction set and replace its stored evaluations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := keys.key()
			if err != nil {
				return err
			}

			set, err := predictions.LoadFile(input)
			if err != nil {
				return err
			}

			req := evaluation.Request{
				Scores:            set.Scores,
				Labels:            set.Labels,
				ModelID:           key.ModelID,
				Start:             key.Start,
				End:               key.End,
				AsOfDateFrequency: key.AsOfDateFrequency,
				Matrix:            key.Matrix,
			}

			groups, err := evaluation.LoadGroupConfig(rt.cfg.MetricGroupsPath)
			if err != nil {
				return err
			}

			if dryRun {
				return dryRunEvaluate(cmd.OutOrStdout(), rt, groups, req)
			}

			return runEvaluate(cmd.Context(), rt, groups, req)
		},
	}

	keys.register(cmd)
	cmd.Flags().StringVar(&input, "input", "", "path to a JSONL prediction file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print evaluations instead of writing them")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runEvaluate(ctx context.Context, rt *cliState, groups evaluation.GroupConfig, req evaluation.Request) error {
	application, err := rt.openApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	evaluator, err := application.NewEvaluator(groups, nil)
	if err != nil {
		return err
	}

	return evaluator.Evaluate(ctx, req)
}

// discardWriter accepts evaluations without storing them.
type discardWriter struct{}

func (discardWriter) ReplaceEvaluations(context.Context, domain.EvaluationKey, []domain.Evaluation) error {
	return nil
}

func dryRunEvaluate(w io.Writer, rt *cliState, groups evaluation.GroupConfig, req evaluation.Request) error {
	registry := metrics.NewRegistry()
	if err := registry.Check(groups.MetricNames()); err != nil {
		return err
	}

	evaluator, err := evaluation.NewModelEvaluator(groups, registry, discardWriter{}, evaluation.Options{
		SortSeed: rt.cfg.SortSeed,
		Logger:   &rt.logger,
	})
	if err != nil {
		return err
	}

	evaluations, err := evaluator.Compute(req)
	if err != nil {
		return err
	}

	return printEvaluations(w, evaluations)
}

func newBatchCommand(rt *cliState) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score every unit listed in a manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			manifest, err := LoadManifest(manifestPath)
			if err != nil {
				return err
			}

			requests, err := manifest.Requests(filepath.Dir(manifestPath))
			if err != nil {
				return err
			}

			groups, err := evaluation.LoadGroupConfig(rt.cfg.MetricGroupsPath)
			if err != nil {
				return err
			}

			application, err := rt.openApp(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			evaluator, err := application.NewEvaluator(groups, nil)
			if err != nil {
				return err
			}

			healthCtx, stopHealth := context.WithCancel(ctx)
			defer stopHealth()

			go func() {
				if err := application.StartHealthServer(healthCtx); err != nil {
					rt.logger.Error().Err(err).Msg("health check server error")
				}
			}()

			rt.logger.Info().Int("units", len(requests)).Int("concurrency", rt.cfg.Concurrency).Msg("starting batch")

			return evaluation.RunBatch(ctx, evaluator, requests, rt.cfg.Concurrency)
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "path to a YAML batch manifest")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}

func newShowCommand(rt *cliState) *cobra.Command {
	var keys keyFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List stored evaluations for a model and window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := keys.key()
			if err != nil {
				return err
			}

			application, err := rt.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			evaluations, err := application.Store().ListEvaluations(cmd.Context(), key)
			if err != nil {
				return err
			}

			return printEvaluations(cmd.OutOrStdout(), evaluations)
		},
	}

	keys.register(cmd)

	return cmd
}

func newMetricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "metrics",
		Short:             "List the built-in metrics",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printMetrics(cmd.OutOrStdout(), metrics.NewRegistry())
		},
	}
}

func printEvaluations(w io.Writer, evaluations []domain.Evaluation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "METRIC\tPARAMETER\tVALUE\tLABELED\tABOVE\tPOSITIVE\tSEED")

	for _, ev := range evaluations {
		fmt.Fprintf(tw, "%s\t%s\t%.6g\t%d\t%d\t%d\t%d\n",
			ev.Metric, ev.Parameter, ev.Value,
			ev.NumLabeledExamples, ev.NumLabeledAboveThreshold, ev.NumPositiveLabels, ev.SortSeed)
	}

	return tw.Flush()
}

func printMetrics(w io.Writer, registry *metrics.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "METRIC\tGREATER_IS_BETTER")

	for _, name := range registry.Names() {
		m, err := registry.Lookup(name)
		if err != nil {
			return err
		}

		fmt.Fprintf(tw, "%s\t%t\n", name, m.GreaterIsBetter)
	}

	return tw.Flush()
}
