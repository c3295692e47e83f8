package main

import (
	"fmt"
	"io"
	"os"

	"apareport/adapters/render"
	"apareport/app"
	"apareport/domain/core"
	"apareport/internal/config"
	"apareport/internal/container"
	apperrors "apareport/internal/errors"
	"apareport/internal/input"
	"apareport/internal/logging"

	"github.com/spf13/cobra"
)

// configuredLevel marks a bare --ci flag: use APA_CONF_LEVEL
const configuredLevel = -1

type outputOptions struct {
	format  string
	inParen bool
}

func main() {
	var out outputOptions

	rootCmd := &cobra.Command{
		Use:           "apareport",
		Short:         "Format ANOVA and model-comparison results as APA inline text and tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&out.format, "format", string(render.FormatTable), "Output format: table, markdown, html, csv, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&out.inParen, "in-paren", false, "Use square brackets for df, for strings placed inside parentheses")

	rootCmd.AddCommand(
		newAnovaCmd(&out),
		newCompareCmd(&out),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", apperrors.GetCode(err), err)
		os.Exit(1)
	}
}

func newAnovaCmd(out *outputOptions) *cobra.Command {
	var observed, effectSizes []string

	cmd := &cobra.Command{
		Use:   "anova <file|->",
		Short: "Format each term of an ANOVA result",
		Long: `Format each term of an ANOVA result as "F(df, df_err) = F, p = p".

The document's kind selects the result shape: anova, summary_aov, aovlist or
anova_mlm. Flags override the document's own options.

Example: apareport anova twoway.yaml --es ges,pes --observed age`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, format, err := setup(out.format)
			if err != nil {
				return err
			}
			defer c.Close()

			doc, err := load(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if doc.Anova == nil {
				return apperrors.InvalidInput(fmt.Sprintf("%s is a %s document; use the compare command", args[0], doc.Kind))
			}

			req, err := doc.Anova.Request()
			if err != nil {
				return apperrors.FromDomain(err, "invalid ANOVA document")
			}
			if cmd.Flags().Changed("observed") {
				req.Observed = observed
			}
			if cmd.Flags().Changed("es") {
				if req.EffectSizes, err = input.ParseEffectSizes(effectSizes); err != nil {
					return apperrors.FromDomain(err, "invalid --es")
				}
			}
			if cmd.Flags().Changed("in-paren") {
				req.InParen = out.inParen
			}

			report, err := c.AnovaService.FormatAnova(cmd.Context(), req)
			if err != nil {
				return apperrors.FromDomain(err, "failed to format ANOVA")
			}
			printWarnings(cmd.ErrOrStderr(), report.Warnings)
			return render.Write(cmd.OutOrStdout(), format, report,
				render.StringsGrid("ANOVA", report.Terms, []string{"Statistic"}, report.Statistic))
		},
	}

	cmd.Flags().StringSliceVar(&observed, "observed", nil, "Observed (measured, not manipulated) factors")
	cmd.Flags().StringSliceVar(&effectSizes, "es", nil, "Effect sizes to report: ges, pes")

	return cmd
}

func newCompareCmd(out *outputOptions) *cobra.Command {
	var (
		level       float64
		bootSamples int
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "compare <file|->",
		Short: "Format a hierarchy of nested regression models",
		Long: `Fit the document's models, order them by R² and format ΔR², the F test of
each adjacent pair and the comparison table.

--ci adds a percentile bootstrap interval for ΔR²; a bare --ci uses
APA_CONF_LEVEL. Set --seed (or APA_SEED) for reproducible intervals.

Example: apareport compare models.yaml --ci 0.9 --boot-samples 5000 --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, format, err := setup(out.format)
			if err != nil {
				return err
			}
			defer c.Close()

			doc, err := load(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if doc.Comparison == nil {
				return apperrors.InvalidInput(fmt.Sprintf("%s is a %s document; use the anova command", args[0], doc.Kind))
			}

			req, err := doc.Comparison.Request(doc.BaseDir, c.Logger)
			if err != nil {
				return apperrors.FromDomain(err, "invalid comparison document")
			}
			if cmd.Flags().Changed("ci") {
				if level == configuredLevel {
					level = c.Config.Report.ConfidenceLevel
				}
				req.ConfidenceLevel = &level
			}
			if cmd.Flags().Changed("boot-samples") {
				req.BootSamples = bootSamples
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}
			if cmd.Flags().Changed("in-paren") {
				req.InParen = out.inParen
			}

			report, err := c.ComparisonService.FormatModelComparison(cmd.Context(), req)
			if err != nil {
				return apperrors.FromDomain(err, "failed to format model comparison")
			}
			printWarnings(cmd.ErrOrStderr(), report.Warnings)
			return render.Write(cmd.OutOrStdout(), format, report, comparisonGrids(report)...)
		},
	}

	cmd.Flags().Float64Var(&level, "ci", 0, "Bootstrap confidence level for ΔR², e.g. 0.9")
	cmd.Flags().Lookup("ci").NoOptDefVal = fmt.Sprint(configuredLevel)
	cmd.Flags().IntVar(&bootSamples, "boot-samples", 0, "Bootstrap resamples (default APA_BOOT_SAMPLES)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Bootstrap seed (default APA_SEED, else time-based)")

	return cmd
}

func comparisonGrids(report *app.ComparisonReport) []render.Grid {
	if report.Est == nil {
		return []render.Grid{render.StringsGrid("Model comparison", report.Terms, []string{"stat"}, report.Stat)}
	}
	grids := []render.Grid{
		render.StringsGrid("Inline", report.Terms, []string{"est", "stat", "full"}, report.Est, report.Stat, report.Full),
	}
	if report.Table != nil {
		grids = append(grids, render.ComparisonGrid(report.Table))
	}
	return grids
}

// setup loads configuration and wires the services
func setup(formatFlag string) (*container.Container, render.Format, error) {
	format, err := render.ParseFormat(formatFlag)
	if err != nil {
		return nil, "", apperrors.FromDomain(err, "invalid --format")
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ConfigInvalid(err.Error()), "failed to build logger")
	}
	c, err := container.New(cfg, logger)
	if err != nil {
		return nil, "", err
	}
	return c, format, nil
}

// load reads a document from a file, or from stdin for "-"
func load(path string, stdin io.Reader) (*input.Document, error) {
	if path != "-" {
		doc, err := input.LoadFile(path)
		if err != nil {
			return nil, apperrors.FromDomain(err, "failed to load input")
		}
		return doc, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read stdin")
	}
	doc, err := input.Decode(data)
	if err != nil {
		return nil, apperrors.FromDomain(err, "failed to decode stdin")
	}
	return doc, nil
}

func printWarnings(w io.Writer, warnings []core.Warning) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
