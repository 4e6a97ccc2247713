package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"titanic/internal/config"
	"titanic/internal/engine"
	"titanic/internal/logging"
	"titanic/internal/model"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

// flagError marks command-line mistakes so they exit like a bad predictor.
type flagError struct{ error }

func (e flagError) Unwrap() error { return e.error }

type runFlags struct {
	config    string
	predictor string
	train     string
	test      string
	outDir    string
	seed      int64
	verbose   bool
}

func main() {
	logging.InitFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	logging.Sync()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "Error:", err)
	var ue *model.UsageError
	var fe flagError
	if errors.As(err, &ue) || errors.As(err, &fe) {
		return exitUsage
	}
	return exitFail
}

func newRootCmd() *cobra.Command {
	var f runFlags
	root := &cobra.Command{
		Use:   "titanic",
		Short: "Predict Titanic passenger survival",
		Long: `titanic trains a classifier on a labelled passenger table and writes
one survival prediction per passenger of an unlabelled table.

Run without a subcommand to behave like "titanic run".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, &f)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return flagError{err} })
	root.PersistentFlags().StringVar(&f.config, "config", "titanic.yml", "configuration file (missing file is ignored)")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	bindRunFlags(root, &f)

	run := &cobra.Command{
		Use:   "run",
		Short: "Train on the training table and write predictions for the test table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, &f)
		},
	}
	bindRunFlags(run, &f)

	root.AddCommand(run, newHistoryCmd(&f), newConfigCmd(&f))
	return root
}

func bindRunFlags(cmd *cobra.Command, f *runFlags) {
	fs := cmd.Flags()
	fs.StringVarP(&f.predictor, "predictor", "p", "", "predictor to train: rf or svm (default rf)")
	fs.StringVar(&f.train, "train", "", "labelled training table (.csv)")
	fs.StringVar(&f.test, "test", "", "evaluation table (.csv)")
	fs.StringVar(&f.outDir, "out-dir", "", "directory for the submission file")
	fs.Int64Var(&f.seed, "seed", 0, "random seed for training")
}

// effectiveConfig loads the config file and lays explicitly set flags on top.
func effectiveConfig(cmd *cobra.Command, f *runFlags) (config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return cfg, err
	}
	fs := cmd.Flags()
	if fs.Changed("predictor") {
		cfg.Predictor = f.predictor
	}
	if fs.Changed("train") {
		cfg.Train = f.train
	}
	if fs.Changed("test") {
		cfg.Test = f.test
	}
	if fs.Changed("out-dir") {
		cfg.OutDir = f.outDir
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func runPipeline(cmd *cobra.Command, f *runFlags) error {
	cfg, err := effectiveConfig(cmd, f)
	if err != nil {
		return err
	}
	// reject a bad predictor before touching anything else
	if _, err := model.ParseKind(cfg.Predictor); err != nil {
		return err
	}

	ctx := cmd.Context()
	e, err := engine.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	rep, err := e.Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Predictor: %s\n", rep.Predictor.Describe())
	fmt.Fprintf(out, "Training accuracy: %.3f\n", rep.Score)
	if rep.Output != "" {
		fmt.Fprintf(out, "Predictions: %s (%d rows)\n", rep.Output, rep.EvalRows)
	}
	return nil
}

func newHistoryCmd(f *runFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.config)
			if err != nil {
				return err
			}
			runs, err := engine.History(cmd.Context(), cfg.Ledger, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tWHEN\tPREDICTOR\tSCORE\tROWS\tOUTPUT")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%d\t%s\n",
					shortID(r.ID), r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.Predictor, r.Score, r.EvalRows, r.Output)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to show (0 = all)")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newConfigCmd(f *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := effectiveConfig(cmd, f)
			if err != nil {
				return err
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}
	bindRunFlags(cmd, f)
	return cmd
}
