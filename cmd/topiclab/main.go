package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"

	"github.com/chriscorrea/topiclab/internal/corpus"
	"github.com/chriscorrea/topiclab/internal/progress"
	"github.com/chriscorrea/topiclab/internal/store"
	"github.com/chriscorrea/topiclab/internal/trial"

	"github.com/spf13/cobra"
)

// runConfig bundles the trial configuration with the preprocessing options
// that sit outside the trial package.
type runConfig struct {
	trial       trial.Config
	dataDir     string
	outDir      string
	maxFeatures int
	trainFrac   float64
	valFrac     float64
	verbose     bool
	quiet       bool
	debug       bool
}

// buildConfig constructs a runConfig from command flags and arguments
func buildConfig(cmd *cobra.Command, args []string) (runConfig, error) {
	if len(args) != 1 {
		return runConfig{}, fmt.Errorf("expected exactly one corpus directory argument")
	}

	rank, _ := cmd.Flags().GetInt("rank")
	maxIter, _ := cmd.Flags().GetInt("max-iters")
	trials, _ := cmd.Flags().GetInt("trials")
	ssnmfTol, _ := cmd.Flags().GetFloat64Slice("ssnmf-tol")
	lambda, _ := cmd.Flags().GetFloat64Slice("lambda")
	nmfTol, _ := cmd.Flags().GetFloat64("nmf-tol")
	search, _ := cmd.Flags().GetBool("search")
	searchSteps, _ := cmd.Flags().GetInt("search-steps")
	seed, _ := cmd.Flags().GetInt64("seed")
	outDir, _ := cmd.Flags().GetString("out")
	maxFeatures, _ := cmd.Flags().GetInt("max-features")
	trainFrac, _ := cmd.Flags().GetFloat64("train-frac")
	valFrac, _ := cmd.Flags().GetFloat64("val-frac")
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	debug, _ := cmd.Flags().GetBool("debug")

	// the per-variant lists carry one entry per SSNMF model, Model3..Model6
	if len(ssnmfTol) != 4 {
		return runConfig{}, fmt.Errorf("--ssnmf-tol needs exactly 4 values (Model3..Model6), got %d", len(ssnmfTol))
	}
	if len(lambda) != 4 {
		return runConfig{}, fmt.Errorf("--lambda needs exactly 4 values (Model3..Model6), got %d", len(lambda))
	}

	cfg := runConfig{
		trial: trial.Config{
			Rank:          rank,
			MaxIter:       maxIter,
			Trials:        trials,
			NMFTol:        nmfTol,
			Search:        search,
			SearchSteps:   searchSteps,
			CheckpointDir: outDir,
			Seed:          seed,
		},
		dataDir:     args[0],
		outDir:      outDir,
		maxFeatures: maxFeatures,
		trainFrac:   trainFrac,
		valFrac:     valFrac,
		verbose:     verbose,
		quiet:       quiet,
		debug:       debug,
	}
	copy(cfg.trial.SSNMFTol[:], ssnmfTol)
	copy(cfg.trial.Lambda[:], lambda)
	return cfg, nil
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

var rootCmd = &cobra.Command{
	Use:   "topiclab [corpus-dir]",
	Short: "Compare SSNMF document classification against NB, SVM, and NMF+SVM baselines",
	Long: `Topiclab runs repeated randomized trials of four semi-supervised NMF model
variants alongside Naive Bayes, linear SVM, and NMF+SVM baselines on a labeled
text corpus, then reports accuracy statistics and median-trial diagnostics.

The corpus directory holds one subdirectory per class, each containing
plain-text document files:

  topiclab ./20news --rank 13 --trials 11
  topiclab ./corpus --search --verbose --out results/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		setupLogger(cfg.debug)

		// context with signal handling; interruption between trials leaves
		// all checkpointed trial data durable
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return run(ctx, cfg)
	},
}

func run(ctx context.Context, cfg runConfig) error {
	docs, err := corpus.LoadDirectory(cfg.dataDir)
	if err != nil {
		return err
	}

	rng := newRand(cfg.trial.Seed)
	st, err := corpus.BuildStore(docs, corpus.Fractions{Train: cfg.trainFrac, Val: cfg.valFrac}, cfg.maxFeatures, rng)
	if err != nil {
		return err
	}

	if !cfg.quiet {
		fmt.Fprintf(os.Stderr, "Corpus: %d documents, %d terms, %d classes\n",
			st.Docs(store.FullTrain)+st.Docs(store.Test), st.Terms(), st.Classes())
	}

	var ind *progress.Indicator
	if !cfg.quiet {
		ind = progress.New(ctx, os.Stderr)
		ind.Start()
		defer ind.Stop()
		cfg.trial.Progress = ind.Update
	}

	runner, err := trial.NewRunner(st, cfg.trial)
	if err != nil {
		return err
	}

	coll, err := runner.Run(ctx)
	if ind != nil {
		ind.Stop()
	}
	if err != nil {
		return fmt.Errorf("trial run failed: %w", err)
	}

	coll.WriteSummary(os.Stdout)

	if cfg.verbose {
		if err := trial.ReportMedian(st, coll, cfg.outDir, os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	// factorization hyperparameters
	rootCmd.Flags().IntP("rank", "k", 10, "Topic count shared by all factorization methods")
	rootCmd.Flags().Int("max-iters", 100, "Maximum multiplicative updates per SSNMF fit")
	rootCmd.Flags().Float64Slice("ssnmf-tol", []float64{1e-4, 1e-4, 1e-4, 1e-4}, "Convergence tolerance per SSNMF variant (Model3..Model6)")
	rootCmd.Flags().Float64Slice("lambda", []float64{100, 100, 100, 100}, "Regularization weight per SSNMF variant (Model3..Model6)")
	rootCmd.Flags().Float64("nmf-tol", 1e-4, "Convergence tolerance for plain NMF")

	// trial loop
	rootCmd.Flags().IntP("trials", "n", 11, "Number of repeated trials (should be odd)")
	rootCmd.Flags().Bool("search", false, "Run iterative local hyperparameter search on the validation split")
	rootCmd.Flags().Int("search-steps", 0, "Bound on accepted local-search moves (0 = default)")
	rootCmd.Flags().Int64("seed", 1, "Random seed for splits and initializations")

	// preprocessing
	rootCmd.Flags().Int("max-features", 5000, "Vocabulary size cap for the TF-IDF vectorizer (0 = unlimited)")
	rootCmd.Flags().Float64("train-frac", 0.6, "Fraction of documents assigned to the train split")
	rootCmd.Flags().Float64("val-frac", 0.2, "Fraction of documents assigned to the validation split")

	// output
	rootCmd.Flags().StringP("out", "o", "results", "Directory for checkpoints and heatmap images")
	rootCmd.Flags().BoolP("verbose", "v", false, "Print median-trial classification reports, keywords, and heatmaps")
	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress progress output")
	rootCmd.Flags().BoolP("debug", "D", false, "Enable debug logging")
	_ = rootCmd.Flags().MarkHidden("debug")
}

// newRand returns a deterministic generator for the given seed.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
