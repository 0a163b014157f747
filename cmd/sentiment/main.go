package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sentiment/internal/config"
	"sentiment/internal/corpus"
	"sentiment/internal/logging"
	"sentiment/internal/report"
	"sentiment/internal/resultstore"
	"sentiment/internal/resultstore/memory"
	"sentiment/internal/resultstore/sqlite"
	"sentiment/internal/service"
	"sentiment/internal/tui"
)

type options struct {
	configPath  string
	verbose     bool
	interactive bool
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "sentiment [flags] <subdir>",
		Short: "Train and score review sentiment classifiers",
		Long: `Loads the labelled reviews under <base_path>/<subdir>/<class>/<file>,
splits them into train, dev and test, builds TF-IDF features from the training
split, and reports the AUC of a decision tree and random forest sweep followed
by a final model refit on train+dev and scored on test.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), stdout, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to YAML config file (default ./config.yaml, then ~/.config/sentiment/config.yaml)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Browse the results in a terminal UI after the run")
	return cmd
}

func run(ctx context.Context, stdout io.Writer, opts options, subdir string) error {
	var cfg *config.AppConfig
	var err error
	if opts.configPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.LoadFile(opts.configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// Assemble components
	var src corpus.Source
	switch cfg.Corpus.Source {
	case "local":
		src = corpus.NewLocalSource()
	case "hdfs":
		hs, err := corpus.NewHDFSSource(cfg.Corpus.HDFS.Namenode, cfg.Corpus.HDFS.User)
		if err != nil {
			return fmt.Errorf("hdfs connect %s: %w", cfg.Corpus.HDFS.Namenode, err)
		}
		src = hs
	default:
		return fmt.Errorf("unknown corpus source: %s", cfg.Corpus.Source)
	}
	defer src.Close()

	var st resultstore.Storage
	switch cfg.Report.Store {
	case "memory":
		st = memory.NewStorage()
	case "sqlite":
		db, err := sqlite.Open(cfg.Report.SQLitePath)
		if err != nil {
			return err
		}
		st = db
	default:
		return fmt.Errorf("unknown result store: %s", cfg.Report.Store)
	}
	defer st.Close()
	if err := st.Init(ctx); err != nil {
		return err
	}

	logger.Debug("starting run",
		zap.String("source", cfg.Corpus.Source),
		zap.String("base_path", cfg.Corpus.BasePath),
		zap.String("subdir", subdir),
		zap.String("store", cfg.Report.Store))

	svc := service.New(cfg, src, st, stdout, logger)
	sum, err := svc.Run(ctx, subdir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("run interrupted")
		}
		return err
	}
	if !opts.interactive {
		return nil
	}

	header := fmt.Sprintf("%s  vocabulary=%d  final=%s", sum.Root, sum.VocabularySize, sum.Final.Config.Label)
	if r, ok := sum.Final.Score(sum.Final.Config.Splits[0]); ok {
		header += "  " + report.FormatResult(r)
	}
	m := tui.New(st, sum.RunID, header)
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}
