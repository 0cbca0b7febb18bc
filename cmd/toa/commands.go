package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/toa/analyzer"
	"github.com/viant/toa/config"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type analyzeOptions struct {
	configURL     string
	sinks         []string
	provider      string
	model         string
	baseURL       string
	timeout       time.Duration
	concurrency   int
	siteAnchoring bool
	scoped        bool
	output        string
	verbose       bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "toa",
		Short:         "Backward taint analysis for python sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [file or directory]",
		Short: "Traces every sink call back to its most plausible origin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0])
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.configURL, "config", "c", "", "yaml config location")
	flags.StringSliceVar(&opts.sinks, "sink", nil, "sink function name, repeatable (default built-in sinks)")
	flags.StringVar(&opts.provider, "oracle", config.ProviderUniform, "oracle provider: uniform or openai")
	flags.StringVar(&opts.model, "model", "", "oracle model")
	flags.StringVar(&opts.baseURL, "base-url", "", "OpenAI compatible API base URL")
	flags.DurationVar(&opts.timeout, "timeout", 0, "oracle estimate timeout")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "sink findings investigated in parallel")
	flags.BoolVar(&opts.siteAnchoring, "site-anchoring", false, "start chain search at the function enclosing the sink call")
	flags.BoolVar(&opts.scoped, "scoped", false, "stop variable backtrace at the enclosing function")
	flags.StringVarP(&opts.output, "output", "o", "", "report location (default stdout)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "development logging")
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, location string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fs := afs.New()
	cfg, err := loadConfig(ctx, fs, cmd, opts)
	if err != nil {
		return err
	}
	estimator, err := cfg.Oracle.NewOracle()
	if err != nil {
		return err
	}
	srv := analyzer.New(
		analyzer.WithConfig(cfg),
		analyzer.WithOracle(estimator),
		analyzer.WithLogger(logger),
	)

	object, err := fs.Object(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to locate %v: %w", location, err)
	}
	var reports []*analyzer.Report
	if object.IsDir() {
		if reports, err = srv.AnalyzeDir(ctx, location); err != nil {
			return err
		}
	} else {
		report, err := srv.AnalyzeFile(ctx, location)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}
	for _, report := range reports {
		logger.Info("analysis complete",
			zap.String("path", report.Path),
			zap.Int("findings", len(report.Findings)),
			zap.Strings("origins", report.Origins()))
	}
	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err = fs.Upload(ctx, opts.output, 0644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write report %v: %w", opts.output, err)
	}
	return nil
}

// loadConfig loads the optional config file and applies explicitly set flags over it
func loadConfig(ctx context.Context, fs afs.Service, cmd *cobra.Command, opts *analyzeOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configURL != "" {
		var err error
		if cfg, err = config.Load(ctx, fs, opts.configURL); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("sink") {
		cfg.Sinks = opts.sinks
	}
	if flags.Changed("oracle") {
		cfg.Oracle.Provider = opts.provider
	}
	if flags.Changed("model") {
		cfg.Oracle.Model = opts.model
	}
	if flags.Changed("base-url") {
		cfg.Oracle.BaseURL = opts.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Oracle.Timeout = opts.timeout
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if flags.Changed("site-anchoring") {
		cfg.SiteAnchoring = opts.siteAnchoring
	}
	if flags.Changed("scoped") {
		cfg.ScopedBacktrace = opts.scoped
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
