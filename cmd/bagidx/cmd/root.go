package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/bagindex/pkg/bag"
	"github.com/ssargent/bagindex/pkg/config"
	"github.com/ssargent/bagindex/pkg/logging"
	"github.com/ssargent/bagindex/pkg/metrics"
)

// app is the state shared by every command, built once per invocation.
type app struct {
	config   *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

type appKey struct{}

func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey{}).(*app)
	if !ok {
		return nil, errors.New("command state not initialized")
	}
	return a, nil
}

// NewRootCmd builds the bagidx command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bagidx",
		Short: "bagidx - inspect the index records of ROS bag files",
		Long: `bagidx decodes ROS bag (v2.0) files in memory and reports on their records,
header fields and the index data records that map message timestamps to
offsets inside chunks.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
			if err != nil {
				return err
			}

			registry := prometheus.NewRegistry()
			a := &app{
				config:   cfg,
				logger:   logger,
				registry: registry,
				metrics:  metrics.NewMetrics(registry),
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a, err := appFrom(cmd); err == nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (default "+config.GetDefaultConfigPath()+" if present)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.StringP("output", "o", "", "Output format: text, json, yaml")
	flags.Bool("raw", false, "Input holds bare records without the bag version line")
	flags.Bool("strict", false, "Fail on the first record that does not decode")

	rootCmd.AddCommand(
		newScanCmd(),
		newFieldsCmd(),
		newIndexCmd(),
		newServeCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg := config.DefaultConfig()
	path, _ := flags.GetString("config")
	switch {
	case path != "":
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("output") {
		cfg.Output.Format, _ = flags.GetString("output")
	}
	if flags.Changed("raw") {
		cfg.Decode.Raw, _ = flags.GetBool("raw")
	}
	if flags.Changed("strict") {
		cfg.Decode.Strict, _ = flags.GetBool("strict")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// scanFile reads a bag file and scans it with the configured options.
func scanFile(a *app, path string) (*bag.Summary, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bag: %w", err)
	}

	summary, err := bag.Scan(buf, bag.ScanConfig{
		Raw:     a.config.Decode.Raw,
		Strict:  a.config.Decode.Strict,
		Logger:  a.logger.With(zap.String("file", path)),
		Metrics: a.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return summary, nil
}
