package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/docmodel/internal/logging"
	"github.com/aretw0/docmodel/pkg/loader"
	"github.com/aretw0/docmodel/pkg/model"
	"github.com/aretw0/docmodel/pkg/observability"
)

// errFailed signals that the command already reported its failures.
var errFailed = errors.New("one or more documents failed")

var rootCmd = &cobra.Command{
	Use:   "docmodel",
	Short: "docmodel validates documents against declarative models",
	Long: `docmodel loads model definitions from YAML or JSON files and uses them to
validate, normalize and describe documents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringSliceP("schema", "s", nil, "Model definition file (repeatable)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}

// session is what a command needs once the schema files are loaded.
type session struct {
	logger  *slog.Logger
	loader  *loader.Loader
	models  []*model.Model
	metrics *prometheus.Registry
}

// newLogger builds the command logger from the persistent flags.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("log-json")

	level, err := logging.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	return logging.NewWithOptions(logging.Options{
		Level:  level,
		JSON:   jsonLogs,
		Writer: cmd.ErrOrStderr(),
	}), nil
}

// openSession loads every --schema file into a private registry wired with
// logging and metrics hooks.
func openSession(cmd *cobra.Command) (*session, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	files, _ := cmd.Flags().GetStringSlice("schema")
	if len(files) == 0 {
		return nil, errors.New("at least one --schema file is required")
	}

	promReg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(promReg)
	if err != nil {
		return nil, err
	}
	reg := model.NewRegistry(
		model.WithLogger(logger),
		model.WithLifecycleHooks(observability.Chain(metrics.Hooks(), observability.LoggingHooks(logger))),
	)
	l := loader.New(loader.WithRegistry(reg), loader.WithLogger(logger))

	s := &session{logger: logger, loader: l, metrics: promReg}
	for _, path := range files {
		models, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		s.models = append(s.models, models...)
	}
	logger.Info("schemas loaded", "files", len(files), "models", len(s.models))
	return s, nil
}

// lookup resolves the --model flag. With a single loaded model the flag may be omitted.
func (s *session) lookup(cmd *cobra.Command) (*model.Model, error) {
	name, _ := cmd.Flags().GetString("model")
	if name == "" {
		if len(s.models) == 1 {
			return s.models[0], nil
		}
		return nil, fmt.Errorf("--model is required when the schema defines %d models", len(s.models))
	}
	return s.loader.Registry().Lookup(name)
}

// selected returns the models named in args, or every loaded model.
func (s *session) selected(args []string) ([]*model.Model, error) {
	if len(args) == 0 {
		return s.models, nil
	}
	out := make([]*model.Model, 0, len(args))
	for _, name := range args {
		m, err := s.loader.Registry().Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
