package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/x-heep/socgen/api"
	"github.com/x-heep/socgen/internal/config"
	"github.com/x-heep/socgen/internal/export"
	"github.com/x-heep/socgen/internal/generate"
)

var (
	configPath string
	outDir     string
	formatName string
	logLevel   string
	logFormat  string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to SoC description (.hcl, .yaml, .json); built-in default when empty")
	pf.StringVarP(&outDir, "out", "o", ".", "Output directory")
	pf.StringVar(&formatName, "format", "json", "Snapshot format: json or cbor")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "text", "Log handler: text or json")
}

var rootCmd = &cobra.Command{
	Use:           "socgen",
	Short:         "socgen: address map, memory layout and interconnect synthesis for X-HEEP SoCs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// newLogger builds the slog logger selected by the persistent flags.
func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch logFormat {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", logFormat)
}

func loadSoC(log *slog.Logger) (*api.SoC, error) {
	if configPath == "" {
		log.Debug("using built-in description")
		return config.Default()
	}
	soc, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded description", "path", configPath, "name", soc.Name)
	return soc, nil
}

// synthesize loads the description and runs one generation pass.
func synthesize(cmd *cobra.Command) (*export.Snapshot, *slog.Logger, error) {
	log, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	soc, err := loadSoC(log)
	if err != nil {
		return nil, nil, err
	}
	res, err := generate.Run(soc, generate.Options{Logger: log})
	if err != nil {
		return nil, nil, err
	}
	return export.NewSnapshot(res), log, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
