package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "legal-doc-extract",
	Short: "Classify legal PDFs and extract structured fields with Gemini",
	Long: `legal-doc-extract uploads a legal PDF to the Gemini Files API,
classifies it as a Judgment, Dismissal, Affidavit, or Other, and extracts a
type-specific structured record using schema-constrained model output.

Runs below the classification confidence threshold fail rather than produce
a low-confidence record.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.legal-doc-extract/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		setupLogging(logLevel)
		return initConfig(cfgFile)
	}

	rootCmd.AddCommand(processCmd, versionCmd)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: lvl})))
}
