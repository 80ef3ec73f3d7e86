package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/genai"

	legaldoc "github.com/jimmc414/legal-doc-extract"
)

var displayName string

var processCmd = &cobra.Command{
	Use:   "process <file.pdf> [file.pdf...]",
	Short: "Upload, classify, and extract one or more legal PDFs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  cfg.APIKey,
		})
		if err != nil {
			return fmt.Errorf("create genai client: %w", err)
		}

		pipeline, err := legaldoc.New(client,
			legaldoc.WithModel(cfg.Model),
			legaldoc.WithMinConfidence(cfg.MinConfidence),
			legaldoc.WithTimeout(cfg.Timeout),
			legaldoc.WithRetry(cfg.MaxAttempts, cfg.RetryDelay),
			legaldoc.WithConcurrency(cfg.Concurrency),
			legaldoc.WithLogger(slog.Default()),
		)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if len(args) == 1 {
			doc, err := pipeline.Process(ctx, args[0], displayName)
			if err != nil {
				return err
			}
			return enc.Encode(doc)
		}

		if displayName != "" {
			return fmt.Errorf("--display-name only applies to a single file")
		}

		results := pipeline.ProcessAll(ctx, args)
		failures := 0
		for _, res := range results {
			if res.Err != nil {
				failures++
				slog.Error("processing failed", "path", res.Path, "error", res.Err)
				continue
			}
			if err := enc.Encode(res.Document); err != nil {
				return err
			}
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d documents failed", failures, len(results))
		}
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&displayName, "display-name", "", "display name for the uploaded file")
	processCmd.Flags().String("model", "", "model to use for classification and extraction")
	processCmd.Flags().Float64("min-confidence", 0, "minimum classification confidence to accept")

	// Flags override config file and environment values
	_ = viper.BindPFlag("model", processCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("min_confidence", processCmd.Flags().Lookup("min-confidence"))
}
