package casefile

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/halvemaan/gumshoe/internal/mystery"
	"github.com/halvemaan/gumshoe/internal/provider"
	"github.com/spf13/cobra"
	"log/slog"
	"os"
	"time"
)

var Group = &cobra.Group{
	ID:    "case",
	Title: "Case file operations",
}

const defaultModels = "gemini:gemini-2.5-flash,gemini:gemini-2.0-flash,openai:gpt-4o-mini"

func init() {
	Generate.Flags().String("models", defaultModels, "model fallback chain, tried in order")
	Generate.Flags().Float64("temperature", 0.85, "sampling temperature")
	Generate.Flags().Int("max-tokens", 4096, "completion token budget")
	Generate.Flags().Duration("timeout", 90*time.Second, "per-model attempt timeout")
	Generate.Flags().String("out", "", "write the case file here instead of stdout")
}

var Generate = &cobra.Command{
	Use:     "gen",
	GroupID: "case",
	Short:   "Generate case file",
	Long:    `Generates a mystery case file through the model chain and prints it as JSON`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			AddSource:   false,
			Level:       slog.LevelWarn,
			ReplaceAttr: nil,
		}))

		modelChain, err := cmd.Flags().GetString("models")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid models flag: %v\n", err)
			return
		}
		temperature, err := cmd.Flags().GetFloat64("temperature")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid temperature flag: %v\n", err)
			return
		}
		maxTokens, err := cmd.Flags().GetInt("max-tokens")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid max-tokens flag: %v\n", err)
			return
		}
		timeout, err := cmd.Flags().GetDuration("timeout")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid timeout flag: %v\n", err)
			return
		}

		adapter, err := newAdapter(ctx, modelChain, timeout, logger)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Chain setup error: %v\n", err)
			return
		}

		// Portraits are skipped here; the img command covers them.
		generator := mystery.NewGenerator(adapter, nil, float32(temperature), maxTokens, logger)
		m, err := generator.Generate(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Generation error: %v\n", err)
			return
		}

		encoded, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Encoding error: %v\n", err)
			return
		}

		outPath, err := cmd.Flags().GetString("out")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid out flag: %v\n", err)
			return
		}
		if outPath == "" {
			fmt.Println(string(encoded))
			return
		}
		if err = os.WriteFile(outPath, encoded, 0o600); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "File creation error: %v\n", err)
			return
		}
		fmt.Printf("The case file was saved as %s\n", outPath)
	},
}

// newAdapter wires the model chain against every backend with credentials in
// the environment. The fake backend is always available.
func newAdapter(
	ctx context.Context,
	modelChain string,
	timeout time.Duration,
	logger *slog.Logger,
) (*provider.Adapter, error) {
	backends := []provider.Backend{provider.NewFakeBackend()}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		gemini, err := provider.NewGeminiBackend(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		backends = append(backends, gemini)
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		backends = append(backends, provider.NewOpenAIBackend(apiKey))
	}
	refs, err := provider.ParseModelRefs(modelChain)
	if err != nil {
		return nil, err
	}
	return provider.NewAdapter(backends, refs, timeout, logger)
}
