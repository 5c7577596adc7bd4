package chain

import (
	"context"
	"fmt"
	"github.com/halvemaan/gumshoe/internal/provider"
	"github.com/spf13/cobra"
	"log/slog"
	"os"
	"strings"
	"time"
)

var Group = &cobra.Group{
	ID:    "chain",
	Title: "Model chain operations",
}

const defaultModels = "gemini:gemini-2.5-flash,gemini:gemini-2.0-flash,openai:gpt-4o-mini"

func init() {
	Check.Flags().String("models", defaultModels, "model fallback chain, tried in order")
	Check.Flags().Duration("timeout", 30*time.Second, "per-model attempt timeout")
}

var Check = &cobra.Command{
	Use:     "check",
	GroupID: "chain",
	Short:   "Check model chain",
	Long:    `Sends a short prompt through the model chain and reports which model answered`,
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

		result, err := adapter.Generate(ctx, provider.Request{
			System:      "",
			Prompt:      "Reply with the single word: ready.",
			Temperature: 0,
			MaxTokens:   16,
			Schema:      nil,
		})
		if err != nil {
			switch {
			case provider.IsCredential(err):
				_, _ = fmt.Fprintf(os.Stderr, "Credential error, check your API keys: %v\n", err)
			case provider.IsExhausted(err):
				_, _ = fmt.Fprintf(os.Stderr, "Every model in the chain failed: %v\n", err)
			default:
				_, _ = fmt.Fprintf(os.Stderr, "Chain error: %v\n", err)
			}
			return
		}

		fmt.Printf("%s answered: %s\n", result.Model, strings.TrimSpace(result.Text))
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
