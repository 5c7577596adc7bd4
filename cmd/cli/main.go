package main

import (
	"fmt"
	"github.com/halvemaan/gumshoe/cmd/cli/casefile"
	"github.com/halvemaan/gumshoe/cmd/cli/chain"
	"github.com/halvemaan/gumshoe/cmd/cli/img"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"io/fs"
	"os"
)

func init() {
	// .env is optional; commands read their API keys from the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(casefile.Group)
	rootCmd.AddCommand(casefile.Generate)
	rootCmd.AddGroup(chain.Group)
	rootCmd.AddCommand(chain.Check)
	rootCmd.AddGroup(img.Group)
	rootCmd.AddCommand(img.Generate)
}

var rootCmd = &cobra.Command{
	Use:  "gumshoe-cli",
	Long: `Command line utilities for Gumshoe https://github.com/halvemaan/gumshoe`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
