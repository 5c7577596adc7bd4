package img

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"github.com/halvemaan/gumshoe/internal/portrait"
	"github.com/spf13/cobra"
	"image/png"
	"os"
	"strings"
)

var Group = &cobra.Group{
	ID:    "img",
	Title: "Portrait operations",
}

func init() {
	Generate.Flags().String("out", "./portrait.png", "path to generated image file")
	Generate.Flags().String("seed", "cli", "stable seed for the portrait")
}

var Generate = &cobra.Command{
	Use:     "gen [visual summary]",
	GroupID: "img",
	Short:   "Generate portrait",
	Long:    `Generates a character portrait with DALL-E from a visual summary`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		provider := portrait.NewDallEProvider(os.Getenv("OPENAI_API_KEY"))

		ctx := context.Background()

		summary := strings.Join(args, " ")

		seed, err := cmd.Flags().GetString("seed")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid seed flag: %v\n", err)
			return
		}
		dataURI, err := provider.Portrait(ctx, seed, summary)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Portrait error: %v\n", err)
			return
		}

		imgBytes, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, "data:image/png;base64,"))
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Base64 decode error: %v\n", err)
			return
		}

		r := bytes.NewReader(imgBytes)
		imgData, err := png.Decode(r)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "PNG decode error: %v\n", err)
			return
		}

		outPath, err := cmd.Flags().GetString("out")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid out flag: %v\n", err)
			return
		}
		file, err := os.Create(outPath)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "File creation error: %v\n", err)
			return
		}
		defer func(file *os.File) {
			_ = file.Close()
		}(file)

		if err := png.Encode(file, imgData); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "PNG encode error: %v\n", err)
			return
		}

		fmt.Printf("The portrait was saved as %s\n", outPath)
	},
}
