package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwhitesell/screengrab/internal/normalize"
	"github.com/cwhitesell/screengrab/internal/pipeline"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture the desktop or a window to a PNG file",
	Long: `Capture the full virtual desktop across all monitors, or a single window
matched by title substring, and write the result as a PNG.

Output wider than the configured ceiling is downscaled proportionally;
smaller output is never upscaled.`,
	Example: `  # Capture all monitors to screenshot.png
  screengrab capture -o screenshot.png

  # Capture the first window whose title contains "firefox"
  screengrab capture --window firefox -o firefox.png

  # Write PNG bytes to stdout
  screengrab capture -o -`,
	RunE: runCapture,
}

var (
	captureWindowTitle string
	captureOutput      string
	captureMaxWidth    int
)

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringVarP(&captureWindowTitle, "window", "w", "", "capture the first window whose title contains this substring")
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "screenshot.png", "output file path, or - for stdout")
	captureCmd.Flags().IntVar(&captureMaxWidth, "max-width", 0, "output width ceiling in pixels (overrides config)")
}

func runCapture(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	service := stack.service
	if captureMaxWidth > 0 {
		service = pipeline.New(
			stack.router,
			stack.router,
			stack.windows,
			normalize.New(captureMaxWidth),
			stack.configMgr.CaptureTimeout(),
		)
	}

	png, err := service.Capture(context.Background(), captureWindowTitle)
	if err != nil {
		return err
	}

	if captureOutput == "-" {
		_, err = os.Stdout.Write(png)
		return err
	}

	if err := os.WriteFile(captureOutput, png, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", captureOutput, err)
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(png), captureOutput)
	return nil
}
