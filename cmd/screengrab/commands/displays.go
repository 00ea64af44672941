package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List attached display surfaces",
	Long: `List all currently attached display surfaces with their position and size
in the global desktop coordinate space. Coordinates may be negative for
monitors positioned left of or above the origin.`,
	Example: `  # List displays in table format (default)
  screengrab displays

  # List displays in JSON format
  screengrab displays --format json`,
	RunE: runDisplays,
}

var displaysFormat string

func init() {
	rootCmd.AddCommand(displaysCmd)

	displaysCmd.Flags().StringVarP(&displaysFormat, "format", "f", "table", "output format (table or json)")
}

func runDisplays(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	surfaces, err := stack.router.Surfaces()
	if err != nil {
		return err
	}

	if displaysFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(surfaces)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tX\tY\tWIDTH\tHEIGHT\tPRIMARY")
	for _, s := range surfaces {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%v\n",
			s.Index, s.Bounds.X, s.Bounds.Y, s.Bounds.Width, s.Bounds.Height, s.Primary)
	}
	return w.Flush()
}
