package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termvid/termvid/internal/charset"
)

var charsetsCmd = &cobra.Command{
	Use:   "charsets",
	Short: "List the available glyph ramps",
	Long: `List every glyph ramp termvid knows, darkest glyph first.

Pick one with --charset or TERMVID_CHARSET.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range charset.Names() {
			ramp, err := charset.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %q\n", name, ramp)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(charsetsCmd)
}
