package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/termvid/termvid/internal/player"
)

var (
	flagExportDir   string
	flagExportColor bool
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] <source>",
	Short: "Convert frames to text files instead of playing them",
	Long: `Convert every frame of the source to a glyph grid and write each
grid to its own file (frame_000000.txt, frame_000001.txt, ...) in the
output directory. File names carry the frame's index in the original
stream, so skipped frames leave gaps.

By default the files are plain text. With --ansi the files include the
ANSI color escape codes a terminal would receive, truecolor unless
--color narrows the mode.

Examples:
  termvid export clip.mp4
  termvid export --dir frames --skip 4 clip.mp4
  termvid export --ansi --width 200 clip.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("dir") {
			cfg.ExportDir = flagExportDir
		}
		if cmd.Flags().Changed("ansi") {
			cfg.ExportColor = flagExportColor
		}
		cfg.Audio = false

		p, err := player.New(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return p.Export(ctx)
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagExportDir, "dir", "", "output directory for frame files")
	exportCmd.Flags().BoolVar(&flagExportColor, "ansi", false, "include ANSI color codes in the files")

	rootCmd.AddCommand(exportCmd)
}
