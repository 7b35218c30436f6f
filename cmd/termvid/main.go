// Package main provides the termvid CLI.
//
// Usage:
//
//	termvid [flags] <source>
//	termvid export [flags] <source>
//	termvid charsets
//
// The source is a video file path or a camera index ("0", "1", ...).
// Flags override the TERMVID_* environment variables; see
// 'termvid --help' for the full list.
package main

import (
	"fmt"
	"os"

	"github.com/termvid/termvid/cmd/termvid/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
