package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pixelmill/internal/sniff"
)

func newSniffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sniff <file>...",
		Short: "Identify image formats from file contents",
		Long:  "Reads each file and reports the format detected from its leading bytes, ignoring the file extension.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				ext, mime := "unknown", ""
				if result, ok := sniff.Detect(data); ok {
					ext, mime = result.Extension, result.MIME
				}
				rows = append(rows, []string{path, ext, mime, fmt.Sprintf("%d", len(data))})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Format", "MIME", "Bytes"}, rows, 4))
			return nil
		},
	}
}
