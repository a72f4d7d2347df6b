// Package cmd provides command-line interface for disk image summaries.
package cmd

import (
	"fmt"

	"github.com/hansbonini/cbmtools/pkg"
	"github.com/spf13/cobra"
)

// infoCmd prints header, directory and error info statistics of a disk image.
var infoCmd = &cobra.Command{
	Use:   "info [image_file]",
	Short: "Summarize a disk image",
	Long: `Summarize a D64 or NIBCAP64 disk image: detected format and geometry,
header fields, soft write protection, directory size, block usage and the
number of sectors with a recorded read error.

Example:
  cbmtools info game.d64
  cbmtools info --yaml game.d64`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setVerbose(cmd); err != nil {
			return err
		}
		asYAML, err := cmd.Flags().GetBool("yaml")
		if err != nil {
			return fmt.Errorf("error getting yaml flag: %w", err)
		}

		processor := pkg.NewDiskProcessor()
		info, err := processor.Info(args[0])
		if err != nil {
			return fmt.Errorf("failed to read disk image: %w", err)
		}

		out := cmd.OutOrStdout()
		if asYAML {
			return processor.WriteYAML(out, info)
		}

		fmt.Fprintf(out, "Image:          %s\n", info.Image)
		fmt.Fprintf(out, "Format:         %s\n", info.Format)
		fmt.Fprintf(out, "Geometry:       %s, %d sectors\n", info.Geometry, info.TotalSectors)
		fmt.Fprintf(out, "Disk name:      %q\n", info.DiskName)
		fmt.Fprintf(out, "Disk ID:        %q\n", info.DiskID)
		fmt.Fprintf(out, "DOS:            %s (version %s)\n", info.DOSType, info.DOSVersion)
		fmt.Fprintf(out, "Write protect:  %v\n", info.WriteProtected)
		fmt.Fprintf(out, "Directory:      %d sectors, %d files\n", info.DirSectors, info.Files)
		fmt.Fprintf(out, "Blocks:         %d used, %d free\n", info.BlocksUsed, info.BlocksFree)
		fmt.Fprintf(out, "Sector errors:  %d\n", info.SectorErrors)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Bool("yaml", false, "Print the summary as YAML")
}
