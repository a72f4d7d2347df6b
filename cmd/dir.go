// Package cmd provides command-line interface for directory listings.
// This file contains the dir command printing the directory of a disk image.
package cmd

import (
	"fmt"

	"github.com/hansbonini/cbmtools/pkg"
	"github.com/spf13/cobra"
)

// dirCmd prints the directory of a disk image the way LOAD"$",8 shows it.
var dirCmd = &cobra.Command{
	Use:   "dir [image_file]",
	Short: "List the directory of a disk image",
	Long: `List the directory of a D64 or NIBCAP64 disk image.

Empty and scratched slots are hidden unless --all is given. Unclosed files
are marked with '*' and locked files with '<'.

Example:
  cbmtools dir game.d64
  cbmtools dir --all --yaml game.d64`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]

		if err := setVerbose(cmd); err != nil {
			return err
		}
		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			return fmt.Errorf("error getting all flag: %w", err)
		}
		asYAML, err := cmd.Flags().GetBool("yaml")
		if err != nil {
			return fmt.Errorf("error getting yaml flag: %w", err)
		}

		processor := pkg.NewDiskProcessor()

		opts := pkg.DefaultListOptions()
		opts.IncludeEmpty = all
		listing, err := processor.List(inputFile, opts)
		if err != nil {
			return fmt.Errorf("failed to list disk image: %w", err)
		}

		return processor.WriteListing(cmd.OutOrStdout(), listing, asYAML)
	},
}

func init() {
	rootCmd.AddCommand(dirCmd)

	dirCmd.Flags().BoolP("all", "a", false, "Include empty and scratched directory slots")
	dirCmd.Flags().Bool("yaml", false, "Print the listing as YAML")
}
