// Package cmd provides command-line interface for disk image conversion.
// This file contains the convert command rewriting an image in another container.
package cmd

import (
	"fmt"

	"github.com/hansbonini/cbmtools/pkg"
	"github.com/spf13/cobra"
)

// convertCmd writes the sector data of an image to a new file.
var convertCmd = &cobra.Command{
	Use:   "convert [input_file] [output_file]",
	Short: "Convert a disk image to D64 or NIBCAP64",
	Long: `Convert a disk image into a plain D64 sector dump or a NIBCAP64 capture.

The output container is chosen by extension: .nib writes NIBCAP64, anything
else writes a D64 without error info. The input file is never modified.

Example:
  cbmtools convert capture.nib game.d64
  cbmtools convert game.d64 game.nib`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		outputFile := args[1]

		if err := setVerbose(cmd); err != nil {
			return err
		}

		processor := pkg.NewDiskProcessor()

		fmt.Printf("Processing disk image: %s\n", inputFile)
		fmt.Printf("Output file: %s\n", outputFile)

		if err := processor.Convert(inputFile, outputFile); err != nil {
			return fmt.Errorf("failed to convert disk image: %w", err)
		}

		fmt.Println("Disk image converted successfully!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
