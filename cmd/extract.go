// Package cmd provides command-line interface for file extraction.
// This file contains the extract command writing every file of a disk
// image to a host directory.
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/hansbonini/cbmtools/pkg"
	"github.com/spf13/cobra"
)

// extractCmd extracts all files of a disk image.
// Each file is written under a host-safe name and recorded in manifest.yaml.
var extractCmd = &cobra.Command{
	Use:   "extract [image_file] [output_directory]",
	Short: "Extract all files from a disk image",
	Long: `Extract all files from a D64 or NIBCAP64 disk image.

This command will:
- Walk the directory chain on track 18
- Follow the sector chain of every used entry
- Write each file as NAME.prg, NAME.seq, ... into the output directory
- Generate manifest.yaml with the type, start sector, size and load address of each file

Files with a corrupt sector chain are skipped and listed in the manifest.
Unclosed files are skipped unless --all is given.

Example:
  cbmtools extract game.d64 ./output/
  cbmtools extract -v --all game.d64 ./output/`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		outputDir := args[1]

		if err := setVerbose(cmd); err != nil {
			return err
		}
		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			return fmt.Errorf("error getting all flag: %w", err)
		}
		writeManifest, err := cmd.Flags().GetBool("manifest")
		if err != nil {
			return fmt.Errorf("error getting manifest flag: %w", err)
		}

		processor := pkg.NewDiskProcessor()

		fmt.Printf("Processing disk image: %s\n", inputFile)
		fmt.Printf("Output directory: %s\n", outputDir)

		opts := pkg.DefaultExtractOptions()
		opts.IncludeUnclosed = all
		opts.WriteManifest = writeManifest
		manifest, err := processor.Extract(inputFile, outputDir, opts)
		if err != nil {
			return fmt.Errorf("failed to extract disk image: %w", err)
		}

		fmt.Println("Disk image extracted successfully!")
		fmt.Printf("- %d files extracted, %d skipped\n", len(manifest.Files), len(manifest.Skipped))
		if writeManifest {
			fmt.Printf("- Manifest saved to: %s\n", filepath.Join(outputDir, pkg.ManifestFileName))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolP("all", "a", false, "Also extract files whose closed flag is not set")
	extractCmd.Flags().Bool("manifest", true, "Write manifest.yaml into the output directory")
}
