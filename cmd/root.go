// Package cmd provides command-line interface functionality for CbmTools.
// CbmTools is a collection of utilities for inspecting and extracting
// Commodore 1541 disk images.
package cmd

import (
	"fmt"
	"os"

	"github.com/hansbonini/cbmtools/pkg/common"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the CbmTools application.
var rootCmd = &cobra.Command{
	Use:   "cbmtools",
	Short: "Tools for reading Commodore 1541 disk images",
	Long: `CbmTools - A collection of utilities for inspecting and extracting
Commodore 1541 disk images.

Currently supports:
  - D64 sector dumps (35 and 40 tracks, with or without error info)
  - NIBCAP64 nibble captures (2 samples per byte)

Examples:
  cbmtools dir game.d64
  cbmtools dir --all --yaml game.d64
  cbmtools extract game.d64 ./output/
  cbmtools chain --track 17 --sector 0 game.d64
  cbmtools info game.d64
  cbmtools convert game.d64 game.nib

Use 'cbmtools [command] --help' for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// setVerbose applies the -v flag of cmd to the shared logger
func setVerbose(cmd *cobra.Command) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("error getting verbose flag: %w", err)
	}
	common.SetVerboseMode(verbose)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output with per-sector and per-slot details")
}
