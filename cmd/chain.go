// Package cmd provides command-line interface for sector chain dumps.
// This file contains the chain command following the links of one
// sector chain.
package cmd

import (
	"fmt"

	"github.com/hansbonini/cbmtools/pkg"
	"github.com/hansbonini/cbmtools/pkg/cbm"
	"github.com/hansbonini/cbmtools/pkg/common"
	"github.com/spf13/cobra"
)

// chainCmd prints every sector of the chain starting at --track/--sector.
// The steps read before a corrupt link are printed before the error.
var chainCmd = &cobra.Command{
	Use:   "chain [image_file]",
	Short: "Follow a sector chain of a disk image",
	Long: `Follow the sector chain starting at the given track and sector.

For every sector the link bytes, the number of payload bytes and, when the
image carries error info, the recorded drive status are printed. Chains that
loop or point outside the disk stop with an error.

Example:
  cbmtools chain --track 18 --sector 1 game.d64
  cbmtools chain -t 17 -s 0 --yaml game.d64`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]

		if err := setVerbose(cmd); err != nil {
			return err
		}
		track, err := cmd.Flags().GetInt("track")
		if err != nil {
			return fmt.Errorf("error getting track flag: %w", err)
		}
		sector, err := cmd.Flags().GetInt("sector")
		if err != nil {
			return fmt.Errorf("error getting sector flag: %w", err)
		}
		asYAML, err := cmd.Flags().GetBool("yaml")
		if err != nil {
			return fmt.Errorf("error getting yaml flag: %w", err)
		}

		t, err := common.SafeIntToUint8(track)
		if err != nil {
			return fmt.Errorf("invalid track: %w", err)
		}
		s, err := common.SafeIntToUint8(sector)
		if err != nil {
			return fmt.Errorf("invalid sector: %w", err)
		}

		processor := pkg.NewDiskProcessor()
		steps, walkErr := processor.DumpChain(inputFile, cbm.TS(t, s))

		out := cmd.OutOrStdout()
		if asYAML {
			if err := processor.WriteYAML(out, steps); err != nil {
				return err
			}
		} else {
			for _, step := range steps {
				fmt.Fprintf(out, "%3d  %s -> %2d/%3d  %3d bytes", step.Index, cbm.TS(step.Track, step.Sector), step.NextTrack, step.NextSector, step.Bytes)
				if step.ErrorCode != "" {
					fmt.Fprintf(out, "  status %s", step.ErrorCode)
				}
				fmt.Fprintln(out)
			}
		}

		if walkErr != nil {
			return fmt.Errorf("failed to follow chain: %w", walkErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)

	chainCmd.Flags().IntP("track", "t", cbm.DirTrack, "Track of the first sector")
	chainCmd.Flags().IntP("sector", "s", cbm.FirstDirSector, "Sector of the first sector")
	chainCmd.Flags().Bool("yaml", false, "Print the chain as YAML")
}
