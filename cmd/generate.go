package cmd

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/x-heep/socgen/internal/export"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Synthesize the SoC and write snapshot files to the output directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}
		snap, log, err := synthesize(cmd)
		if err != nil {
			return err
		}

		files, err := export.NewEmitter(osfs.New(outDir), format, log).Emit(snap)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
