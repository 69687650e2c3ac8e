package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/x-heep/socgen/internal/export"
)

var buildCmd = &cobra.Command{
	Use:   "build [output.db]",
	Short: "Synthesize the SoC and store the run in a SQLite database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output := filepath.Join(outDir, "socgen.db")
		if len(args) == 1 {
			output = args[0]
		}

		snap, log, err := synthesize(cmd)
		if err != nil {
			return err
		}

		writer, err := export.NewSQLiteWriter(output, log)
		if err != nil {
			return err
		}
		defer func() { _ = writer.Close() }()

		if err := writer.Write(snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s stored in %s\n", snap.RunID, output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
