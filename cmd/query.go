package cmd

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/x-heep/socgen/internal/export"
)

var snapshotPath string

var queryCmd = &cobra.Command{
	Use:   "query [jsonpath]",
	Short: "Evaluate a JSONPath expression against a snapshot",
	Long: `Evaluate a JSONPath expression against the snapshot of a fresh run, or
against a snapshot file written by generate when --snapshot is set.

  socgen query '$.regions[*].components[?(@.name == "DMA")].address'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			results []any
			err     error
		)
		if snapshotPath != "" {
			results, err = querySnapshotFile(snapshotPath, args[0])
		} else {
			var snap *export.Snapshot
			if snap, _, err = synthesize(cmd); err != nil {
				return err
			}
			results, err = export.Query(snap, args[0])
		}
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(r))
		}
		return nil
	},
}

func querySnapshotFile(path, selector string) ([]any, error) {
	format, err := export.FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if format == export.FormatJSON {
		return export.QueryJSON(data, selector)
	}
	snap, err := export.Decode(data, format)
	if err != nil {
		return nil, err
	}
	return export.Query(snap, selector)
}

func init() {
	queryCmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "Snapshot file to query instead of running generation")
	rootCmd.AddCommand(queryCmd)
}
