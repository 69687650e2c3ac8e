package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the SoC description synthesizes without writing anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, _, err := synthesize(cmd)
		if err != nil {
			return err
		}
		var comps int
		for _, r := range snap.Regions {
			comps += len(r.Components)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d regions, %d components, %d banks, %d connections, %d bundles)\n",
			snap.Name, len(snap.Regions), comps, len(snap.Memory.Banks),
			len(snap.Routing.Connections), len(snap.Routing.Bundles))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
