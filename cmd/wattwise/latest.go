package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezoic/wattwise/internal/ui"
)

var latestN int

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the newest recorded weather readings",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		readings, err := st.Latest(cmd.Context(), latestN)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.ReadingsTable(readings))
		return nil
	},
}

func init() {
	latestCmd.Flags().IntVarP(&latestN, "count", "n", 10, "number of readings")
}
