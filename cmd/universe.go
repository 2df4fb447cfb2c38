package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Print the stratified region universe as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		u, err := env.Pipeline.BuildUniverse(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "universe")
		}

		for _, w := range u.Check.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(u.Regions)
	},
}

func init() {
	rootCmd.AddCommand(universeCmd)
}
