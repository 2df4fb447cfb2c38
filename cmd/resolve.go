package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/metro-sampler/internal/resolve"
)

var resolveMode string

var resolveCmd = &cobra.Command{
	Use:   "resolve <text>",
	Short: "Resolve an urbanized-area name or location to a CBSA code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := resolve.ParseMode(resolveMode)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		u, err := env.Pipeline.BuildUniverse(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "resolve")
		}

		id := u.Resolver.Resolve(args[0], mode)
		if id == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "unresolved")
			return nil
		}
		for _, r := range u.Regions {
			if r.ID == id {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, r.Name)
				return nil
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveMode, "mode", string(resolve.ModeUZA), "resolution mode (uza, fragment)")
	rootCmd.AddCommand(resolveCmd)
}
