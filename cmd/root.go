package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/metro-sampler/internal/config"
)

var (
	cfg     *config.Config
	offline bool
)

var rootCmd = &cobra.Command{
	Use:   "metro-sampler",
	Short: "Stratified sampling of US metropolitan areas",
	Long:  "Builds the MSA universe from Census, NTD and GBFS data, stratifies it by population, rail, shared mobility and census region, and draws a reproducible stratified sample.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if offline {
			c.Sources.Offline = true
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use built-in data instead of fetching sources")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
