package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/metro-sampler/internal/report"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Build the universe and draw a stratified sample",
	Long:  "Loads the sources, stratifies the universe, draws the sample, writes the configured outputs and prints the summary report.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applySampleFlags(cmd); err != nil {
			return err
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Run(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "sample")
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, report.Summary(res.Sample, res.Universe.Regions))
		fmt.Fprintln(out)
		for _, path := range []string{res.Outputs.CSV, res.Outputs.XLSX, res.Outputs.Report, res.Outputs.GeoJSON} {
			if path != "" {
				fmt.Fprintf(out, "wrote %s\n", path)
			}
		}
		if res.RunID != "" {
			fmt.Fprintf(out, "archived run %s\n", res.RunID)
		}
		return nil
	},
}

// applySampleFlags copies explicitly set flags over the loaded config.
func applySampleFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("seed") {
		seed, err := f.GetUint64("seed")
		if err != nil {
			return err
		}
		cfg.Sampling.Seed = seed
	}
	if f.Changed("target") {
		target, err := f.GetInt("target")
		if err != nil {
			return err
		}
		cfg.Sampling = cfg.Sampling.WithTarget(target)
	}
	if f.Changed("out") {
		dir, err := f.GetString("out")
		if err != nil {
			return err
		}
		cfg.Output.Dir = dir
	}
	if f.Changed("xlsx") {
		xlsx, err := f.GetBool("xlsx")
		if err != nil {
			return err
		}
		cfg.Output.XLSX = xlsx
	}
	return nil
}

func init() {
	sampleCmd.Flags().Uint64("seed", 0, "random seed (default from config)")
	sampleCmd.Flags().Int("target", 0, "target sample size (default from config)")
	sampleCmd.Flags().String("out", "", "output directory (default from config)")
	sampleCmd.Flags().Bool("xlsx", false, "also write the XLSX workbook")
	rootCmd.AddCommand(sampleCmd)
}
