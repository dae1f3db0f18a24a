package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezoic/wattwise/config"
	"github.com/ezoic/wattwise/internal/ui"
	"github.com/ezoic/wattwise/simulation"
	"github.com/ezoic/wattwise/training"
)

var (
	trainStart      string
	trainNoBaseline bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Generate a synthetic year of weather and train the solar model",
	Long:  "Generates days×24 hourly records with the weather simulator, trains the gradient boosted regressor on an 80/20 split and writes the model artifact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed := cfg.Training.Seed

		var simOpts []simulation.Option
		if trainStart != "" {
			start, err := time.Parse(time.DateOnly, trainStart)
			if err != nil {
				return fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", trainStart)
			}
			simOpts = append(simOpts, simulation.WithStart(start))
		}

		// G404: Using math/rand for simulation noise (not cryptographic purposes)
		sim := simulation.New(rand.NewPCG(seed, seed), simOpts...)
		records, err := sim.Generate(cfg.Training.Days)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.DatasetReport(simulation.Summarize(records)))

		params := training.DefaultParams()
		params.Seed = int(seed)
		opts := []training.Option{training.WithParams(params), training.WithSplit(training.DefaultTestFraction, seed)}
		if trainNoBaseline {
			opts = append(opts, training.WithoutBaseline())
		}
		res, err := training.NewPipeline(opts...).Train(records)
		if err != nil {
			return err
		}

		if err := training.SaveModel(res.Model, cfg.Model.Path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.TrainingReport(res, cfg.Model.Path))
		return nil
	},
}

func init() {
	f := trainCmd.Flags()
	f.Int("days", simulation.DefaultDays, "days of hourly weather to simulate")
	f.Uint64("seed", training.DefaultSeed, "seed for the simulator, the split and the regressor")
	f.String("model", training.DefaultModelPath, "where to write the model artifact")
	f.StringVar(&trainStart, "start", "", "first simulated day (YYYY-MM-DD); default ends the window today")
	f.BoolVar(&trainNoBaseline, "no-baseline", false, "skip the linear baseline")
	cobra.CheckErr(v.BindPFlag(config.KeyTrainingDays, f.Lookup("days")))
	cobra.CheckErr(v.BindPFlag(config.KeyTrainingSeed, f.Lookup("seed")))
	cobra.CheckErr(v.BindPFlag(config.KeyModelPath, f.Lookup("model")))
}
