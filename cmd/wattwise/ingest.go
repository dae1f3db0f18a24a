package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezoic/wattwise/config"
	"github.com/ezoic/wattwise/ingest"
	"github.com/ezoic/wattwise/internal/ui"
	"github.com/ezoic/wattwise/simulation"
)

var ingestOnce bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Record simulated live weather readings",
	Long:  "Generates one live reading per configured city and stores it, either once (--once) or on the ingest interval until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		gens := liveGenerators(cfg.Ingest.Cities)
		if ingestOnce {
			for _, g := range gens {
				r, err := ingest.RunOnce(ctx, g, st)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), ui.GetCrossMark()+" "+err.Error())
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %.2f°C, %.2f%% cloud, %.2f%% humidity\n",
					ui.GetCheckMark(), ui.Bold.Render(r.City), r.Temperature, r.CloudCover, r.Humidity)
			}
			return nil
		}

		sched := ingest.NewScheduler(st, cfg.Ingest.Interval, gens...)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
		<-ctx.Done()
		return nil
	},
}

func init() {
	f := ingestCmd.Flags()
	f.BoolVar(&ingestOnce, "once", false, "record a single reading per city and exit")
	f.Duration("interval", ingest.DefaultInterval, "time between readings")
	f.StringSlice("cities", []string{"Mumbai"}, "cities to record")
	cobra.CheckErr(v.BindPFlag(config.KeyIngestInterval, f.Lookup("interval")))
	cobra.CheckErr(v.BindPFlag(config.KeyIngestCities, f.Lookup("cities")))
}

// liveGenerators shares one clock-seeded source between the cities; the
// scheduler runs them one at a time.
func liveGenerators(cities []string) []ingest.Generator {
	// G404: Using math/rand for simulated readings (not cryptographic purposes)
	src := rand.NewPCG(uint64(time.Now().UnixNano()), 0)
	gens := make([]ingest.Generator, 0, len(cities))
	for _, city := range cities {
		gens = append(gens, simulation.NewLive(src, city))
	}
	return gens
}
