package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezoic/wattwise/config"
	"github.com/ezoic/wattwise/dashboard"
	"github.com/ezoic/wattwise/forecast"
	"github.com/ezoic/wattwise/ingest"
	"github.com/ezoic/wattwise/pkg/log"
)

var serveIngest bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.GetLoggerWithName("serve")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// The dashboard degrades to 503 on model routes until a model exists.
		model, err := forecast.Load(cfg.Model.Path)
		if err != nil {
			logger.Warn("No model loaded, run `wattwise train` first", log.PathKey, cfg.Model.Path, log.ErrorKey, err)
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if serveIngest {
			sched := ingest.NewScheduler(st, cfg.Ingest.Interval, liveGenerators(cfg.Ingest.Cities)...)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		srv := dashboard.New(dashboard.Deps{
			Model:     model,
			Store:     st,
			Advisor:   newAdvisor(),
			AccessLog: true,
		})

		errc := make(chan error, 1)
		go func() {
			errc <- srv.Listen(cfg.Server.Addr)
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", log.ErrorKey, err)
		}
		return nil
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", ":8080", "listen address")
	f.BoolVar(&serveIngest, "ingest", false, "also record live readings on the ingest schedule")
	cobra.CheckErr(v.BindPFlag(config.KeyServerAddr, f.Lookup("addr")))
}
