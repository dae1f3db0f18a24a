package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezoic/wattwise/advice"
	"github.com/ezoic/wattwise/forecast"
	"github.com/ezoic/wattwise/internal/ui"
	"github.com/ezoic/wattwise/weather"
)

var predictSample weather.Sample

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the solar efficiency of one hour",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := predictSample
		if s.DayOfYear == 0 {
			s.DayOfYear = time.Now().YearDay()
		}
		if s.HourOfDay < 0 || s.HourOfDay > 23 {
			return fmt.Errorf("invalid --hour %d: expected 0..23", s.HourOfDay)
		}
		if s.DayOfYear < 1 || s.DayOfYear > 366 {
			return fmt.Errorf("invalid --day-of-year %d: expected 1..366", s.DayOfYear)
		}

		h, err := forecast.Load(cfg.Model.Path)
		if err != nil {
			return err
		}
		eff, err := h.Efficiency(s)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Advice.Timeout)
		defer cancel()
		text, _ := newAdvisor().Advise(ctx, advice.NewRequest(eff, s.Temperature, s.CloudCover, s.Humidity, s.HourOfDay))

		fmt.Fprintln(cmd.OutOrStdout(), ui.PredictionReport(s, eff, text))
		return nil
	},
}

func init() {
	f := predictCmd.Flags()
	f.Float64Var(&predictSample.Temperature, "temperature", forecast.DefaultConditions.Temperature, "air temperature in °C")
	f.Float64Var(&predictSample.CloudCover, "cloud-cover", forecast.DefaultConditions.CloudCover, "cloud cover in percent")
	f.Float64Var(&predictSample.Humidity, "humidity", forecast.DefaultConditions.Humidity, "relative humidity in percent")
	f.IntVar(&predictSample.HourOfDay, "hour", 12, "hour of day (0..23)")
	f.IntVar(&predictSample.DayOfYear, "day-of-year", 0, "day of year (1..366); default today")
}
