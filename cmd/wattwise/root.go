package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ezoic/wattwise/advice"
	"github.com/ezoic/wattwise/config"
	"github.com/ezoic/wattwise/internal/ui"
	"github.com/ezoic/wattwise/pkg/log"
	"github.com/ezoic/wattwise/store"
)

var (
	cfgFile string
	v       = viper.New()
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "wattwise",
	Short:         "Solar output forecasting from weather",
	Long:          "WattWise simulates weather, trains a gradient boosted model of solar panel efficiency and serves hourly forecasts with appliance advice.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./wattwise.yaml or ./config/wattwise.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console|json)")
	rootCmd.PersistentFlags().String("store", config.DriverSQLite, "record store (sqlite|memory)")
	cobra.CheckErr(v.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(v.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format")))
	cobra.CheckErr(v.BindPFlag(config.KeyStoreDriver, rootCmd.PersistentFlags().Lookup("store")))

	rootCmd.AddCommand(trainCmd, serveCmd, ingestCmd, predictCmd, latestCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.GetCrossMark()+" "+ui.Error.Render(err.Error()))
		return err
	}
	log.Setup(cfg.Log.Level, cfg.Log.Format)
	if used := v.ConfigFileUsed(); used != "" {
		fmt.Fprintln(os.Stderr, ui.Dim.Render("Using config file: ")+ui.Secondary.Render(used))
	}
	return nil
}

// openStore opens the configured record store.
func openStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Driver == config.DriverMemory {
		return store.NewMemory(cfg.Store.MaxHistory), nil
	}
	return store.OpenSQLite(ctx, cfg.Store.Path)
}

// newAdvisor wires the Gemini service when an API key is configured.
func newAdvisor() *advice.Advisor {
	if !cfg.AdviceEnabled() {
		return advice.NewAdvisor(nil)
	}
	return advice.NewAdvisor(advice.NewGemini(advice.GeminiConfig{
		APIKey:   cfg.Advice.APIKey,
		Endpoint: cfg.Advice.Endpoint,
		Model:    cfg.Advice.Model,
		Timeout:  cfg.Advice.Timeout,
	}))
}
