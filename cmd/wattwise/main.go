// Command wattwise trains the solar efficiency model, serves the dashboard
// API and ingests simulated live weather.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
