// Command league-night-system runs the league-night commissioner service.
//
// Usage:
//
//	league-night-system serve
//	league-night-system import roster.csv
//	league-night-system export > roster.csv
//	league-night-system reset-presence
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading environment variables directly")
	}

	root := &cobra.Command{
		Use:           "league-night-system",
		Short:         "League-night team balancing, scheduling and publishing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(importCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(resetPresenceCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
