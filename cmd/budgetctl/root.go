package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/familybudget/backend/internal/config"
)

var (
	flagDatabaseURL string
	flagQuiet       bool
)

var rootCmd = &cobra.Command{
	Use:           "budgetctl",
	Short:         "Family budget operator CLI",
	Long:          "Apply schema migrations and reconcile ledger summaries against the expense archive.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only print problems")
}

// databaseURL prefers the flag over the environment.
func databaseURL() string {
	if flagDatabaseURL != "" {
		return flagDatabaseURL
	}
	return config.Load().DatabaseURL
}
