package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a decision graph engine for conversational agents",
	Long: `Espalier turns retrieved rule matches and scenario candidates into a
consistent active set per turn: relationship-expanded rules, scenario
lifecycle decisions, step-skip transitions, and a ranked contribution plan.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the rule and scenario catalogs")
	rootCmd.PersistentFlags().String("config", "", "Path to an engine configuration YAML file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
