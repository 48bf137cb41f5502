// Package main implements the trigger-rca server and command-line tools.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trigger-rca",
	Short: "Food trigger correlation and symptom pattern analysis",
	Long: `trigger-rca correlates logged foods with logged symptoms and reports the
likely triggers, recurring symptom patterns and a reliability score.

It runs as a gRPC + HTTP service (serve), as a one-shot analysis (analyze),
or loads occurrence exports into the local SQLite store (import).`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (defaults to $TRIGGER_RCA_CONFIG)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(importCmd)
}
