// Package main is the monty command: the HTTP API server and a one-shot resume analyzer.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/josephmathew0/Monty/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "monty",
	Short: "Career insights from a resume",
	Long: "Monty extracts a profile from a resume PDF, matches it to BLS occupations by " +
		"embedding similarity and reports salary and geographic employment insights.",
	SilenceUsage: true,
}

var envName string

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "",
		"Config environment (config/<env>.yaml), defaults to $ENV or local")
}

// resolveEnv returns the --env flag, falling back to $ENV.
func resolveEnv() string {
	if envName != "" {
		return envName
	}
	return config.GetEnv()
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
