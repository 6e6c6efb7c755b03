package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Nurse rostering solver",
	Long:  "Builds optimized nurse rosters with column generation and branch-and-bound.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(validateCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
