// Package cmd implements the garment CLI. Commands self-register through
// Register in their init() functions and are attached to the root by Apply.
package cmd

import (
	"fmt"
	"os"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"garment.GO/config"
)

var rootCmd = &cobra.Command{
	Use:   "garment",
	Short: "Garment order and delivery management toolbox",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
		config.LoadAppConfig()
	},
	Run: func(cmd *cobra.Command, args []string) {
		figure.NewFigure("garment", "", true).Print()
		fmt.Println()
		cmd.Help()
	},
}

// Execute runs the CLI. Called from the cli entrypoint.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
