package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0"
	cfgFile       string
	startMode     string
	approvalMode  string
	modelOverride string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aircher",
		Short: "Autonomous coding agent for your terminal",
		Long: `Aircher is an autonomous coding agent. It converses with a model,
executes the tools the model requests under a risk-classification policy,
and asks for approval before anything dangerous. Plan mode explores without
changing anything; build mode makes changes.`,
		RunE: runApp,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/aircher/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&startMode, "mode", "", "starting agent mode: plan or build")
	rootCmd.PersistentFlags().StringVar(&approvalMode, "approval", "", "approval mode: review, smart, auto, readonly")
	rootCmd.PersistentFlags().StringVar(&modelOverride, "model", "", "route every request to this model, ignoring the routing table")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("aircher version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
