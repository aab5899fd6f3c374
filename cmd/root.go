package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunga-io/tunga/cmd/flags"
)

var RootCmd = &cobra.Command{
	Use:   "tunga",
	Short: "Tunga task marketplace backend",
	Long:  `Tasks, participation, progress milestones and owner reminders behind a JSON API.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&flags.DataDir, "data", "data", "data folder")
	RootCmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "start with debug mode")
	RootCmd.PersistentFlags().BoolVar(&flags.Dev, "dev", false, "start with dev mode")
	RootCmd.PersistentFlags().BoolVar(&flags.LogStd, "log-std", false, "force to log to std")
}
