package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "brewhubctl",
		Short:   "BrewHub operations CLI - scheduled jobs and maintenance",
		Version: Version,
	}

	rootCmd.AddCommand(dispatchReportsCmd())
	rootCmd.AddCommand(retryDeliveriesCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
