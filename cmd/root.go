package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adampisula/musicdl-server/server"
)

var rootCmd = &cobra.Command{
	Use:   "musicdl-server",
	Short: "musicdl-server resolves music URLs to downloadable audio artifacts.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
