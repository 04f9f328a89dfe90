package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adampisula/musicdl-server/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the musicdl HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
