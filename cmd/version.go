package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set with -ldflags "-X github.com/spigell/hr-screener/cmd.version=...".
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and optionally the backend status",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s version: %s\n", app, version)

		if check, _ := cmd.Flags().GetBool("backend"); !check {
			return
		}

		screener := newApplication()
		defer screener.sync()

		status, err := screener.client.Health(cmd.Context())
		if err != nil {
			screener.logger.Fatal("backend is unreachable", zap.String("api_url", screener.client.APIURL), zap.Error(err))
		}
		fmt.Fprintf(out, "backend %s: %s (%s)\n", screener.client.APIURL, status.Status, status.Service)
	},
}

func init() {
	versionCmd.Flags().Bool("backend", false, "also query the backend health endpoint")

	rootCmd.AddCommand(versionCmd)
}
