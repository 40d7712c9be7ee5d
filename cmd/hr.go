package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/hr"
	"github.com/spigell/hr-screener/internal/secrets"
)

var hrCmd = &cobra.Command{
	Use:   "hr",
	Short: "Send candidates to HR systems and export reports",
}

var hrSystemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List HR systems supported by the backend",
	Run: func(cmd *cobra.Command, _ []string) {
		app := newApplication()
		defer app.sync()

		systems, err := app.gateway().ListSupportedSystems(cmd.Context())
		if err != nil {
			app.logger.Fatal("failed to list hr systems", zap.Error(err))
		}

		for _, system := range systems {
			fmt.Fprintln(cmd.OutOrStdout(), system)
		}
	},
}

var hrValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the connection to the configured HR system",
	Run: func(cmd *cobra.Command, _ []string) {
		app := newApplication()
		defer app.sync()

		key := hrAPIKey(app)
		status, err := app.gateway().ValidateConnection(cmd.Context(), app.config.HR.System, key, app.config.HR.APIURL)
		if err != nil {
			app.logger.Fatal("failed to validate hr connection", zap.Error(err))
		}

		if !status.Valid {
			app.logger.Fatal("hr connection is not valid",
				zap.String("system", status.System),
				zap.Int("status_code", status.StatusCode),
				zap.String("error", status.Error),
			)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Connection to %s is valid\n", status.System)
	},
}

var hrSendCmd = &cobra.Command{
	Use:   "send <candidate-id>",
	Short: "Send a candidate to the configured HR system",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApplication()
		defer app.sync()

		key := hrAPIKey(app)
		result, err := app.gateway().SendCandidate(cmd.Context(), backend.CandidateID(args[0]), app.config.HR.System, key, app.config.HR.APIURL)
		if err != nil {
			app.logger.Fatal("failed to send candidate", zap.Error(err))
		}

		if !result.Success {
			app.logger.Fatal("hr system rejected candidate", zap.String("error", result.Error), zap.Int("status_code", result.StatusCode))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Candidate %s sent to %s\n", args[0], result.System)
	},
}

var hrExportCmd = &cobra.Command{
	Use:   "export <candidate-id>",
	Short: "Download a candidate report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApplication()
		defer app.sync()

		name, _ := cmd.Flags().GetString("format")
		format, err := hr.ParseFormat(name)
		if err != nil {
			app.logger.Fatal("bad export format", zap.Error(err))
		}

		export, err := app.gateway().ExportCandidate(cmd.Context(), backend.CandidateID(args[0]), format)
		if err != nil {
			app.logger.Fatal("failed to export candidate", zap.Error(err))
		}

		path, _ := cmd.Flags().GetString("out")
		saved, err := saveExport(cmd.OutOrStdout(), path, export)
		if err != nil {
			app.logger.Fatal("failed to save report", zap.String("path", saved), zap.Error(err))
		}

		app.logger.Info("report saved", zap.String("path", saved), zap.String("content_type", export.ContentType))
	},
}

// saveExport writes the report to path, to stdout for "-", or to the
// export's default file name when path is empty. It returns where the
// report went.
func saveExport(stdout io.Writer, path string, export *hr.Export) (string, error) {
	if path == "-" {
		_, err := stdout.Write(export.Data)
		return "stdout", err
	}
	if path == "" {
		path = export.Filename
	}

	return path, os.WriteFile(path, export.Data, 0o644)
}

// hrAPIKey resolves the HR system key. A key file wins over an inline key.
// A missing key is left to the gateway to report.
func hrAPIKey(app *application) string {
	key, err := secrets.LoadOptional(secrets.Source{
		Name:  "hr api key",
		Value: app.config.HR.APIKey,
		File:  app.config.HR.APIKeyFile,
	})
	if err != nil {
		app.logger.Fatal("failed to load hr api key",
			zap.Error(err),
			zap.String("hint", "set hr.api-key-file in config or SCREENER_HR_API_KEY_FILE"),
		)
	}
	return key
}

func init() {
	hrCmd.PersistentFlags().String("system", "", "hr system name (default from config hr.system)")
	hrCmd.PersistentFlags().String("hr-url", "", "hr system api url")
	hrCmd.PersistentFlags().String("api-key-file", "", "file with the hr system api key")

	viper.BindPFlag("hr.system", hrCmd.PersistentFlags().Lookup("system"))
	viper.BindPFlag("hr.api-url", hrCmd.PersistentFlags().Lookup("hr-url"))
	viper.BindPFlag("hr.api-key-file", hrCmd.PersistentFlags().Lookup("api-key-file"))

	hrExportCmd.Flags().String("format", string(hr.FormatJSON), "report format (json, pdf, excel)")
	hrExportCmd.Flags().StringP("out", "o", "", "output path, - for stdout (default candidate_<id>_report.<ext>)")

	hrCmd.AddCommand(hrSystemsCmd, hrValidateCmd, hrSendCmd, hrExportCmd)
	rootCmd.AddCommand(hrCmd)
}
