package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
)

var biasCmd = &cobra.Command{
	Use:   "bias <candidate-id>",
	Short: "Show the bias analysis of a candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApplication()
		defer app.sync()

		app.load(cmd.Context())

		panel := app.aggregator().NewBiasPanel(backend.CandidateID(args[0]))
		defer panel.Close()

		report, err := panel.Open(cmd.Context())
		if err != nil {
			app.logger.Fatal("failed to load bias analysis", zap.Error(err))
		}

		out := cmd.OutOrStdout()
		renderBias(out, report)

		if blind, _ := cmd.Flags().GetBool("blind"); !blind {
			return
		}

		text, err := panel.ShowBlind(cmd.Context())
		if err != nil {
			app.logger.Fatal("failed to load blind resume", zap.Error(err))
		}
		fmt.Fprintf(out, "\nBlind resume:\n%s\n", text)
	},
}

var interviewCmd = &cobra.Command{
	Use:   "interview <candidate-id>",
	Short: "Show interview preparation for a candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApplication()
		defer app.sync()

		panel := app.aggregator().NewInterviewPanel(backend.CandidateID(args[0]))
		defer panel.Close()

		bundle, err := panel.Open(cmd.Context())
		if err != nil {
			app.logger.Fatal("failed to load interview preparation", zap.Error(err))
		}

		renderInterview(cmd.OutOrStdout(), bundle)
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich <candidate-id>",
	Short: "Show or run profile enrichment for a candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApplication()
		defer app.sync()

		app.load(cmd.Context())

		panel := app.aggregator().NewEnrichmentPanel(backend.CandidateID(args[0]))
		defer panel.Close()

		enrichment, err := panel.Open(cmd.Context())
		if err != nil {
			app.logger.Fatal("failed to load candidate", zap.Error(err))
		}

		if run, _ := cmd.Flags().GetBool("run"); run {
			enrichment, err = panel.Enrich(cmd.Context())
			if err != nil {
				app.logger.Fatal("enrichment failed", zap.Error(err))
			}
		}

		renderEnrichment(cmd.OutOrStdout(), enrichment)
	},
}

func init() {
	biasCmd.Flags().Bool("blind", false, "also print the blind resume")
	enrichCmd.Flags().Bool("run", false, "request a new enrichment from the backend")

	rootCmd.AddCommand(biasCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(enrichCmd)
}
