package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload PDF or DOCX resumes for analysis",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApplication()
		defer app.sync()

		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			result, err := app.client.UploadFile(cmd.Context(), path)
			if err != nil {
				failed++
				app.logger.Error("upload failed", zap.String("file", path), zap.Error(err))
				continue
			}

			category, relevance := "Unknown", 0.0
			if result.Analysis != nil {
				category, relevance = result.Analysis.Category, result.Analysis.RelevanceScore
			}
			fmt.Fprintf(out, "%s: candidate %s, %s, %s\n", path, result.CandidateID, category, score(relevance))
		}

		if failed == len(args) {
			app.logger.Fatal("no resumes were uploaded", zap.Int("failed", failed))
		}

		// Reload so the new candidates are visible right away.
		candidates := app.load(cmd.Context())
		app.logger.Info("candidate list refreshed", zap.Int("count", len(candidates)), zap.Int("failed", failed))
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
