package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank every candidate against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		app := newApplication()
		defer app.sync()

		jd, err := jobDescription(cmd)
		if err != nil {
			app.logger.Fatal("failed to read job description", zap.Error(err))
		}

		candidates := app.load(cmd.Context())

		result, err := app.orchestrator().Run(cmd.Context(), candidates, jd)
		if result == nil {
			app.logger.Fatal("matching failed", zap.Error(err))
		}
		if err != nil {
			app.logger.Warn("matching interrupted, showing partial results", zap.Error(err))
		}

		renderMatches(cmd.OutOrStdout(), result.Ranked)
	},
}

func jobDescription(cmd *cobra.Command) (string, error) {
	jd, _ := cmd.Flags().GetString("jd")
	file, _ := cmd.Flags().GetString("jd-file")

	if file == "" {
		return jd, nil
	}
	if jd != "" {
		return "", errors.New("--jd and --jd-file are mutually exclusive")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func init() {
	matchCmd.Flags().String("jd", "", "job description text")
	matchCmd.Flags().String("jd-file", "", "file with the job description")

	rootCmd.AddCommand(matchCmd)
}
