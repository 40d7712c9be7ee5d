package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/ranking"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List analysed candidates",
	Run: func(cmd *cobra.Command, _ []string) {
		app := newApplication()
		defer app.sync()

		filter, _ := cmd.Flags().GetString("filter")
		sortBy, _ := cmd.Flags().GetString("sort")

		candidates := app.load(cmd.Context())
		view := ranking.View(candidates, filter, ranking.ParseSortKey(sortBy))

		app.logger.Debug("rendering candidates",
			zap.Int("total", len(candidates)),
			zap.Int("shown", len(view)),
			zap.String("filter", filter),
		)

		renderCandidates(cmd.OutOrStdout(), view)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <candidate-id>",
	Short: "Show the analysis of one candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApplication()
		defer app.sync()

		app.load(cmd.Context())

		candidate, err := app.store.Get(backend.CandidateID(args[0]))
		if err != nil {
			app.logger.Fatal("failed to show candidate", zap.Error(err))
		}

		renderCandidate(cmd.OutOrStdout(), &candidate)
	},
}

func filterKeys() string {
	keys := make([]string, 0, len(ranking.FilterPresets))
	for _, p := range ranking.FilterPresets {
		keys = append(keys, p.Key)
	}
	return strings.Join(keys, ", ")
}

func sortKeys() string {
	keys := make([]string, 0, len(ranking.SortKeys))
	for _, k := range ranking.SortKeys {
		keys = append(keys, string(k.Key))
	}
	return strings.Join(keys, ", ")
}

func init() {
	candidatesCmd.Flags().StringP("filter", "f", ranking.FilterAll, fmt.Sprintf("category filter (%s)", filterKeys()))
	candidatesCmd.Flags().StringP("sort", "s", string(ranking.SortByDate), fmt.Sprintf("sort order (%s)", sortKeys()))

	rootCmd.AddCommand(candidatesCmd)
	rootCmd.AddCommand(showCmd)
}
