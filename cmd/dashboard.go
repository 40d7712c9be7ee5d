package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/chat"
	"github.com/spigell/hr-screener/internal/logger"
	"github.com/spigell/hr-screener/internal/metrics"
	"github.com/spigell/hr-screener/internal/ranking"
)

const (
	PromptRefresh   = "Refresh candidates"
	PromptFilter    = "Filter by category"
	PromptSort      = "Sort candidates"
	PromptDetails   = "Candidate details"
	PromptMatch     = "Match a job description"
	PromptHRChat    = "Ask the HR assistant"
	PromptQuit      = "Quit"
	PromptBack      = "back"
	PromptAnalysis  = "Analysis"
	PromptBias      = "Bias analysis"
	PromptBlind     = "Blind resume"
	PromptInterview = "Interview preparation"
	PromptProfiles  = "Profile enrichment"
	PromptEnrich    = "Enrich profiles now"
	PromptChat      = "Chat about this candidate"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive candidate dashboard",
	Run: func(cmd *cobra.Command, _ []string) {
		app := newApplication()
		defer app.sync()

		if addr := app.config.Metrics.Addr; addr != "" {
			stop := serveMetrics(app, addr)
			defer stop()
		}

		if status, err := app.client.Health(cmd.Context()); err != nil {
			app.logger.Warn("backend is not healthy", zap.Error(err))
		} else {
			app.logger.Debug("backend is healthy", zap.String("status", status.Status), zap.String("service", status.Service))
		}

		d := &dashboard{app: app, cmd: cmd, filter: ranking.FilterAll, sort: ranking.SortByDate}
		if err := d.run(); err != nil {
			app.logger.Fatal("dashboard stopped", zap.Error(err))
		}
	},
}

type dashboard struct {
	app    *application
	cmd    *cobra.Command
	filter string
	sort   ranking.SortKey
}

func (d *dashboard) ctx() context.Context {
	return d.cmd.Context()
}

func (d *dashboard) run() error {
	d.refresh()

	for {
		view := ranking.View(d.app.store.Snapshot(), d.filter, d.sort)
		renderCandidates(d.cmd.OutOrStdout(), view)

		prompt := promptui.Select{
			Label: fmt.Sprintf("%d of %d candidates. What next?", len(view), d.app.store.Len()),
			Items: []string{PromptRefresh, PromptFilter, PromptSort, PromptDetails, PromptMatch, PromptHRChat, PromptQuit},
		}

		_, selected, err := prompt.Run()
		if isPromptAbort(err) {
			return nil
		}
		if err != nil {
			return err
		}

		switch selected {
		case PromptRefresh:
			d.refresh()
		case PromptFilter:
			err = d.chooseFilter()
		case PromptSort:
			err = d.chooseSort()
		case PromptDetails:
			err = d.details(view)
		case PromptMatch:
			err = d.match()
		case PromptHRChat:
			err = d.hrChat()
		case PromptQuit:
			return nil
		}

		if err != nil && !isPromptAbort(err) {
			return err
		}
	}
}

func isPromptAbort(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}

// refresh reloads the store. A failure keeps the previous list on screen.
func (d *dashboard) refresh() {
	if _, err := d.app.store.Load(d.ctx()); err != nil {
		d.app.logger.Error("failed to refresh candidates", zap.Error(err))
	}
}

func (d *dashboard) chooseFilter() error {
	labels := make([]string, 0, len(ranking.FilterPresets))
	for _, p := range ranking.FilterPresets {
		labels = append(labels, p.Label)
	}

	i, _, err := (&promptui.Select{Label: "Category", Items: labels}).Run()
	if err != nil {
		return err
	}

	d.filter = ranking.FilterPresets[i].Key
	return nil
}

func (d *dashboard) chooseSort() error {
	labels := make([]string, 0, len(ranking.SortKeys))
	for _, k := range ranking.SortKeys {
		labels = append(labels, k.Label)
	}

	i, _, err := (&promptui.Select{Label: "Sort by", Items: labels}).Run()
	if err != nil {
		return err
	}

	d.sort = ranking.SortKeys[i].Key
	return nil
}

func (d *dashboard) match() error {
	jd, err := (&promptui.Prompt{Label: "Job description"}).Run()
	if err != nil {
		return err
	}

	result, err := d.app.orchestrator().Run(d.ctx(), d.app.store.Snapshot(), jd)
	if result == nil {
		d.app.logger.Error("matching failed", zap.Error(err))
		return nil
	}
	if err != nil {
		d.app.logger.Warn("matching interrupted, showing partial results", zap.Error(err))
	}

	renderMatches(d.cmd.OutOrStdout(), result.Ranked)
	return nil
}

func (d *dashboard) hrChat() error {
	session := chat.NewHRSession(d.app.client, d.app.chatOptions()...)
	defer session.Close()

	return chatLoop(d.cmd, session)
}

func (d *dashboard) details(view []backend.Candidate) error {
	if len(view) == 0 {
		return nil
	}

	items := make([]string, 0, len(view)+1)
	for i := range view {
		items = append(items, fmt.Sprintf("%s: %s (%s)", view[i].ID, view[i].Filename, view[i].Category()))
	}

	i, selected, err := (&promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: append(items, PromptBack),
	}).Run()
	if err != nil || selected == PromptBack {
		return err
	}

	return d.candidateMenu(view[i].ID)
}

// candidateMenu keeps one panel of each kind for the selected candidate.
// They are closed when the user goes back.
func (d *dashboard) candidateMenu(id backend.CandidateID) error {
	agg := d.app.aggregator()
	bias := agg.NewBiasPanel(id)
	interview := agg.NewInterviewPanel(id)
	enrichment := agg.NewEnrichmentPanel(id)
	defer bias.Close()
	defer interview.Close()
	defer enrichment.Close()

	out := d.cmd.OutOrStdout()
	log := logger.WithFields(d.app.logger, logger.CandidateFields(string(id))...)

	for {
		_, selected, err := (&promptui.Select{
			Label: fmt.Sprintf("Candidate %s", id),
			Items: []string{PromptAnalysis, PromptBias, PromptBlind, PromptInterview, PromptProfiles, PromptEnrich, PromptChat, PromptBack},
		}).Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptAnalysis:
			c, err := d.app.store.Get(id)
			if err != nil {
				log.Error("candidate is gone", zap.Error(err))
				return nil
			}
			renderCandidate(out, &c)
		case PromptBias:
			if report, err := bias.Open(d.ctx()); err != nil {
				log.Error("failed to load bias analysis", zap.Error(err))
			} else {
				renderBias(out, report)
			}
		case PromptBlind:
			if text, err := bias.ShowBlind(d.ctx()); err != nil {
				log.Error("failed to load blind resume", zap.Error(err))
			} else {
				fmt.Fprintln(out, text)
			}
		case PromptInterview:
			if bundle, err := interview.Open(d.ctx()); err != nil {
				log.Error("failed to load interview preparation", zap.Error(err))
			} else {
				renderInterview(out, bundle)
			}
		case PromptProfiles:
			if e, err := enrichment.Open(d.ctx()); err != nil {
				log.Error("failed to load candidate", zap.Error(err))
			} else {
				renderEnrichment(out, e)
			}
		case PromptEnrich:
			if e, err := enrichment.Enrich(d.ctx()); err != nil {
				log.Error("enrichment failed", zap.Error(err))
			} else {
				renderEnrichment(out, e)
			}
		case PromptChat:
			session := chat.NewCandidateSession(d.app.client, id, d.app.chatOptions()...)
			err := chatLoop(d.cmd, session)
			session.Close()
			if err != nil {
				return err
			}
		case PromptBack:
			return nil
		}
	}
}

// serveMetrics exposes the client counters until the returned func is called.
func serveMetrics(app *application, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(app.registry))

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		app.logger.Info("serving metrics", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
