package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/olekukonko/tablewriter"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/matching"
	"github.com/spigell/hr-screener/internal/ranking"
	"github.com/spigell/hr-screener/internal/utils"
)

var tones = map[ranking.Tone]func(interface{}) string{
	ranking.ToneSuccess:   promptui.Styler(promptui.FGGreen),
	ranking.ToneWarning:   promptui.Styler(promptui.FGYellow),
	ranking.ToneDanger:    promptui.Styler(promptui.FGRed),
	ranking.ToneInfo:      promptui.Styler(promptui.FGCyan),
	ranking.ToneSecondary: promptui.Styler(promptui.FGFaint),
}

// colorize is swapped out in tests.
var colorize = true

const resumePreview = 500

func badge(text string, tone ranking.Tone) string {
	style, ok := tones[tone]
	if !colorize || !ok {
		return text
	}
	return style(text)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	return table
}

func score(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func renderCandidates(w io.Writer, candidates []backend.Candidate) {
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No candidates found")
		return
	}

	table := newTable(w, "ID", "File", "Category", "Score", "Experience", "Uploaded")
	for i := range candidates {
		c := &candidates[i]
		category := c.Category()
		if category == "" {
			category = "Unknown"
		}

		uploaded := "-"
		if t := c.CreatedTime(); !t.IsZero() {
			uploaded = t.Format("2006-01-02 15:04")
		}

		table.Append([]string{
			c.ID.String(),
			c.Filename,
			badge(category, ranking.CategoryBadge(category)),
			badge(score(c.RelevanceScore()), ranking.ScoreTier(c.RelevanceScore())),
			fmt.Sprintf("%.0f years", c.YearsExperience()),
			uploaded,
		})
	}
	table.Render()
}

func renderCandidate(w io.Writer, c *backend.Candidate) {
	fmt.Fprintf(w, "Candidate %s (%s)\n", c.ID, c.Filename)

	a := c.AnalysisResult
	if a == nil {
		fmt.Fprintln(w, "Analysis is not available")
		return
	}
	if a.Error != "" {
		fmt.Fprintf(w, "Analysis error: %s\n", a.Error)
	}

	table := newTable(w, "Field", "Value")
	table.AppendBulk([][]string{
		{"Category", badge(a.Category, ranking.CategoryBadge(a.Category))},
		{"Relevance", badge(score(a.RelevanceScore), ranking.ScoreTier(a.RelevanceScore))},
		{"Experience", fmt.Sprintf("%.0f years", a.YearsExperience)},
		{"Key skills", list(a.KeySkills)},
		{"Hidden skills", list(a.HiddenSkills)},
		{"Previous roles", list(a.PreviousRoles)},
		{"Education", a.Education},
		{"Certifications", list(a.Certifications)},
		{"Achievements", list(a.ProjectsAchievements)},
	})
	if m := c.JDMatchResult; m != nil {
		level := ranking.MatchLevel(m.MatchScore)
		table.Append([]string{"Job match", badge(fmt.Sprintf("%s (%s)", score(m.MatchScore), level.Label), level.Tone)})
	}
	if r := c.AdvancedRanking; r != nil {
		table.Append([]string{"Advanced score", fmt.Sprintf("%.1f %s", r.OverallAdvancedScore, r.RankingTier)})
	}
	table.Render()

	if a.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", a.Summary)
	}
	if c.ResumeText != "" {
		fmt.Fprintf(w, "\nResume: %s\n", utils.TruncateForLog(c.ResumeText, resumePreview))
	}
}

func renderMatches(w io.Writer, ranked []matching.Ranked) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No candidates matched")
		return
	}

	table := newTable(w, "#", "ID", "File", "Match", "Level", "Explanation")
	for i, r := range ranked {
		level := ranking.MatchLevel(r.Result.MatchScore)
		label := level.Label
		if r.Source == matching.SourceFallback {
			label += " (stored)"
		}
		table.Append([]string{
			fmt.Sprint(i + 1),
			r.Candidate.ID.String(),
			r.Candidate.Filename,
			badge(score(r.Result.MatchScore), ranking.ScoreTier(r.Result.MatchScore)),
			badge(label, level.Tone),
			r.Result.Explanation,
		})
	}
	table.Render()
}

func recommendation(r *string) string {
	if r == nil || *r == "" {
		return "-"
	}
	return *r
}

func renderBias(w io.Writer, report *backend.BiasReport) {
	b := report.BiasAnalysis
	if b == nil {
		fmt.Fprintln(w, "Bias analysis is not available")
		return
	}

	level := ranking.BiasLevel(b.OverallBiasScore)
	fmt.Fprintf(w, "Overall bias: %s  Bias free: %s\n",
		badge(fmt.Sprintf("%.1f (%s)", b.OverallBiasScore, level.Label), level.Tone),
		badge(score(b.BiasFreeScore), ranking.ScoreTier(b.BiasFreeScore)),
	)

	table := newTable(w, "Dimension", "Score", "Indicators", "Recommendation")
	rows := []struct {
		name       string
		score      float64
		indicators string
		rec        *string
	}{
		{"Gender", b.GenderBias.Score, fmt.Sprintf("male %d, female %d, neutral %d", b.GenderBias.MaleTerms, b.GenderBias.FemaleTerms, b.GenderBias.NeutralTerms), b.GenderBias.Recommendation},
		{"Age", b.AgeBias.Score, fmt.Sprint(b.AgeBias.AgeIndicators), b.AgeBias.Recommendation},
		{"Location", b.LocationBias.Score, fmt.Sprint(b.LocationBias.LocationIndicators), b.LocationBias.Recommendation},
		{"Education", b.EducationBias.Score, fmt.Sprint(b.EducationBias.EducationIndicators), b.EducationBias.Recommendation},
	}
	for _, row := range rows {
		l := ranking.BiasLevel(row.score)
		table.Append([]string{row.name, badge(fmt.Sprintf("%.1f", row.score), l.Tone), row.indicators, recommendation(row.rec)})
	}
	table.Render()

	for _, rec := range b.BiasRecommendations {
		fmt.Fprintf(w, "- %s\n", rec)
	}

	removed := b.RemovedPersonalInfo
	if len(removed) == 0 {
		removed = report.RemovedPersonalInfo
	}
	if len(removed) > 0 {
		keys := make([]string, 0, len(removed))
		for k := range removed {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(w, "\nRemoved personal information:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, list(removed[k]))
		}
	}

	if report.BlindResumeAvailable {
		fmt.Fprintln(w, "\nBlind resume is available (use --blind)")
	}
}

func renderInterview(w io.Writer, bundle *backend.InterviewBundle) {
	summary := bundle.PreparationSummary
	fmt.Fprintf(w, "Questions: %d\n", summary.TotalQuestions)
	fmt.Fprintf(w, "Key traits: %s\n", list(summary.KeyPersonalityTraits))
	fmt.Fprintf(w, "Focus: %s\n", list(summary.PreparationFocus))

	for _, category := range bundle.InterviewQuestions.Questions.Categories() {
		if len(category.Questions) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", category.Name)
		for i, q := range category.Questions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, q)
		}
	}

	flags := bundle.RedFlagsAnalysis
	fmt.Fprintf(w, "\nRisk: %s (%.0f/25)\n", badge(flags.RiskLevel, ranking.RiskBadge(flags.RiskLevel)), flags.OverallRiskScore)

	names := make([]string, 0, len(flags.RedFlags))
	for name, flag := range flags.RedFlags {
		if flag.Detected {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) > 0 {
		table := newTable(w, "Red flag", "Severity", "Details")
		for _, name := range names {
			flag := flags.RedFlags[name]
			table.Append([]string{
				strings.ReplaceAll(name, "_", " "),
				badge(fmt.Sprintf("%.0f/5", flag.Severity), ranking.SeverityTier(flag.Severity)),
				list(flag.Details),
			})
		}
		table.Render()
	}
	for _, rec := range flags.Recommendations {
		fmt.Fprintf(w, "- %s\n", rec)
	}

	insights := bundle.PersonalityInsights
	if len(insights.DominantTraits) > 0 {
		fmt.Fprintln(w, "\nDominant traits:")
		for _, t := range insights.DominantTraits {
			fmt.Fprintf(w, "  %s %s\n", t.Trait, badge(fmt.Sprintf("%.0f", t.Score), ranking.PersonalityTier(t.Score)))
		}
	}
	style := insights.StyleAnalysis
	if style.WritingStyle != "" {
		fmt.Fprintf(w, "Writing style: %s, %.1f words per sentence, %d action verbs, %d quantified achievements\n",
			style.WritingStyle, style.AvgSentenceLength, style.ActionVerbCount, style.QuantifiableAchievements)
	}
	for _, insight := range insights.Insights {
		fmt.Fprintf(w, "- %s\n", insight)
	}

	strategy := bundle.InterviewStrategy
	if strategy.InterviewStyle != "" {
		fmt.Fprintf(w, "\nInterview style: %s\n", strategy.InterviewStyle)
	}
	fmt.Fprintf(w, "Ask: %s\n", list(strategy.KeyQuestionsToAsk))
	fmt.Fprintf(w, "Follow up: %s\n", list(strategy.FollowUpTopics))
	fmt.Fprintf(w, "Assess: %s\n", list(strategy.AssessmentCriteria))
}

func renderEnrichment(w io.Writer, e *backend.ProfileEnrichment) {
	if e == nil || (len(e.LinkedinProfiles) == 0 && len(e.GithubProfiles) == 0) {
		fmt.Fprintln(w, "No enrichment data yet")
		return
	}

	if len(e.LinkedinProfiles) > 0 {
		table := newTable(w, "LinkedIn", "Name", "Headline", "Location", "Connections")
		for _, p := range e.LinkedinProfiles {
			if p == nil {
				continue
			}
			table.Append([]string{p.URL, p.Name, p.Headline, p.Location, fmt.Sprint(p.Connections)})
		}
		table.Render()
	}

	if len(e.GithubProfiles) > 0 {
		table := newTable(w, "GitHub", "Name", "Bio", "Repos", "Followers", "Following")
		for _, p := range e.GithubProfiles {
			if p == nil {
				continue
			}
			table.Append([]string{p.URL, p.Name, p.Bio, fmt.Sprint(p.PublicRepos), fmt.Sprint(p.Followers), fmt.Sprint(p.Following)})
		}
		table.Render()
	}
}
