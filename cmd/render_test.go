package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/matching"
)

func init() {
	colorize = false
}

func TestRenderCandidatesEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderCandidates(&buf, nil)

	if got := buf.String(); got != "No candidates found\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderCandidates(t *testing.T) {
	var buf bytes.Buffer
	renderCandidates(&buf, []backend.Candidate{
		{
			ID:        "7",
			Filename:  "jane.pdf",
			CreatedAt: "2024-03-01 10:20:30",
			AnalysisResult: &backend.AnalysisResult{
				Category:        "Highly Qualified",
				RelevanceScore:  87,
				YearsExperience: 6,
			},
		},
		{ID: "8", Filename: "raw.docx"},
	})

	out := buf.String()
	for _, want := range []string{"jane.pdf", "Highly Qualified", "87%", "6 years", "2024-03-01 10:20", "raw.docx", "Unknown"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderMatchesMarksStoredResults(t *testing.T) {
	var buf bytes.Buffer
	renderMatches(&buf, []matching.Ranked{
		{Candidate: backend.Candidate{ID: "1", Filename: "a.pdf"}, Result: backend.JDMatchResult{MatchScore: 91, Explanation: "strong"}, Source: matching.SourceMatched},
		{Candidate: backend.Candidate{ID: "2", Filename: "b.pdf"}, Result: backend.JDMatchResult{MatchScore: 40}, Source: matching.SourceFallback},
	})

	out := buf.String()
	assert.Contains(t, out, "Excellent Match")
	assert.Contains(t, out, "Poor Match (stored)")
	assert.Less(t, strings.Index(out, "a.pdf"), strings.Index(out, "b.pdf"))
}

func TestRenderBias(t *testing.T) {
	rec := "Use neutral wording"
	var buf bytes.Buffer
	renderBias(&buf, &backend.BiasReport{
		BiasAnalysis: &backend.BiasAnalysis{
			OverallBiasScore: 35,
			BiasFreeScore:    65,
			GenderBias:       backend.GenderBias{Score: 50, MaleTerms: 3, Recommendation: &rec},
		},
		RemovedPersonalInfo:  map[string][]string{"emails": {"jane@example.com"}},
		BlindResumeAvailable: true,
	})

	out := buf.String()
	assert.Contains(t, out, "35.0 (Medium Bias)")
	assert.Contains(t, out, "male 3, female 0, neutral 0")
	assert.Contains(t, out, rec)
	assert.Contains(t, out, "emails: jane@example.com")
	assert.Contains(t, out, "--blind")
}

func TestRenderBiasMissingAnalysis(t *testing.T) {
	var buf bytes.Buffer
	renderBias(&buf, &backend.BiasReport{})

	assert.Equal(t, "Bias analysis is not available\n", buf.String())
}

func TestRenderInterviewSkipsEmptyCategories(t *testing.T) {
	var buf bytes.Buffer
	renderInterview(&buf, &backend.InterviewBundle{
		InterviewQuestions: backend.InterviewQuestions{Questions: backend.QuestionSet{
			TechnicalQuestions: []string{"Explain goroutines"},
		}},
		RedFlagsAnalysis: backend.RedFlagsAnalysis{
			RiskLevel: "Low",
			RedFlags: map[string]backend.RedFlag{
				"employment_gaps": {Detected: true, Severity: 2, Details: []string{"gap in 2020"}},
				"job_hopping":     {Detected: false},
			},
		},
		PersonalityInsights: backend.PersonalityInsights{
			DominantTraits: []backend.TraitScore{{Trait: "leadership", Score: 82}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Technical Questions")
	assert.Contains(t, out, "1. Explain goroutines")
	assert.NotContains(t, out, "Behavioral Questions")
	assert.Contains(t, out, "employment gaps")
	assert.NotContains(t, out, "job hopping")
	assert.Contains(t, out, "leadership 82")
}

func TestRenderEnrichment(t *testing.T) {
	var buf bytes.Buffer
	renderEnrichment(&buf, nil)
	assert.Equal(t, "No enrichment data yet\n", buf.String())

	buf.Reset()
	renderEnrichment(&buf, &backend.ProfileEnrichment{
		LinkedinProfiles: []*backend.LinkedinProfile{{URL: "https://linkedin.com/in/jane", Connections: 500}},
		GithubProfiles:   []*backend.GithubProfile{nil, {URL: "https://github.com/jane", PublicRepos: 12}},
	})

	out := buf.String()
	assert.Contains(t, out, "https://linkedin.com/in/jane")
	assert.Contains(t, out, "500")
	assert.Contains(t, out, "https://github.com/jane")
	assert.Contains(t, out, "12")
}
