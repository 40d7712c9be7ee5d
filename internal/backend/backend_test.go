package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(zap.NewNop(), Options{APIURL: srv.URL + "/"})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestNewDefaults(t *testing.T) {
	c := New(nil, Options{})

	if c.APIURL != DefaultAPIURL {
		t.Fatalf("expected default api url, got %q", c.APIURL)
	}
	if c.UserAgent != userAgent {
		t.Fatalf("expected default user agent, got %q", c.UserAgent)
	}
	if c.HTTPClient.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %s", c.HTTPClient.Timeout)
	}
}

func TestListCandidates(t *testing.T) {
	var requestID atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/api/candidates", func(w http.ResponseWriter, r *http.Request) {
		requestID.Store(r.Header.Get(requestIDHeader))
		writeJSON(w, http.StatusOK, `{"candidates": [
			{"id": 7, "filename": "a.pdf", "created_at": "2024-05-01 10:00:00",
			 "analysis_result": {"relevance_score": 85, "category": "Highly Qualified", "years_experience": "5", "key_skills": ["Go"]}},
			{"id": "b-2", "analysis_result": "{\"relevance_score\": 40, \"category\": \"Not a Fit\"}",
			 "profile_enrichment": {"linkedin_profiles": [], "github_profiles": [null, {"url": "https://github.com/x", "public_repos": 3}]}},
			{"id": "broken", "analysis_result": true},
			{"id": "c-3", "analysis_result": ""},
			{"id": "d-4", "analysis_result": {"relevance_score": "about 70", "years_experience": "5+", "category": "Qualified"}},
			{"id": "e-5", "analysis_result": {"years_experience": "senior"}}
		]}`)
	})

	c := newTestClient(t, mux)

	candidates, err := c.ListCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 6)

	first := candidates[0]
	assert.Equal(t, CandidateID("7"), first.ID)
	require.NotNil(t, first.AnalysisResult)
	assert.Equal(t, 85.0, first.AnalysisResult.RelevanceScore)
	assert.Equal(t, 5.0, first.AnalysisResult.YearsExperience)
	assert.Equal(t, []string{"Go"}, first.AnalysisResult.KeySkills)

	second := candidates[1]
	require.NotNil(t, second.AnalysisResult)
	assert.Equal(t, "Not a Fit", second.AnalysisResult.Category)
	require.NotNil(t, second.ProfileEnrichment)
	require.Len(t, second.ProfileEnrichment.GithubProfiles, 2)
	assert.Nil(t, second.ProfileEnrichment.GithubProfiles[0])
	assert.Equal(t, 3, second.ProfileEnrichment.GithubProfiles[1].PublicRepos)

	broken := candidates[2]
	assert.Equal(t, CandidateID("broken"), broken.ID)
	require.NotNil(t, broken.AnalysisResult, "a malformed analysis must not drop the candidate")
	assert.Contains(t, broken.AnalysisResult.Error, "analysis could not be decoded")
	assert.Zero(t, broken.RelevanceScore())

	assert.Equal(t, CandidateID("c-3"), candidates[3].ID)
	assert.Nil(t, candidates[3].AnalysisResult)

	loose := candidates[4]
	require.NotNil(t, loose.AnalysisResult)
	assert.Equal(t, 5.0, loose.YearsExperience())
	assert.Zero(t, loose.RelevanceScore())
	assert.Equal(t, "Qualified", loose.Category())
	assert.Empty(t, loose.AnalysisResult.Error)

	assert.Zero(t, candidates[5].YearsExperience())

	id, _ := requestID.Load().(string)
	assert.NotEmpty(t, id, "request id header must be set")
}

func TestGetCandidateNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/candidates/missing", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error": "Candidate not found"}`)
	})

	c := newTestClient(t, mux)

	_, err := c.GetCandidate(context.Background(), "missing")
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.ID)
	assert.True(t, IsNotFound(err))
}

func TestGetCandidateFillsID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/candidates/42", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"filename": "cv.docx", "jd_match_result": {"match_score": 71, "explanation": "ok"}}`)
	})

	c := newTestClient(t, mux)

	candidate, err := c.GetCandidate(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, CandidateID("42"), candidate.ID)
	require.NotNil(t, candidate.JDMatchResult)
	assert.Equal(t, 71.0, candidate.JDMatchResult.MatchScore)
}

func TestTransportErrorCarriesBackendMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/candidates", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error": "Failed to fetch candidates: db locked"}`)
	})

	c := newTestClient(t, mux)

	_, err := c.ListCandidates(context.Background())
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Equal(t, "Failed to fetch candidates: db locked", te.Message)
	assert.Contains(t, err.Error(), "bad status")
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(zap.NewNop(), Options{APIURL: srv.URL})

	_, err := c.Health(context.Background())
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.NotNil(t, te.Unwrap())
}

func TestGzipResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		io.WriteString(gz, `{"status": "healthy", "service": "Resume Screener API"}`)
		gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "application/json")
		w.Write(buf.Bytes())
	})

	c := newTestClient(t, mux)

	status, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{name: "pdf", filename: "cv.pdf", size: 1024},
		{name: "upper case docx", filename: "CV.DOCX", size: 1024},
		{name: "doc at limit", filename: "cv.doc", size: MaxUploadSize},
		{name: "too large", filename: "cv.pdf", size: MaxUploadSize + 1, wantErr: true},
		{name: "text file", filename: "cv.txt", size: 10, wantErr: true},
		{name: "no extension", filename: "resume", size: 10, wantErr: true},
		{name: "empty name", filename: "", size: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.size)
			if tt.wantErr {
				if !IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUploadRejectsBeforeNetwork(t *testing.T) {
	var hits int32
	c := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))

	_, err := c.Upload(context.Background(), "notes.txt", 5, strings.NewReader("hello"))
	require.True(t, IsValidation(err))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestUploadFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, `{"error": "No file provided"}`)
			return
		}
		defer file.Close()

		body, _ := io.ReadAll(file)
		if header.Filename != "cv.pdf" || string(body) != "%PDF-1.4" {
			writeJSON(w, http.StatusBadRequest, `{"error": "unexpected upload"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success": true, "candidate_id": "new-id", "analysis": {"relevance_score": 60}}`)
	})

	c := newTestClient(t, mux)

	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	result, err := c.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, CandidateID("new-id"), result.CandidateID)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, 60.0, result.Analysis.RelevanceScore)
}

func TestBiasAnalysis(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bias-analysis/1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"bias_analysis": {
				"overall_bias_score": 12.5, "bias_free_score": 87.5,
				"gender_bias": {"score": 20, "male_terms": 2, "female_terms": 0, "neutral_terms": 1, "recommendation": "Use gender-neutral language"},
				"age_bias": {"score": 10, "age_indicators": 2, "recommendation": null},
				"location_bias": {"score": 0, "location_indicators": 0},
				"education_bias": {"score": 20, "education_indicators": 5},
				"bias_recommendations": ["Consider practical experience alongside formal education"]
			},
			"removed_personal_info": {"names": ["Jane"], "emails": [], "phones": [], "addresses": []},
			"blind_resume_available": true
		}`)
	})
	mux.HandleFunc("/api/bias-analysis/2", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"bias_analysis": {"overall_bias_score": 150}}`)
	})

	c := newTestClient(t, mux)

	report, err := c.BiasAnalysis(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, report.BiasAnalysis)
	assert.Equal(t, 12.5, report.BiasAnalysis.OverallBiasScore)
	assert.Equal(t, 2, report.BiasAnalysis.GenderBias.MaleTerms)
	require.NotNil(t, report.BiasAnalysis.GenderBias.Recommendation)
	assert.Nil(t, report.BiasAnalysis.AgeBias.Recommendation)
	assert.True(t, report.BlindResumeAvailable)
	assert.Equal(t, []string{"Jane"}, report.BiasAnalysis.RemovedPersonalInfo["names"])

	_, err = c.BiasAnalysis(context.Background(), "2")
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, err.Error(), "payload validation failed")
}

func TestInterviewPreparation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/interview-preparation/9", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"preparation_summary": {"total_questions": 3, "key_personality_traits": ["leadership"], "preparation_focus": ["depth"]},
			"interview_questions": {"questions": {
				"experience_based": ["Tell me about X"],
				"technical_questions": ["Explain goroutines"],
				"behavioral_questions": [],
				"cultural_fit_questions": ["Why us?"]
			}},
			"red_flags_analysis": {"overall_risk_score": 4, "risk_level": "low",
				"red_flags": {"employment_gaps": {"detected": true, "severity": 2, "details": ["gap in 2020"]}},
				"recommendations": ["Ask about gaps"]},
			"personality_insights": {"dominant_traits": [["leadership", 85], ["teamwork", 60.5]],
				"style_analysis": {"writing_style": "concise", "avg_sentence_length": 14.2, "action_verb_count": 9, "quantifiable_achievements": 3},
				"insights": ["Strong leader"]},
			"interview_strategy": {"interview_style": "structured", "key_questions_to_ask": ["a"], "follow_up_topics": ["b"], "assessment_criteria": ["c"]}
		}`)
	})

	c := newTestClient(t, mux)

	bundle, err := c.InterviewPreparation(context.Background(), "9")
	require.NoError(t, err)

	assert.Equal(t, 3, bundle.PreparationSummary.TotalQuestions)
	require.Len(t, bundle.PersonalityInsights.DominantTraits, 2)
	assert.Equal(t, TraitScore{Trait: "teamwork", Score: 60.5}, bundle.PersonalityInsights.DominantTraits[1])
	assert.Equal(t, 2.0, bundle.RedFlagsAnalysis.RedFlags["employment_gaps"].Severity)

	categories := bundle.InterviewQuestions.Questions.Categories()
	require.Len(t, categories, 4)
	assert.Equal(t, "Technical Questions", categories[1].Name)
	assert.Equal(t, []string{"Why us?"}, categories[3].Questions)
}

func TestMatchJD(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/match-jd", func(w http.ResponseWriter, r *http.Request) {
		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CandidateID != "5" {
			writeJSON(w, http.StatusBadRequest, `{"error": "bad request"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"match_score": 80, "explanation": "fallback"}`)
	})

	c := newTestClient(t, mux)

	_, err := c.MatchJD(context.Background(), "5", "   ")
	require.True(t, IsValidation(err))

	result, err := c.MatchJD(context.Background(), "5", "Senior Go engineer")
	require.NoError(t, err)
	assert.Equal(t, 80.0, result.MatchScore)
}

func TestChatPayloads(t *testing.T) {
	var (
		mu  sync.Mutex
		got []chatRequest
	)
	mux := http.NewServeMux()
	handler := func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		got = append(got, req)
		mu.Unlock()
		writeJSON(w, http.StatusOK, `{"response": "answer to `+req.Message+`"}`)
	}
	mux.HandleFunc("/api/chat", handler)
	mux.HandleFunc("/api/hr-chat", handler)

	c := newTestClient(t, mux)

	reply, err := c.Chat(context.Background(), "3", "skills?")
	require.NoError(t, err)
	assert.Equal(t, "answer to skills?", reply)

	reply, err = c.HRChat(context.Background(), "top 5?")
	require.NoError(t, err)
	assert.Equal(t, "answer to top 5?", reply)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, CandidateID("3"), got[0].CandidateID)
	assert.Empty(t, got[1].CandidateID)
}

func TestExportCandidateReport(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/hr/export-candidate/4", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "pdf" {
			writeJSON(w, http.StatusBadRequest, `{"error": "Unsupported export format"}`)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF"))
	})

	c := newTestClient(t, mux)

	data, contentType, err := c.ExportCandidateReport(context.Background(), "4", "pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
	assert.Equal(t, "application/pdf", contentType)
}

func TestCandidateIDUnmarshal(t *testing.T) {
	var payload struct {
		IDs []CandidateID `json:"ids"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"ids": [12, "abc", null]}`), &payload))
	assert.Equal(t, []CandidateID{"12", "abc", ""}, payload.IDs)
}

func TestCloneCopiesRankingAnalyses(t *testing.T) {
	c := &Candidate{
		ID: "1",
		AdvancedRanking: &AdvancedRanking{
			CultureFitAnalysis: map[string]any{
				"score":  80.0,
				"values": []any{"ownership", map[string]any{"team": "platform"}},
			},
			SkillGapAnalysis: map[string]any{"missing": []any{"k8s"}},
		},
	}

	cp := c.Clone()
	cp.AdvancedRanking.CultureFitAnalysis["score"] = 1.0
	cp.AdvancedRanking.CultureFitAnalysis["values"].([]any)[1].(map[string]any)["team"] = "data"
	cp.AdvancedRanking.SkillGapAnalysis["missing"].([]any)[0] = "terraform"

	assert.Equal(t, 80.0, c.AdvancedRanking.CultureFitAnalysis["score"])
	assert.Equal(t, "platform", c.AdvancedRanking.CultureFitAnalysis["values"].([]any)[1].(map[string]any)["team"])
	assert.Equal(t, "k8s", c.AdvancedRanking.SkillGapAnalysis["missing"].([]any)[0])
	assert.Nil(t, cp.AdvancedRanking.CareerTrajectoryAnalysis)
}
