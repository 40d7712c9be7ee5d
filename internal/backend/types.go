package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CreatedAtLayout is the timestamp format the backend database emits.
const CreatedAtLayout = "2006-01-02 15:04:05"

// CandidateID is the backend identifier of a candidate. The wire form may be a string or a number.
type CandidateID string

func (id *CandidateID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = CandidateID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("candidate id: %w", err)
	}
	*id = CandidateID(n.String())

	return nil
}

func (id CandidateID) String() string { return string(id) }

type Candidate struct {
	ID                CandidateID        `json:"id"`
	Filename          string             `json:"filename,omitempty"`
	UploadDate        string             `json:"upload_date,omitempty"`
	ResumeText        string             `json:"resume_text,omitempty"`
	CreatedAt         string             `json:"created_at,omitempty"`
	AnalysisResult    *AnalysisResult    `json:"analysis_result,omitempty"`
	JDMatchResult     *JDMatchResult     `json:"jd_match_result,omitempty"`
	BiasAnalysis      *BiasAnalysis      `json:"bias_analysis,omitempty"`
	AdvancedRanking   *AdvancedRanking   `json:"advanced_ranking,omitempty"`
	ProfileEnrichment *ProfileEnrichment `json:"profile_enrichment,omitempty"`
}

// Category returns the analysis category or an empty string.
func (c *Candidate) Category() string {
	if c.AnalysisResult == nil {
		return ""
	}
	return c.AnalysisResult.Category
}

// RelevanceScore returns the analysis relevance score, 0 when missing.
func (c *Candidate) RelevanceScore() float64 {
	if c.AnalysisResult == nil {
		return 0
	}
	return c.AnalysisResult.RelevanceScore
}

// YearsExperience returns the analysed years of experience, 0 when missing.
func (c *Candidate) YearsExperience() float64 {
	if c.AnalysisResult == nil {
		return 0
	}
	return c.AnalysisResult.YearsExperience
}

// CreatedTime parses CreatedAt. Unparseable values yield the zero time.
func (c *Candidate) CreatedTime() time.Time {
	value := strings.TrimSpace(c.CreatedAt)
	if value == "" {
		value = strings.TrimSpace(c.UploadDate)
	}
	if value == "" {
		return time.Time{}
	}

	for _, layout := range []string{CreatedAtLayout, time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	return time.Time{}
}

// Clone returns a deep copy of the candidate.
func (c *Candidate) Clone() Candidate {
	out := *c
	if c.AnalysisResult != nil {
		a := *c.AnalysisResult
		a.KeySkills = cloneStrings(a.KeySkills)
		a.HiddenSkills = cloneStrings(a.HiddenSkills)
		a.PreviousRoles = cloneStrings(a.PreviousRoles)
		a.Certifications = cloneStrings(a.Certifications)
		a.ProjectsAchievements = cloneStrings(a.ProjectsAchievements)
		out.AnalysisResult = &a
	}
	if c.JDMatchResult != nil {
		m := *c.JDMatchResult
		out.JDMatchResult = &m
	}
	if c.BiasAnalysis != nil {
		out.BiasAnalysis = c.BiasAnalysis.Clone()
	}
	if c.AdvancedRanking != nil {
		r := *c.AdvancedRanking
		r.KeyStrengths = cloneStrings(r.KeyStrengths)
		r.DevelopmentAreas = cloneStrings(r.DevelopmentAreas)
		r.Recommendations = cloneStrings(r.Recommendations)
		r.CultureFitAnalysis = cloneMap(r.CultureFitAnalysis)
		r.CareerTrajectoryAnalysis = cloneMap(r.CareerTrajectoryAnalysis)
		r.SkillGapAnalysis = cloneMap(r.SkillGapAnalysis)
		out.AdvancedRanking = &r
	}
	if c.ProfileEnrichment != nil {
		out.ProfileEnrichment = c.ProfileEnrichment.Clone()
	}

	return out
}

type AnalysisResult struct {
	RelevanceScore       float64  `json:"relevance_score"`
	Category             string   `json:"category,omitempty"`
	YearsExperience      float64  `json:"years_experience"`
	KeySkills            []string `json:"key_skills,omitempty"`
	HiddenSkills         []string `json:"hidden_skills,omitempty"`
	PreviousRoles        []string `json:"previous_roles,omitempty"`
	Education            string   `json:"education,omitempty"`
	Certifications       []string `json:"certifications,omitempty"`
	ProjectsAchievements []string `json:"projects_achievements,omitempty"`
	Summary              string   `json:"summary,omitempty"`
	// Error is set by the backend when the stored analysis could not be parsed.
	Error string `json:"error,omitempty"`
}

type JDMatchResult struct {
	MatchScore  float64 `json:"match_score"`
	Explanation string  `json:"explanation,omitempty"`
}

type BiasAnalysis struct {
	OverallBiasScore    float64             `json:"overall_bias_score"`
	BiasFreeScore       float64             `json:"bias_free_score"`
	GenderBias          GenderBias          `json:"gender_bias"`
	AgeBias             AgeBias             `json:"age_bias"`
	LocationBias        LocationBias        `json:"location_bias"`
	EducationBias       EducationBias       `json:"education_bias"`
	BiasRecommendations []string            `json:"bias_recommendations,omitempty"`
	RemovedPersonalInfo map[string][]string `json:"removed_personal_info,omitempty"`
}

func (b *BiasAnalysis) Clone() *BiasAnalysis {
	out := *b
	out.BiasRecommendations = cloneStrings(b.BiasRecommendations)
	out.GenderBias.Recommendation = cloneStringPtr(b.GenderBias.Recommendation)
	out.AgeBias.Recommendation = cloneStringPtr(b.AgeBias.Recommendation)
	out.LocationBias.Recommendation = cloneStringPtr(b.LocationBias.Recommendation)
	out.EducationBias.Recommendation = cloneStringPtr(b.EducationBias.Recommendation)
	if b.RemovedPersonalInfo != nil {
		out.RemovedPersonalInfo = make(map[string][]string, len(b.RemovedPersonalInfo))
		for k, v := range b.RemovedPersonalInfo {
			out.RemovedPersonalInfo[k] = cloneStrings(v)
		}
	}
	return &out
}

type GenderBias struct {
	Score          float64 `json:"score"`
	MaleTerms      int     `json:"male_terms"`
	FemaleTerms    int     `json:"female_terms"`
	NeutralTerms   int     `json:"neutral_terms"`
	Recommendation *string `json:"recommendation"`
}

type AgeBias struct {
	Score          float64 `json:"score"`
	AgeIndicators  int     `json:"age_indicators"`
	Recommendation *string `json:"recommendation"`
}

type LocationBias struct {
	Score              float64 `json:"score"`
	LocationIndicators int     `json:"location_indicators"`
	Recommendation     *string `json:"recommendation"`
}

type EducationBias struct {
	Score               float64 `json:"score"`
	EducationIndicators int     `json:"education_indicators"`
	Recommendation      *string `json:"recommendation"`
}

// BiasReport is the envelope returned by the bias analysis endpoint.
type BiasReport struct {
	BiasAnalysis         *BiasAnalysis       `json:"bias_analysis"`
	RemovedPersonalInfo  map[string][]string `json:"removed_personal_info,omitempty"`
	BlindResumeAvailable bool                `json:"blind_resume_available"`
}

type BlindResume struct {
	Text string `json:"blind_resume_text"`
}

// AdvancedRanking is produced by the backend ranking service. Nested analyses stay untyped.
type AdvancedRanking struct {
	OverallAdvancedScore     float64        `json:"overall_advanced_score"`
	RankingTier              string         `json:"ranking_tier,omitempty"`
	KeyStrengths             []string       `json:"key_strengths,omitempty"`
	DevelopmentAreas         []string       `json:"development_areas,omitempty"`
	Recommendations          []string       `json:"recommendations,omitempty"`
	CultureFitAnalysis       map[string]any `json:"culture_fit_analysis,omitempty"`
	CareerTrajectoryAnalysis map[string]any `json:"career_trajectory_analysis,omitempty"`
	SkillGapAnalysis         map[string]any `json:"skill_gap_analysis,omitempty"`
}

type ProfileEnrichment struct {
	LinkedinProfiles []*LinkedinProfile `json:"linkedin_profiles"`
	GithubProfiles   []*GithubProfile   `json:"github_profiles"`
}

func (p *ProfileEnrichment) Clone() *ProfileEnrichment {
	out := &ProfileEnrichment{}
	for _, l := range p.LinkedinProfiles {
		if l == nil {
			continue
		}
		cp := *l
		out.LinkedinProfiles = append(out.LinkedinProfiles, &cp)
	}
	for _, g := range p.GithubProfiles {
		if g == nil {
			continue
		}
		cp := *g
		out.GithubProfiles = append(out.GithubProfiles, &cp)
	}
	return out
}

type LinkedinProfile struct {
	URL         string `json:"url,omitempty"`
	Name        string `json:"name,omitempty"`
	Headline    string `json:"headline,omitempty"`
	Location    string `json:"location,omitempty"`
	Connections int    `json:"connections"`
}

type GithubProfile struct {
	URL         string `json:"url,omitempty"`
	Name        string `json:"name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

type InterviewBundle struct {
	PreparationSummary  PreparationSummary  `json:"preparation_summary"`
	InterviewQuestions  InterviewQuestions  `json:"interview_questions"`
	RedFlagsAnalysis    RedFlagsAnalysis    `json:"red_flags_analysis"`
	PersonalityInsights PersonalityInsights `json:"personality_insights"`
	InterviewStrategy   InterviewStrategy   `json:"interview_strategy"`
}

type PreparationSummary struct {
	TotalQuestions       int      `json:"total_questions"`
	KeyPersonalityTraits []string `json:"key_personality_traits,omitempty"`
	PreparationFocus     []string `json:"preparation_focus,omitempty"`
}

type InterviewQuestions struct {
	Questions QuestionSet `json:"questions"`
}

type QuestionSet struct {
	ExperienceBased      []string `json:"experience_based"`
	TechnicalQuestions   []string `json:"technical_questions"`
	BehavioralQuestions  []string `json:"behavioral_questions"`
	CulturalFitQuestions []string `json:"cultural_fit_questions"`
}

// QuestionCategory is a named group of interview questions.
type QuestionCategory struct {
	Name      string
	Questions []string
}

// Categories returns the four question groups in display order.
func (q QuestionSet) Categories() []QuestionCategory {
	return []QuestionCategory{
		{Name: "Experience Based", Questions: q.ExperienceBased},
		{Name: "Technical Questions", Questions: q.TechnicalQuestions},
		{Name: "Behavioral Questions", Questions: q.BehavioralQuestions},
		{Name: "Cultural Fit Questions", Questions: q.CulturalFitQuestions},
	}
}

type RedFlagsAnalysis struct {
	OverallRiskScore float64            `json:"overall_risk_score"`
	RiskLevel        string             `json:"risk_level"`
	RedFlags         map[string]RedFlag `json:"red_flags"`
	Recommendations  []string           `json:"recommendations,omitempty"`
}

type RedFlag struct {
	Detected bool     `json:"detected"`
	Severity float64  `json:"severity"`
	Details  []string `json:"details,omitempty"`
}

type PersonalityInsights struct {
	DominantTraits []TraitScore  `json:"dominant_traits"`
	StyleAnalysis  StyleAnalysis `json:"style_analysis"`
	Insights       []string      `json:"insights,omitempty"`
}

// TraitScore is encoded on the wire as a two element array: [trait, score].
type TraitScore struct {
	Trait string
	Score float64
}

func (t *TraitScore) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("trait score: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("trait score: expected 2 elements, got %d", len(pair))
	}

	if err := json.Unmarshal(pair[0], &t.Trait); err != nil {
		return fmt.Errorf("trait name: %w", err)
	}

	var n json.Number
	if err := json.Unmarshal(pair[1], &n); err != nil {
		return fmt.Errorf("trait score value: %w", err)
	}
	score, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return fmt.Errorf("trait score value: %w", err)
	}
	t.Score = score

	return nil
}

func (t TraitScore) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{t.Trait, t.Score})
}

type StyleAnalysis struct {
	WritingStyle             string  `json:"writing_style,omitempty"`
	AvgSentenceLength        float64 `json:"avg_sentence_length"`
	ActionVerbCount          int     `json:"action_verb_count"`
	QuantifiableAchievements int     `json:"quantifiable_achievements"`
}

type InterviewStrategy struct {
	InterviewStyle     string   `json:"interview_style,omitempty"`
	KeyQuestionsToAsk  []string `json:"key_questions_to_ask,omitempty"`
	FollowUpTopics     []string `json:"follow_up_topics,omitempty"`
	AssessmentCriteria []string `json:"assessment_criteria,omitempty"`
}

type UploadResult struct {
	Success     bool            `json:"success"`
	CandidateID CandidateID     `json:"candidate_id,omitempty"`
	Analysis    *AnalysisResult `json:"analysis,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// cloneMap deep-copies decoded JSON: nested objects and arrays are copied,
// scalars are shared.
func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return cloneStrings(t)
	default:
		return v
	}
}

func cloneStringPtr(in *string) *string {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
