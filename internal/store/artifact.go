package store

import (
	"fmt"

	"github.com/spigell/hr-screener/internal/backend"
)

// ArtifactKind names the candidate field an artifact owns.
type ArtifactKind string

const (
	KindAnalysis        ArtifactKind = "analysis_result"
	KindJDMatch         ArtifactKind = "jd_match_result"
	KindBias            ArtifactKind = "bias_analysis"
	KindAdvancedRanking ArtifactKind = "advanced_ranking"
	KindEnrichment      ArtifactKind = "profile_enrichment"
)

// Artifact is a value for exactly one candidate field.
type Artifact interface {
	Kind() ArtifactKind
	apply(c *backend.Candidate)
}

type artifact struct {
	kind  ArtifactKind
	write func(c *backend.Candidate)
}

func (a artifact) Kind() ArtifactKind { return a.kind }

func (a artifact) apply(c *backend.Candidate) { a.write(c) }

func Analysis(v *backend.AnalysisResult) Artifact {
	return artifact{kind: KindAnalysis, write: func(c *backend.Candidate) {
		c.AnalysisResult = nil
		if v != nil {
			c.AnalysisResult = (&backend.Candidate{AnalysisResult: v}).Clone().AnalysisResult
		}
	}}
}

func JDMatch(v *backend.JDMatchResult) Artifact {
	return artifact{kind: KindJDMatch, write: func(c *backend.Candidate) {
		c.JDMatchResult = nil
		if v != nil {
			m := *v
			c.JDMatchResult = &m
		}
	}}
}

func Bias(v *backend.BiasAnalysis) Artifact {
	return artifact{kind: KindBias, write: func(c *backend.Candidate) {
		c.BiasAnalysis = nil
		if v != nil {
			c.BiasAnalysis = v.Clone()
		}
	}}
}

func AdvancedRanking(v *backend.AdvancedRanking) Artifact {
	return artifact{kind: KindAdvancedRanking, write: func(c *backend.Candidate) {
		c.AdvancedRanking = nil
		if v != nil {
			c.AdvancedRanking = (&backend.Candidate{AdvancedRanking: v}).Clone().AdvancedRanking
		}
	}}
}

func Enrichment(v *backend.ProfileEnrichment) Artifact {
	return artifact{kind: KindEnrichment, write: func(c *backend.Candidate) {
		c.ProfileEnrichment = nil
		if v != nil {
			c.ProfileEnrichment = v.Clone()
		}
	}}
}

// ArtifactOf extracts the field of the given kind from a candidate.
func ArtifactOf(kind ArtifactKind, c *backend.Candidate) (Artifact, error) {
	switch kind {
	case KindAnalysis:
		return Analysis(c.AnalysisResult), nil
	case KindJDMatch:
		return JDMatch(c.JDMatchResult), nil
	case KindBias:
		return Bias(c.BiasAnalysis), nil
	case KindAdvancedRanking:
		return AdvancedRanking(c.AdvancedRanking), nil
	case KindEnrichment:
		return Enrichment(c.ProfileEnrichment), nil
	default:
		return nil, &backend.ValidationError{Field: "artifact kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
}

// present reports whether the candidate carries a value for kind.
func present(kind ArtifactKind, c *backend.Candidate) bool {
	switch kind {
	case KindAnalysis:
		return c.AnalysisResult != nil
	case KindJDMatch:
		return c.JDMatchResult != nil
	case KindBias:
		return c.BiasAnalysis != nil
	case KindAdvancedRanking:
		return c.AdvancedRanking != nil
	case KindEnrichment:
		return c.ProfileEnrichment != nil
	default:
		return false
	}
}
