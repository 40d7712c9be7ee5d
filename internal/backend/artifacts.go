package backend

import (
	"context"

	"go.uber.org/zap"
)

// BiasAnalysis fetches the bias report of a candidate.
func (c *Client) BiasAnalysis(ctx context.Context, id CandidateID) (*BiasReport, error) {
	var report BiasReport
	if err := c.getValidated(ctx, "bias analysis", c.url(candidatePath("/api/bias-analysis", id)), biasReportSchema, &report); err != nil {
		return nil, notFound(err, id)
	}

	if report.BiasAnalysis != nil && report.BiasAnalysis.RemovedPersonalInfo == nil {
		report.BiasAnalysis.RemovedPersonalInfo = report.RemovedPersonalInfo
	}

	return &report, nil
}

// BlindResume fetches the resume text with personal information removed.
func (c *Client) BlindResume(ctx context.Context, id CandidateID) (string, error) {
	var blind BlindResume
	if err := c.getJSON(ctx, "blind resume", c.url(candidatePath("/api/blind-resume", id)), nil, &blind); err != nil {
		return "", notFound(err, id)
	}

	return blind.Text, nil
}

// InterviewPreparation fetches generated interview questions and insights.
func (c *Client) InterviewPreparation(ctx context.Context, id CandidateID) (*InterviewBundle, error) {
	var bundle InterviewBundle
	if err := c.getValidated(ctx, "interview preparation", c.url(candidatePath("/api/interview-preparation", id)), interviewBundleSchema, &bundle); err != nil {
		return nil, notFound(err, id)
	}

	return &bundle, nil
}

// EnrichProfile asks the backend to look up public profiles of a candidate.
func (c *Client) EnrichProfile(ctx context.Context, id CandidateID) (*ProfileEnrichment, error) {
	var enrichment ProfileEnrichment
	if err := c.postJSON(ctx, "enrich profile", c.url(candidatePath("/api/enrich-profile", id)), nil, &enrichment); err != nil {
		return nil, notFound(err, id)
	}

	c.logger.Debug("profile enriched",
		zap.String("candidate_id", string(id)),
		zap.Int("linkedin_profiles", len(enrichment.LinkedinProfiles)),
		zap.Int("github_profiles", len(enrichment.GithubProfiles)),
	)

	return &enrichment, nil
}
