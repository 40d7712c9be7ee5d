package backend

import (
	"context"
	"strings"
)

type matchRequest struct {
	CandidateID    CandidateID `json:"candidate_id"`
	JobDescription string      `json:"job_description"`
}

// MatchJD scores one candidate against a job description.
func (c *Client) MatchJD(ctx context.Context, id CandidateID, jobDescription string) (*JDMatchResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, &ValidationError{Field: "job description", Reason: "must not be empty"}
	}

	var result JDMatchResult
	payload := matchRequest{CandidateID: id, JobDescription: jobDescription}
	if err := c.postJSON(ctx, "match job description", c.url("/api/match-jd"), payload, &result); err != nil {
		return nil, notFound(err, id)
	}

	return &result, nil
}
