package backend

import (
	"context"
	"net/url"
)

// HRTarget identifies an external HR system and how to reach it.
type HRTarget struct {
	System string `json:"hr_system"`
	APIKey string `json:"api_key"`
	APIURL string `json:"api_url"`
}

type ConnectionStatus struct {
	Valid      bool   `json:"valid"`
	System     string `json:"system,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

type SendResult struct {
	Success    bool   `json:"success"`
	System     string `json:"system,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

type supportedSystemsResponse struct {
	SupportedSystems []string `json:"supported_systems"`
}

func (c *Client) SupportedHRSystems(ctx context.Context) ([]string, error) {
	var response supportedSystemsResponse
	if err := c.getJSON(ctx, "hr supported systems", c.url("/api/hr/supported-systems"), nil, &response); err != nil {
		return nil, err
	}

	return response.SupportedSystems, nil
}

func (c *Client) ValidateHRConnection(ctx context.Context, target HRTarget) (*ConnectionStatus, error) {
	var status ConnectionStatus
	if err := c.postJSON(ctx, "hr validate connection", c.url("/api/hr/validate-connection"), target, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

func (c *Client) SendToHR(ctx context.Context, id CandidateID, target HRTarget) (*SendResult, error) {
	var result SendResult
	if err := c.postJSON(ctx, "hr send candidate", c.url(candidatePath("/api/hr/send-candidate", id)), target, &result); err != nil {
		return nil, notFound(err, id)
	}

	return &result, nil
}

// ExportCandidateReport downloads a candidate report. The body is returned as is.
func (c *Client) ExportCandidateReport(ctx context.Context, id CandidateID, format string) ([]byte, string, error) {
	data, contentType, err := c.getRaw(ctx, "hr export candidate", c.url(candidatePath("/api/hr/export-candidate", id)), url.Values{"format": {format}})
	if err != nil {
		return nil, "", notFound(err, id)
	}

	return data, contentType, nil
}
