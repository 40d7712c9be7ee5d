package backend

import (
	"context"
	"errors"
	"strings"
)

type chatRequest struct {
	Message     string      `json:"message"`
	CandidateID CandidateID `json:"candidate_id,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Chat asks a question about one candidate.
func (c *Client) Chat(ctx context.Context, id CandidateID, message string) (string, error) {
	return c.chat(ctx, "chat", "/api/chat", chatRequest{Message: message, CandidateID: id})
}

// HRChat asks a question about the whole candidate pool.
func (c *Client) HRChat(ctx context.Context, message string) (string, error) {
	return c.chat(ctx, "hr chat", "/api/hr-chat", chatRequest{Message: message})
}

func (c *Client) chat(ctx context.Context, op, path string, payload chatRequest) (string, error) {
	var response chatResponse
	if err := c.postJSON(ctx, op, c.url(path), payload, &response); err != nil {
		return "", err
	}

	if msg := strings.TrimSpace(response.Error); msg != "" && response.Response == "" {
		return "", &TransportError{Op: op, Err: errors.New(msg)}
	}

	return response.Response, nil
}
