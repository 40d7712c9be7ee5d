package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"

	maxLoggedBody = 200
)

func (c *Client) getJSON(ctx context.Context, op, url string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	_, data, err := c.do(op, req)
	if err != nil {
		return err
	}

	return decode(op, data, target)
}

func (c *Client) postJSON(ctx context.Context, op, url string, payload, target any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	_, data, err := c.do(op, req)
	if err != nil {
		return err
	}

	return decode(op, data, target)
}

// getRaw returns the body untouched together with its content type.
func (c *Client) getRaw(ctx context.Context, op, url string, q url.Values) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &TransportError{Op: op, Err: err}
	}

	req = c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, data, err := c.do(op, req)
	if err != nil {
		return nil, "", err
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) postFile(ctx context.Context, op, url, field, filename string, content io.Reader, target any) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if _, err := io.Copy(part, content); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read %s: %w", filename, err)}
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &b)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	_, data, err := c.do(op, req)
	if err != nil {
		return err
	}

	return decode(op, data, target)
}

// do sends the request and reads the whole body. Any status outside 2xx is an error.
func (c *Client) do(op string, req *http.Request) (*http.Response, []byte, error) {
	c.logger.Debug("make request",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get(requestIDHeader)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, nil, &TransportError{Op: op, Err: err}
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Debug("bad response",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("body", utils.TruncateForLog(string(data), maxLoggedBody)),
		)
		return resp, data, statusError(op, resp, data)
	}

	return resp, data, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req
}

func decode(op string, data []byte, target any) error {
	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

// errorMessage extracts the "error" (or "message") field of a JSON error body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Message)
}

// notFound converts a 404 transport error into a NotFoundError for the given candidate.
func notFound(err error, id CandidateID) error {
	var te *TransportError
	if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
		return &NotFoundError{Resource: "candidate", ID: string(id)}
	}
	return err
}

func candidatePath(prefix string, id CandidateID) string {
	return prefix + "/" + url.PathEscape(string(id))
}
