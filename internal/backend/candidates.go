package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const analysisField = "analysis_result"

type candidatesResponse struct {
	Candidates []map[string]any `json:"candidates"`
}

// ListCandidates returns every candidate known to the backend, newest first.
// A candidate whose analysis cannot be decoded is kept with AnalysisResult.Error
// set. Items that cannot be decoded at all are skipped.
func (c *Client) ListCandidates(ctx context.Context) ([]Candidate, error) {
	const op = "list candidates"

	var raw json.RawMessage
	if err := c.getJSON(ctx, op, c.url("/api/candidates"), nil, &raw); err != nil {
		return nil, err
	}

	var response candidatesResponse
	if err := decodeNumbers(raw, &response); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	candidates := make([]Candidate, 0, len(response.Candidates))
	for i, item := range response.Candidates {
		candidate, err := c.decodeCandidate(item)
		if err != nil {
			c.logger.Warn("skipping undecodable candidate",
				zap.Int("position", i),
				zap.Error(err),
			)
			continue
		}
		candidates = append(candidates, candidate)
	}

	c.logger.Debug("got candidates from backend", zap.Int("count", len(candidates)))

	return candidates, nil
}

// GetCandidate returns one candidate with all attached artifacts.
func (c *Client) GetCandidate(ctx context.Context, id CandidateID) (*Candidate, error) {
	const op = "get candidate"

	var raw json.RawMessage
	if err := c.getJSON(ctx, op, c.url(candidatePath("/api/candidates", id)), nil, &raw); err != nil {
		return nil, notFound(err, id)
	}

	var item map[string]any
	if err := decodeNumbers(raw, &item); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	candidate, err := c.decodeCandidate(item)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if candidate.ID == "" {
		candidate.ID = id
	}

	return &candidate, nil
}

func decodeNumbers(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(target)
}

// decodeCandidate maps an untyped candidate payload onto Candidate.
// Numbers and numeric strings are converted where needed, and nested objects
// that arrive JSON-encoded as strings are unpacked first. When only the
// analysis is malformed the candidate is still returned, carrying the decode
// error in AnalysisResult.Error.
func (c *Client) decodeCandidate(item map[string]any) (Candidate, error) {
	candidate, err := c.decodeInto(item)
	if err == nil {
		return candidate, nil
	}

	if _, ok := item[analysisField]; !ok {
		return candidate, err
	}

	rest := make(map[string]any, len(item))
	for k, v := range item {
		if k != analysisField {
			rest[k] = v
		}
	}

	candidate, restErr := c.decodeInto(rest)
	if restErr != nil {
		return candidate, err
	}

	c.logger.Warn("candidate analysis is malformed",
		zap.String("candidate_id", string(candidate.ID)),
		zap.Error(err),
	)
	candidate.AnalysisResult = &AnalysisResult{Error: fmt.Sprintf("analysis could not be decoded: %v", err)}

	return candidate, nil
}

func (c *Client) decodeInto(item map[string]any) (Candidate, error) {
	var candidate Candidate

	cfg := &mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(c.lenientNumberHook, embeddedJSONHook),
		Result:           &candidate,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return candidate, err
	}

	if err := decoder.Decode(item); err != nil {
		return candidate, fmt.Errorf("decode candidate: %w", err)
	}

	return candidate, nil
}

var leadingNumber = regexp.MustCompile(`^[-+]?\d+(\.\d+)?`)

// lenientNumberHook reads free-form numeric strings such as "5+" or "3-5 years"
// by their leading number. Strings without one decode as 0.
func (c *Client) lenientNumberHook(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.String {
		return data, nil
	}

	switch to {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
	default:
		return data, nil
	}

	// json.Number is handled by mapstructure itself.
	s, ok := data.(string)
	if !ok {
		return data, nil
	}

	s = strings.TrimSpace(s)
	if value, err := strconv.ParseFloat(s, 64); err == nil {
		return value, nil
	}

	value := 0.0
	if match := leadingNumber.FindString(s); match != "" {
		value, _ = strconv.ParseFloat(match, 64)
	}

	if s != "" {
		c.logger.Warn("coercing non-numeric value", zap.String("value", s), zap.Float64("result", value))
	}

	return value, nil
}

func embeddedJSONHook(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.String {
		return data, nil
	}

	switch to {
	case reflect.Ptr, reflect.Struct, reflect.Map:
	default:
		return data, nil
	}

	s, ok := data.(string)
	if !ok {
		return data, nil
	}

	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		if to == reflect.Ptr {
			return nil, nil
		}
		return map[string]any{}, nil
	}

	if !strings.HasPrefix(s, "{") {
		return data, nil
	}

	var decoded map[string]any
	if err := decodeNumbers([]byte(s), &decoded); err != nil {
		return data, nil
	}

	return decoded, nil
}
