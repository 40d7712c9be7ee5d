// Package hr sends candidates to external HR systems through the backend and
// exports candidate reports.
package hr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/logger"
)

const missingCredentials = "Please provide API key and URL"

// Format is a report export format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

var formats = map[Format]struct {
	ext         string
	contentType string
}{
	FormatJSON:  {ext: "json", contentType: "application/json"},
	FormatPDF:   {ext: "pdf", contentType: "application/pdf"},
	FormatExcel: {ext: "xlsx", contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
}

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatPDF, FormatExcel}
}

// ParseFormat validates a user supplied format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := formats[f]; !ok {
		return "", &backend.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported export format %q", s)}
	}
	return f, nil
}

// Export is a downloaded candidate report.
type Export struct {
	Format      Format
	ContentType string
	Filename    string
	Data        []byte
}

// Client is the backend surface used by the gateway.
type Client interface {
	SupportedHRSystems(ctx context.Context) ([]string, error)
	ValidateHRConnection(ctx context.Context, target backend.HRTarget) (*backend.ConnectionStatus, error)
	SendToHR(ctx context.Context, id backend.CandidateID, target backend.HRTarget) (*backend.SendResult, error)
	ExportCandidateReport(ctx context.Context, id backend.CandidateID, format string) ([]byte, string, error)
}

type Gateway struct {
	client Client
	logger *zap.Logger
}

func New(client Client, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{client: client, logger: log}
}

func (g *Gateway) ListSupportedSystems(ctx context.Context) ([]string, error) {
	return g.client.SupportedHRSystems(ctx)
}

// ValidateConnection checks that the backend can reach the HR system.
func (g *Gateway) ValidateConnection(ctx context.Context, system, apiKey, apiURL string) (*backend.ConnectionStatus, error) {
	target, err := newTarget(system, apiKey, apiURL)
	if err != nil {
		return nil, err
	}

	status, err := g.client.ValidateHRConnection(ctx, target)
	if err != nil {
		return nil, err
	}

	g.logger.Info("hr connection checked",
		zap.String("system", target.System),
		zap.Bool("valid", status.Valid),
		zap.Int("status_code", status.StatusCode),
	)

	return status, nil
}

// SendCandidate pushes one candidate to the HR system. A rejected send is
// reported in the result, not as an error.
func (g *Gateway) SendCandidate(ctx context.Context, id backend.CandidateID, system, apiKey, apiURL string) (*backend.SendResult, error) {
	target, err := newTarget(system, apiKey, apiURL)
	if err != nil {
		return nil, err
	}

	result, err := g.client.SendToHR(ctx, id, target)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(g.logger, logger.CandidateFields(string(id))...)
	if result.Success {
		log.Info("candidate sent to hr system", zap.String("system", result.System))
	} else {
		log.Warn("hr system rejected candidate", zap.String("system", result.System), zap.String("error", result.Error))
	}

	return result, nil
}

// ExportCandidate downloads the candidate report in the given format.
// JSON reports are re-indented for saving.
func (g *Gateway) ExportCandidate(ctx context.Context, id backend.CandidateID, format Format) (*Export, error) {
	meta, ok := formats[format]
	if !ok {
		return nil, &backend.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported export format %q", format)}
	}

	data, contentType, err := g.client.ExportCandidateReport(ctx, id, string(format))
	if err != nil {
		return nil, err
	}

	if format == FormatJSON {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, data, "", "  "); err != nil {
			return nil, &backend.TransportError{Op: "hr export candidate", Err: fmt.Errorf("decode json report: %w", err)}
		}
		data = pretty.Bytes()
	}

	if contentType == "" {
		contentType = meta.contentType
	}

	return &Export{
		Format:      format,
		ContentType: contentType,
		Filename:    reportFilename(id, meta.ext),
		Data:        data,
	}, nil
}

// reportFilename builds candidate_<id>_report.<ext>. Characters other than
// letters, digits, dash and underscore in the id become underscores, so the
// name never leaves the working directory.
func reportFilename(id backend.CandidateID, ext string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, string(id))

	return fmt.Sprintf("candidate_%s_report.%s", safe, ext)
}

func newTarget(system, apiKey, apiURL string) (backend.HRTarget, error) {
	target := backend.HRTarget{
		System: strings.ToLower(strings.TrimSpace(system)),
		APIKey: strings.TrimSpace(apiKey),
		APIURL: strings.TrimSpace(apiURL),
	}

	if target.APIKey == "" || target.APIURL == "" {
		return target, &backend.ValidationError{Reason: missingCredentials}
	}
	if target.System == "" {
		return target, &backend.ValidationError{Field: "hr system", Reason: "must not be empty"}
	}

	return target, nil
}
