package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultAPIURL is used when no base URL is configured.
	DefaultAPIURL = "http://localhost:5000"

	userAgent      = "spigell/hr-screener"
	defaultTimeout = 30 * time.Second
)

// Options configures a Client.
type Options struct {
	APIURL    string
	Timeout   time.Duration
	UserAgent string
}

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL := strings.TrimRight(strings.TrimSpace(opts.APIURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = userAgent
	}

	return &Client{
		logger:     logger,
		APIURL:     apiURL,
		UserAgent:  ua,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Health reports the backend service status.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "health", c.url("/api/health"), nil, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

func (c *Client) url(path string) string {
	return c.APIURL + path
}
