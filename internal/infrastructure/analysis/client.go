package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/instafinder/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultEndpointPath is the analysis route on the service origin
const DefaultEndpointPath = "/api/process-instagram"

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 16 << 20

// Options tunes the analysis client. The zero value sends unlimited,
// untimed requests and discards logs.
type Options struct {
	// Timeout bounds a whole request; zero means no timeout
	Timeout time.Duration
	// RatePerSecond throttles outgoing requests; zero disables throttling
	RatePerSecond float64
	Logger        *zap.Logger
	HTTPClient    *http.Client
}

// Client handles communication with the remote analysis service.
// Each Submit issues exactly one POST; there are no retries.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new analysis client for baseURL + endpointPath
func NewClient(baseURL, endpointPath string, opts Options) *Client {
	if endpointPath == "" {
		endpointPath = DefaultEndpointPath
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	return &Client{
		httpClient:  httpClient,
		endpoint:    strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(endpointPath, "/"),
		rateLimiter: limiter,
		logger:      logger.Named("analysis"),
	}
}

// Endpoint returns the full URL requests are sent to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts the URL to the analysis service and normalizes the answer
func (c *Client) Submit(ctx context.Context, instagramURL string) domain.Outcome {
	log := c.logger.With(zap.String("url", instagramURL))

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			log.Error("rate limiter wait failed", zap.Error(err))
			return domain.OutcomeFailure(err.Error(), fmt.Errorf("%w: %v", domain.ErrTransport, err))
		}
	}

	resp, err := c.doRequest(ctx, instagramURL)
	if err != nil {
		log.Error("analysis request failed", zap.Error(err))
		return domain.OutcomeFailure(transportMessage(err), fmt.Errorf("%w: %v", domain.ErrTransport, err))
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		log.Error("reading analysis response failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return domain.OutcomeFailure(transportMessage(err), fmt.Errorf("%w: %v", domain.ErrTransport, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := c.protocolMessage(log, resp.StatusCode, body)
		log.Warn("analysis service returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("message", message))
		return domain.OutcomeFailure(message, fmt.Errorf("%w: status %d", domain.ErrProtocol, resp.StatusCode))
	}

	var payload successResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("failed to decode analysis response", zap.Error(err))
		return domain.OutcomeFailure(err.Error(), fmt.Errorf("%w: failed to decode response: %v", domain.ErrContract, err))
	}
	if payload.Results == nil {
		log.Warn("analysis response has no results field")
		return domain.OutcomeFailure(MessageNoResults, fmt.Errorf("%w: missing results", domain.ErrContract))
	}

	groups := MapToGroups(*payload.Results)
	log.Info("analysis completed", zap.Int("groups", len(groups)))
	return domain.OutcomeSuccess(groups)
}

// doRequest executes the POST with a JSON body
func (c *Client) doRequest(ctx context.Context, instagramURL string) (*http.Response, error) {
	payload, err := json.Marshal(domain.AnalysisRequest{URL: instagramURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "InstaFinder/1.0")

	return c.httpClient.Do(req)
}

// protocolMessage extracts the best message from a non-2xx body. A body that
// is not JSON is logged and replaced by the status fallback.
func (c *Client) protocolMessage(log *zap.Logger, code int, body []byte) string {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Debug("error response is not JSON", zap.Int("status", code), zap.Error(err))
		return StatusFailureMessage(code)
	}
	return payload.errorMessage(code)
}

func transportMessage(err error) string {
	if err == nil || err.Error() == "" {
		return domain.DefaultFailureMessage
	}
	return err.Error()
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
