// Package analyzer talks to the external analysis service over HTTP.
// The service ingests uploaded transaction CSVs asynchronously; this
// client only reads its processing status and, once done, the predicted
// spending baseline.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sehee-xx/MoneyToad/pkg/models"
)

// StatusDone is the sentinel status meaning the analyzer has finished
// processing a file and the baseline is available.
const StatusDone = "none"

// Sentinel errors for analyzer client failures.
var (
	ErrAnalyzerUnreachable = errors.New("analyzer unreachable")
	ErrAnalyzerStatus      = errors.New("analyzer request failed")
	ErrAnalyzerTimeout     = errors.New("analyzer request timeout")
)

// Client is the interface for querying the analyzer.
type Client interface {
	// Status returns the raw processing status for a file. StatusDone
	// (compared case-insensitively) means processing is complete; any
	// other value is free-form progress text.
	Status(ctx context.Context, fileID string) (string, error)
	// Baseline fetches the prediction payload for a completed file.
	// A nil report with no error means there is nothing to materialize.
	Baseline(ctx context.Context, fileID string) (*models.BaselineReport, error)
}

// Done reports whether a status string is the completion sentinel.
func Done(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusDone)
}

// HTTPClient implements Client against the analyzer's HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new analyzer HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Status(ctx context.Context, fileID string) (string, error) {
	u := fmt.Sprintf("%s/api/ai/csv/status?%s", c.baseURL,
		url.Values{"file_id": {fileID}}.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrAnalyzerStatus, resp.StatusCode)
	}

	var statusResp statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&statusResp); err != nil {
		return "", fmt.Errorf("decoding status response: %w", err)
	}

	return statusResp.Status, nil
}

func (c *HTTPClient) Baseline(ctx context.Context, fileID string) (*models.BaselineReport, error) {
	u := fmt.Sprintf("%s/api/ai/data/baseline?%s", c.baseURL,
		url.Values{"file_id": {fileID}}.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	// The analyzer answers 404 when no baseline exists for the file;
	// that is "nothing to materialize", not a failure.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAnalyzerStatus, resp.StatusCode)
	}

	var report models.BaselineReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding baseline response: %w", err)
	}

	return &report, nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrAnalyzerTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrAnalyzerTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrAnalyzerUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrAnalyzerUnreachable, err)
}

// statusResponse mirrors GET /api/ai/csv/status.
type statusResponse struct {
	CsvFile     string `json:"csv_file"`
	Status      string `json:"status"`
	Progress    string `json:"progress"`
	LastUpdated string `json:"last_updated"`
	Details     string `json:"details"`
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
