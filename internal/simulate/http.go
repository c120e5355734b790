package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/courtside/internal/domain/analytics"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/timeline"
)

// HTTPClient wraps http.Client with a base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// do sends a JSON request and decodes the response into out when it is non-nil.
// Statuses other than want are returned as errors carrying the server message.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, want int) error {
	var rdr io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	data, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &e)
		return fmt.Errorf("%w: %s %s: status %d %s %s", ErrUnexpected, method, path, resp.StatusCode, e.Code, e.Message)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}
	return nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

type sessionView struct {
	SessionID string `json:"session_id"`
	Timeline  struct {
		Phase string `json:"phase"`
	} `json:"timeline"`
}

// httpDriver plays checkpoints against a running service.
type httpDriver struct {
	client    *HTTPClient
	sessionID string
}

func newHTTPDriver(ctx context.Context, baseURL string, timeout time.Duration) (*httpDriver, error) {
	d := &httpDriver{client: newHTTPClient(baseURL, timeout)}
	if err := d.client.do(ctx, http.MethodGet, "/healthz", nil, nil, http.StatusOK); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	var v sessionView
	if err := d.client.do(ctx, http.MethodGet, "/session", nil, &v, http.StatusOK); err != nil {
		return nil, err
	}
	d.sessionID = v.SessionID
	return d, nil
}

func (d *httpDriver) SessionID() string { return d.sessionID }

func (d *httpDriver) SetAdvanceDuration(ctx context.Context, minutes float64) error {
	return d.client.do(ctx, http.MethodPut, "/session/duration", map[string]float64{"minutes": minutes}, nil, http.StatusOK)
}

func (d *httpDriver) Start(ctx context.Context) error {
	return d.client.do(ctx, http.MethodPost, "/session/start", nil, nil, http.StatusAccepted)
}

// AwaitPhase polls GET /session until the phase is reached.
func (d *httpDriver) AwaitPhase(ctx context.Context, phase timeline.Phase) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		var v sessionView
		if err := d.client.do(ctx, http.MethodGet, "/session", nil, &v, http.StatusOK); err != nil {
			return err
		}
		if v.Timeline.Phase == phase.String() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("await %s: %w", phase, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (d *httpDriver) SubmitSurvey(ctx context.Context, s model.SurveyResponses) error {
	return d.client.do(ctx, http.MethodPost, "/session/survey", s, nil, http.StatusOK)
}

func (d *httpDriver) SubmitBiometric(ctx context.Context, value int) (model.TimelineRecord, error) {
	var rec model.TimelineRecord
	err := d.client.do(ctx, http.MethodPost, "/session/biometric", map[string]int{"value": value}, &rec, http.StatusCreated)
	return rec, err
}

func (d *httpDriver) SubmitDerivedBiometric(ctx context.Context) (model.TimelineRecord, error) {
	var rec model.TimelineRecord
	err := d.client.do(ctx, http.MethodPost, "/session/biometric", map[string]bool{"derived": true}, &rec, http.StatusCreated)
	return rec, err
}

func (d *httpDriver) Dashboard(ctx context.Context) (analytics.Dashboard, error) {
	var dash analytics.Dashboard
	err := d.client.do(ctx, http.MethodGet, "/dashboard", nil, &dash, http.StatusOK)
	return dash, err
}

func (d *httpDriver) Close() error { return nil }
