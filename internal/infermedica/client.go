// internal/infermedica/client.go
package infermedica

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sshreyx1/hot-triage/internal/common/config"
	stderrors "github.com/sshreyx1/hot-triage/internal/common/errors"
	"github.com/sshreyx1/hot-triage/internal/common/logger"
	"github.com/sshreyx1/hot-triage/internal/common/metrics"
	"github.com/sshreyx1/hot-triage/internal/common/observability"
)

const (
	endpointParse     = "/parse"
	endpointDiagnosis = "/diagnosis"

	// Interview-Id correlates all calls of one interview session upstream.
	headerInterviewID = "Interview-Id"
)

// Client talks to the external diagnosis engine. Calls are single-shot: the
// failure policy is no retry, no partial result.
type Client struct {
	baseURL    string
	appID      string
	appKey     string
	model      string
	httpClient *http.Client
	logger     logger.Logger
	obs        *observability.Observability
}

func NewClient(cfg config.EngineConfig, log logger.Logger, obs *observability.Observability) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		appID:   cfg.AppID,
		appKey:  cfg.AppKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		logger: log.With(map[string]interface{}{
			"component": "engine-client",
		}),
		obs: obs,
	}
}

// Parse sends free text plus demographics to the engine's NLP endpoint and
// returns the detected mentions along with the raw body.
func (c *Client) Parse(ctx context.Context, req ParseRequest) (*ParseResponse, error) {
	body, err := c.post(ctx, endpointParse, req, "")
	if err != nil {
		return nil, c.wrapError(endpointParse, err)
	}

	resp := &ParseResponse{Raw: body}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, stderrors.NewParseFailedError(fmt.Sprintf("decode error: %v", err))
	}
	return resp, nil
}

// Diagnose sends the accumulated evidence to the engine and returns the
// ranked conditions plus the optional follow-up question. interviewToken is
// passed through as the session-correlation header when present.
func (c *Client) Diagnose(ctx context.Context, req DiagnosisRequest, interviewToken string) (*DiagnosisResponse, error) {
	body, err := c.post(ctx, endpointDiagnosis, req, interviewToken)
	if err != nil {
		return nil, c.wrapError(endpointDiagnosis, err)
	}

	resp := &DiagnosisResponse{Raw: body}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, stderrors.NewDiagnosisFailedError(fmt.Sprintf("decode error: %v", err))
	}
	return resp, nil
}

// upstreamError carries the detail of a failed engine call before it is
// mapped to the endpoint-specific error type.
type upstreamError struct {
	detail  string
	timeout bool
}

func (e *upstreamError) Error() string { return e.detail }

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}, interviewToken string) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &upstreamError{detail: fmt.Sprintf("encode request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, &upstreamError{detail: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("App-Id", c.appID)
	req.Header.Set("App-Key", c.appKey)
	req.Header.Set("Model", c.model)
	if interviewToken != "" {
		req.Header.Set(headerInterviewID, interviewToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.obs.RecordEngineCallDuration(ctx, endpoint, time.Since(start))
	metrics.UpstreamCallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		c.obs.RecordEngineCall(ctx, endpoint, "error")
		metrics.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, &upstreamError{detail: err.Error(), timeout: isTimeout(ctx, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.obs.RecordEngineCall(ctx, endpoint, "error")
		metrics.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, &upstreamError{detail: fmt.Sprintf("read response: %v", err)}
	}

	// The engine's 4xx bodies describe the request problem and pass through
	// to the caller; only 5xx counts as an upstream failure.
	if resp.StatusCode >= http.StatusInternalServerError {
		c.obs.RecordEngineCall(ctx, endpoint, "upstream_error")
		metrics.UpstreamCallsTotal.WithLabelValues(endpoint, "upstream_error").Inc()
		detail := string(raw)
		if detail == "" {
			detail = fmt.Sprintf("status %d", resp.StatusCode)
		}
		c.logger.Error("engine call failed", map[string]interface{}{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		})
		return nil, &upstreamError{detail: detail}
	}

	c.obs.RecordEngineCall(ctx, endpoint, "success")
	metrics.UpstreamCallsTotal.WithLabelValues(endpoint, "success").Inc()
	return raw, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) wrapError(endpoint string, err error) error {
	ue, ok := err.(*upstreamError)
	if !ok {
		return stderrors.Normalize(err)
	}
	if ue.timeout {
		return stderrors.NewUpstreamTimeoutError(endpoint)
	}
	if endpoint == endpointParse {
		return stderrors.NewParseFailedError(ue.detail)
	}
	return stderrors.NewDiagnosisFailedError(ue.detail)
}
