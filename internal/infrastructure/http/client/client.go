// Package client provides a Go client for the plan API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/inbound"
	"github.com/shiliao/dietplan/pkg/circuit"
	"github.com/shiliao/dietplan/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// APIClient handles communication with a running plan API
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *zap.Logger
}

// Option configures an APIClient
type Option func(*APIClient)

// WithBreakerConfig replaces the default circuit breaker settings
func WithBreakerConfig(cfg circuit.Config) Option {
	return func(c *APIClient) {
		c.breaker = circuit.New("dietplan-api", c.withStateLog(cfg))
	}
}

// NewAPIClient creates a client for baseURL, e.g. http://localhost:8080.
// Transport failures and 5xx responses count against a circuit breaker;
// while it is open calls fail fast with SERVICE_UNAVAILABLE.
func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *APIClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
	c.breaker = circuit.New("dietplan-api", c.withStateLog(circuit.DefaultConfig()))
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *APIClient) withStateLog(cfg circuit.Config) circuit.Config {
	cfg.OnStateChange = func(name string, from, to circuit.State) {
		c.logger.Warn("Circuit breaker state changed",
			zap.String("breaker", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}
	return cfg
}

// BreakerState reports the state of the client's circuit breaker
func (c *APIClient) BreakerState() circuit.State {
	return c.breaker.State()
}

// envelope mirrors handlers.APIResponse with a typed payload
type envelope[T any] struct {
	Success bool                 `json:"success"`
	Data    T                    `json:"data"`
	Error   *errors.ErrorDetails `json:"error,omitempty"`
}

// GeneratePlan calls POST /api/v1/plans
func (c *APIClient) GeneratePlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (*inbound.PlanDTO, error) {
	var resp envelope[inbound.PlanDTO]
	if err := c.do(ctx, http.MethodPost, "/api/v1/plans", cmd, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// AssessProfile calls POST /api/v1/profile/assessment
func (c *APIClient) AssessProfile(ctx context.Context, cmd inbound.ProfileCommand) (*inbound.ProfileAssessmentDTO, error) {
	var resp envelope[inbound.ProfileAssessmentDTO]
	if err := c.do(ctx, http.MethodPost, "/api/v1/profile/assessment", cmd, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListConstitutions calls GET /api/v1/constitutions
func (c *APIClient) ListConstitutions(ctx context.Context) ([]diet.ConstitutionProfile, error) {
	var resp envelope[[]diet.ConstitutionProfile]
	if err := c.do(ctx, http.MethodGet, "/api/v1/constitutions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

var _ inbound.PlanService = (*APIClient)(nil)

func (c *APIClient) do(ctx context.Context, method, path string, body interface{}, response interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("API request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	var (
		status int
		data   []byte
	)
	err = c.breaker.Execute(func() error {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if data, err = io.ReadAll(resp.Body); err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if status >= 500 {
			return fmt.Errorf("server error: status %d", status)
		}
		return nil
	})
	if stderrors.Is(err, circuit.ErrOpen) {
		return errors.NewAppError(errors.CodeServiceUnavailable, "Plan API unavailable", "circuit breaker open").WithCause(err)
	}
	if err != nil && status < 500 {
		return err
	}

	if status >= 400 {
		return c.apiError(status, data)
	}

	if err := json.Unmarshal(data, response); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// apiError turns an error envelope back into an AppError so callers can
// branch on the code
func (c *APIClient) apiError(status int, body []byte) error {
	var resp envelope[json.RawMessage]
	if err := json.Unmarshal(body, &resp); err != nil || resp.Error == nil {
		c.logger.Warn("API error response", zap.Int("status", status), zap.ByteString("body", body))
		return errors.NewAppError(statusCode(status), fmt.Sprintf("API error: status %d", status), "")
	}
	return errors.NewAppError(resp.Error.Code, resp.Error.Message, resp.Error.Details).
		WithMetadata("status", status).
		WithMetadata("request_id", resp.Error.RequestID)
}

func statusCode(status int) errors.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return errors.CodeNotFound
	case status == http.StatusTooManyRequests:
		return errors.CodeTooManyRequests
	case status == http.StatusServiceUnavailable:
		return errors.CodeServiceUnavailable
	case status == http.StatusGatewayTimeout:
		return errors.CodeTimeout
	case status < 500:
		return errors.CodeBadRequest
	default:
		return errors.CodeInternal
	}
}
