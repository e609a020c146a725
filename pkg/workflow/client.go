// Package workflow calls the lesson webhook of the external tutoring workflow.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-tutor-be/pkg/tutor/session"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL     = "http://localhost:5678"
	DefaultLessonPath  = "/webhook/lesson"
	defaultHTTPTimeout = 120 * time.Second
	maxErrorBody       = 512
)

// ErrTransport matches every *TransportError with errors.Is
var ErrTransport = errors.New("workflow transport failure")

// TransportError reports an unreachable workflow or a non-success status.
// StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("workflow unreachable: %v", e.Err)
	}
	return fmt.Sprintf("workflow returned status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Client posts learner answers to the workflow and returns raw response bodies
type Client struct {
	BaseURL    string
	LessonPath string
	HTTPClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, lessonPath string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if lessonPath == "" {
		lessonPath = DefaultLessonPath
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		LessonPath: "/" + strings.TrimLeft(lessonPath, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Evaluate sends one answer for evaluation. The body is returned untouched
// so the caller can normalize whatever shape the workflow produced.
func (c *Client) Evaluate(ctx context.Context, evalReq session.EvaluationRequest) ([]byte, error) {
	jsonBody, err := json.Marshal(evalReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.BaseURL + c.LessonPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("workflow responded",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: snippet}
	}

	return body, nil
}
