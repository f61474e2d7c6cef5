package retry

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/suiboard/suiboard-backend/pkg/logging"
)

// HTTPRetryConfig holds configuration for HTTP retry operations
type HTTPRetryConfig struct {
	RetryConfig     *RetryConfig
	Timeout         time.Duration
	IdleConnTimeout time.Duration
	MaxResponseSize int64 // Maximum response size to read for error messages
}

// DefaultHTTPRetryConfig returns default configuration for HTTP retry operations
func DefaultHTTPRetryConfig() *HTTPRetryConfig {
	return &HTTPRetryConfig{
		RetryConfig:     DefaultRetryConfig(),
		Timeout:         10 * time.Second,
		IdleConnTimeout: 30 * time.Second,
		MaxResponseSize: 4096,
	}
}

// Validate checks the HTTP configuration for reasonable values
func (c *HTTPRetryConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.IdleConnTimeout <= 0 {
		return fmt.Errorf("idleConnTimeout must be positive")
	}
	if c.MaxResponseSize < 0 {
		return fmt.Errorf("maxResponseSize must be >= 0")
	}
	return c.RetryConfig.Validate()
}

// HTTPClient is a wrapper around http.Client that includes retry logic
type HTTPClient struct {
	client     *http.Client
	HTTPConfig *HTTPRetryConfig
	logger     logging.Logger
}

// NewHTTPClient creates a new HTTP client with retry capabilities
func NewHTTPClient(httpConfig *HTTPRetryConfig, logger logging.Logger) (*HTTPClient, error) {
	if httpConfig == nil {
		httpConfig = DefaultHTTPRetryConfig()
	}

	if err := httpConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid HTTP retry config: %w", err)
	}

	client := &http.Client{
		Timeout: httpConfig.Timeout,
		Transport: &http.Transport{
			IdleConnTimeout:   httpConfig.IdleConnTimeout,
			DisableKeepAlives: false,
			DialContext: (&net.Dialer{
				Timeout:   httpConfig.Timeout / 2,
				KeepAlive: httpConfig.IdleConnTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   httpConfig.Timeout / 2,
			ResponseHeaderTimeout: httpConfig.Timeout / 2,
			ExpectContinueTimeout: httpConfig.Timeout / 3,
		},
	}

	return &HTTPClient{
		client:     client,
		HTTPConfig: httpConfig,
		logger:     logger,
	}, nil
}

// DoWithRetry performs an HTTP request with retry logic.
// The caller is responsible for closing the response body.
func (c *HTTPClient) DoWithRetry(req *http.Request) (*http.Response, error) {
	var (
		lastErr  error
		lastResp *http.Response
		delay    = c.HTTPConfig.RetryConfig.InitialDelay
	)

	// Use GetBody if available to avoid reading into memory
	var getBody func() (io.ReadCloser, error)
	if req.GetBody != nil {
		getBody = req.GetBody
	} else if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading request body: %w", err)
		}
		if err := req.Body.Close(); err != nil {
			c.logger.Warnf("Failed to close request body: %v", err)
		}
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		getBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewBuffer(bodyBytes)), nil
		}
	}

	for attempt := 1; attempt <= c.HTTPConfig.RetryConfig.MaxRetries; attempt++ {
		reqClone := req.Clone(req.Context())
		if getBody != nil {
			body, err := getBody()
			if err != nil {
				return nil, fmt.Errorf("failed to get request body: %w", err)
			}
			reqClone.Body = body
		}

		resp, err := c.client.Do(reqClone)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}

		if resp != nil {
			// Drain the error body so the connection can be reused
			limited := io.LimitReader(resp.Body, c.HTTPConfig.MaxResponseSize)
			errBody, _ := io.ReadAll(limited)
			if cerr := resp.Body.Close(); cerr != nil {
				c.logger.Warnf("Failed to close response body: %v", cerr)
			}
			lastErr = fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(errBody))
			lastResp = resp
		} else {
			lastErr = err
		}

		if attempt == c.HTTPConfig.RetryConfig.MaxRetries {
			break
		}

		if c.HTTPConfig.RetryConfig.LogRetryAttempt {
			c.logger.Warnf("HTTP attempt %d/%d failed: %v, retrying in %v",
				attempt, c.HTTPConfig.RetryConfig.MaxRetries, lastErr, delay)
		}

		sleepDuration := CalculateDelayWithJitter(delay, c.HTTPConfig.RetryConfig.JitterFactor)

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(sleepDuration):
		}

		delay = CalculateNextDelay(delay, c.HTTPConfig.RetryConfig.BackoffFactor, c.HTTPConfig.RetryConfig.MaxDelay)
	}

	if lastResp != nil {
		return nil, fmt.Errorf("all %d attempts failed, last status %d: %w",
			c.HTTPConfig.RetryConfig.MaxRetries, lastResp.StatusCode, lastErr)
	}
	return nil, fmt.Errorf("all %d attempts failed: %w", c.HTTPConfig.RetryConfig.MaxRetries, lastErr)
}
