package dashboard

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/sirupsen/logrus"

	config "github.com/airdiag/wifi-doctor/configs"
)

// Interval between retry attempts; package-level so tests can shorten it.
var retryInterval = 5 * time.Second

func NewService(config config.DashboardConfig) *Service {
	// Direct construction bypasses the config loader, so re-apply the
	// operational defaults here.
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = 30
	}
	if config.MaxConcurrentRequests <= 0 {
		config.MaxConcurrentRequests = 10
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.PerPage <= 0 {
		config.PerPage = 1000
	}

	// Create HTTP client with SSL verification settings
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !config.VerifySSL,
		},
	}

	client := &http.Client{
		Transport: tr,
		Timeout:   time.Duration(config.TimeoutSeconds) * time.Second,
	}

	return &Service{
		Config:     config,
		HttpClient: client,
		BaseURL:    strings.TrimRight(config.BaseURL, "/"),
	}
}

// getJSON issues one GET against the dashboard and decodes the response
// into out. Transport failures, 429 and 5xx responses are retried up to
// the configured attempt count; other API errors surface immediately.
func (s *Service) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	fullURL := fmt.Sprintf("%s%s", s.BaseURL, path)

	var lastErr error
	for attempt := 1; attempt <= s.Config.MaxRetries; attempt++ {
		logrus.Debugf("Making request to: %s", fullURL)

		err := requests.URL(fullURL).
			Client(s.HttpClient).
			Header("Authorization", "Bearer "+s.Config.APIKey).
			Accept("application/json").
			Params(params).
			AddValidator(nil).
			Handle(decodeResponse(out)).
			Fetch(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		if attempt < s.Config.MaxRetries {
			logrus.Warnf("Dashboard request %s failed (attempt %d/%d): %v", path, attempt, s.Config.MaxRetries, err)
			select {
			case <-time.After(retryInterval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("dashboard request %s failed after %d attempts: %w", path, s.Config.MaxRetries, lastErr)
}

// decodeResponse turns a non-2xx response into an APIError and otherwise
// decodes the body into out. A nil out discards the body.
func decodeResponse(out any) func(*http.Response) error {
	return func(resp *http.Response) error {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return apiErrorFromResponse(resp)
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode dashboard response: %v", err)
		}
		return nil
	}
}

// apiErrorFromResponse reads up to 4KB of the error body looking for the
// dashboard's errors array, falling back to the raw text.
func apiErrorFromResponse(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(strings.TrimSpace(string(body))) == 0 {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}

	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && len(errResp.Errors) > 0 {
		apiErr.Message = strings.Join(errResp.Errors, "; ")
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	// Anything else is a transport-level failure.
	return true
}

// HealthCheck verifies connectivity and credentials with a minimal query.
func (s *Service) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.Config.TimeoutSeconds)*time.Second)
	defer cancel()

	params := url.Values{}
	params.Set("page", "1")
	params.Set("perPage", "1")

	var resp pagedResponse
	if err := s.getJSON(ctx, "/organizations", params, &resp); err != nil {
		return fmt.Errorf("health check request failed: %v", err)
	}

	logrus.Debug("Health check passed")
	return nil
}
