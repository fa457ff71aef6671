package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/sirupsen/logrus"

	config "github.com/airdiag/wifi-doctor/configs"
	"github.com/airdiag/wifi-doctor/wifi"
)

const httpRetryTimes = 3

// Interval between webhook retry attempts; package-level so tests can
// shorten it.
var retryInterval = 5 * time.Second

// Payload is the JSON document posted to the webhook after each
// diagnostic cycle. Results are keyed by "<networkID>:<ssidNumber>".
type Payload struct {
	GeneratedAt string                  `json:"generatedAt"`
	ResultCount int                     `json:"resultCount"`
	IssueCount  int                     `json:"issueCount"`
	Results     map[string]*wifi.Result `json:"results"`
}

// NewPayload stamps and summarizes one cycle's results.
func NewPayload(results map[string]*wifi.Result) Payload {
	issueCount := 0
	for _, result := range results {
		issueCount += len(result.Issues)
	}

	return Payload{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		ResultCount: len(results),
		IssueCount:  issueCount,
		Results:     results,
	}
}

type Service struct {
	config     config.ReportConfig
	httpClient *http.Client
}

func NewService(config config.ReportConfig) *Service {
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = 30
	}

	return &Service{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}
}

// Validate checks the webhook configuration and logs what is wrong.
func (s *Service) Validate() bool {
	if !s.config.Enabled {
		logrus.Info("Report sink disabled")
		return true
	}

	if s.config.WebhookURL == "" {
		logrus.Error("Report webhook_url is required when report is enabled")
		return false
	}

	parsed, err := url.Parse(s.config.WebhookURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		logrus.Errorf("Report webhook_url is not a valid http(s) URL: %s", s.config.WebhookURL)
		return false
	}

	// Webhook URLs often embed a token in the path, so log the host only.
	logrus.Infof("Report sink configured: %s", parsed.Host)
	return true
}

// SendResults posts one cycle's payload to the webhook. A failure here is
// non-fatal for the agent; the next cycle supersedes this one either way.
func (s *Service) SendResults(ctx context.Context, payload Payload) error {
	if !s.config.Enabled {
		logrus.Debug("Report sink disabled, skipping send")
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= httpRetryTimes; attempt++ {
		err := requests.URL(s.config.WebhookURL).
			Client(s.httpClient).
			BodyJSON(payload).
			Post().
			Fetch(ctx)
		if err == nil {
			logrus.Infof("Posted cycle report: %d results, %d issues", payload.ResultCount, payload.IssueCount)
			return nil
		}

		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt < httpRetryTimes {
			logrus.Warnf("Webhook post attempt %d/%d failed: %v", attempt, httpRetryTimes, err)
			select {
			case <-time.After(retryInterval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("failed to post cycle report after %d attempts: %w", httpRetryTimes, lastErr)
}
