package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/airdiag/wifi-doctor/configs"
	"github.com/airdiag/wifi-doctor/wifi"
)

func shortenRetries(t *testing.T) {
	t.Helper()
	original := retryInterval
	retryInterval = 5 * time.Millisecond
	t.Cleanup(func() { retryInterval = original })
}

func sampleResults() map[string]*wifi.Result {
	return map[string]*wifi.Result{
		"N_1:0": wifi.NewResult([]wifi.Issue{
			{Type: "configuration", Subtype: "ssid_disabled", Severity: 90},
		}, 66, []string{"Enable the SSID in the dashboard"}, nil, nil),
		"N_2:1": wifi.NewResult([]wifi.Issue{
			{Type: "connectivity", Subtype: "authentication_failure", Severity: 80},
			{Type: "performance", Subtype: "poor_performance", Severity: 60},
		}, 57, nil, nil, nil),
	}
}

func TestNewPayloadSummarizesResults(t *testing.T) {
	payload := NewPayload(sampleResults())

	assert.Equal(t, 2, payload.ResultCount)
	assert.Equal(t, 3, payload.IssueCount)

	generated, err := time.Parse(time.RFC3339, payload.GeneratedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), generated, time.Minute)
}

func TestSendResultsDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no webhook call expected when report is disabled")
	}))
	t.Cleanup(server.Close)

	svc := NewService(config.ReportConfig{Enabled: false, WebhookURL: server.URL})
	require.NoError(t, svc.SendResults(context.Background(), NewPayload(sampleResults())))
}

func TestSendResultsPostsJSON(t *testing.T) {
	var received Payload
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	t.Cleanup(server.Close)

	svc := NewService(config.ReportConfig{Enabled: true, WebhookURL: server.URL, TimeoutSeconds: 5})
	require.NoError(t, svc.SendResults(context.Background(), NewPayload(sampleResults())))

	assert.Contains(t, contentType, "application/json")
	assert.Equal(t, 2, received.ResultCount)
	assert.Equal(t, 3, received.IssueCount)
	require.Contains(t, received.Results, "N_1:0")
	require.NotNil(t, received.Results["N_1:0"].PrimaryIssue)
	assert.Equal(t, "ssid_disabled", received.Results["N_1:0"].PrimaryIssue.Subtype)
	assert.Equal(t, 66, received.Results["N_1:0"].Confidence)
}

func TestSendResultsRetriesThenSucceeds(t *testing.T) {
	shortenRetries(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	svc := NewService(config.ReportConfig{Enabled: true, WebhookURL: server.URL, TimeoutSeconds: 5})
	require.NoError(t, svc.SendResults(context.Background(), NewPayload(sampleResults())))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSendResultsRetriesExhausted(t *testing.T) {
	shortenRetries(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	svc := NewService(config.ReportConfig{Enabled: true, WebhookURL: server.URL, TimeoutSeconds: 5})
	err := svc.SendResults(context.Background(), NewPayload(sampleResults()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ReportConfig
		want bool
	}{
		{name: "disabled needs nothing", cfg: config.ReportConfig{Enabled: false}, want: true},
		{name: "enabled without url", cfg: config.ReportConfig{Enabled: true}, want: false},
		{name: "enabled with non-http scheme", cfg: config.ReportConfig{Enabled: true, WebhookURL: "ftp://hooks.example.com/wifi"}, want: false},
		{name: "enabled with https url", cfg: config.ReportConfig{Enabled: true, WebhookURL: "https://hooks.example.com/wifi"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewService(tt.cfg).Validate())
		})
	}
}
