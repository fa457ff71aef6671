package wifi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/airdiag/wifi-doctor/pkg/models"
)

// failedConnectionWindow bounds how far back a failed connection event
// may lie and still count as confirmation of a live issue. Matches the
// dashboard's default reporting window for the failed connections
// listing.
const failedConnectionWindow = 24 * time.Hour

// ValidationResult is the outcome of cross-checking one issue against
// live dashboard state. Details carries the observed values; Validated
// is false whenever the check could not be completed.
type ValidationResult struct {
	Validated bool
	Details   map[string]any
}

// validateIssue runs the read-only cross-check matching the issue
// subtype. Every failure path logs and reports Validated false; a
// validation problem must never abort troubleshooting.
func (t *Troubleshooter) validateIssue(ctx context.Context, issue Issue, networkID string, ssid *models.SSIDConfig) ValidationResult {
	result := ValidationResult{Details: map[string]any{}}

	switch {
	case issue.Subtype == "ssid_disabled" || issue.Subtype == "ssid_not_broadcasting":
		if ssid == nil || ssid.Number == nil {
			return result
		}
		callCtx, cancel := t.apiContext(ctx)
		current, err := t.Accessor.GetNetworkWirelessSSID(callCtx, networkID, *ssid.Number)
		cancel()
		if err != nil {
			logrus.Errorf("Error during API validation: %v", err)
			return result
		}
		result.Details["ssid_enabled"] = current.Enabled != nil && *current.Enabled
		result.Details["ssid_visible"] = !current.Hidden
		result.Validated = true

	case issue.Subtype == "authentication_failure":
		if ssid == nil || ssid.Number == nil {
			return result
		}
		callCtx, cancel := t.apiContext(ctx)
		current, err := t.Accessor.GetNetworkWirelessSSID(callCtx, networkID, *ssid.Number)
		cancel()
		if err != nil {
			logrus.Errorf("Error during API validation: %v", err)
			return result
		}
		result.Details["auth_type"] = current.AuthMode
		if len(current.RadiusServers) > 0 {
			result.Details["radius_configured"] = true
		}
		result.Validated = true

	case strings.Contains(issue.Type, "performance"):
		callCtx, cancel := t.apiContext(ctx)
		devices, err := t.Accessor.GetNetworkDevices(callCtx, networkID)
		cancel()
		if err != nil {
			logrus.Warnf("Error validating AP performance: %v", err)
			return result
		}
		wirelessAPs := lo.Filter(devices, func(device models.Device, _ int) bool {
			return device.IsWireless()
		})
		if len(wirelessAPs) == 0 {
			return result
		}
		callCtx, cancel = t.apiContext(ctx)
		status, err := t.Accessor.GetDeviceWirelessStatus(callCtx, wirelessAPs[0].Serial)
		cancel()
		if err != nil {
			logrus.Warnf("Error validating AP performance: %v", err)
			return result
		}
		result.Details["ap_status"] = status
		result.Validated = true

	case issue.Subtype == "client_specific_connection_failure":
		callCtx, cancel := t.apiContext(ctx)
		failed, err := t.Accessor.GetNetworkWirelessFailedConnections(callCtx, networkID, &models.FailedConnectionFilter{
			Timespan: int(failedConnectionWindow / time.Second),
		})
		cancel()
		if err != nil {
			logrus.Warnf("Error checking failed connections: %v", err)
			return result
		}
		result.Details["failed_connections"] = recentFailedConnections(failed, time.Now().Add(-failedConnectionWindow))
		result.Validated = true
	}

	return result
}

// recentFailedConnections keeps the events whose timestamp parses and
// falls after the cutoff. Events without a usable timestamp never count
// toward a severity boost.
func recentFailedConnections(events []models.FailedConnection, cutoff time.Time) []models.FailedConnection {
	return lo.Filter(events, func(event models.FailedConnection, _ int) bool {
		ts := event.Time()
		return !ts.IsZero() && ts.After(cutoff)
	})
}

// validateIssues cross-checks every issue and returns adjusted copies,
// leaving the detector output untouched. Confirmed-stale findings lose
// severity, confirmed-live findings gain it, and anything adjusted to
// zero or below is dropped.
func (t *Troubleshooter) validateIssues(ctx context.Context, issues []Issue, networkID string, ssid *models.SSIDConfig) []Issue {
	validated := make([]Issue, 0, len(issues))

	for _, issue := range issues {
		adjusted := issue
		vr := t.validateIssue(ctx, issue, networkID, ssid)
		if vr.Validated {
			adjusted.ValidationDetails = vr.Details

			if enabled, ok := vr.Details["ssid_enabled"].(bool); ok && enabled && adjusted.Subtype == "ssid_disabled" {
				adjusted.Severity -= 30
				logrus.Infof("Reduced severity of issue %s, the dashboard shows the SSID is enabled", adjusted.Subtype)
			}
			if failed, ok := vr.Details["failed_connections"].([]models.FailedConnection); ok && len(failed) > 0 {
				adjusted.Severity += 10
				if adjusted.Severity > 100 {
					adjusted.Severity = 100
				}
				adjusted.Description += fmt.Sprintf(" (Confirmed: %d failed connection attempts)", len(failed))
				logrus.Infof("Increased severity of issue %s, the dashboard confirmed %d failed connections", adjusted.Subtype, len(failed))
			}
		}

		if adjusted.Severity > 0 {
			validated = append(validated, adjusted)
		}
	}

	return validated
}
