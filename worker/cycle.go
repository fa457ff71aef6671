package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/airdiag/wifi-doctor/pkg/models"
	"github.com/airdiag/wifi-doctor/report"
	"github.com/airdiag/wifi-doctor/textanalysis"
	"github.com/airdiag/wifi-doctor/wifi"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Upper bound on one diagnostic pass, shared across every dashboard call
// in the cycle.
const cycleTimeout = 10 * time.Minute

// runCycle executes one full diagnostic pass over the targeted networks.
func (w *Worker) runCycle() {
	logrus.Info("Starting WiFi diagnostic cycle")
	startTime := time.Now()
	w.resetStats(startTime)

	// Health check before diagnosing
	if err := w.dashboardService.HealthCheck(); err != nil {
		logrus.Errorf("Health check failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	organizationID, err := w.dashboardService.OrganizationID(ctx)
	if err != nil {
		logrus.Errorf("Failed to resolve organization: %v", err)
		return
	}

	networks, err := w.dashboardService.GetOrganizationNetworks(ctx, organizationID)
	if err != nil {
		logrus.Errorf("Failed to list networks: %v", err)
		return
	}

	targets := w.targetNetworks(networks)

	w.statsLock.Lock()
	w.currentStats.NetworksTargeted = len(targets)
	w.statsLock.Unlock()

	if len(targets) == 0 {
		logrus.Warn("No wireless networks to diagnose")
		return
	}

	logrus.Infof("Diagnosing %d of %d networks", len(targets), len(networks))

	results := make(map[string]*wifi.Result)
	for _, network := range targets {
		networkResults, err := w.processNetwork(ctx, network)
		if err != nil {
			// One broken network must not abort the cycle.
			logrus.Warnf("Skipping network %s: %v", network.Name, err)
			w.statsLock.Lock()
			w.currentStats.NetworksFailed++
			w.statsLock.Unlock()
			continue
		}

		for key, result := range networkResults {
			results[key] = result
		}

		w.statsLock.Lock()
		w.currentStats.NetworksProcessed++
		w.statsLock.Unlock()
	}

	if len(results) > 0 {
		payload := report.NewPayload(results)
		if err := w.reportService.SendResults(ctx, payload); err != nil {
			logrus.Errorf("Failed to post cycle report: %v", err)
		}
		if err := w.saveCycleResults(payload); err != nil {
			logrus.Errorf("Failed to save cycle results: %v", err)
		}
	}

	duration := time.Since(startTime)
	stats := w.GetCycleProgress()

	logrus.Infof("Diagnostic cycle complete: %d/%d networks, %d SSIDs inspected, %d issues (%d high, %d medium, %d low), %d failed networks in %v",
		stats.NetworksProcessed, stats.NetworksTargeted, stats.SSIDsInspected, stats.TotalIssues,
		stats.HighSeverity, stats.MediumSeverity, stats.LowSeverity, stats.NetworksFailed, duration)
}

// targetNetworks narrows the organization's networks to the wireless ones
// the configured watch list points at. An empty watch list targets every
// wireless network.
func (w *Worker) targetNetworks(networks []models.Network) []models.Network {
	wireless := lo.Filter(networks, func(network models.Network, _ int) bool {
		return len(network.ProductTypes) == 0 || lo.Contains(network.ProductTypes, "wireless")
	})

	if len(w.config.Troubleshoot.Networks) == 0 {
		return wireless
	}

	matched := textanalysis.FindMatchingNetworks(&textanalysis.Context{
		NetworkIdentifiers: w.config.Troubleshoot.Networks,
	}, wireless)
	if len(matched) == 0 {
		logrus.Warnf("No networks matched the configured watch list (%d wireless candidates)", len(wireless))
	}
	return matched
}

// processNetwork diagnoses every inspected SSID of one network. Results
// are keyed by "<networkID>:<ssidNumber>".
func (w *Worker) processNetwork(ctx context.Context, network models.Network) (map[string]*wifi.Result, error) {
	ssids, err := w.dashboardService.GetNetworkWirelessSSIDs(ctx, network.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list SSIDs: %v", err)
	}

	clients, err := w.dashboardService.GetNetworkClients(ctx, network.ID)
	if err != nil {
		// Client inventory only enriches the diagnosis, keep going without it.
		logrus.Warnf("Failed to list clients for network %s: %v", network.Name, err)
		clients = nil
	}

	results := make(map[string]*wifi.Result)
	for i := range ssids {
		ssid := ssids[i]
		if !w.inspectSSID(&ssid) {
			continue
		}

		number := 0
		if ssid.Number != nil {
			number = *ssid.Number
		}

		request := &wifi.TroubleshootRequest{
			NetworkID:  network.ID,
			SSIDData:   &ssid,
			ClientData: exemplarClient(clients, ssid.Name),
		}

		result, err := w.troubleshooter.Troubleshoot(ctx, request)
		if err != nil {
			logrus.Warnf("Troubleshooting failed for network %s SSID %d: %v", network.Name, number, err)
			continue
		}

		results[fmt.Sprintf("%s:%d", network.ID, number)] = result
		w.recordResult(result)
	}

	return results, nil
}

// inspectSSID reports whether a slot from the fixed-size SSID table is
// worth diagnosing. Unnamed slots are unconfigured.
func (w *Worker) inspectSSID(ssid *models.SSIDConfig) bool {
	if ssid.Name == "" {
		return false
	}
	if len(w.config.Troubleshoot.SSIDNumbers) == 0 {
		return true
	}
	if ssid.Number == nil {
		return false
	}
	return lo.Contains(w.config.Troubleshoot.SSIDNumbers, *ssid.Number)
}

// exemplarClient picks the client whose experience best represents the
// SSID's worst case: the most recently seen failed client first, then
// the weakest signal when it is poor enough to matter.
func exemplarClient(clients []models.WirelessClient, ssidName string) *models.WirelessClient {
	onSSID := lo.Filter(clients, func(client models.WirelessClient, _ int) bool {
		return client.SSID != nil && *client.SSID == ssidName
	})
	if len(onSSID) == 0 {
		return nil
	}

	failed := lo.Filter(onSSID, func(client models.WirelessClient, _ int) bool {
		return client.Status == "failed" || client.FailureReason != ""
	})
	if len(failed) > 0 {
		latest := lo.MaxBy(failed, func(a, b models.WirelessClient) bool {
			return a.Time().After(b.Time())
		})
		return &latest
	}

	weakest := lo.MinBy(onSSID, func(a, b models.WirelessClient) bool {
		return signalOf(a) < signalOf(b)
	})
	if weakest.Signal != nil && *weakest.Signal < -70 {
		return &weakest
	}

	return nil
}

func signalOf(client models.WirelessClient) float64 {
	if client.Signal == nil {
		return 0
	}
	return *client.Signal
}

// saveCycleResults mirrors the cycle payload into the local data
// directory when one is configured.
func (w *Worker) saveCycleResults(payload report.Payload) error {
	if w.config.Agent.DataDir == "" {
		return nil
	}

	if err := os.MkdirAll(w.config.Agent.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cycle results: %v", err)
	}

	filename := filepath.Join(w.config.Agent.DataDir, fmt.Sprintf("diagnostics_%s.json", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return err
	}

	logrus.Debugf("Cycle results saved to %s", filename)
	return nil
}
