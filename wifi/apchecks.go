package wifi

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/airdiag/wifi-doctor/pkg/models"
)

var legacyProtocols = []string{"802.11b", "802.11g", "802.11a"}

// checkAPConfigurations inspects the access points of a network through
// the live accessor. Accessor failures are logged and the check returns
// whatever it found so far; they never abort the pipeline.
func (t *Troubleshooter) checkAPConfigurations(ctx context.Context, networkID string, ssid *models.SSIDConfig) []Issue {
	var issues []Issue

	callCtx, cancel := t.apiContext(ctx)
	devices, err := t.Accessor.GetNetworkDevices(callCtx, networkID)
	cancel()
	if err != nil {
		logrus.Errorf("Error checking AP configurations: %v", err)
		return issues
	}

	wirelessAPs := lo.Filter(devices, func(device models.Device, _ int) bool {
		return device.IsWireless()
	})
	if len(wirelessAPs) == 0 {
		return append(issues, Issue{
			Type:               "configuration",
			Subtype:            "no_wireless_aps",
			Severity:           90,
			Description:        "No wireless access points detected in the network",
			AffectedComponents: []string{"access_points", "network"},
		})
	}

	offline := lo.Filter(wirelessAPs, func(device models.Device, _ int) bool {
		return device.Status != "online"
	})
	if len(offline) > 0 {
		names := lo.Map(offline, func(device models.Device, _ int) string {
			return device.DisplayName()
		})
		issues = append(issues, Issue{
			Type:               "connectivity",
			Subtype:            "offline_access_points",
			Severity:           85,
			Description:        fmt.Sprintf("%d access points are offline or in problematic state", len(offline)),
			AffectedComponents: []string{"access_points"},
			Details:            map[string]any{"offline_aps": names},
		})
	}

	if ssid != nil && len(ssid.AvailabilityTags) > 0 && !ssid.IsAvailableOnAllAps() {
		var missing []string
		withTags := 0
		for _, ap := range wirelessAPs {
			if ap.HasAnyTag(ssid.AvailabilityTags) {
				withTags++
			} else {
				missing = append(missing, ap.DisplayName())
			}
		}

		if withTags == 0 {
			issues = append(issues, Issue{
				Type:               "configuration",
				Subtype:            "no_aps_with_required_tags",
				Severity:           90,
				Description:        fmt.Sprintf("SSID requires APs with tags %v, but no APs have these tags", ssid.AvailabilityTags),
				AffectedComponents: []string{"access_points", "ssid"},
				Details:            map[string]any{"required_tags": ssid.AvailabilityTags},
			})
		} else if len(missing) > 0 && withTags < len(wirelessAPs) {
			issues = append(issues, Issue{
				Type:               "configuration",
				Subtype:            "some_aps_missing_required_tags",
				Severity:           75,
				Description:        fmt.Sprintf("Some APs are missing the required tags %v for SSID availability", ssid.AvailabilityTags),
				AffectedComponents: []string{"access_points", "ssid"},
				Details: map[string]any{
					"required_tags":    ssid.AvailabilityTags,
					"aps_without_tags": missing,
					"aps_with_tags":    withTags,
					"total_aps":        len(wirelessAPs),
				},
			})
		}
	}

	// Radio state is sampled from a single representative AP; polling
	// every AP here would be too expensive for a diagnosis pass.
	sample := wirelessAPs[0]
	callCtx, cancel = t.apiContext(ctx)
	status, err := t.Accessor.GetDeviceWirelessStatus(callCtx, sample.Serial)
	cancel()
	if err != nil {
		logrus.Warnf("Error checking AP radio status: %v", err)
		return issues
	}

	for _, radio := range status.Radios {
		band := radio.Band
		if band == "" {
			band = "unknown"
		}
		if radio.Status != "normal" {
			radioStatus := radio.Status
			if radioStatus == "" {
				radioStatus = "abnormal"
			}
			issues = append(issues, Issue{
				Type:               "performance",
				Subtype:            "radio_status_issue",
				Severity:           70,
				Description:        fmt.Sprintf("AP radio (%s) status is %s", band, radioStatus),
				AffectedComponents: []string{"access_points", "radio"},
			})
		}
		if radio.ChannelUtilization > 70 {
			issues = append(issues, Issue{
				Type:               "performance",
				Subtype:            "high_channel_utilization",
				Severity:           65,
				Description:        fmt.Sprintf("High channel utilization (%g%%) on %s radio", radio.ChannelUtilization, band),
				AffectedComponents: []string{"access_points", "radio", "channel"},
			})
		}
	}

	return issues
}

// checkConnectedClients inspects the wireless clients of a network. No
// clients on an SSID that should have some triggers a failed-connection
// lookup to refine the diagnosis.
func (t *Troubleshooter) checkConnectedClients(ctx context.Context, networkID string, ssid *models.SSIDConfig) []Issue {
	var issues []Issue

	callCtx, cancel := t.apiContext(ctx)
	clients, err := t.Accessor.GetNetworkClients(callCtx, networkID)
	cancel()
	if err != nil {
		logrus.Errorf("Error checking connected clients: %v", err)
		return issues
	}

	wireless := lo.Filter(clients, func(client models.WirelessClient, _ int) bool {
		return client.IsWirelessClient()
	})

	if len(wireless) == 0 && ssid != nil {
		ssidName := ssid.Name
		if ssidName == "" {
			ssidName = "Unknown SSID"
		}
		issues = append(issues, Issue{
			Type:               "connectivity",
			Subtype:            "no_connected_clients",
			Severity:           80,
			Description:        fmt.Sprintf("No clients are connected to the '%s' SSID", ssidName),
			AffectedComponents: []string{"ssid", "clients"},
		})

		callCtx, cancel = t.apiContext(ctx)
		failed, err := t.Accessor.GetNetworkWirelessFailedConnections(callCtx, networkID, nil)
		cancel()
		if err != nil {
			logrus.Warnf("Error checking failed connections: %v", err)
			return issues
		}

		countByReason := func(substr string) int {
			return lo.CountBy(failed, func(fc models.FailedConnection) bool {
				return strings.Contains(strings.ToLower(fc.FailureReason), substr)
			})
		}

		if n := countByReason("auth"); n > 0 {
			issues = append(issues, Issue{
				Type:               "connectivity",
				Subtype:            "authentication_failures",
				Severity:           85,
				Description:        fmt.Sprintf("%d clients failed to authenticate to the network", n),
				AffectedComponents: []string{"ssid", "clients", "authentication"},
				Details:            map[string]any{"count": n},
			})
		}
		if n := countByReason("dhcp"); n > 0 {
			issues = append(issues, Issue{
				Type:               "connectivity",
				Subtype:            "dhcp_failures",
				Severity:           80,
				Description:        fmt.Sprintf("%d clients failed to obtain IP addresses via DHCP", n),
				AffectedComponents: []string{"ssid", "clients", "dhcp"},
				Details:            map[string]any{"count": n},
			})
		}
		if n := countByReason("association"); n > 0 {
			issues = append(issues, Issue{
				Type:               "connectivity",
				Subtype:            "association_failures",
				Severity:           75,
				Description:        fmt.Sprintf("%d clients failed to associate with the wireless network", n),
				AffectedComponents: []string{"ssid", "clients", "radio"},
				Details:            map[string]any{"count": n},
			})
		}
	} else if len(wireless) > 0 {
		poorSignal := lo.CountBy(wireless, func(client models.WirelessClient) bool {
			return client.Signal != nil && *client.Signal < -70
		})
		if poorSignal > 0 {
			issues = append(issues, Issue{
				Type:               "performance",
				Subtype:            "poor_signal_strength",
				Severity:           65,
				Description:        fmt.Sprintf("%d clients have poor signal strength (< -70 dBm)", poorSignal),
				AffectedComponents: []string{"clients", "access_points", "signal"},
				Details:            map[string]any{"count": poorSignal},
			})
		}

		legacy := lo.CountBy(wireless, func(client models.WirelessClient) bool {
			return lo.Contains(legacyProtocols, client.Protocol)
		})
		if legacy > 0 {
			issues = append(issues, Issue{
				Type:               "performance",
				Subtype:            "legacy_clients",
				Severity:           60,
				Description:        fmt.Sprintf("%d clients are using older 802.11 standards", legacy),
				AffectedComponents: []string{"clients", "performance"},
				Details:            map[string]any{"count": legacy},
			})
		}

		if ssid != nil && ssid.Name != "" {
			onSSID := lo.CountBy(wireless, func(client models.WirelessClient) bool {
				return client.SSID != nil && *client.SSID == ssid.Name
			})
			if onSSID == 0 {
				issues = append(issues, Issue{
					Type:               "connectivity",
					Subtype:            "no_clients_on_ssid",
					Severity:           75,
					Description:        fmt.Sprintf("No clients are connected to the '%s' SSID specifically", ssid.Name),
					AffectedComponents: []string{"ssid", "clients"},
				})
			}
		}
	}

	return issues
}
