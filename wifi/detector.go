package wifi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/airdiag/wifi-doctor/pkg/models"
	"github.com/airdiag/wifi-doctor/textanalysis"
)

// Language that signals client side compatibility trouble in a problem
// description. The SSID checks use it to decide whether PMF and WPA3
// settings are worth flagging.
var clientCompatibilityTerms = []string{
	"can't connect", "cannot connect", "unable to connect",
	"compatibility", "older device", "legacy device",
}

var clientIndicatorTerms = []string{
	"client", "device", "phone", "laptop", "computer", "user",
	"iphone", "android", "mac", "windows", "ios", "specific",
}

var connectToPattern = regexp.MustCompile(`connect to ([a-z0-9_-]+)`)

func containsAnyTerm(text string, terms []string) bool {
	lower := strings.ToLower(text)
	return lo.SomeBy(terms, func(term string) bool {
		return strings.Contains(lower, term)
	})
}

// checkSSIDIssues evaluates the SSID configuration checks in order. A
// disabled SSID is terminal; nothing else matters until it is enabled.
func checkSSIDIssues(ssid *models.SSIDConfig, description string) []Issue {
	var issues []Issue
	if ssid == nil {
		return issues
	}

	if !ssid.IsEnabled() {
		return append(issues, Issue{
			Type:               "configuration",
			Subtype:            "ssid_disabled",
			Severity:           90,
			Description:        "The SSID is disabled in the network configuration",
			AffectedComponents: []string{"ssid"},
		})
	}

	if !ssid.IsBroadcasting() {
		issues = append(issues, Issue{
			Type:               "connectivity",
			Subtype:            "ssid_not_broadcasting",
			Severity:           80,
			Description:        "The SSID is enabled but not broadcasting",
			AffectedComponents: []string{"ssid", "access_points"},
		})
	}

	compatMentioned := containsAnyTerm(description, clientCompatibilityTerms)
	isOpenEnhanced := ssid.AuthMode == "open-enhanced"

	if ssid.PMFRequired() && compatMentioned {
		issues = append(issues, Issue{
			Type:               "compatibility",
			Subtype:            "pmf_required_compatibility",
			Severity:           75,
			Description:        "Required Protected Management Frames (PMF) may cause compatibility issues with some clients",
			AffectedComponents: []string{"ssid", "clients", "security"},
			Details: map[string]any{
				"pmf_enabled":  ssid.PMFEnabled(),
				"pmf_required": true,
				"auth_mode":    ssid.AuthMode,
			},
		})
	}

	// Open-Enhanced must never be reported as something to turn off.
	// With required PMF on top it can still trip older clients, which
	// is a compatibility note, not a reason to change the auth mode.
	if isOpenEnhanced && compatMentioned && ssid.PMFRequired() {
		issues = append(issues, Issue{
			Type:               "compatibility",
			Subtype:            "open_enhanced_pmf_config",
			Severity:           70,
			Description:        "Open-Enhanced is correctly enabled (critical security feature), but PMF being required might cause compatibility issues",
			AffectedComponents: []string{"ssid", "clients", "security"},
			Details: map[string]any{
				"auth_mode":    "open-enhanced",
				"pmf_required": true,
			},
		})
	}

	if len(ssid.AvailabilityTags) > 0 && !ssid.IsAvailableOnAllAps() {
		issues = append(issues, Issue{
			Type:               "configuration",
			Subtype:            "restricted_ap_availability",
			Severity:           80,
			Description:        fmt.Sprintf("SSID is restricted to APs with tags: %s", strings.Join(ssid.AvailabilityTags, ", ")),
			AffectedComponents: []string{"ssid", "access_points"},
			Details: map[string]any{
				"availability_tags":    ssid.AvailabilityTags,
				"available_on_all_aps": false,
			},
		})
	}

	if (ssid.AuthMode == "wpa3" || ssid.AuthMode == "wpa3-enterprise") && compatMentioned {
		issues = append(issues, Issue{
			Type:               "compatibility",
			Subtype:            "wpa3_only_compatibility",
			Severity:           70,
			Description:        "WPA3-only mode may not be supported by all client devices",
			AffectedComponents: []string{"ssid", "clients", "security"},
			Details: map[string]any{
				"auth_mode":  ssid.AuthMode,
				"encryption": ssid.Encryption(),
			},
		})
	}

	if ssid.AuthMode == "open" && strings.Contains(strings.ToLower(description), "open") {
		issues = append(issues, Issue{
			Type:               "security",
			Subtype:            "open_network_issues",
			Severity:           60,
			Description:        "Open network (not Open-Enhanced) may be causing connection issues with some client devices",
			AffectedComponents: []string{"ssid", "clients"},
		})
	}

	return issues
}

// checkClientIssues evaluates the client snapshot checks. The cross
// platform check reads the description only, so it fires even without
// client data.
func checkClientIssues(client *models.WirelessClient, description string) []Issue {
	var issues []Issue
	lower := strings.ToLower(description)

	if client != nil {
		if client.Status == "failed" {
			reason := client.FailureReason
			if reason == "" {
				reason = "unknown"
			}
			switch reason {
			case "auth_failure":
				issues = append(issues, Issue{
					Type:               "connectivity",
					Subtype:            "authentication_failure",
					Severity:           85,
					Description:        "Client failed to authenticate to the network",
					AffectedComponents: []string{"client", "ssid"},
				})
			case "dhcp_failure":
				issues = append(issues, Issue{
					Type:               "connectivity",
					Subtype:            "dhcp_failure",
					Severity:           75,
					Description:        "Client failed to obtain an IP address via DHCP",
					AffectedComponents: []string{"client", "dhcp"},
				})
			default:
				issues = append(issues, Issue{
					Type:               "connectivity",
					Subtype:            "connection_failure",
					Severity:           70,
					Description:        fmt.Sprintf("Client connection failed with reason: %s", reason),
					AffectedComponents: []string{"client", "ssid"},
				})
			}
		}

		if client.Signal != nil && *client.Signal < -70 {
			issues = append(issues, Issue{
				Type:               "performance",
				Subtype:            "low_signal_strength",
				Severity:           60,
				Description:        fmt.Sprintf("Client has poor signal strength: %g dBm", *client.Signal),
				AffectedComponents: []string{"client", "access_points"},
			})
		}
	}

	if (strings.Contains(lower, "mac") && strings.Contains(lower, "windows")) || strings.Contains(lower, "multiple devices") {
		issues = append(issues, Issue{
			Type:               "compatibility",
			Subtype:            "cross_platform_issues",
			Severity:           65,
			Description:        "Issue affects multiple device types, suggesting SSID configuration incompatibility",
			AffectedComponents: []string{"ssid", "clients"},
		})
	}

	return issues
}

// analyzeDescription turns a free text complaint into issues when the
// structured checks came up empty, and extracts the query context that
// goes into the result for audit.
func analyzeDescription(description string) ([]Issue, *textanalysis.Context) {
	var issues []Issue
	lower := strings.ToLower(description)

	extracted := textanalysis.Extract(description)

	hasClientIndicator := containsAnyTerm(description, clientIndicatorTerms)

	switch {
	case containsAnyTerm(description, []string{"can't connect", "cannot connect", "unable to connect", "unable to join"}):
		severity := 80
		subtype := "connection_failure"
		text := "Clients are unable to connect to the wireless network"

		switch {
		case strings.Contains(lower, "password") || strings.Contains(lower, "credentials"):
			subtype = "authentication_failure"
			if hasClientIndicator {
				text = "Specific clients are experiencing authentication failures when connecting"
			} else {
				text = "Clients are unable to connect due to possible authentication issues"
			}
		case strings.Contains(lower, "see the network") || strings.Contains(lower, "find the network"):
			subtype = "ssid_not_visible"
			if hasClientIndicator {
				text = "Specific clients cannot see or find the wireless network"
			} else {
				text = "Clients cannot see or find the wireless network"
			}
		case strings.Contains(lower, "immediately") && strings.Contains(lower, "error"):
			subtype = "immediate_connection_failure"
			severity = 85
			if hasClientIndicator {
				text = "Specific clients immediately receive an error when trying to connect"
			} else {
				text = "Clients immediately receive an error when trying to connect"
			}
		case hasClientIndicator:
			subtype = "client_specific_connection_failure"
			severity = 82
			text = "Specific clients are unable to connect while others may be connecting successfully"
		}

		issues = append(issues, Issue{
			Type:               "connectivity",
			Subtype:            subtype,
			Severity:           severity,
			Description:        text,
			AffectedComponents: []string{"clients", "ssid"},
		})
	case containsAnyTerm(description, []string{"slow", "performance", "dropping", "intermittent"}):
		issues = append(issues, Issue{
			Type:               "performance",
			Subtype:            "poor_performance",
			Severity:           60,
			Description:        "Network performance issues affecting client experience",
			AffectedComponents: []string{"clients", "access_points", "network"},
		})
	}

	if match := connectToPattern.FindStringSubmatch(lower); match != nil {
		issues = append(issues, Issue{
			Type:               "connectivity",
			Subtype:            "ssid_specific_issue",
			Severity:           75,
			Description:        fmt.Sprintf("Issue specifically affects the '%s' SSID", match[1]),
			AffectedComponents: []string{"ssid"},
		})
	}

	if strings.Contains(lower, "mac") {
		issues = append(issues, Issue{
			Type:               "compatibility",
			Subtype:            "mac_specific_issue",
			Severity:           50,
			Description:        "Issue may be specific to Mac devices",
			AffectedComponents: []string{"clients"},
		})
	}
	if strings.Contains(lower, "windows") {
		issues = append(issues, Issue{
			Type:               "compatibility",
			Subtype:            "windows_specific_issue",
			Severity:           50,
			Description:        "Issue may be specific to Windows devices",
			AffectedComponents: []string{"clients"},
		})
	}

	// Several device types implicated at once means the SSID
	// configuration is the likely culprit, so everything found above
	// weighs more. Issues already at 90 or above keep their severity.
	if strings.Contains(lower, "multiple devices") ||
		(strings.Contains(lower, "both") && strings.Contains(lower, "mac") && strings.Contains(lower, "windows")) {
		for i := range issues {
			if issues[i].Severity < 90 {
				issues[i].Severity += 10
			}
			issues[i].Description += " (affects multiple device types)"
		}
	}

	return issues, extracted
}
