package wifi

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/airdiag/wifi-doctor/knowledge"
	"github.com/airdiag/wifi-doctor/pkg/models"
	"github.com/airdiag/wifi-doctor/textanalysis"
)

const (
	defaultKBTimeout  = 10 * time.Second
	defaultAPITimeout = 15 * time.Second

	// Location based device matching caps its result so one vague room
	// hint cannot drag a whole building into the response.
	maxLocationMatches = 5
)

// Knowledge base topics consulted per issue subtype. Unlisted subtypes
// fall back to the general troubleshooting guide.
var recommendationTopics = map[string]string{
	"ssid_disabled":          "troubleshooting_1",
	"ssid_not_broadcasting":  "troubleshooting_1",
	"authentication_failure": "troubleshooting_3",
	"dhcp_failure":           "troubleshooting_3",
	"connection_failure":     "troubleshooting_1",
	"low_signal_strength":    "troubleshooting_2",
	"poor_performance":       "troubleshooting_2",
	"cross_platform_issues":  "troubleshooting_3",
	"open_network_issues":    "best_practices_3",
}

// Recommendation language that must never reach the caller. Open-Enhanced
// stays enabled no matter what a knowledge source suggests.
var disableOpenEnhancedTerms = []string{
	"disable open-enhanced", "turn off open-enhanced",
	"disable open enhanced", "turn off open enhanced",
	"removing open-enhanced", "removing open enhanced",
}

// Troubleshooter diagnoses wireless problems by combining the static
// checks with live dashboard lookups and knowledge base guidance. KB is
// required; Accessor is optional and enables the live check and
// validation stages.
type Troubleshooter struct {
	KB       knowledge.Base
	Accessor DeviceDataAccessor

	// KBTimeout and APITimeout bound each knowledge base and accessor
	// call. Zero means the package defaults.
	KBTimeout  time.Duration
	APITimeout time.Duration

	initMutex     sync.Mutex
	kbInitialized bool
}

func NewTroubleshooter(kb knowledge.Base, accessor DeviceDataAccessor) *Troubleshooter {
	return &Troubleshooter{
		KB:         kb,
		Accessor:   accessor,
		KBTimeout:  defaultKBTimeout,
		APITimeout: defaultAPITimeout,
	}
}

func (t *Troubleshooter) kbContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := t.KBTimeout
	if timeout <= 0 {
		timeout = defaultKBTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (t *Troubleshooter) apiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := t.APITimeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// initializeKnowledgeBase runs the knowledge base initialization at most
// once per troubleshooter, safe under concurrent first calls.
func (t *Troubleshooter) initializeKnowledgeBase(ctx context.Context) error {
	t.initMutex.Lock()
	defer t.initMutex.Unlock()

	if t.kbInitialized {
		return nil
	}

	callCtx, cancel := t.kbContext(ctx)
	defer cancel()
	if err := t.KB.Initialize(callCtx); err != nil {
		logrus.Errorf("Failed to initialize knowledge base: %v", err)
		return &TroubleshootingError{Message: fmt.Sprintf("Failed to initialize knowledge base: %v", err)}
	}

	t.kbInitialized = true
	logrus.Info("Knowledge base initialized successfully")
	return nil
}

// Troubleshoot runs the full diagnosis pipeline for one request:
// structured SSID/client checks, live AP and client checks plus
// validation when an accessor is present, free text analysis when
// nothing structured was found (its findings validated the same way),
// then knowledge base guidance and a confidence score.
func (t *Troubleshooter) Troubleshoot(ctx context.Context, req *TroubleshootRequest) (*Result, error) {
	if req == nil {
		return nil, &TroubleshootingError{Message: "no troubleshooting request provided"}
	}
	if err := t.initializeKnowledgeBase(ctx); err != nil {
		return nil, err
	}

	logrus.Infof("Starting WiFi troubleshooting for network %s", req.NetworkID)

	issues := checkSSIDIssues(req.SSIDData, req.Description)
	issues = append(issues, checkClientIssues(req.ClientData, req.Description)...)

	if t.Accessor != nil {
		logrus.Info("Checking access point configurations")
		apIssues := t.checkAPConfigurations(ctx, req.NetworkID, req.SSIDData)
		if len(apIssues) > 0 {
			issues = append(issues, apIssues...)
			logrus.Infof("Found %d access point configuration issues", len(apIssues))
		} else {
			logrus.Info("No AP configuration issues detected")
		}

		logrus.Info("Checking connected client details")
		clientIssues := t.checkConnectedClients(ctx, req.NetworkID, req.SSIDData)
		if len(clientIssues) > 0 {
			issues = append(issues, clientIssues...)
			logrus.Infof("Found %d client connection issues", len(clientIssues))
		} else {
			logrus.Info("No client connection issues detected")
		}

		logrus.Infof("Validating %d issues with live dashboard checks", len(issues))
		issues = t.validateIssues(ctx, issues, req.NetworkID, req.SSIDData)
		logrus.Infof("After validation: %d issues remain", len(issues))
	}

	networkData := &NetworkData{TroubleshootRequest: *req}
	if len(issues) == 0 && req.Description != "" {
		nlpIssues, extracted := analyzeDescription(req.Description)
		if t.Accessor != nil && len(nlpIssues) > 0 {
			logrus.Infof("Validating %d issues from the description with live dashboard checks", len(nlpIssues))
			nlpIssues = t.validateIssues(ctx, nlpIssues, req.NetworkID, req.SSIDData)
		}
		issues = append(issues, nlpIssues...)
		networkData.ExtractedContext = extracted
	}

	references, recommendations := t.recommendations(ctx, issues, req)
	confidence := calculateConfidence(issues, req)

	return NewResult(issues, confidence, recommendations, references, networkData), nil
}

// TroubleshootFromDescription diagnoses from a free text complaint
// alone. The extracted context drives SSID resolution and device
// matching when a live accessor and a real network id are available,
// and ambiguous terms come back as clarification questions.
func (t *Troubleshooter) TroubleshootFromDescription(ctx context.Context, description, networkID string) (*Result, error) {
	if networkID == "" {
		networkID = "unknown"
	}

	queryContext := textanalysis.Extract(description)

	req := &TroubleshootRequest{NetworkID: networkID, Description: description}
	if len(queryContext.SSIDNames) > 0 {
		req.SSIDData = t.resolveSSIDByName(ctx, networkID, queryContext.SSIDNames[0])
	}

	result, err := t.Troubleshoot(ctx, req)
	if err != nil {
		return nil, err
	}

	if result.NetworkData.ExtractedContext == nil {
		result.NetworkData.ExtractedContext = queryContext
	}
	result.ClarificationQuestions = textanalysis.ClarificationQuestions(textanalysis.DetectAmbiguities(queryContext))

	if t.Accessor != nil && networkID != "unknown" && queryContext.HasLocationHints() {
		result.NetworkData.MatchedDevices = t.matchDevicesByLocation(ctx, networkID, queryContext)
	}

	return result, nil
}

// BatchTroubleshoot processes requests sequentially. A failed item is
// logged and skipped; the batch itself only fails when the knowledge
// base cannot be initialized.
func (t *Troubleshooter) BatchTroubleshoot(ctx context.Context, requests []*TroubleshootRequest) (map[string]*Result, error) {
	if err := t.initializeKnowledgeBase(ctx); err != nil {
		return nil, err
	}

	results := make(map[string]*Result)
	for _, req := range requests {
		result, err := t.Troubleshoot(ctx, req)
		if err != nil {
			networkID := "unknown"
			if req != nil {
				networkID = req.NetworkID
			}
			logrus.Warnf("Troubleshooting failed for network %s: %v", networkID, err)
			continue
		}
		results[req.NetworkID] = result
		logrus.Infof("Completed troubleshooting for network %s with %d issues (confidence: %d%%)",
			req.NetworkID, len(result.Issues), result.Confidence)
	}

	return results, nil
}

func (t *Troubleshooter) resolveSSIDByName(ctx context.Context, networkID, name string) *models.SSIDConfig {
	if t.Accessor == nil || networkID == "unknown" {
		return nil
	}

	callCtx, cancel := t.apiContext(ctx)
	ssids, err := t.Accessor.GetNetworkWirelessSSIDs(callCtx, networkID)
	cancel()
	if err != nil {
		logrus.Warnf("Failed to list SSIDs for network %s: %v", networkID, err)
		return nil
	}

	for i := range ssids {
		if strings.EqualFold(ssids[i].Name, name) {
			return &ssids[i]
		}
	}
	return nil
}

func (t *Troubleshooter) matchDevicesByLocation(ctx context.Context, networkID string, queryContext *textanalysis.Context) []models.Device {
	callCtx, cancel := t.apiContext(ctx)
	devices, err := t.Accessor.GetNetworkDevices(callCtx, networkID)
	cancel()
	if err != nil {
		logrus.Warnf("Failed to list devices for location matching: %v", err)
		return nil
	}

	matched := textanalysis.FindMatchingDevices(queryContext, devices)
	if len(matched) > maxLocationMatches {
		matched = matched[:maxLocationMatches]
	}
	return matched
}

// recommendations assembles remediation guidance for the issue list:
// fixed per-subtype steps for the primary issue, then knowledge base
// references and answers, deduplicated and safety filtered.
func (t *Troubleshooter) recommendations(ctx context.Context, issues []Issue, req *TroubleshootRequest) ([]knowledge.Reference, []string) {
	var recommendations []string
	var references []knowledge.Reference

	if len(issues) == 0 {
		recommendations = append(recommendations,
			"No specific issues were identified. Consider checking the following:",
			"- Verify that the SSID is properly configured and enabled",
			"- Check that all access points are online and broadcasting the SSID",
			"- Ensure client devices have the correct security settings and credentials",
		)

		callCtx, cancel := t.kbContext(ctx)
		content, err := t.KB.GetTopicContent(callCtx, "troubleshooting_1")
		cancel()
		if err != nil {
			logrus.Warnf("Failed to get topic content from knowledge base: %v", err)
		} else {
			references = append(references, content.References...)
		}
		return references, recommendations
	}

	primary := PrimaryIssue(issues)
	recommendations = append(recommendations, subtypeRecommendations(primary, req.SSIDData)...)
	references, recommendations = t.appendKnowledgeGuidance(ctx, primary, references, recommendations)

	return references, filterOpenEnhancedRecommendations(lo.Uniq(recommendations))
}

// subtypeRecommendations returns the fixed remediation steps for the
// primary issue. Several subtypes split on whether the description
// points at specific clients rather than the whole SSID.
func subtypeRecommendations(primary *Issue, ssid *models.SSIDConfig) []string {
	var recs []string
	clientSpecific := strings.Contains(strings.ToLower(primary.Description), "specific client")

	switch primary.Subtype {
	case "ssid_disabled":
		recs = append(recs, "Enable the SSID in the dashboard")

	case "ssid_not_broadcasting", "ssid_not_visible":
		if clientSpecific {
			recs = append(recs,
				"Verify that the affected clients are within range of at least one access point",
				"Check if the affected clients have the correct band capabilities (2.4GHz/5GHz/6GHz) for this SSID",
				"Verify that client WiFi radios are enabled and not in airplane mode",
				"Examine client WiFi scan logs to see what networks are visible to them",
			)
		} else {
			recs = append(recs,
				"Verify that the SSID is configured to broadcast",
				"Check that access points are online and properly configured",
				"Verify that the SSID is configured on all expected access points",
			)
		}

	case "authentication_failure", "client_specific_connection_failure":
		if clientSpecific {
			recs = append(recs,
				"Verify that the affected clients have the correct credentials and are using the proper authentication method",
				"Check if the affected clients have updated WiFi drivers and operating systems",
				"Verify that the affected clients support the security protocols used by the SSID (e.g., WPA3, 802.1X)",
				"Examine client device logs for WiFi-related errors during connection attempts",
			)
		} else {
			recs = append(recs,
				"Verify that clients are using the correct password and authentication method",
				"Ensure the SSID security settings are compatible with client devices",
				"Check for RADIUS server issues if using enterprise authentication",
			)
		}

	case "dhcp_failure":
		recs = append(recs,
			"Verify that DHCP server is functioning properly",
			"Check that the DHCP scope is not exhausted",
			"Ensure that there are no IP conflicts on the network",
		)

	case "open_network_issues":
		recs = append(recs, "First verify that access points in the client's location are properly tagged for this SSID")
		if ssid != nil && ssid.AuthMode == "open-enhanced" {
			recs = append(recs, "For client compatibility issues, consider changing PMF setting to 'optional' while maintaining 'open-enhanced' authentication")
		} else {
			recs = append(recs, "Check if the client device has any security policies that block connections to public networks")
		}
		recs = append(recs, "Verify that the client's MAC address is not blocked by any firewall or access control rules")

	case "immediate_connection_failure":
		if clientSpecific {
			recs = append(recs,
				"Check the affected client's ability to connect to other WiFi networks",
				"Verify the affected client is not blocked by MAC filtering or firewall rules",
				"Try resetting the WiFi network adapter on the affected device(s)",
				"Examine client device logs for detailed error messages during connection attempts",
				"Verify client device supports the WiFi standards used by this SSID (e.g., 802.11ac/ax)",
			)
		} else {
			recs = append(recs,
				"Verify the SSID broadcast is enabled and access points are online",
				"Check for MAC address filtering or other access control settings",
				"Ensure client devices support the SSID security type and WiFi standards",
			)
		}
	}

	return recs
}

// appendKnowledgeGuidance consults the knowledge base for the primary
// issue: the mapped topic's references, then a natural language query
// whose answer becomes a recommendation and whose topics contribute
// further references. Failures degrade; a missing topic also skips the
// query since the knowledge base is evidently not healthy.
func (t *Troubleshooter) appendKnowledgeGuidance(ctx context.Context, primary *Issue, references []knowledge.Reference, recommendations []string) ([]knowledge.Reference, []string) {
	topicID, ok := recommendationTopics[primary.Subtype]
	if !ok {
		topicID = "troubleshooting_1"
	}

	callCtx, cancel := t.kbContext(ctx)
	content, err := t.KB.GetTopicContent(callCtx, topicID)
	cancel()
	if err != nil {
		logrus.Warnf("Error querying knowledge base: %v", err)
		return references, recommendations
	}
	references = append(references, content.References...)

	query := fmt.Sprintf("How to resolve issue where %s in the wireless network?", primary.Description)
	callCtx, cancel = t.kbContext(ctx)
	result, err := t.KB.Query(callCtx, query)
	cancel()
	if err != nil {
		logrus.Warnf("Error querying knowledge base: %v", err)
		return references, recommendations
	}

	if result.Answer != "" {
		if containsAnyTerm(result.Answer, disableOpenEnhancedTerms) {
			logrus.Warn("Filtered out a knowledge base answer recommending to disable Open-Enhanced")
			recommendations = append(recommendations,
				"Ensure that Open-Enhanced is enabled on the wireless network. This is a critical feature that should always remain enabled.")
		} else {
			recommendations = append(recommendations, result.Answer)
		}
	}

	for _, topic := range result.Topics {
		callCtx, cancel = t.kbContext(ctx)
		extra, err := t.KB.GetTopicContent(callCtx, topic.ID)
		cancel()
		if err != nil {
			logrus.Warnf("Error getting additional topic content: %v", err)
			continue
		}
		for _, ref := range extra.References {
			if !lo.Contains(references, ref) {
				references = append(references, ref)
			}
		}
	}

	return references, recommendations
}

// filterOpenEnhancedRecommendations enforces the Open-Enhanced safety
// invariant on the final recommendation list: anything suggesting to
// disable it is dropped, surviving mentions get an explicit note, and a
// reaffirming statement is appended whenever something was dropped.
func filterOpenEnhancedRecommendations(recommendations []string) []string {
	safe := make([]string, 0, len(recommendations))
	filtered := false

	for _, rec := range recommendations {
		lower := strings.ToLower(rec)
		switch {
		case containsAnyTerm(rec, disableOpenEnhancedTerms):
			logrus.Warnf("Filtered out recommendation to disable Open-Enhanced: %s", rec)
			filtered = true
		case strings.Contains(lower, "open-enhanced") || strings.Contains(lower, "open enhanced"):
			safe = append(safe, rec+" (Note: Open-Enhanced should always remain enabled)")
		default:
			safe = append(safe, rec)
		}
	}

	if filtered {
		safe = append(safe, "Maintain Open-Enhanced configuration as enabled - this is a critical feature that should always remain active")
	}
	return safe
}

// calculateConfidence scores the diagnosis from the strongest issue and
// how much input data was available to cross-check it.
func calculateConfidence(issues []Issue, req *TroubleshootRequest) int {
	if len(issues) == 0 {
		return 50
	}

	maxSeverity := 0
	for _, issue := range issues {
		if issue.Severity > maxSeverity {
			maxSeverity = issue.Severity
		}
	}

	completeness := 0
	if req.SSIDData != nil {
		completeness += 30
	}
	if req.ClientData != nil {
		completeness += 30
	}
	if req.Description != "" {
		completeness += 20
	}

	confidence := int(math.Round(0.6*float64(maxSeverity) + 0.4*float64(completeness)))
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}
