package rf

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/airdiag/wifi-doctor/knowledge"
)

const defaultKBTimeout = 10 * time.Second

// TroubleshootingError reports a failure while diagnosing an access point.
type TroubleshootingError struct {
	Message string
	Details map[string]any
}

func (e *TroubleshootingError) Error() string {
	return e.Message
}

// TroubleshootingResult is the combined outcome of spectrum analysis and
// knowledge base lookups for one access point.
type TroubleshootingResult struct {
	SpectrumAnalysis    *SpectrumAnalysis     `json:"spectrumAnalysis"`
	IssueType           string                `json:"issueType"`
	IssueDescription    string                `json:"issueDescription"`
	Confidence          int                   `json:"confidence"`
	Recommendations     []string              `json:"recommendations"`
	KnowledgeReferences []knowledge.Reference `json:"knowledgeReferences"`
}

// Troubleshooter diagnoses wireless issues by running the spectrum
// analyzer and enriching its findings with knowledge base material.
type Troubleshooter struct {
	Analyzer *Analyzer
	KB       knowledge.Base

	// KBTimeout bounds the one-time knowledge base initialization.
	KBTimeout time.Duration

	initMutex     sync.Mutex
	kbInitialized bool
}

func NewTroubleshooter(analyzer *Analyzer, kb knowledge.Base) *Troubleshooter {
	return &Troubleshooter{
		Analyzer:  analyzer,
		KB:        kb,
		KBTimeout: defaultKBTimeout,
	}
}

// initializeKnowledgeBase initializes the knowledge base once. Safe to
// call from every troubleshooting entry point.
func (t *Troubleshooter) initializeKnowledgeBase(ctx context.Context) error {
	t.initMutex.Lock()
	defer t.initMutex.Unlock()

	if t.kbInitialized {
		return nil
	}

	timeout := t.KBTimeout
	if timeout <= 0 {
		timeout = defaultKBTimeout
	}
	initCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := t.KB.Initialize(initCtx); err != nil {
		logrus.Errorf("Failed to initialize knowledge base: %v", err)
		return &TroubleshootingError{Message: fmt.Sprintf("Failed to initialize knowledge base: %v", err)}
	}

	t.kbInitialized = true
	logrus.Info("Knowledge base initialized successfully")
	return nil
}

// Troubleshoot analyzes one spectrum snapshot, classifies the dominant
// issue and assembles recommendations and references for it.
func (t *Troubleshooter) Troubleshoot(ctx context.Context, data *SpectrumData) (*TroubleshootingResult, error) {
	if err := t.initializeKnowledgeBase(ctx); err != nil {
		return nil, err
	}

	if data != nil {
		logrus.Infof("Starting RF troubleshooting for AP %s on %s band, channel %d",
			data.AccessPointSerial, data.Band, data.Channel)
	}

	analysis, err := t.Analyzer.Analyze(data)
	if err != nil {
		logrus.Errorf("RF analysis failed during troubleshooting: %v", err)
		return nil, &TroubleshootingError{Message: fmt.Sprintf("RF analysis failed during troubleshooting: %v", err)}
	}

	issueType, issueDescription := classifyAnalysis(analysis)
	refs, recommendations := t.gatherRecommendations(ctx, issueType, analysis)
	confidence := diagnosisConfidence(analysis, issueType)

	return &TroubleshootingResult{
		SpectrumAnalysis:    analysis,
		IssueType:           issueType,
		IssueDescription:    issueDescription,
		Confidence:          confidence,
		Recommendations:     recommendations,
		KnowledgeReferences: refs,
	}, nil
}

// BatchTroubleshoot diagnoses multiple access points sequentially, keyed
// by AP serial. A failing AP is logged and skipped so one bad snapshot
// does not sink the whole batch.
func (t *Troubleshooter) BatchTroubleshoot(ctx context.Context, list []*SpectrumData) (map[string]*TroubleshootingResult, error) {
	if err := t.initializeKnowledgeBase(ctx); err != nil {
		return nil, err
	}

	results := make(map[string]*TroubleshootingResult)
	for _, data := range list {
		result, err := t.Troubleshoot(ctx, data)
		if err != nil {
			serial := "unknown"
			if data != nil {
				serial = data.AccessPointSerial
			}
			logrus.Warnf("Troubleshooting failed for AP %s: %v", serial, err)
			continue
		}
		results[data.AccessPointSerial] = result
		logrus.Infof("Completed troubleshooting for AP %s: %s (confidence: %d%%)",
			data.AccessPointSerial, result.IssueType, result.Confidence)
	}

	return results, nil
}

// classifyAnalysis picks the dominant issue type and describes it. With
// multiple interference sources the one with the highest impact wins;
// ties keep the earlier source.
func classifyAnalysis(analysis *SpectrumAnalysis) (string, string) {
	if len(analysis.InterferenceSources) == 0 {
		if analysis.ChannelQuality < 40 {
			return "poor_channel_quality", fmt.Sprintf(
				"Poor channel quality detected with no specific interference source. Channel quality score: %d/100. Noise floor: %g dBm.",
				analysis.ChannelQuality, analysis.NoiseFloor)
		}
		return "normal_operation", fmt.Sprintf(
			"No significant issues detected. Channel quality score: %d/100.",
			analysis.ChannelQuality)
	}

	primary := analysis.InterferenceSources[0]
	for _, source := range analysis.InterferenceSources[1:] {
		if source.ImpactLevel > primary.ImpactLevel {
			primary = source
		}
	}

	switch {
	case primary.Type == InterferenceBluetooth || primary.Type == InterferenceZigbee || primary.Type == InterferenceMicrowave:
		name := string(primary.Type)
		return name + "_interference", fmt.Sprintf(
			"%s interference detected with impact level %d/100. Affected frequency range: %g - %g MHz.",
			strings.ToUpper(name[:1])+name[1:], primary.ImpactLevel,
			primary.FrequencyRange.Min, primary.FrequencyRange.Max)
	case strings.Contains(string(primary.Type), "radar"):
		return "radar_interference", fmt.Sprintf(
			"Radar interference detected with impact level %d/100. This may cause DFS channels to be unavailable.",
			primary.ImpactLevel)
	case strings.Contains(string(primary.Type), "rogue"):
		return "co_channel_interference", fmt.Sprintf(
			"Co-channel interference from other WiFi networks detected with impact level %d/100. This may be causing contention on channel %d.",
			primary.ImpactLevel, analysis.SpectrumData.Channel)
	default:
		return "unknown_interference", fmt.Sprintf(
			"Unknown interference detected with impact level %d/100. Affected frequency range: %g - %g MHz.",
			primary.ImpactLevel, primary.FrequencyRange.Min, primary.FrequencyRange.Max)
	}
}

// rfTopicByIssue maps issue types to the knowledge base topic that best
// covers them.
var rfTopicByIssue = map[string]string{
	"poor_channel_quality":    "troubleshooting_2",
	"normal_operation":        "best_practices_1",
	"bluetooth_interference":  "rf_analysis_1",
	"zigbee_interference":     "rf_analysis_1",
	"microwave_interference":  "rf_analysis_1",
	"radar_interference":      "rf_analysis_1",
	"co_channel_interference": "troubleshooting_2",
	"unknown_interference":    "troubleshooting_1",
}

// gatherRecommendations merges the analyzer recommendations with issue
// specific advice and knowledge base references. Knowledge base failures
// degrade to whatever was collected so far instead of failing the run.
func (t *Troubleshooter) gatherRecommendations(ctx context.Context, issueType string, analysis *SpectrumAnalysis) ([]knowledge.Reference, []string) {
	recommendations := append([]string(nil), analysis.Recommendations...)

	topicID, ok := rfTopicByIssue[issueType]
	if !ok {
		topicID = "troubleshooting_1"
	}

	refs := make([]knowledge.Reference, 0)
	content, err := t.KB.GetTopicContent(ctx, topicID)
	if err != nil {
		logrus.Warnf("Failed to get recommendations from knowledge base: %v", err)
		return refs, lo.Uniq(recommendations)
	}
	refs = append(refs, content.References...)

	switch issueType {
	case "bluetooth_interference":
		recommendations = append(recommendations,
			"Consider switching to 5 GHz channels to avoid Bluetooth interference",
			"Increase distance between APs and Bluetooth devices")
	case "microwave_interference":
		recommendations = append(recommendations,
			"Move the AP away from kitchen areas or microwave ovens",
			"Switch affected APs to the 5 GHz band if possible")
	case "co_channel_interference":
		recommendations = append(recommendations,
			"Adjust channel planning to minimize overlap with neighboring networks",
			"Reduce transmit power to decrease the interference radius")
	case "poor_channel_quality":
		recommendations = append(recommendations,
			"Consider performing a site survey to identify optimal AP placement")
	}

	query := fmt.Sprintf("How to resolve %s in the wireless network?", strings.ReplaceAll(issueType, "_", " "))
	result, err := t.KB.Query(ctx, query)
	if err != nil {
		logrus.Warnf("Failed to get recommendations from knowledge base: %v", err)
	} else {
		refs = append(refs, result.References...)
	}

	uniqueRefs := lo.UniqBy(refs, func(ref knowledge.Reference) string { return ref.URL })
	return uniqueRefs, lo.Uniq(recommendations)
}

// diagnosisConfidence scores how sure the diagnosis is. Interference
// diagnoses inherit the detection confidence of their sources; more data
// points raise confidence up to a +20 bonus.
func diagnosisConfidence(analysis *SpectrumAnalysis, issueType string) int {
	var base int
	switch {
	case issueType == "normal_operation":
		base = analysis.ChannelQuality
	case len(analysis.InterferenceSources) == 0:
		base = 60
	default:
		total := 0
		for _, source := range analysis.InterferenceSources {
			total += source.Confidence
		}
		base = total / len(analysis.InterferenceSources)
	}

	dataPointsFactor := len(analysis.SpectrumData.DataPoints) / 10
	if dataPointsFactor > 20 {
		dataPointsFactor = 20
	}

	confidence := base + dataPointsFactor
	if confidence > 100 {
		confidence = 100
	}
	return confidence
}
