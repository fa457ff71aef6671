package rf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// AnalysisError reports a spectrum processing failure. Details carries
// the access point involved and any collected sub-errors.
type AnalysisError struct {
	Message string
	Details map[string]any
}

func (e *AnalysisError) Error() string {
	return e.Message
}

// Analyzer turns raw spectrum snapshots into noise floor, interference
// and channel quality findings with remediation recommendations.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze inspects a single spectrum snapshot.
func (a *Analyzer) Analyze(data *SpectrumData) (*SpectrumAnalysis, error) {
	if data == nil {
		return nil, &AnalysisError{Message: "failed to analyze spectrum data: no spectrum data provided"}
	}

	logrus.Infof("Analyzing spectrum data for AP %s on %s band, channel %d",
		data.AccessPointSerial, data.Band, data.Channel)

	noiseFloor := calculateNoiseFloor(data)
	sources := identifyInterference(data, noiseFloor)
	quality := evaluateChannelQuality(data, noiseFloor, sources)
	recommendations := generateRecommendations(data, noiseFloor, sources, quality)
	summary := buildAnalysisSummary(data, noiseFloor, sources, quality, recommendations)

	return &SpectrumAnalysis{
		SpectrumData:        data,
		NoiseFloor:          noiseFloor,
		InterferenceSources: sources,
		ChannelQuality:      quality,
		Recommendations:     recommendations,
		Summary:             summary,
	}, nil
}

// BatchAnalyze analyzes multiple snapshots, keyed by AP serial. Failures
// for individual snapshots are logged and collected; the call as a whole
// fails only when every snapshot fails.
func (a *Analyzer) BatchAnalyze(list []*SpectrumData) (map[string]*SpectrumAnalysis, error) {
	results := make(map[string]*SpectrumAnalysis)
	var errors []string

	for _, data := range list {
		analysis, err := a.Analyze(data)
		if err != nil {
			serial := "unknown"
			if data != nil {
				serial = data.AccessPointSerial
			}
			errors = append(errors, fmt.Sprintf("Error analyzing AP %s: %v", serial, err))
			logrus.Errorf("Error analyzing AP %s: %v", serial, err)
			continue
		}
		results[data.AccessPointSerial] = analysis
	}

	if len(errors) > 0 && len(results) == 0 {
		return nil, &AnalysisError{
			Message: fmt.Sprintf("Batch analysis failed for all %d access points", len(list)),
			Details: map[string]any{"errors": errors},
		}
	}

	return results, nil
}

// calculateNoiseFloor estimates the noise floor as the 10th percentile of
// the power readings. With no readings it falls back to -95 dBm rather
// than failing; an empty snapshot is a valid (if useless) measurement.
func calculateNoiseFloor(data *SpectrumData) float64 {
	if len(data.DataPoints) == 0 {
		return -95.0
	}

	powers := make([]float64, 0, len(data.DataPoints))
	for _, dp := range data.DataPoints {
		powers = append(powers, dp.Power)
	}
	sort.Float64s(powers)

	index := int(float64(len(powers))*0.1) - 1
	if index < 0 {
		index = 0
	}
	return powers[index]
}

// interferenceRule is one band-specific detection window. A rule fires
// when more than moreThan points inside the window exceed the noise
// floor by powerDelta dBm.
type interferenceRule struct {
	kind        InterferenceType
	window      FrequencySpan
	powerDelta  float64
	moreThan    int
	impactScale float64
	confidence  int
	description string
}

// Detection windows per band. 6GHz has no rules yet; new patterns get
// added here as they are identified.
var interferenceRules = map[FrequencyBand][]interferenceRule{
	Band24GHz: {
		{
			kind:        InterferenceMicrowave,
			window:      FrequencySpan{Min: 2445, Max: 2465},
			powerDelta:  10,
			moreThan:    5,
			impactScale: 5,
			confidence:  75,
			description: "Possible microwave oven interference detected",
		},
		{
			kind:        InterferenceBluetooth,
			window:      FrequencySpan{Min: 2402, Max: 2480},
			powerDelta:  5,
			moreThan:    10,
			impactScale: 3,
			confidence:  65,
			description: "Bluetooth device interference detected",
		},
	},
	Band5GHz: {
		{
			kind:        InterferenceRadar,
			window:      FrequencySpan{Min: 5250, Max: 5350},
			powerDelta:  15,
			moreThan:    3,
			impactScale: 4,
			confidence:  80,
			description: "Possible radar/DFS interference detected",
		},
	},
}

func identifyInterference(data *SpectrumData, noiseFloor float64) []InterferenceSource {
	var sources []InterferenceSource
	for _, rule := range interferenceRules[data.Band] {
		if source, ok := rule.match(data.DataPoints, noiseFloor); ok {
			sources = append(sources, source)
		}
	}
	return sources
}

func (r interferenceRule) match(points []SpectrumDataPoint, noiseFloor float64) (InterferenceSource, bool) {
	var matched []SpectrumDataPoint
	for _, dp := range points {
		if dp.Frequency >= r.window.Min && dp.Frequency <= r.window.Max && dp.Power > noiseFloor+r.powerDelta {
			matched = append(matched, dp)
		}
	}
	if len(matched) <= r.moreThan {
		return InterferenceSource{}, false
	}

	var total float64
	for _, dp := range matched {
		total += dp.Power
	}
	avgPower := total / float64(len(matched))

	impact := int((avgPower - noiseFloor) * r.impactScale)
	if impact > 100 {
		impact = 100
	}

	return InterferenceSource{
		Type:           r.kind,
		FrequencyRange: r.window,
		AvgPower:       avgPower,
		ImpactLevel:    impact,
		Confidence:     r.confidence,
		Description:    r.description,
	}, true
}

// evaluateChannelQuality scores the channel 0-100 starting from a perfect
// 100 and deducting for noise floor, utilization and interference impact.
func evaluateChannelQuality(data *SpectrumData, noiseFloor float64, sources []InterferenceSource) int {
	quality := 100

	if noiseFloor > -85 {
		penalty := int((noiseFloor + 85) * 3)
		if penalty > 30 {
			penalty = 30
		}
		quality -= penalty
	}

	avgUtilization := data.AverageUtilization()
	if avgUtilization > 20 {
		penalty := int(avgUtilization / 2)
		if penalty > 40 {
			penalty = 40
		}
		quality -= penalty
	}

	for _, source := range sources {
		penalty := source.ImpactLevel / 3
		if penalty > 30 {
			penalty = 30
		}
		quality -= penalty
	}

	if quality < 0 {
		return 0
	}
	if quality > 100 {
		return 100
	}
	return quality
}

func generateRecommendations(data *SpectrumData, noiseFloor float64, sources []InterferenceSource, quality int) []string {
	var recommendations []string

	if quality < 40 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Consider changing the channel. Current channel %d has poor quality (%d/100).",
			data.Channel, quality))
	}

	if noiseFloor > -80 {
		recommendations = append(recommendations, fmt.Sprintf(
			"High noise floor detected (%g dBm). Consider identifying and removing nearby interference sources.",
			noiseFloor))
	}

	for _, source := range sources {
		switch source.Type {
		case InterferenceMicrowave:
			recommendations = append(recommendations,
				"Microwave oven interference detected. Consider moving the AP further from kitchen areas or switching to 5 GHz operations.")
		case InterferenceBluetooth:
			recommendations = append(recommendations,
				"Bluetooth interference detected. Consider moving Bluetooth devices away from the AP or switching to 5 GHz operations.")
		case InterferenceRadar:
			recommendations = append(recommendations,
				"Radar/DFS interference detected. Consider using a non-DFS channel if stable operation is required.")
		}
	}

	if data.ChannelWidth == Width80MHz && quality < 60 {
		recommendations = append(recommendations,
			"Consider reducing channel width from 80 MHz to 40 MHz to reduce susceptibility to interference.")
	} else if data.ChannelWidth == Width160MHz && quality < 70 {
		recommendations = append(recommendations,
			"Consider reducing channel width from 160 MHz to 80 MHz or 40 MHz to reduce susceptibility to interference.")
	}

	if data.Band == Band24GHz && quality < 50 {
		recommendations = append(recommendations,
			"Poor 2.4 GHz performance detected. Consider enabling band steering to encourage clients to use 5 GHz when possible.")
	}

	return recommendations
}

func buildAnalysisSummary(data *SpectrumData, noiseFloor float64, sources []InterferenceSource, quality int, recommendations []string) string {
	qualityRating := "Poor"
	switch {
	case quality >= 80:
		qualityRating = "Excellent"
	case quality >= 60:
		qualityRating = "Good"
	case quality >= 40:
		qualityRating = "Fair"
	}

	interferenceSummary := "No significant interference detected."
	if len(sources) > 0 {
		interferenceSummary = fmt.Sprintf("Detected %d interference sources.", len(sources))
	}

	parts := []string{
		fmt.Sprintf("RF Analysis Summary for AP %s operating on %s band, channel %d, %d MHz width",
			data.AccessPointSerial, data.Band, data.Channel, data.ChannelWidth),
		fmt.Sprintf("Channel Quality: %d/100 (%s)", quality, qualityRating),
		fmt.Sprintf("Noise Floor: %g dBm", noiseFloor),
		fmt.Sprintf("Average Utilization: %.1f%%", data.AverageUtilization()),
		interferenceSummary,
	}

	if len(sources) > 0 {
		parts = append(parts, "Interference Sources:")
		for i, source := range sources {
			parts = append(parts, fmt.Sprintf("  %d. %s (Impact: %d/100, Confidence: %d%%)",
				i+1, source.Description, source.ImpactLevel, source.Confidence))
		}
	}

	if len(recommendations) > 0 {
		parts = append(parts, "Recommendations:")
		for i, rec := range recommendations {
			parts = append(parts, fmt.Sprintf("  %d. %s", i+1, rec))
		}
	}

	return strings.Join(parts, "\n")
}
