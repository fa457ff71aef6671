package rf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpectrumData(serial string, band FrequencyBand, channel int, width ChannelWidth) *SpectrumData {
	return &SpectrumData{
		AccessPointSerial: serial,
		Band:              band,
		Channel:           channel,
		ChannelWidth:      width,
	}
}

// fillPoints appends count identical measurements to the snapshot.
func fillPoints(data *SpectrumData, count int, frequency, power, utilization float64) {
	for i := 0; i < count; i++ {
		data.AddDataPoint(SpectrumDataPoint{
			Frequency:   frequency,
			Power:       power,
			Utilization: utilization,
			Timestamp:   int64(1700000000 + i),
		})
	}
}

func TestAnalyzeNilData(t *testing.T) {
	analyzer := NewAnalyzer()

	_, err := analyzer.Analyze(nil)
	require.Error(t, err)

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Contains(t, analysisErr.Message, "no spectrum data provided")
}

func TestAnalyzeEmptySnapshot(t *testing.T) {
	analyzer := NewAnalyzer()
	data := newSpectrumData("Q2XX-0001", Band24GHz, 6, Width20MHz)

	analysis, err := analyzer.Analyze(data)
	require.NoError(t, err)

	assert.Equal(t, -95.0, analysis.NoiseFloor)
	assert.Equal(t, 100, analysis.ChannelQuality)
	assert.Empty(t, analysis.InterferenceSources)
	assert.Empty(t, analysis.Recommendations)
	assert.Contains(t, analysis.Summary, "No significant interference detected.")
}

func TestNoiseFloorPercentile(t *testing.T) {
	tests := []struct {
		name   string
		powers []float64
		want   float64
	}{
		{"ten points uses lowest", []float64{-91, -92, -93, -94, -95, -96, -97, -98, -99, -100}, -100},
		{"five points clamps to lowest", []float64{-81, -99, -85, -90, -95}, -99},
		{"single point", []float64{-88}, -88},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := newSpectrumData("Q2XX-0001", Band5GHz, 36, Width20MHz)
			for i, power := range tt.powers {
				data.AddDataPoint(SpectrumDataPoint{Frequency: 5180, Power: power, Timestamp: int64(i)})
			}
			assert.Equal(t, tt.want, calculateNoiseFloor(data))
		})
	}

	t.Run("twenty points uses second lowest", func(t *testing.T) {
		data := newSpectrumData("Q2XX-0001", Band5GHz, 36, Width20MHz)
		for i := 0; i < 20; i++ {
			data.AddDataPoint(SpectrumDataPoint{Frequency: 5180, Power: float64(-100 + i), Timestamp: int64(i)})
		}
		assert.Equal(t, -99.0, calculateNoiseFloor(data))
	})
}

func TestMicrowaveDetectionThreshold(t *testing.T) {
	analyzer := NewAnalyzer()

	// Five elevated points in the microwave window are not enough,
	// six are.
	for _, tt := range []struct {
		hotPoints int
		detected  bool
	}{
		{5, false},
		{6, true},
	} {
		t.Run(fmt.Sprintf("%d hot points", tt.hotPoints), func(t *testing.T) {
			data := newSpectrumData("Q2XX-0001", Band24GHz, 11, Width20MHz)
			fillPoints(data, 50, 2412, -95, 0)
			fillPoints(data, tt.hotPoints, 2450, -60, 0)

			analysis, err := analyzer.Analyze(data)
			require.NoError(t, err)

			if !tt.detected {
				assert.Empty(t, analysis.InterferenceSources)
				return
			}

			require.Len(t, analysis.InterferenceSources, 1)
			source := analysis.InterferenceSources[0]
			assert.Equal(t, InterferenceMicrowave, source.Type)
			assert.Equal(t, FrequencySpan{Min: 2445, Max: 2465}, source.FrequencyRange)
			assert.Equal(t, -60.0, source.AvgPower)
			assert.Equal(t, 100, source.ImpactLevel)
			assert.Equal(t, 75, source.Confidence)

			// Quality drops by a third of the impact, capped at 30.
			assert.Equal(t, 70, analysis.ChannelQuality)
			require.Len(t, analysis.Recommendations, 1)
			assert.Contains(t, analysis.Recommendations[0], "Microwave oven interference")
			assert.Contains(t, analysis.Summary, "Detected 1 interference sources.")
		})
	}
}

func TestRadarDetectionThreshold(t *testing.T) {
	analyzer := NewAnalyzer()

	for _, tt := range []struct {
		hotPoints int
		detected  bool
	}{
		{3, false},
		{4, true},
	} {
		t.Run(fmt.Sprintf("%d hot points", tt.hotPoints), func(t *testing.T) {
			data := newSpectrumData("Q2XX-0002", Band5GHz, 52, Width40MHz)
			fillPoints(data, 20, 5180, -95, 0)
			fillPoints(data, tt.hotPoints, 5300, -70, 0)

			analysis, err := analyzer.Analyze(data)
			require.NoError(t, err)

			if !tt.detected {
				assert.Empty(t, analysis.InterferenceSources)
				return
			}

			require.Len(t, analysis.InterferenceSources, 1)
			source := analysis.InterferenceSources[0]
			assert.Equal(t, InterferenceRadar, source.Type)
			assert.Equal(t, 100, source.ImpactLevel)
			assert.Equal(t, 80, source.Confidence)
		})
	}
}

func TestNoDetectionRulesOn6GHzBand(t *testing.T) {
	analyzer := NewAnalyzer()
	data := newSpectrumData("Q2XX-0003", Band6GHz, 37, Width160MHz)
	fillPoints(data, 30, 6115, -40, 0)

	analysis, err := analyzer.Analyze(data)
	require.NoError(t, err)
	assert.Empty(t, analysis.InterferenceSources)
}

func TestQualityAndRecommendationCascade(t *testing.T) {
	analyzer := NewAnalyzer()

	// Uniformly loud and busy channel. The noise floor penalty and the
	// utilization penalty both max out with no interference rule firing.
	data := newSpectrumData("Q2XX-0004", Band24GHz, 1, Width80MHz)
	fillPoints(data, 40, 2460, -55, 80)

	analysis, err := analyzer.Analyze(data)
	require.NoError(t, err)

	assert.Equal(t, -55.0, analysis.NoiseFloor)
	assert.Empty(t, analysis.InterferenceSources)
	assert.Equal(t, 30, analysis.ChannelQuality)

	require.Len(t, analysis.Recommendations, 4)
	assert.Contains(t, analysis.Recommendations[0], "Consider changing the channel. Current channel 1 has poor quality (30/100).")
	assert.Contains(t, analysis.Recommendations[1], "High noise floor detected (-55 dBm).")
	assert.Contains(t, analysis.Recommendations[2], "reducing channel width from 80 MHz to 40 MHz")
	assert.Contains(t, analysis.Recommendations[3], "band steering")

	assert.Contains(t, analysis.Summary, "Channel Quality: 30/100 (Poor)")
	assert.Contains(t, analysis.Summary, "Noise Floor: -55 dBm")
	assert.Contains(t, analysis.Summary, "Average Utilization: 80.0%")
	assert.Contains(t, analysis.Summary, "Recommendations:")
}

func TestQualityStaysWithinBounds(t *testing.T) {
	analyzer := NewAnalyzer()

	// Worst case snapshot: maximal noise, utilization and two firing
	// interference rules at once.
	data := newSpectrumData("Q2XX-0005", Band24GHz, 6, Width20MHz)
	fillPoints(data, 5, 2412, -100, 100)
	fillPoints(data, 30, 2450, -30, 100)

	analysis, err := analyzer.Analyze(data)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, analysis.ChannelQuality, 0)
	assert.LessOrEqual(t, analysis.ChannelQuality, 100)
	require.NotEmpty(t, analysis.InterferenceSources)
	for _, source := range analysis.InterferenceSources {
		assert.GreaterOrEqual(t, source.ImpactLevel, 0)
		assert.LessOrEqual(t, source.ImpactLevel, 100)
		assert.GreaterOrEqual(t, source.Confidence, 0)
		assert.LessOrEqual(t, source.Confidence, 100)
	}
}

func TestBatchAnalyzePartialFailure(t *testing.T) {
	analyzer := NewAnalyzer()

	first := newSpectrumData("Q2XX-0001", Band24GHz, 6, Width20MHz)
	fillPoints(first, 10, 2437, -90, 5)
	third := newSpectrumData("Q2XX-0003", Band5GHz, 36, Width80MHz)
	fillPoints(third, 10, 5180, -92, 5)

	results, err := analyzer.BatchAnalyze([]*SpectrumData{first, nil, third})
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Contains(t, results, "Q2XX-0001")
	assert.Contains(t, results, "Q2XX-0003")
}

func TestBatchAnalyzeAllFail(t *testing.T) {
	analyzer := NewAnalyzer()

	_, err := analyzer.BatchAnalyze([]*SpectrumData{nil, nil})
	require.Error(t, err)

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, "Batch analysis failed for all 2 access points", analysisErr.Message)
	assert.Len(t, analysisErr.Details["errors"], 2)
}

func TestBatchAnalyzeEmptyList(t *testing.T) {
	analyzer := NewAnalyzer()

	results, err := analyzer.BatchAnalyze(nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
