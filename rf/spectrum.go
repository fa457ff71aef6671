package rf

// FrequencyBand identifies a WiFi frequency band.
type FrequencyBand string

const (
	Band24GHz FrequencyBand = "2.4GHz"
	Band5GHz  FrequencyBand = "5GHz"
	Band6GHz  FrequencyBand = "6GHz"
)

// ChannelWidth is a WiFi channel width in MHz.
type ChannelWidth int

const (
	Width20MHz  ChannelWidth = 20
	Width40MHz  ChannelWidth = 40
	Width80MHz  ChannelWidth = 80
	Width160MHz ChannelWidth = 160
)

// InterferenceType tags the suspected origin of an interference source.
type InterferenceType string

const (
	InterferenceMicrowave InterferenceType = "microwave"
	InterferenceBluetooth InterferenceType = "bluetooth"
	InterferenceZigbee    InterferenceType = "zigbee"
	InterferenceRadar     InterferenceType = "radar"
	InterferenceRogueAP   InterferenceType = "rogue_ap"
	InterferenceUnknown   InterferenceType = "unknown"
)

// SpectrumDataPoint is a single RF measurement.
type SpectrumDataPoint struct {
	Frequency   float64 `json:"frequency"`   // MHz
	Power       float64 `json:"power"`       // dBm
	Utilization float64 `json:"utilization"` // percent 0-100
	Timestamp   int64   `json:"timestamp"`   // unix seconds
}

// SpectrumData is a collection of RF measurements taken by one access
// point on one channel.
type SpectrumData struct {
	AccessPointSerial string              `json:"accessPointSerial"`
	Band              FrequencyBand       `json:"band"`
	Channel           int                 `json:"channel"`
	ChannelWidth      ChannelWidth        `json:"channelWidth"`
	DataPoints        []SpectrumDataPoint `json:"dataPoints"`
	StartTime         int64               `json:"startTime"`
	EndTime           int64               `json:"endTime"`
	Metadata          map[string]any      `json:"metadata,omitempty"`
}

// AddDataPoint appends a measurement and widens the collection window to
// cover its timestamp.
func (s *SpectrumData) AddDataPoint(point SpectrumDataPoint) {
	s.DataPoints = append(s.DataPoints, point)

	if s.StartTime == 0 || point.Timestamp < s.StartTime {
		s.StartTime = point.Timestamp
	}
	if point.Timestamp > s.EndTime {
		s.EndTime = point.Timestamp
	}
}

// AveragePower returns the mean power in dBm, 0 when no data points exist.
func (s *SpectrumData) AveragePower() float64 {
	if len(s.DataPoints) == 0 {
		return 0
	}
	var total float64
	for _, dp := range s.DataPoints {
		total += dp.Power
	}
	return total / float64(len(s.DataPoints))
}

// AverageUtilization returns the mean utilization percentage, 0 when no
// data points exist.
func (s *SpectrumData) AverageUtilization() float64 {
	if len(s.DataPoints) == 0 {
		return 0
	}
	var total float64
	for _, dp := range s.DataPoints {
		total += dp.Utilization
	}
	return total / float64(len(s.DataPoints))
}

// FrequencyRange returns the min and max frequency covered by the data
// points, (0, 0) when no data points exist.
func (s *SpectrumData) FrequencyRange() (float64, float64) {
	if len(s.DataPoints) == 0 {
		return 0, 0
	}
	min, max := s.DataPoints[0].Frequency, s.DataPoints[0].Frequency
	for _, dp := range s.DataPoints[1:] {
		if dp.Frequency < min {
			min = dp.Frequency
		}
		if dp.Frequency > max {
			max = dp.Frequency
		}
	}
	return min, max
}

// FrequencySpan is an inclusive frequency window in MHz.
type FrequencySpan struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// InterferenceSource describes one detected interference pattern.
// ImpactLevel and Confidence are always within [0,100].
type InterferenceSource struct {
	Type           InterferenceType `json:"type"`
	FrequencyRange FrequencySpan    `json:"frequencyRange"`
	AvgPower       float64          `json:"avgPower"`
	ImpactLevel    int              `json:"impactLevel"`
	Confidence     int              `json:"confidence"`
	Description    string           `json:"description"`
}

// SpectrumAnalysis is the result of analyzing one SpectrumData snapshot.
type SpectrumAnalysis struct {
	SpectrumData        *SpectrumData        `json:"spectrumData"`
	NoiseFloor          float64              `json:"noiseFloor"`
	InterferenceSources []InterferenceSource `json:"interferenceSources"`
	ChannelQuality      int                  `json:"channelQuality"`
	Recommendations     []string             `json:"recommendations"`
	Summary             string               `json:"summary"`
}
