package rf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddDataPointTracksTimeWindow(t *testing.T) {
	data := &SpectrumData{
		AccessPointSerial: "Q2XX-0001",
		Band:              Band24GHz,
		Channel:           6,
		ChannelWidth:      Width20MHz,
	}

	data.AddDataPoint(SpectrumDataPoint{Frequency: 2437, Power: -90, Timestamp: 1700000100})
	assert.Equal(t, int64(1700000100), data.StartTime)
	assert.Equal(t, int64(1700000100), data.EndTime)

	data.AddDataPoint(SpectrumDataPoint{Frequency: 2437, Power: -91, Timestamp: 1700000050})
	assert.Equal(t, int64(1700000050), data.StartTime)
	assert.Equal(t, int64(1700000100), data.EndTime)

	data.AddDataPoint(SpectrumDataPoint{Frequency: 2437, Power: -89, Timestamp: 1700000200})
	assert.Equal(t, int64(1700000050), data.StartTime)
	assert.Equal(t, int64(1700000200), data.EndTime)

	assert.Len(t, data.DataPoints, 3)
}

func TestAveragesOnEmptyData(t *testing.T) {
	data := &SpectrumData{Band: Band5GHz}

	assert.Equal(t, 0.0, data.AveragePower())
	assert.Equal(t, 0.0, data.AverageUtilization())

	min, max := data.FrequencyRange()
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 0.0, max)
}

func TestAverages(t *testing.T) {
	data := &SpectrumData{Band: Band5GHz, Channel: 36, ChannelWidth: Width80MHz}
	data.AddDataPoint(SpectrumDataPoint{Frequency: 5180, Power: -90, Utilization: 10, Timestamp: 1})
	data.AddDataPoint(SpectrumDataPoint{Frequency: 5200, Power: -70, Utilization: 30, Timestamp: 2})

	assert.Equal(t, -80.0, data.AveragePower())
	assert.Equal(t, 20.0, data.AverageUtilization())

	min, max := data.FrequencyRange()
	assert.Equal(t, 5180.0, min)
	assert.Equal(t, 5200.0, max)
}
