package worker

import (
	"os"
	"sync"
	"time"

	config "github.com/airdiag/wifi-doctor/configs"
	"github.com/airdiag/wifi-doctor/dashboard"
	"github.com/airdiag/wifi-doctor/report"
	"github.com/airdiag/wifi-doctor/wifi"
	"github.com/sirupsen/logrus"
)

type Worker struct {
	config           *config.Config
	dashboardService *dashboard.Service
	troubleshooter   *wifi.Troubleshooter
	reportService    *report.Service
	// Stats tracking
	statsLock    sync.RWMutex
	currentStats *CycleStats
}

type CycleStats struct {
	NetworksTargeted  int
	NetworksProcessed int
	NetworksFailed    int
	SSIDsInspected    int
	TotalIssues       int
	HighSeverity      int
	MediumSeverity    int
	LowSeverity       int
	StartTime         time.Time
	LastUpdateTime    time.Time
}

func NewWorker(config *config.Config, dashboardService *dashboard.Service, troubleshooter *wifi.Troubleshooter, reportService *report.Service) *Worker {
	return &Worker{
		config:           config,
		dashboardService: dashboardService,
		troubleshooter:   troubleshooter,
		reportService:    reportService,
		currentStats:     &CycleStats{},
	}
}

func (w *Worker) Start(quit <-chan os.Signal) {
	// Validate the report sink before the first cycle
	if !w.reportService.Validate() {
		logrus.Fatal("Invalid report configuration")
		return
	}

	interval := time.Duration(w.config.Agent.CollectionInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.Infof("Starting diagnostic cycles with %d second intervals", w.config.Agent.CollectionInterval)

	// Run initial cycle
	w.runCycle()

	for {
		select {
		case <-ticker.C:
			w.runCycle()
		case <-quit:
			logrus.Info("Worker received shutdown signal")
			return
		}
	}
}

// Get current cycle progress (useful for monitoring)
func (w *Worker) GetCycleProgress() CycleStats {
	w.statsLock.RLock()
	defer w.statsLock.RUnlock()
	return *w.currentStats
}

func (w *Worker) resetStats(start time.Time) {
	w.statsLock.Lock()
	w.currentStats = &CycleStats{
		StartTime:      start,
		LastUpdateTime: start,
	}
	w.statsLock.Unlock()
}

// Update statistics with one SSID's diagnostic result
func (w *Worker) recordResult(result *wifi.Result) {
	w.statsLock.Lock()
	defer w.statsLock.Unlock()

	w.currentStats.SSIDsInspected++
	w.currentStats.TotalIssues += len(result.Issues)
	w.currentStats.LastUpdateTime = time.Now()

	for _, issue := range result.Issues {
		switch {
		case issue.Severity >= 80:
			w.currentStats.HighSeverity++
		case issue.Severity >= 50:
			w.currentStats.MediumSeverity++
		default:
			w.currentStats.LowSeverity++
		}
	}
}
