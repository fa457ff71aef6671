package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	config "github.com/airdiag/wifi-doctor/configs"
	"github.com/airdiag/wifi-doctor/dashboard"
	"github.com/airdiag/wifi-doctor/knowledge"
	"github.com/airdiag/wifi-doctor/report"
	"github.com/airdiag/wifi-doctor/wifi"
	"github.com/airdiag/wifi-doctor/worker"
	"github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("Starting WiFi Doctor...")

	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logging
	setupLogging(cfg.Agent.LogLevel)

	logrus.Info("WiFi Doctor starting...")
	logrus.Infof("Dashboard: %s", cfg.Dashboard.BaseURL)
	logrus.Infof("Collection interval: %d seconds", cfg.Agent.CollectionInterval)

	// Initialize services
	dashboardService := dashboard.NewService(cfg.Dashboard)
	knowledgeBase := knowledge.NewWifiKnowledgeBase(cfg.Knowledge.ContentPath)
	reportService := report.NewService(cfg.Report)

	troubleshooter := wifi.NewTroubleshooter(knowledgeBase, dashboardService)
	if cfg.Troubleshoot.ValidationTimeoutSeconds > 0 {
		troubleshooter.APITimeout = time.Duration(cfg.Troubleshoot.ValidationTimeoutSeconds) * time.Second
	}

	// Test dashboard connection
	if err := dashboardService.HealthCheck(); err != nil {
		log.Fatalf("Failed to reach the dashboard API: %v", err)
	}
	logrus.Info("Successfully connected to the dashboard API")

	// Create worker
	w := worker.NewWorker(cfg, dashboardService, troubleshooter, reportService)

	// Graceful shutdown
	var wg sync.WaitGroup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(quit)
	}()

	logrus.Info("WiFi Doctor started successfully")

	// The worker owns the quit channel; receiving here too would steal
	// the signal from it.
	wg.Wait()
	logrus.Info("WiFi Doctor stopped")
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	switch level {
	case "DEBUG":
		logrus.SetLevel(logrus.DebugLevel)
	case "INFO":
		logrus.SetLevel(logrus.InfoLevel)
	case "WARN":
		logrus.SetLevel(logrus.WarnLevel)
	case "ERROR":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
