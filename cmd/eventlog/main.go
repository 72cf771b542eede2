package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ds124wfegd/electrorescue/config"
	"github.com/ds124wfegd/electrorescue/internal/entity"
	"github.com/ds124wfegd/electrorescue/internal/pkg/kafka"
	"github.com/ds124wfegd/electrorescue/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

// eventlog prints analysis outcomes published by the web service.
func main() {
	logger.Init(config.LoggingConfig{
		Level:  config.GetEnv("LOG_LEVEL", "info"),
		Format: config.GetEnv("LOG_FORMAT", "json"),
	}, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := kafka.StartAnalysisEventConsumer(ctx,
		strings.Split(config.GetEnv("KAFKA_BROKERS", "localhost:9094"), ","),
		config.GetEnv("KAFKA_TOPIC", "pcb-analysis"),
		config.GetEnv("KAFKA_GROUP_ID", "pcb-analysis-log"),
		func(e entity.AnalysisEvent) error {
			entry := logrus.WithFields(logrus.Fields{
				"session":     e.SessionID,
				"state":       e.State,
				"mime_type":   e.MimeType,
				"components":  e.ComponentTotal,
				"duration_ms": e.DurationMs,
			})
			if e.State == entity.StateError {
				entry.Warnf("Analysis failed: %s", e.Error)
			} else {
				entry.Info("Analysis succeeded")
			}
			return nil
		},
	)
	if err != nil {
		logrus.Fatalf("event consumer stopped: %v", err)
	}
}
