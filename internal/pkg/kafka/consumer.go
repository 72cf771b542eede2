package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/electrorescue/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type EventHandler func(event entity.AnalysisEvent) error

// StartAnalysisEventConsumer reads analysis events until ctx is cancelled.
func StartAnalysisEventConsumer(ctx context.Context, brokers []string, topic, groupID string, handle EventHandler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	defer reader.Close()

	logrus.WithFields(logrus.Fields{"brokers": brokers, "topic": topic}).Info("Analysis event consumer started")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			logrus.Errorf("Error reading message from Kafka: %v", err)
			continue
		}

		event, err := DecodeEvent(msg.Value)
		if err != nil {
			logrus.Warnf("Failed to parse event at partition %d offset %d: %v", msg.Partition, msg.Offset, err)
			continue
		}

		if err := handle(event); err != nil {
			logrus.Errorf("Event handler failed for session %s: %v", event.SessionID, err)
		}
	}
}

func DecodeEvent(data []byte) (entity.AnalysisEvent, error) {
	var event entity.AnalysisEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return event, err
	}
	if !event.State.Valid() {
		return event, errors.New("unknown analysis state " + string(event.State))
	}
	return event, nil
}
