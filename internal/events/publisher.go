package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/civicpulse/internal/models"
)

// Kafka topic for analyzed-submission events consumed by the analytics
// dashboards.
const SubmissionAnalyticsTopic = "submission-analytics"

// Publisher emits one event per fully stored submission. Publishing is
// enrichment-grade: the orchestrator logs failures and moves on, a broker
// outage never fails a submission.
type Publisher struct {
	producer *kafka.Producer
}

func NewPublisher(broker string) (*Publisher, error) {
	slog.Info("[EventPublisher] Connecting to Kafka", slog.String("broker", broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
	})
	if err != nil {
		return nil, fmt.Errorf("[EventPublisher] Failed to create producer: %w", err)
	}

	slog.Info("[EventPublisher] Kafka producer initialized")
	return &Publisher{producer: p}, nil
}

func (p *Publisher) Close() {
	if p.producer != nil {
		if remaining := p.producer.Flush(5000); remaining > 0 {
			slog.Warn("[EventPublisher] Not all events were delivered before shutdown",
				slog.Int("remaining", remaining))
		}
		p.producer.Close()
		slog.Info("[EventPublisher] Kafka producer shut down")
	}
}

// PublishSubmissionAnalyzed sends one analyzed-submission event keyed by
// submission id.
func (p *Publisher) PublishSubmissionAnalyzed(event models.SubmissionAnalyzedEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := SubmissionAnalyticsTopic
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.SubmissionID),
		Value:          jsonData,
	}, nil)
	if err != nil {
		return fmt.Errorf("[EventPublisher] Failed to produce event: %w", err)
	}

	slog.Info("[EventPublisher] Published analyzed-submission event",
		slog.String("submission_id", event.SubmissionID),
		slog.String("analysis_id", event.AnalysisID))
	return nil
}
