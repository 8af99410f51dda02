package utils

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

var kafkaWriter *kafka.Writer

// InitializeKafka sets up the audit event writer. Kafka being down is
// tolerated at startup; publishes fail individually and are logged.
func InitializeKafka() {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		log.Println("⚠️ KAFKA_BROKERS not set, audit events will not be published")
		return
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "checkin-audit"
	}

	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	log.Printf("✅ Kafka writer initialized (topic: %s)", topic)
}

// PublishAuditEvent serializes the event and writes it to the audit
// topic keyed by action, so consumers can partition by action type.
func PublishAuditEvent(ctx context.Context, action string, payload interface{}) error {
	if kafkaWriter == nil {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(action),
		Value: data,
		Time:  time.Now(),
	})
}

// NewAuditReader builds a consumer for the audit topic. Used by the
// notification feed to turn audit events into in-app notifications.
func NewAuditReader(groupID string) *kafka.Reader {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "checkin-audit"
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(brokers, ","),
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// CloseKafka flushes and closes the writer on shutdown.
func CloseKafka() {
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			log.Printf("⚠️ Kafka writer close error: %v", err)
		}
	}
}
