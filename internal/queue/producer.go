package queue

import (
	"context"       // Publish timeouts
	"crypto/tls"    // Broker TLS
	"encoding/json" // Event encoding
	"time"          // Timeouts

	"github.com/segmentio/kafka-go"            // Kafka client
	"github.com/segmentio/kafka-go/sasl/plain" // SASL/PLAIN auth
	"github.com/sirupsen/logrus"               // Logging
)

// Publisher sends notification events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// Producer publishes events to a Kafka topic
type Producer struct {
	writer *kafka.Writer
}

// NewProducer builds a Kafka producer. SASL/TLS is enabled when a username is given.
func NewProducer(broker, topic, username, password string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if username != "" {
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: username, Password: password},
			TLS:  &tls.Config{},
		}
	}
	return &Producer{writer: w}
}

// Publish writes one event keyed by key. A nil producer skips publishing.
func (p *Producer) Publish(ctx context.Context, key string, event Event) error {
	if p == nil || p.writer == nil {
		logrus.WithField("event", event.Type).Warn("Kafka producer not ready - skip publish")
		return nil
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

// Close flushes and closes the underlying writer
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// LogPublisher logs events instead of sending them; used when no broker is configured
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, key string, event Event) error {
	logrus.WithFields(logrus.Fields{
		"key":   key,
		"event": event.Type,
	}).Info("Event not published (no broker configured)")
	return nil
}
