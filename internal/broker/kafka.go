package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"food-delivery-client/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Sink is where serialized client events go.
type Sink interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		Async:        true,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	p := &Producer{writer: writer, logger: util.GetLogger()}
	writer.Completion = p.onCompletion
	return p
}

// PublishEvent publishes an event to Kafka. The writer is async so a slow
// broker never stalls a screen; delivery errors are logged on completion.
func (p *Producer) PublishEvent(ctx context.Context, key string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventBytes,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *Producer) onCompletion(messages []kafka.Message, err error) {
	if err != nil {
		p.logger.Warn("Kafka delivery failed", zap.Int("messages", len(messages)), zap.Error(err))
		return
	}
	for _, m := range messages {
		p.logger.Debug("Published event", zap.ByteString("key", m.Key))
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// LogSink logs events instead of shipping them; used when Kafka is disabled.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{logger: util.GetLogger()}
}

func (s *LogSink) PublishEvent(_ context.Context, key string, event interface{}) error {
	s.logger.Debug("Client event", zap.String("key", key), zap.Any("event", event))
	return nil
}

func (s *LogSink) Close() error { return nil }
