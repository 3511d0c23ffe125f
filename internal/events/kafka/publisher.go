// Package kafka publishes pipeline events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/gramgyan/gramgyan/internal/domain/report"
)

// EventTypeReportProcessed is the event_type of a processed report event.
const EventTypeReportProcessed = "report.processed"

var (
	// ErrPublisherClosed is returned when publishing on a closed publisher.
	ErrPublisherClosed = errors.New("publisher is closed")
	// ErrNoBrokers is returned when no brokers are configured.
	ErrNoBrokers = errors.New("no kafka brokers configured")
	// ErrNoTopic is returned when the topic is empty.
	ErrNoTopic = errors.New("kafka topic cannot be empty")
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config holds the producer settings.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// processedEvent is the wire form of report.ProcessedEvent.
type processedEvent struct {
	EventType   string    `json:"event_type"`
	ReportID    string    `json:"report_id"`
	Type        string    `json:"type"`
	EnglishText string    `json:"english_text"`
	SolutionID  string    `json:"solution_id,omitempty"`
	Origin      string    `json:"origin,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Publisher writes report events keyed by report ID, so events of one report
// stay ordered within a partition.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
	mu      sync.Mutex
	closed  bool
}

// NewPublisher creates a Kafka publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}

	return newPublisher(newWriter(cfg), cfg.WriteTimeout), nil
}

// batchTimeout bounds how long a synchronous write waits to fill a batch.
const batchTimeout = 5 * time.Millisecond

func newWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		Compression:  kafka.Gzip,
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: batchTimeout,
	}
}

func newPublisher(w messageWriter, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{writer: w, timeout: timeout}
}

// PublishProcessed implements pipeline.EventPublisher.
func (p *Publisher) PublishProcessed(ctx context.Context, e report.ProcessedEvent) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPublisherClosed
	}

	value, err := json.Marshal(processedEvent{
		EventType:   EventTypeReportProcessed,
		ReportID:    e.ReportID,
		Type:        string(e.Type),
		EnglishText: e.EnglishText,
		SolutionID:  e.SolutionID,
		Origin:      e.SolutionOrigin,
		ProcessedAt: e.ProcessedAt,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(e.ReportID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeReportProcessed)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", EventTypeReportProcessed, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
