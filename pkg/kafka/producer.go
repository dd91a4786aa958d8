package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	"AstroCore/pkg/logger"
)

// Producer wraps a kafka-go writer with JSON encoding and metrics.
type Producer struct {
	writer  *kafka.Writer
	comp    string
	log     *logger.Logger
	metrics *producerMetrics
}

// NewProducer creates a new Kafka producer.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := defaultProducerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  parseCompression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
	}
	return &Producer{
		writer:  writer,
		comp:    cfg.Compression,
		log:     cfg.Logger,
		metrics: newProducerMetrics(cfg.Registerer),
	}, nil
}

// Publish encodes value (raw bytes, string or JSON) and writes it to topic.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	start := time.Now()
	v, err := encode(value)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: key, Value: v, Time: time.Now()})
	p.metrics.observe(topic, p.comp, len(v), time.Since(start), err)
	if err != nil {
		p.log.Warn("kafka publish failed", logger.String("topic", topic), logger.Error(err))
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes pending writes and closes the producer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func encode(value interface{}) ([]byte, error) {
	switch val := value.(type) {
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal value: %w", err)
		}
		return b, nil
	}
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Snappy
	}
}

type producerMetrics struct {
	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newProducerMetrics(reg prometheus.Registerer) *producerMetrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &producerMetrics{
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "astrocore_kafka_producer_messages_total",
			Help: "Messages published to Kafka",
		}, []string{"topic", "compression", "result"}),
		bytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "astrocore_kafka_producer_bytes_total",
			Help: "Payload bytes published",
		}, []string{"topic"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "astrocore_kafka_producer_publish_seconds",
			Help:    "Publish latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
	}
}

func (m *producerMetrics) observe(topic, comp string, size int, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.messages.WithLabelValues(topic, comp, result).Inc()
	m.bytes.WithLabelValues(topic).Add(float64(size))
	m.latency.WithLabelValues(topic).Observe(took.Seconds())
}
