package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	"AstroCore/pkg/logger"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer reads registered topics and dispatches messages to a worker pool.
// Failed messages are retried with jittered backoff, then sent to the DLQ
// when one is configured. Offsets are committed after success or DLQ.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *logger.Logger
	readers  map[string]*kafka.Reader
	handlers map[string]MessageHandler
	msgChan  chan kafka.Message
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	dlq      *kafka.Writer
	hook     ConsumerHook
	metrics  *consumerMetrics
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := defaultConsumerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	c := &Consumer{
		cfg:      cfg,
		log:      cfg.Logger,
		readers:  make(map[string]*kafka.Reader),
		handlers: make(map[string]MessageHandler),
		msgChan:  make(chan kafka.Message, cfg.BufferSize),
		stopChan: make(chan struct{}),
		hook:     NoopHook{},
		metrics:  newConsumerMetrics(cfg.Registerer),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}}
	}
	return c, nil
}

// RegisterHandler registers a handler for its topic. Must be called before Start.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.log.Warn("kafka handler already registered", logger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// WithConsumerHook sets a hook implementation for lifecycle events.
func (c *Consumer) WithConsumerHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

// Start launches one reader per topic and the worker pool.
func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return errors.New("no handlers registered")
	}
	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
	}

	var workers sync.WaitGroup
	for i := 0; i < c.cfg.WorkerCount; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			c.worker()
		}()
	}

	var readers sync.WaitGroup
	for topic, reader := range c.readers {
		readers.Add(1)
		go func(topic string, reader *kafka.Reader) {
			defer readers.Done()
			c.consume(topic, reader)
		}(topic, reader)
	}

	// workers drain msgChan after every reader has exited
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		readers.Wait()
		close(c.msgChan)
		workers.Wait()
	}()

	c.log.Info("kafka consumer started",
		logger.Int("topics", len(c.readers)),
		logger.Int("workers", c.cfg.WorkerCount),
		logger.String("group", c.cfg.GroupID),
	)
	return nil
}

// Stop signals readers to exit and waits for in-flight messages or ctx.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.stopOnce.Do(func() {
		close(c.stopChan)
		stopErr = c.waitForWg(ctx)

		for topic, reader := range c.readers {
			if err := reader.Close(); err != nil {
				c.log.Warn("close kafka reader", logger.String("topic", topic), logger.Error(err))
			}
		}
		if c.dlq != nil {
			if err := c.dlq.Close(); err != nil {
				c.log.Warn("close dlq writer", logger.Error(err))
			}
		}
		if stopErr == nil {
			c.log.Info("kafka consumer stopped")
		}
	})
	return stopErr
}

func (c *Consumer) waitForWg(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
	case <-done:
		return nil
	}
}

func (c *Consumer) consume(topic string, reader *kafka.Reader) {
	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		msg, err := reader.FetchMessage(ctx)
		cancel()
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				c.log.Warn("kafka fetch failed", logger.String("topic", topic), logger.Error(err))
			}
			continue
		}

		select {
		case c.msgChan <- msg:
			c.metrics.queued(topic, len(c.msgChan))
		case <-c.stopChan:
			return
		}
	}
}

func (c *Consumer) worker() {
	for msg := range c.msgChan {
		handler, ok := c.handlers[msg.Topic]
		if !ok {
			continue
		}
		start := time.Now()
		err := c.handle(handler, msg)
		c.metrics.handled(msg.Topic, time.Since(start), err)
	}
}

// handle runs one message through hooks, retries and DLQ, then commits.
func (c *Consumer) handle(handler MessageHandler, msg kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HookError{Code: "ERR_PANIC", Err: fmt.Errorf("handler panic: %v", r)}
			c.log.Error("kafka handler panic", logger.String("topic", msg.Topic), logger.Error(err))
		}
	}()

	attempts := 0
	for {
		attempts++
		hctx, hmsg, data, berr := c.hook.BeforeHandle(context.Background(), msg.Topic, msg, msg.Value)
		if berr != nil {
			err = berr
			break
		}
		err = handler.Handle(hctx, data)
		c.hook.AfterHandle(hctx, msg.Topic, hmsg, data, err)
		if err == nil || attempts > c.cfg.RetryMax {
			break
		}
		c.hook.OnError(hctx, msg.Topic, hmsg, data, err)
		select {
		case <-time.After(backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempts)):
		case <-c.stopChan:
			// uncommitted, redelivered after restart
			return err
		}
	}

	if err != nil {
		c.log.Error("kafka message failed",
			logger.String("topic", msg.Topic),
			logger.Int("attempts", attempts),
			logger.Error(err),
		)
		if !c.toDLQ(msg) {
			return err
		}
	}
	c.commit(msg)
	return err
}

func (c *Consumer) toDLQ(msg kafka.Message) bool {
	if c.dlq == nil {
		return false
	}
	werr := c.dlq.WriteMessages(context.Background(), kafka.Message{
		Topic:   c.cfg.DLQTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "source_topic", Value: []byte(msg.Topic)}},
	})
	if werr != nil {
		c.log.Error("kafka dlq write failed", logger.String("dlq", c.cfg.DLQTopic), logger.Error(werr))
		return false
	}
	return true
}

// commit retries a few times before giving up on the offset.
func (c *Consumer) commit(msg kafka.Message) {
	reader := c.readers[msg.Topic]
	if reader == nil {
		return
	}
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = reader.CommitMessages(ctx, msg)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(backoffWithJitter(50*time.Millisecond, 500*time.Millisecond, attempt))
	}
	c.log.Error("kafka commit failed", logger.String("topic", msg.Topic), logger.Int64("offset", msg.Offset), logger.Error(err))
}

func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	if attempt < 1 {
		attempt = 1
	}
	exp := max
	if attempt < 32 {
		if d := min << uint(attempt-1); d > 0 && d < max {
			exp = d
		}
	}
	// jitter up to 50%
	half := int64(exp) / 2
	if half <= 0 {
		return exp
	}
	return exp - time.Duration(rand.Int63n(half))
}

type consumerMetrics struct {
	depth   *prometheus.GaugeVec
	latency *prometheus.HistogramVec
	results *prometheus.CounterVec
}

func newConsumerMetrics(reg prometheus.Registerer) *consumerMetrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &consumerMetrics{
		depth: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "astrocore_kafka_consumer_queue_depth",
			Help: "Messages waiting in the consumer queue",
		}, []string{"topic"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "astrocore_kafka_consumer_handle_seconds",
			Help: "Handling time per message including retries",
		}, []string{"topic"}),
		results: f.NewCounterVec(prometheus.CounterOpts{
			Name: "astrocore_kafka_consumer_messages_total",
			Help: "Handled messages by result",
		}, []string{"topic", "result"}),
	}
}

func (m *consumerMetrics) queued(topic string, depth int) {
	if m == nil {
		return
	}
	m.depth.WithLabelValues(topic).Set(float64(depth))
}

func (m *consumerMetrics) handled(topic string, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.latency.WithLabelValues(topic).Observe(took.Seconds())
	m.results.WithLabelValues(topic, result).Inc()
}
