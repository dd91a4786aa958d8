package repository

import (
	"context"

	"AstroCore/internal/domain/models"
	domrepo "AstroCore/internal/domain/repository"
)

// messageProducer is the part of pkg/kafka.Producer the publisher needs.
type messageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaEventPublisher publishes chart events as JSON keyed by chart id.
type KafkaEventPublisher struct {
	producer messageProducer
	topic    string
}

var _ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)

func NewKafkaEventPublisher(producer messageProducer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishChartComputed(ctx context.Context, e *models.ChartComputedEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.ID), e)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
