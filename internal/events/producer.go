// Package events publie les événements de commande sur Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

const (
	OrderCreatedTopic       = "order.created"
	OrderStatusChangedTopic = "order.status_changed"
)

type OrderCreatedEvent struct {
	TrackingCode string    `json:"tracking_code"`
	Total        float64   `json:"total"`
	ItemsCount   int       `json:"items_count"`
	City         string    `json:"city"`
	CreatedAt    time.Time `json:"created_at"`
	EventTime    time.Time `json:"event_time"`
}

type OrderStatusChangedEvent struct {
	TrackingCode string    `json:"tracking_code"`
	Status       string    `json:"status"`
	EventTime    time.Time `json:"event_time"`
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
	Close() error
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	logger   *logrus.Logger
}

func NewKafkaProducer(brokers []string, logger *logrus.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return NewKafkaProducerFrom(producer, logger), nil
}

// NewKafkaProducerFrom enveloppe un producteur déjà construit.
func NewKafkaProducerFrom(producer sarama.SyncProducer, logger *logrus.Logger) *KafkaProducer {
	return &KafkaProducer{producer: producer, logger: logger}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic, key string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithField("topic", topic).Error("❌ Publication Kafka échouée")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"key":       key,
	}).Info("📤 Événement publié sur Kafka")
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}

// Noop est utilisé quand aucun broker n'est configuré.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) error { return nil }
func (Noop) Close() error                                       { return nil }
