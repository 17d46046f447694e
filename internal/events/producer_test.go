package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPublishSendsJSONPayload(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var evt OrderCreatedEvent
		if err := json.Unmarshal(val, &evt); err != nil {
			return err
		}
		if evt.TrackingCode != "MAEVA-ABCD1234" || evt.Total != 1500 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewKafkaProducerFrom(mock, quietLogger())
	err := p.Publish(context.Background(), OrderCreatedTopic, "MAEVA-ABCD1234", OrderCreatedEvent{
		TrackingCode: "MAEVA-ABCD1234",
		Total:        1500,
		EventTime:    time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPublishReturnsBrokerError(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaProducerFrom(mock, quietLogger())
	err := p.Publish(context.Background(), OrderStatusChangedTopic, "MAEVA-1", OrderStatusChangedEvent{Status: "shipped"})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}
	_ = p.Close()
}
