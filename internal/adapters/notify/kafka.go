package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-watch-service/internal/domain"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	AlertEventType = "routewatch.congestion.alert"
	alertSource    = "route-watch"
)

// KafkaConfig is the [kafka] section of the configuration file.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" json:"brokers" yaml:"brokers" validate:"required,min=1"`
	Topic   string   `mapstructure:"topic" json:"topic" yaml:"topic" validate:"required"`
}

// AlertEvent is the CloudEvents-style envelope published for every alert.
type AlertEvent struct {
	SpecVersion     string    `json:"specversion"`
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	Type            string    `json:"type"`
	Time            time.Time `json:"time"`
	DataContentType string    `json:"datacontenttype"`
	Data            AlertData `json:"data"`
}

type AlertData struct {
	Message string `json:"message"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaNotifier publishes alerts to a Kafka topic.
type KafkaNotifier struct {
	writer messageWriter
	now    func() time.Time
}

func NewKafkaNotifier(cfg KafkaConfig) (*KafkaNotifier, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka notifier: brokers and topic are required")
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w, now: time.Now}, nil
}

func (k *KafkaNotifier) Send(ctx context.Context, message string) error {
	evt := AlertEvent{
		SpecVersion:     "1.0",
		ID:              uuid.NewString(),
		Source:          alertSource,
		Type:            AlertEventType,
		Time:            k.now().UTC(),
		DataContentType: "application/json",
		Data:            AlertData{Message: message},
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return &domain.NotificationError{Notifier: "kafka", Err: fmt.Errorf("marshal event: %w", err)}
	}

	if err := k.writer.WriteMessages(ctx, kafkago.Message{Key: []byte(evt.ID), Value: body}); err != nil {
		return &domain.NotificationError{Notifier: "kafka", Err: err}
	}
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
