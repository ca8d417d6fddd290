package attribution

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const defaultWriteTimeout = 10 * time.Second

// KafkaConfig configures the Kafka attributor.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers" validate:"required,min=1,dive,required"`
	Topic        string        `yaml:"topic" validate:"required"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAttributor publishes one JSON Event per attributed trade. Messages are keyed by
// trade id so redelivered attributions of a trade land on the same partition.
type KafkaAttributor struct {
	writer messageWriter
	log    *logger.Logger
	now    func() time.Time
	newID  func() string
}

// NewKafkaAttributor creates an attributor writing to config.Topic.
func NewKafkaAttributor(config KafkaConfig, log *logger.Logger) (*KafkaAttributor, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid kafka attribution config", err)
	}

	timeout := config.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: timeout,
		RequiredAcks: kafka.RequireOne,
	}

	return newKafkaAttributor(writer, log), nil
}

func newKafkaAttributor(writer messageWriter, log *logger.Logger) *KafkaAttributor {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &KafkaAttributor{
		writer: writer,
		log:    log,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// AttributeTrade implements engine.TradeAttributor.
func (a *KafkaAttributor) AttributeTrade(ctx context.Context, tradeID string, patterns []string, outcome types.TradeOutcome) error {
	event, err := newEvent(a.newID(), tradeID, patterns, outcome, a.now())
	if err != nil {
		return err
	}

	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAttributionFailed, "failed to marshal attribution event", err)
	}

	message := kafka.Message{
		Key:   []byte(event.TradeID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
		},
		Time: event.OccurredAt,
	}

	if err := a.writer.WriteMessages(ctx, message); err != nil {
		a.log.Warn("Failed to publish trade attribution",
			zap.String("trade_id", tradeID),
			zap.Error(err),
		)

		return errors.Wrapf(errors.ErrCodeAttributionFailed, err, "failed to publish attribution of trade %s", tradeID)
	}

	a.log.Debug("Published trade attribution",
		zap.String("trade_id", tradeID),
		zap.String("event_id", event.EventID),
		zap.Strings("patterns", event.Patterns),
	)

	return nil
}

// Close flushes pending messages and closes the writer.
func (a *KafkaAttributor) Close() error {
	return a.writer.Close()
}
