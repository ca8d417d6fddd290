package attribution

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}

	w.messages = append(w.messages, msgs...)

	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true

	return nil
}

type AttributionTestSuite struct {
	suite.Suite
	writer     *fakeWriter
	attributor *KafkaAttributor
}

func TestAttributionSuite(t *testing.T) {
	suite.Run(t, new(AttributionTestSuite))
}

func (suite *AttributionTestSuite) SetupTest() {
	suite.writer = &fakeWriter{}
	suite.attributor = newKafkaAttributor(suite.writer, logger.NewNopLogger())
	suite.attributor.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	suite.attributor.newID = func() string { return "event-1" }
}

func (suite *AttributionTestSuite) TestPublishesEvent() {
	err := suite.attributor.AttributeTrade(context.Background(), "result-1-3", []string{"double_bottom", " ", "volume_spike"}, types.TradeOutcome{PnL: 42, PnLPct: 4.2})
	suite.Require().NoError(err)
	suite.Require().Len(suite.writer.messages, 1)

	message := suite.writer.messages[0]
	suite.Equal("result-1-3", string(message.Key))
	suite.Equal([]kafka.Header{{Key: "event_id", Value: []byte("event-1")}}, message.Headers)

	var event Event
	suite.Require().NoError(json.Unmarshal(message.Value, &event))
	suite.Equal("event-1", event.EventID)
	suite.Equal("result-1-3", event.TradeID)
	suite.Equal([]string{"double_bottom", "volume_spike"}, event.Patterns)
	suite.Equal(42.0, event.PnL)
	suite.Equal(4.2, event.PnLPct)
	suite.True(event.Win)
	suite.True(event.OccurredAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func (suite *AttributionTestSuite) TestLosingTrade() {
	suite.Require().NoError(suite.attributor.AttributeTrade(context.Background(), "t", []string{"p"}, types.TradeOutcome{PnL: -1}))

	var event Event
	suite.Require().NoError(json.Unmarshal(suite.writer.messages[0].Value, &event))
	suite.False(event.Win)
}

func (suite *AttributionTestSuite) TestRejectsMissingData() {
	err := suite.attributor.AttributeTrade(context.Background(), "", []string{"p"}, types.TradeOutcome{})
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	err = suite.attributor.AttributeTrade(context.Background(), "t", []string{" "}, types.TradeOutcome{})
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	suite.Empty(suite.writer.messages)
}

func (suite *AttributionTestSuite) TestWriterFailure() {
	suite.writer.err = fmt.Errorf("broker down")

	err := suite.attributor.AttributeTrade(context.Background(), "t", []string{"p"}, types.TradeOutcome{PnL: 1})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeAttributionFailed))
	suite.ErrorContains(err, "broker down")
}

func (suite *AttributionTestSuite) TestClose() {
	suite.NoError(suite.attributor.Close())
	suite.True(suite.writer.closed)
}

func (suite *AttributionTestSuite) TestNewKafkaAttributorValidatesConfig() {
	_, err := NewKafkaAttributor(KafkaConfig{Topic: "trades"}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = NewKafkaAttributor(KafkaConfig{Brokers: []string{"localhost:9092"}}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	attributor, err := NewKafkaAttributor(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "trade-attribution"}, nil)
	suite.Require().NoError(err)

	writer, ok := attributor.writer.(*kafka.Writer)
	suite.Require().True(ok)
	suite.Equal("trade-attribution", writer.Topic)
	suite.Equal(defaultWriteTimeout, writer.WriteTimeout)
	suite.IsType(&kafka.LeastBytes{}, writer.Balancer)
	suite.NoError(attributor.Close())
}

func (suite *AttributionTestSuite) TestLogAttributor() {
	core, logs := observer.New(zapcore.InfoLevel)
	attributor := NewLogAttributor(&logger.Logger{Logger: zap.New(core)})

	suite.Require().NoError(attributor.AttributeTrade(context.Background(), "t-1", []string{"flag"}, types.TradeOutcome{PnL: 3, PnLPct: 0.3}))

	entries := logs.FilterMessage("Trade attributed").All()
	suite.Require().Len(entries, 1)
	suite.Equal("t-1", entries[0].ContextMap()["trade_id"])
	suite.Equal(true, entries[0].ContextMap()["win"])

	suite.Error(attributor.AttributeTrade(context.Background(), "t-2", nil, types.TradeOutcome{}))
}
