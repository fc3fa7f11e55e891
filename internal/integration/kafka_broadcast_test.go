//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/couchcryptid/clockface/internal/adapter/kafka"
	"github.com/couchcryptid/clockface/internal/config"
	"github.com/couchcryptid/clockface/internal/domain"
	"github.com/couchcryptid/clockface/internal/observability"
	"github.com/couchcryptid/clockface/internal/presentation"
)

const testTopic = "test-clock-readings"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("clockface-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

// TestBroadcastRoundTrip publishes a rendered frame and reads it back from the topic.
func TestBroadcastRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	metrics := observability.NewMetricsForTesting()
	publisher := kafkaadapter.NewPublisher(cfg, "en-GB", discardLogger(), metrics)

	locales, err := domain.LoadLocales()
	require.NoError(t, err)
	formatter := domain.NewFormatter(locales.Lookup("en-GB"), domain.WithLocation(time.UTC))

	at := time.Date(2026, time.October, 14, 13, 5, 9, 0, time.UTC)
	presenter := presentation.NewPresenter(presentation.Deps{
		Formatter:     formatter,
		Renderer:      publisher,
		Default24Hour: true,
		Logger:        discardLogger(),
		Metrics:       metrics,
	})
	require.NoError(t, presenter.Mount(ctx, presentation.MountOptions{}, at))
	require.NoError(t, presenter.Tick(at.Add(time.Second)))
	require.NoError(t, publisher.Close())

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	var readings []domain.ClockReading
	for len(readings) < 2 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from broadcast topic")

		assert.Equal(t, "clock", string(msg.Key))
		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "en-GB", headers["locale"])
		_, err = time.Parse(time.RFC3339, headers["timestamp"])
		assert.NoError(t, err, "timestamp should be valid RFC3339")

		var r domain.ClockReading
		require.NoError(t, json.Unmarshal(msg.Value, &r))
		readings = append(readings, r)
	}

	assert.Equal(t, "13 : 05 : 09", readings[0].DigitalTime)
	assert.Equal(t, "13 : 05 : 10", readings[1].DigitalTime)
	assert.Equal(t, "14 Oct 2026", readings[0].DigitalDate)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.ReadingsPublished) == 2
	}, 5*time.Second, 50*time.Millisecond)
}
