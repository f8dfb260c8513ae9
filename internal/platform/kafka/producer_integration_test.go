//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"nameledger/internal/platform/kafka"
	"nameledger/internal/registry/models"
	"nameledger/pkg/testutil/containers"
)

func TestProducerRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	broker := containers.GetManager().GetRedpanda(t).Broker
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "nameledger.notifications.test"
	producer, err := kafka.NewProducer(ctx, []string{broker}, topic, logger)
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, producer.EnsureTopic(ctx, 1, 1))
	// Creating an existing topic is not an error.
	require.NoError(t, producer.EnsureTopic(ctx, 1, 1))

	event := models.DomainPurchased{DomainName: "example.com", NewOwner: "bob", Price: 500}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, producer.Publish(ctx, event.Type(), event.Key(), payload))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors(), "fetch must not fail")
	records := fetches.Records()
	require.Len(t, records, 1)

	record := records[0]
	require.Equal(t, "example.com", string(record.Key))
	require.Len(t, record.Headers, 1)
	require.Equal(t, "event_type", record.Headers[0].Key)
	require.Equal(t, string(models.EventTypeDomainPurchased), string(record.Headers[0].Value))

	var got models.DomainPurchased
	require.NoError(t, json.Unmarshal(record.Value, &got))
	require.Equal(t, event, got)
}
