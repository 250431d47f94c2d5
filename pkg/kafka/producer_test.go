package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoBrokers)

	_, err = NewProducer(context.Background(), &ProducerConfig{})
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestNewProducer_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	p, err := NewProducer(ctx, &ProducerConfig{
		Brokers:       []string{"127.0.0.1:1"},
		MaxRetries:    0,
		RetryInterval: 10 * time.Millisecond,
	})
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestToRecord(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	record := toRecord(&Message{
		Topic:     "queue-events",
		Key:       []byte("dmv-1"),
		Value:     []byte(`{"a":1}`),
		Headers:   map[string]string{"event_type": "queue.joined"},
		Timestamp: ts,
	})

	assert.Equal(t, "queue-events", record.Topic)
	assert.Equal(t, []byte("dmv-1"), record.Key)
	assert.Equal(t, ts, record.Timestamp)
	require.Len(t, record.Headers, 1)
	assert.Equal(t, "event_type", record.Headers[0].Key)
	assert.Equal(t, []byte("queue.joined"), record.Headers[0].Value)
}
