package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct{ msgs []kafka.Message }

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestWriteJSON(t *testing.T) {
	w := &captureWriter{}
	require.NoError(t, WriteJSON(context.Background(), w, "7", []byte(`{"agency_id":7}`)))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "7", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"agency_id":7}`, string(w.msgs[0].Value))
	assert.False(t, w.msgs[0].Time.IsZero())
}

func TestNewWriter(t *testing.T) {
	w := NewWriter("a:9092,b:9092", "lottery_bets_stored")
	assert.Equal(t, "lottery_bets_stored", w.Topic)
	assert.NotNil(t, w.Addr)
	assert.True(t, w.AllowAutoTopicCreation)
}
