package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/lottery-agency-poc/pkg/contracts/events"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherRoutesByTopic(t *testing.T) {
	bets, done, winners := &fakeWriter{}, &fakeWriter{}, &fakeWriter{}
	p := &KafkaPublisher{BetsStored: bets, AgencyCompleted: done, WinnersServed: winners}
	ctx := context.Background()

	require.NoError(t, p.PublishBetsStored(ctx, events.BetsStored{AgencyID: 3, Count: 2}))
	require.NoError(t, p.PublishAgencyCompleted(ctx, events.AgencyCompleted{Completed: 1, Expected: 2}))
	require.NoError(t, p.PublishWinnersServed(ctx, events.WinnersServed{AgencyID: 3, Winners: 1}))

	require.Len(t, bets.msgs, 1)
	assert.Equal(t, "3", string(bets.msgs[0].Key))
	var got events.BetsStored
	require.NoError(t, json.Unmarshal(bets.msgs[0].Value, &got))
	assert.Equal(t, 2, got.Count)
	assert.False(t, bets.msgs[0].Time.IsZero())

	assert.Len(t, done.msgs, 1)
	assert.Len(t, winners.msgs, 1)

	require.NoError(t, p.Close())
	assert.True(t, bets.closed && done.closed && winners.closed)
}

func TestMultiJoinsErrors(t *testing.T) {
	ok := &fakeWriter{}
	broken := &fakeWriter{err: errors.New("broker down")}

	m := Multi{
		&KafkaPublisher{BetsStored: broken, AgencyCompleted: broken, WinnersServed: broken},
		&KafkaPublisher{BetsStored: ok, AgencyCompleted: ok, WinnersServed: ok},
		Nop{},
	}

	err := m.PublishBetsStored(context.Background(), events.BetsStored{AgencyID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	// o publisher saudável recebe o evento mesmo com o outro falhando
	assert.Len(t, ok.msgs, 1)

	assert.NoError(t, Multi{Nop{}}.PublishAgencyCompleted(context.Background(), events.AgencyCompleted{}))
}
