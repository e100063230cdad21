package producer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/lottery-agency-poc/pkg/contracts/events"
)

// fakeRedis implementa só o Publish; o resto do Cmdable fica nil
type fakeRedis struct {
	redis.Cmdable
	channels []string
	payloads [][]byte
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, message.([]byte))
	return redis.NewIntResult(1, nil)
}

func TestRedisBroadcasterEnvelope(t *testing.T) {
	fr := &fakeRedis{}
	b := NewRedisBroadcaster(fr, "lottery_progress")

	require.NoError(t, b.PublishAgencyCompleted(context.Background(), events.AgencyCompleted{Completed: 2, Expected: 2, Satisfied: true}))

	require.Len(t, fr.payloads, 1)
	assert.Equal(t, "lottery_progress", fr.channels[0])

	var env struct {
		Type    string                 `json:"type"`
		Payload events.AgencyCompleted `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(fr.payloads[0], &env))
	assert.Equal(t, "agency_completed", env.Type)
	assert.True(t, env.Payload.Satisfied)
}
