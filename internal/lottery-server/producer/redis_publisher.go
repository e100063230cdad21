package producer

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/lottery-agency-poc/pkg/contracts/events"
)

// Envelope é o payload publicado no canal de progresso
type Envelope struct {
	Type    string `json:"type"` // "bets_stored" | "agency_completed" | "winners_served"
	Payload any    `json:"payload"`
}

// RedisBroadcaster publica todos os eventos num único canal Pub/Sub
type RedisBroadcaster struct {
	r       redis.Cmdable
	channel string
}

func NewRedisBroadcaster(r redis.Cmdable, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) PublishBetsStored(ctx context.Context, e events.BetsStored) error {
	return b.publish(ctx, "bets_stored", e)
}

func (b *RedisBroadcaster) PublishAgencyCompleted(ctx context.Context, e events.AgencyCompleted) error {
	return b.publish(ctx, "agency_completed", e)
}

func (b *RedisBroadcaster) PublishWinnersServed(ctx context.Context, e events.WinnersServed) error {
	return b.publish(ctx, "winners_served", e)
}

func (b *RedisBroadcaster) publish(ctx context.Context, kind string, payload any) error {
	msg, err := json.Marshal(Envelope{Type: kind, Payload: payload})
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, msg).Err()
}
