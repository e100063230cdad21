package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	skafka "github.com/radieske/lottery-agency-poc/internal/shared/kafka"
	"github.com/radieske/lottery-agency-poc/pkg/contracts/events"
)

// MessageWriter é o subconjunto de *kafka.Writer usado aqui
type MessageWriter interface {
	skafka.MessageWriter
	Close() error
}

// KafkaPublisher escreve cada tipo de evento no seu tópico, chaveado pela agência
type KafkaPublisher struct {
	BetsStored      MessageWriter
	AgencyCompleted MessageWriter
	WinnersServed   MessageWriter
}

// NewKafkaPublisher cria um writer por tópico no mesmo conjunto de brokers
func NewKafkaPublisher(brokers, topicBets, topicCompleted, topicWinners string) *KafkaPublisher {
	return &KafkaPublisher{
		BetsStored:      skafka.NewWriter(brokers, topicBets),
		AgencyCompleted: skafka.NewWriter(brokers, topicCompleted),
		WinnersServed:   skafka.NewWriter(brokers, topicWinners),
	}
}

func (p *KafkaPublisher) PublishBetsStored(ctx context.Context, e events.BetsStored) error {
	return write(ctx, p.BetsStored, strconv.Itoa(e.AgencyID), e)
}

func (p *KafkaPublisher) PublishAgencyCompleted(ctx context.Context, e events.AgencyCompleted) error {
	return write(ctx, p.AgencyCompleted, "barrier", e)
}

func (p *KafkaPublisher) PublishWinnersServed(ctx context.Context, e events.WinnersServed) error {
	return write(ctx, p.WinnersServed, strconv.Itoa(e.AgencyID), e)
}

// Close fecha os três writers
func (p *KafkaPublisher) Close() error {
	err1 := p.BetsStored.Close()
	err2 := p.AgencyCompleted.Close()
	err3 := p.WinnersServed.Close()
	if err1 != nil {
		return err1
	}
	if err2 != nil {
		return err2
	}
	return err3
}

func write(ctx context.Context, w MessageWriter, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %T: %w", v, err)
	}
	return skafka.WriteJSON(ctx, w, key, b)
}
