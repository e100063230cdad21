package producer

import (
	"context"
	"errors"

	"github.com/radieske/lottery-agency-poc/pkg/contracts/events"
)

// Publisher publica o progresso do sorteio para fora do servidor.
// Falhas de publicação nunca mudam a resposta enviada à agência.
type Publisher interface {
	PublishBetsStored(ctx context.Context, e events.BetsStored) error
	PublishAgencyCompleted(ctx context.Context, e events.AgencyCompleted) error
	PublishWinnersServed(ctx context.Context, e events.WinnersServed) error
}

// Nop descarta tudo; usado quando nem Kafka nem Redis estão configurados
type Nop struct{}

func (Nop) PublishBetsStored(context.Context, events.BetsStored) error           { return nil }
func (Nop) PublishAgencyCompleted(context.Context, events.AgencyCompleted) error { return nil }
func (Nop) PublishWinnersServed(context.Context, events.WinnersServed) error     { return nil }

// Multi repassa cada evento para todos os publishers e junta os erros
type Multi []Publisher

func (m Multi) PublishBetsStored(ctx context.Context, e events.BetsStored) error {
	var errs []error
	for _, p := range m {
		errs = append(errs, p.PublishBetsStored(ctx, e))
	}
	return errors.Join(errs...)
}

func (m Multi) PublishAgencyCompleted(ctx context.Context, e events.AgencyCompleted) error {
	var errs []error
	for _, p := range m {
		errs = append(errs, p.PublishAgencyCompleted(ctx, e))
	}
	return errors.Join(errs...)
}

func (m Multi) PublishWinnersServed(ctx context.Context, e events.WinnersServed) error {
	var errs []error
	for _, p := range m {
		errs = append(errs, p.PublishWinnersServed(ctx, e))
	}
	return errors.Join(errs...)
}
