package producer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/lottery-agency-poc/pkg/contracts/events"
)

var (
	// ErrQueueFull é devolvido quando a fila do Async está cheia; o evento é descartado
	ErrQueueFull = errors.New("publish queue full")
	// ErrClosed é devolvido para eventos publicados depois do Close
	ErrClosed = errors.New("publisher closed")
)

// Async desacopla as sessões do broker: cada Publish só enfileira e uma goroutine
// entrega ao publisher de verdade, um evento por vez, cada um com seu timeout.
type Async struct {
	next    Publisher
	log     *zap.Logger
	timeout time.Duration

	OnError func() // métricas: entrega falhou no publisher de trás

	mu     sync.RWMutex
	closed bool
	queue  chan func(context.Context) error
	done   chan struct{}
}

func NewAsync(next Publisher, log *zap.Logger, buffer int, timeout time.Duration) *Async {
	if buffer <= 0 {
		buffer = 1
	}
	a := &Async{
		next:    next,
		log:     log,
		timeout: timeout,
		queue:   make(chan func(context.Context) error, buffer),
		done:    make(chan struct{}),
	}
	go a.drain()
	return a
}

func (a *Async) PublishBetsStored(_ context.Context, e events.BetsStored) error {
	return a.enqueue(func(ctx context.Context) error { return a.next.PublishBetsStored(ctx, e) })
}

func (a *Async) PublishAgencyCompleted(_ context.Context, e events.AgencyCompleted) error {
	return a.enqueue(func(ctx context.Context) error { return a.next.PublishAgencyCompleted(ctx, e) })
}

func (a *Async) PublishWinnersServed(_ context.Context, e events.WinnersServed) error {
	return a.enqueue(func(ctx context.Context) error { return a.next.PublishWinnersServed(ctx, e) })
}

// Close para de aceitar eventos e espera a fila esvaziar
func (a *Async) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	<-a.done
	return nil
}

func (a *Async) enqueue(fn func(context.Context) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) drain() {
	defer close(a.done)
	for fn := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := fn(ctx)
		cancel()
		if err != nil {
			a.log.Warn("event delivery failed", zap.Error(err))
			if a.OnError != nil {
				a.OnError()
			}
		}
	}
}
