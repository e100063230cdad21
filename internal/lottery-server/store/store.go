package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
)

// Persistence é o colaborador que de fato grava as apostas.
// Um Append concluído precisa ser visível para os LoadAll seguintes.
type Persistence interface {
	Append(ctx context.Context, bets []lottery.Bet) error
	LoadAll(ctx context.Context) ([]lottery.Bet, error)
}

// BetStore serializa escrita e leitura com o mesmo mutex.
// O lock nunca é segurado durante operações de socket.
type BetStore struct {
	mu     sync.Mutex
	p      Persistence
	hasWon lottery.Predicate
}

func New(p Persistence, hasWon lottery.Predicate) *BetStore {
	return &BetStore{p: p, hasWon: hasWon}
}

// Persist grava o lote como uma unidade em relação a outros Persist/AllWinners
func (s *BetStore) Persist(ctx context.Context, batch []lottery.Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.p.Append(ctx, batch); err != nil {
		return fmt.Errorf("persist batch of %d bets: %w", len(batch), err)
	}
	return nil
}

// AllWinners carrega tudo sob o lock e filtra fora dele
func (s *BetStore) AllWinners(ctx context.Context, agencyID int) ([]string, error) {
	bets, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	documents := []string{}
	for _, b := range bets {
		if b.AgencyID == agencyID && s.hasWon(b) {
			documents = append(documents, b.Document)
		}
	}
	return documents, nil
}

// Count devolve quantas apostas estão visíveis no armazenamento
func (s *BetStore) Count(ctx context.Context) (int, error) {
	bets, err := s.loadAll(ctx)
	return len(bets), err
}

func (s *BetStore) loadAll(ctx context.Context) ([]lottery.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bets, err := s.p.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bets: %w", err)
	}
	return bets, nil
}
