package repo

import (
	"context"
	"slices"

	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
)

// Memory guarda as apostas só em memória; usado em testes e no modo "memory".
// A exclusão mútua é responsabilidade do BetStore.
type Memory struct {
	bets []lottery.Bet
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(_ context.Context, bets []lottery.Bet) error {
	m.bets = append(m.bets, bets...)
	return nil
}

// LoadAll devolve uma cópia para que quem lê não enxergue appends futuros
func (m *Memory) LoadAll(_ context.Context) ([]lottery.Bet, error) {
	return slices.Clone(m.bets), nil
}
