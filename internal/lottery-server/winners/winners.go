package winners

import (
	"context"
	"sort"
)

// Source é o lado do BetStore que o resolver consulta
type Source interface {
	AllWinners(ctx context.Context, agencyID int) ([]string, error)
}

// Resolver calcula os documentos ganhadores de uma agência
type Resolver struct {
	src Source
}

func NewResolver(src Source) *Resolver { return &Resolver{src: src} }

// WinnersFor devolve os documentos ganhadores da agência em ordem estável.
// O mesmo conteúdo armazenado sempre produz a mesma lista.
func (r *Resolver) WinnersFor(ctx context.Context, agencyID int) ([]string, error) {
	docs, err := r.src.AllWinners(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	sort.Strings(docs)
	return docs, nil
}
