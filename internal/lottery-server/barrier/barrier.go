package barrier

import "sync"

// CompletionBarrier conta quantas agências avisaram que terminaram de enviar apostas.
//
// A contagem é bruta, não por identidade: dois DONE da mesma agência contam duas
// vezes (limitado a expected) e podem liberar a barreira antes de todas as agências
// distintas terminarem. Esse comportamento é mantido de propósito.
type CompletionBarrier struct {
	mu        sync.Mutex
	expected  int
	completed int
}

func New(expectedAgencies int) *CompletionBarrier {
	return &CompletionBarrier{expected: expectedAgencies}
}

// MarkAgencyComplete incrementa a contagem e limita ao total esperado.
// Devolve (concluídas, esperadas) como ficaram depois deste incremento.
func (b *CompletionBarrier) MarkAgencyComplete() (completed, expected int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.completed = min(b.completed+1, b.expected)
	return b.completed, b.expected
}

// IsSatisfied é true quando todas as agências esperadas já terminaram
func (b *CompletionBarrier) IsSatisfied() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.completed >= b.expected
}
