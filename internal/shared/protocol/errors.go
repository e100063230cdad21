package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol marca mensagens malformadas: campos faltando, ação desconhecida, limite de tamanho
	ErrProtocol = errors.New("protocol error")
	// ErrTransport marca falhas de leitura/escrita no socket (reset, peer fechou)
	ErrTransport = errors.New("transport error")
)

// Error carrega o trecho da mensagem que não pôde ser interpretado
type Error struct {
	Op       string
	Fragment string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %q: %v", e.Op, e.Fragment, ErrProtocol)
	}
	return fmt.Sprintf("%s: %q: %v", e.Op, e.Fragment, e.Err)
}

// Unwrap permite errors.Is tanto com ErrProtocol quanto com a causa original
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProtocol}
	}
	return []error{ErrProtocol, e.Err}
}

func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}
