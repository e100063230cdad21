package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// SessionHandler atende uma conexão até o fim do protocolo
type SessionHandler interface {
	Serve(ctx context.Context, conn io.ReadWriter, peer string) error
}

// Config do acceptor
type Config struct {
	Addr          string // ex: ":12345"
	ListenBacklog int    // só informativo: o backlog real é o do kernel (somaxconn)
	Workers       int    // agências esperadas + folga
}

// Server aceita conexões e repassa para um pool fixo de workers.
// Com todos os workers ocupados o accept fica bloqueado até liberar um.
type Server struct {
	cfg     Config
	log     *zap.Logger
	handler SessionHandler

	OnSession func() // métricas

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
	shutdown atomic.Bool
}

func New(cfg Config, log *zap.Logger, handler SessionHandler) *Server {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Server{cfg: cfg, log: log, handler: handler, ready: make(chan struct{})}
}

// Run faz bind, sobe os workers e fica no loop de accept.
// Depois do Shutdown espera as sessões em andamento terminarem e retorna nil.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	// Shutdown pode ter sido chamado antes do listener existir
	if s.shutdown.Load() {
		_ = ln.Close()
	}

	s.log.Info("lottery-server listening",
		zap.String("addr", ln.Addr().String()),
		zap.Int("backlog", s.cfg.ListenBacklog),
		zap.Int("workers", s.cfg.Workers),
	)

	conns := make(chan net.Conn)
	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for conn := range conns {
				s.handle(ctx, conn)
			}
		}()
	}
	defer func() {
		close(conns)
		wg.Wait()
		s.log.Info("all sessions finished")
	}()

	for {
		s.log.Debug("waiting for connection", zap.String("action", "accept_connections"), zap.String("result", "in_progress"))
		conn, err := ln.Accept()
		if err != nil {
			if s.shutdown.Load() {
				s.log.Info("shutdown requested, listener closed")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.log.Info("connection accepted",
			zap.String("action", "accept_connections"),
			zap.String("result", "success"),
			zap.String("ip", conn.RemoteAddr().String()),
		)
		// bloqueia até algum worker ficar livre
		conns <- conn
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Debug("close connection", zap.Error(err))
		}
	}()
	if s.OnSession != nil {
		s.OnSession()
	}
	// o erro já foi logado pela sessão; aqui só libera o worker
	_ = s.handler.Serve(ctx, conn, conn.RemoteAddr().String())
}

// Shutdown fecha o listener; sessões em andamento terminam normalmente
func (s *Server) Shutdown() {
	if s.shutdown.Swap(true) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// Addr devolve o endereço real do listener, esperando o bind acontecer
func (s *Server) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-s.ready:
		return s.listener.Addr(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
