package agencyclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/lottery-agency-poc/internal/shared/protocol"
)

// Config do cliente de uma agência
type Config struct {
	ServerAddress  string
	AgencyID       int
	DatasetPath    string
	BatchMaxAmount int
	PollMaxWait    time.Duration // espera máxima (aleatória) entre consultas de ganhadores
	Framing        protocol.Framing
}

// Client envia as apostas de uma agência e depois consulta os ganhadores
type Client struct {
	cfg    Config
	log    *zap.Logger
	dialer net.Dialer

	OnBatchSent func(bets int)   // métricas
	OnPoll      func(ready bool) // métricas: false = PROCESSING
}

func New(cfg Config, log *zap.Logger) *Client {
	if cfg.PollMaxWait <= 0 {
		cfg.PollMaxWait = 100 * time.Millisecond
	}
	return &Client{
		cfg:    cfg,
		log:    log.With(zap.Int("agency_id", cfg.AgencyID)),
		dialer: net.Dialer{Timeout: 5 * time.Second},
	}
}

// Run executa o fluxo completo: lotes, DONE e polling de ganhadores
func (c *Client) Run(ctx context.Context) ([]string, error) {
	f, err := os.Open(c.cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	if err := c.SendBets(ctx, f); err != nil {
		return nil, err
	}

	winners, err := c.PollWinners(ctx)
	if err != nil {
		return nil, err
	}
	c.log.Info("winners received",
		zap.String("action", "consulta_ganadores"),
		zap.String("result", "success"),
		zap.Int("cant_ganadores", len(winners)),
	)
	return winners, nil
}

// SendBets manda todos os lotes numa única conexão, esperando ACK a cada lote, e termina com DONE
func (c *Client) SendBets(ctx context.Context, dataset io.Reader) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	br := NewBatchReader(dataset, c.cfg.AgencyID, c.cfg.BatchMaxAmount, c.cfg.Framing)
	for sent := 1; ; sent++ {
		batch, err := br.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		c.log.Debug("sending batch", zap.Int("batch", sent), zap.Int("bets", len(batch)))
		if _, err := c.exchange(conn, c.cfg.Framing.EncodeBatch(batch)); err != nil {
			return fmt.Errorf("batch %d: %w", sent, err)
		}
		if c.OnBatchSent != nil {
			c.OnBatchSent(len(batch))
		}
		c.log.Info("batch sent",
			zap.String("action", "apuestas_enviadas"),
			zap.String("result", "success"),
			zap.Int("cantidad", len(batch)),
		)
	}

	if _, err := c.exchange(conn, c.cfg.Framing.DoneMessage()); err != nil {
		return fmt.Errorf("done: %w", err)
	}
	c.log.Debug("all bets sent")
	return nil
}

// PollWinners consulta em conexões novas até o servidor responder WINNERS
func (c *Client) PollWinners(ctx context.Context) ([]string, error) {
	for {
		winners, ready, err := c.queryWinners(ctx)
		if err != nil {
			return nil, err
		}
		if c.OnPoll != nil {
			c.OnPoll(ready)
		}
		if ready {
			return winners, nil
		}

		c.log.Debug("draw not finished, asking again")
		wait := time.Duration(rand.Int63n(int64(c.cfg.PollMaxWait)) + 1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) queryWinners(ctx context.Context) ([]string, bool, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, false, err
	}
	defer conn.Close()

	resp, err := c.exchange(conn, c.cfg.Framing.WinnersQuery(c.cfg.AgencyID))
	if err != nil {
		return nil, false, fmt.Errorf("winners query: %w", err)
	}
	return protocol.ParseWinnersResponse(resp, c.cfg.Framing)
}

// connect abre a conexão e a fecha se o contexto for cancelado no meio de uma troca
func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.cfg.ServerAddress)
	if err != nil {
		c.log.Error("connect failed", zap.String("action", "connect"), zap.String("result", "fail"), zap.Error(err))
		return nil, fmt.Errorf("connect %s: %w", c.cfg.ServerAddress, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	return &ctxConn{Conn: conn, stop: stop}, nil
}

func (c *Client) exchange(conn net.Conn, msg string) (string, error) {
	if err := protocol.Send(conn, msg, c.cfg.Framing); err != nil {
		return "", err
	}
	return protocol.ReceiveResponse(conn, c.cfg.Framing)
}

// ctxConn desfaz o AfterFunc ao fechar
type ctxConn struct {
	net.Conn
	stop func() bool
}

func (c *ctxConn) Close() error {
	c.stop()
	return c.Conn.Close()
}
