package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/lottery-agency-poc/internal/lottery-server/producer"
	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
	"github.com/radieske/lottery-agency-poc/internal/shared/protocol"
	"github.com/radieske/lottery-agency-poc/pkg/contracts/events"
)

// Outcome é o resultado de uma rodada do protocolo
type Outcome int

const (
	Continue Outcome = iota // espera a próxima mensagem na mesma conexão
	Done                    // sessão encerrada; quem chamou fecha a conexão
)

type BetStore interface {
	Persist(ctx context.Context, batch []lottery.Bet) error
}

type Barrier interface {
	MarkAgencyComplete() (completed, expected int)
	IsSatisfied() bool
}

type WinnerResolver interface {
	WinnersFor(ctx context.Context, agencyID int) ([]string, error)
}

const publishTimeout = 500 * time.Millisecond

// Handler executa o protocolo de uma conexão: lotes de apostas até um DONE ou uma consulta de ganhadores.
// Callbacks de métricas são opcionais.
type Handler struct {
	Log       *zap.Logger
	Framing   protocol.Framing
	Store     BetStore
	Barrier   Barrier
	Winners   WinnerResolver
	Publisher producer.Publisher
	HasWon    lottery.Predicate // só para contar acertos no evento de lote

	OnBatchStored func(bets int)      // métricas
	OnAgencyDone  func(completed int) // métricas
	OnWinners     func(ready bool)    // métricas: false = PROCESSING
	OnError       func(stage string)  // métricas por fase
}

// Serve roda as rodadas até Done ou erro. Erros de transporte e de protocolo
// encerram a sessão sem nenhuma tentativa de ressincronizar.
func (h *Handler) Serve(ctx context.Context, conn io.ReadWriter, peer string) error {
	log := h.Log.With(zap.String("session_id", uuid.NewString()), zap.String("peer", peer))
	r := protocol.NewReader(conn, h.Framing)

	log.Info("session started", zap.String("action", "receive_message"), zap.String("result", "in_progress"))
	for rounds := 1; ; rounds++ {
		outcome, err := h.round(ctx, r, conn, log)
		if err != nil {
			log.Error("session aborted",
				zap.String("action", "receive_message"),
				zap.String("result", "fail"),
				zap.Int("round", rounds),
				zap.Error(err),
			)
			return err
		}
		if outcome == Done {
			log.Info("session finished", zap.Int("rounds", rounds))
			return nil
		}
	}
}

// round recebe uma mensagem, despacha e responde
func (h *Handler) round(ctx context.Context, r *protocol.Reader, w io.Writer, log *zap.Logger) (Outcome, error) {
	msg, err := r.Receive()
	if err != nil {
		h.fail(stageOf(err, "receive"))
		return Done, err
	}

	if msg.Kind == protocol.KindControl {
		return h.handleControl(ctx, msg.Text, w, log)
	}
	return h.handleBatch(ctx, msg.Text, w, log)
}

func (h *Handler) handleBatch(ctx context.Context, text string, w io.Writer, log *zap.Logger) (Outcome, error) {
	bets, err := protocol.DecodeBatch(text, h.Framing)
	if err != nil {
		h.fail("decode")
		return Done, err
	}

	if err := h.Store.Persist(ctx, bets); err != nil {
		h.fail("persist")
		return Done, err
	}
	if h.OnBatchStored != nil {
		h.OnBatchStored(len(bets))
	}

	agencyID := 0
	if len(bets) > 0 {
		agencyID = bets[0].AgencyID
	}
	log.Info("batch stored",
		zap.String("action", "apuestas_almacenadas"),
		zap.String("result", "success"),
		zap.Int("agency_id", agencyID),
		zap.Int("count", len(bets)),
	)
	// resposta primeiro: o evento nunca atrasa o ACK
	sendErr := h.send(w, h.Framing.AckResponse())
	h.publish(ctx, log, func(ctx context.Context) error {
		return h.Publisher.PublishBetsStored(ctx, events.BetsStored{
			AgencyID:   agencyID,
			Count:      len(bets),
			WinnersHit: h.countWinners(bets),
			TsUnixMs:   time.Now().UnixMilli(),
		})
	})
	if sendErr != nil {
		return Done, sendErr
	}
	return Continue, nil
}

func (h *Handler) handleControl(ctx context.Context, text string, w io.Writer, log *zap.Logger) (Outcome, error) {
	ctrl, err := protocol.DecodeControl(text, h.Framing)
	if err != nil {
		h.fail("decode")
		return Done, err
	}

	switch ctrl.Action {
	case protocol.ActionDone:
		completed, expected := h.Barrier.MarkAgencyComplete()
		if h.OnAgencyDone != nil {
			h.OnAgencyDone(completed)
		}
		log.Info("agency finished sending bets",
			zap.String("action", "fin_apuestas"),
			zap.String("result", "success"),
			zap.Int("completed", completed),
			zap.Int("expected", expected),
		)
		sendErr := h.send(w, h.Framing.AckResponse())
		h.publish(ctx, log, func(ctx context.Context) error {
			return h.Publisher.PublishAgencyCompleted(ctx, events.AgencyCompleted{
				Completed: completed,
				Expected:  expected,
				Satisfied: completed >= expected,
				TsUnixMs:  time.Now().UnixMilli(),
			})
		})
		return Done, sendErr

	case protocol.ActionQueryWinners:
		if !h.Barrier.IsSatisfied() {
			if h.OnWinners != nil {
				h.OnWinners(false)
			}
			log.Debug("winners requested before draw", zap.Int("agency_id", ctrl.AgencyID))
			return Done, h.send(w, h.Framing.ProcessingResponse())
		}

		documents, err := h.Winners.WinnersFor(ctx, ctrl.AgencyID)
		if err != nil {
			h.fail("winners")
			return Done, fmt.Errorf("winners for agency %d: %w", ctrl.AgencyID, err)
		}
		if h.OnWinners != nil {
			h.OnWinners(true)
		}
		log.Info("winners served",
			zap.String("action", "sorteo"),
			zap.String("result", "success"),
			zap.Int("agency_id", ctrl.AgencyID),
			zap.Int("winners", len(documents)),
		)
		sendErr := h.send(w, h.Framing.WinnersResponse(documents))
		h.publish(ctx, log, func(ctx context.Context) error {
			return h.Publisher.PublishWinnersServed(ctx, events.WinnersServed{
				AgencyID: ctrl.AgencyID,
				Winners:  len(documents),
				TsUnixMs: time.Now().UnixMilli(),
			})
		})
		return Done, sendErr
	}

	// DecodeControl só devolve ações conhecidas
	return Done, &protocol.Error{Op: "dispatch control", Fragment: ctrl.Action.String()}
}

func (h *Handler) send(w io.Writer, response string) error {
	if err := protocol.Send(w, response, h.Framing); err != nil {
		h.fail("send")
		return err
	}
	return nil
}

// publish é best-effort: falha só vira log e métrica.
// Em produção o Publisher é um producer.Async, então aqui só se enfileira.
func (h *Handler) publish(ctx context.Context, log *zap.Logger, fn func(context.Context) error) {
	if h.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		log.Warn("event publish failed", zap.Error(err))
		h.fail("publish")
	}
}

func (h *Handler) countWinners(bets []lottery.Bet) int {
	if h.HasWon == nil {
		return 0
	}
	n := 0
	for _, b := range bets {
		if h.HasWon(b) {
			n++
		}
	}
	return n
}

func (h *Handler) fail(stage string) {
	if h.OnError != nil {
		h.OnError(stage)
	}
}

// stageOf separa erro de protocolo (mensagem grande demais) de falha de transporte
func stageOf(err error, fallback string) string {
	if errors.Is(err, protocol.ErrProtocol) {
		return "decode"
	}
	return fallback
}
