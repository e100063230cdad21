package protocol

import (
	"errors"
	"strconv"
	"strings"

	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
)

// Action é a ação de uma mensagem de controle
type Action int

const (
	ActionDone Action = iota + 1 // agência terminou de enviar apostas
	ActionQueryWinners           // agência pede os ganhadores
)

func (a Action) String() string {
	switch a {
	case ActionDone:
		return "DONE"
	case ActionQueryWinners:
		return ActionWinners
	default:
		return "UNKNOWN"
	}
}

// Control é uma mensagem de controle já interpretada
type Control struct {
	Action   Action
	AgencyID int // só em ActionQueryWinners
}

// DecodeBatch interpreta um lote inteiro ou falha sem devolver nenhuma aposta.
// Grupos vazios (delimitador no final) são ignorados.
func DecodeBatch(text string, f Framing) ([]lottery.Bet, error) {
	body := strings.TrimSuffix(text, f.EndBatch)

	var bets []lottery.Bet
	for _, group := range strings.Split(body, f.BetDelimiter) {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		bet, err := lottery.ParseBet(strings.Split(group, FieldSeparator))
		if err != nil {
			return nil, &Error{Op: "decode batch", Fragment: group, Err: err}
		}
		bets = append(bets, bet)
	}
	return bets, nil
}

// DecodeControl lê o token de ação antes do primeiro "|".
// O token igual ao ACK é DONE; WINNERS exige o agencyId como argumento.
func DecodeControl(text string, f Framing) (Control, error) {
	parts := strings.Split(strings.TrimSpace(text), ControlSeparator)
	action := strings.TrimSpace(parts[0])

	switch action {
	case f.Ack:
		return Control{Action: ActionDone}, nil
	case ActionWinners:
		if len(parts) < 2 {
			return Control{}, &Error{Op: "decode control", Fragment: text, Err: errors.New("missing agency id")}
		}
		agencyID, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return Control{}, &Error{Op: "decode control", Fragment: text, Err: err}
		}
		return Control{Action: ActionQueryWinners, AgencyID: agencyID}, nil
	default:
		return Control{}, &Error{Op: "decode control", Fragment: action, Err: errors.New("unknown action")}
	}
}

// ParseWinnersResponse é o lado cliente da consulta.
// ready=false significa PROCESSING: o sorteio ainda não terminou.
func ParseWinnersResponse(resp string, f Framing) (documents []string, ready bool, err error) {
	parts := strings.Split(strings.TrimSuffix(resp, f.Ack), ControlSeparator)
	switch parts[0] {
	case ActionProcessing:
		return nil, false, nil
	case ActionWinners:
		if len(parts) < 2 || parts[1] == "" {
			return []string{}, true, nil
		}
		return strings.Split(parts[1], FieldSeparator), true, nil
	default:
		return nil, false, &Error{Op: "parse winners response", Fragment: resp, Err: errors.New("unexpected response")}
	}
}
