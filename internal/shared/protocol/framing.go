package protocol

import (
	"strconv"
	"strings"

	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
)

// DefaultPacketLimit é o tamanho máximo de cada leitura/escrita no socket (8 KiB)
const DefaultPacketLimit = 8 * 1024

const (
	// ControlSeparator separa a ação dos argumentos nas mensagens de controle
	ControlSeparator = "|"
	// FieldSeparator separa os campos de uma aposta
	FieldSeparator = ","

	ActionWinners    = "WINNERS"
	ActionProcessing = "PROCESSING"
)

// Framing reúne os marcadores configuráveis do protocolo
type Framing struct {
	EndBatch        string // fim de lote, ex: "PING"
	AllDone         string // fim de mensagem de controle, ex: "PONG"
	Ack             string // resposta de confirmação e token da ação DONE
	BetDelimiter    string // separador entre apostas de um lote
	PacketLimit     int
	MaxMessageBytes int // 0 = acumula sem limite
}

// DefaultFraming devolve os valores canônicos do protocolo
func DefaultFraming() Framing {
	return Framing{
		EndBatch:     "PING",
		AllDone:      "PONG",
		Ack:          "PONG",
		BetDelimiter: "|",
		PacketLimit:  DefaultPacketLimit,
	}
}

func (f Framing) packetLimit() int {
	if f.PacketLimit <= 0 {
		return DefaultPacketLimit
	}
	return f.PacketLimit
}

// AckResponse confirma um lote ou um DONE
func (f Framing) AckResponse() string { return f.Ack }

// ProcessingResponse responde consultas feitas antes de todas as agências terminarem
func (f Framing) ProcessingResponse() string {
	return ActionProcessing + ControlSeparator + f.Ack
}

// WinnersResponse monta "WINNERS|doc1,doc2|<ACK>"
func (f Framing) WinnersResponse(documents []string) string {
	return ActionWinners + ControlSeparator + strings.Join(documents, FieldSeparator) + ControlSeparator + f.Ack
}

// EncodeBatch serializa um lote: cada aposta seguida do delimitador e, no final, o marcador de fim de lote
func (f Framing) EncodeBatch(bets []lottery.Bet) string {
	var sb strings.Builder
	for _, b := range bets {
		sb.WriteString(b.String())
		sb.WriteString(f.BetDelimiter)
	}
	sb.WriteString(f.EndBatch)
	return sb.String()
}

// DoneMessage é a mensagem que uma agência envia ao terminar: o próprio ACK
func (f Framing) DoneMessage() string {
	if strings.Contains(f.Ack, f.AllDone) {
		return f.Ack
	}
	return f.Ack + ControlSeparator + f.AllDone
}

// WinnersQuery monta "WINNERS|<agencyId>|<ALL_DONE>"
func (f Framing) WinnersQuery(agencyID int) string {
	return ActionWinners + ControlSeparator + strconv.Itoa(agencyID) + ControlSeparator + f.AllDone
}

// BatchSize devolve quantos bytes um lote com essas apostas ocupa no fio
func (f Framing) BatchSize(bets []lottery.Bet) int {
	n := len(f.EndBatch)
	for _, b := range bets {
		n += f.BetSize(b)
	}
	return n
}

// BetSize é o custo de uma aposta dentro do lote, delimitador incluído
func (f Framing) BetSize(b lottery.Bet) int {
	return len(b.String()) + len(f.BetDelimiter)
}
