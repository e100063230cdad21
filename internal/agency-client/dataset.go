package agencyclient

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
	"github.com/radieske/lottery-agency-poc/internal/shared/protocol"
)

// DatasetPath devolve o CSV da agência: <dir>/agency-<id>.csv
func DatasetPath(dir string, agencyID int) string {
	return filepath.Join(dir, fmt.Sprintf("agency-%d.csv", agencyID))
}

// BatchReader lê o dataset em lotes que respeitam a quantidade máxima de
// apostas e o tamanho máximo de pacote do protocolo.
// Linhas do CSV: first_name,last_name,document,birthdate,number
type BatchReader struct {
	r        *csv.Reader
	agencyID int
	maxBets  int
	framing  protocol.Framing
	pending  *lottery.Bet // aposta lida que não coube no lote anterior
	line     int
}

func NewBatchReader(r io.Reader, agencyID, maxBets int, f protocol.Framing) *BatchReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	cr.ReuseRecord = true
	if maxBets <= 0 {
		maxBets = 1
	}
	return &BatchReader{r: cr, agencyID: agencyID, maxBets: maxBets, framing: f}
}

// Next devolve o próximo lote; io.EOF quando o dataset acabou
func (br *BatchReader) Next() ([]lottery.Bet, error) {
	var (
		batch []lottery.Bet
		size  = br.framing.BatchSize(nil)
		limit = br.framing.PacketLimit
	)
	if limit <= 0 {
		limit = protocol.DefaultPacketLimit
	}

	for len(batch) < br.maxBets {
		bet, err := br.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		betSize := br.framing.BetSize(bet)
		if len(batch) > 0 && size+betSize > limit {
			br.pending = &bet
			break
		}
		batch = append(batch, bet)
		size += betSize
	}

	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

func (br *BatchReader) next() (lottery.Bet, error) {
	if br.pending != nil {
		b := *br.pending
		br.pending = nil
		return b, nil
	}

	rec, err := br.r.Read()
	if err != nil {
		return lottery.Bet{}, err
	}
	br.line++

	bet, err := lottery.ParseBet([]string{strconv.Itoa(br.agencyID), rec[2], rec[0], rec[1], rec[3], rec[4]})
	if err != nil {
		return lottery.Bet{}, fmt.Errorf("dataset line %d: %w", br.line, err)
	}
	return bet, nil
}
