package lottery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BirthDateLayout é o formato ISO das datas de nascimento no protocolo e no armazenamento
const BirthDateLayout = "2006-01-02"

// BetFieldCount é a quantidade de campos de uma aposta no fio
const BetFieldCount = 6

var ErrFieldCount = errors.New("unexpected number of bet fields")

// Bet é uma aposta de um apostador registrada por uma agência.
// É imutável depois de criada.
type Bet struct {
	AgencyID  int
	Document  string
	FirstName string
	LastName  string
	BirthDate time.Time
	Number    int
}

// ParseBet monta uma aposta a partir dos campos na ordem do fio:
// agencyId, document, firstName, lastName, birthDate, number
func ParseBet(fields []string) (Bet, error) {
	if len(fields) != BetFieldCount {
		return Bet{}, fmt.Errorf("%w: want %d, got %d", ErrFieldCount, BetFieldCount, len(fields))
	}

	agencyID, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Bet{}, fmt.Errorf("agency id %q: %w", fields[0], err)
	}
	birth, err := time.Parse(BirthDateLayout, strings.TrimSpace(fields[4]))
	if err != nil {
		return Bet{}, fmt.Errorf("birth date %q: %w", fields[4], err)
	}
	number, err := strconv.Atoi(strings.TrimSpace(fields[5]))
	if err != nil {
		return Bet{}, fmt.Errorf("number %q: %w", fields[5], err)
	}

	return Bet{
		AgencyID:  agencyID,
		Document:  fields[1],
		FirstName: fields[2],
		LastName:  fields[3],
		BirthDate: birth,
		Number:    number,
	}, nil
}

// WireFields devolve os campos na mesma ordem aceita por ParseBet
func (b Bet) WireFields() []string {
	return []string{
		strconv.Itoa(b.AgencyID),
		b.Document,
		b.FirstName,
		b.LastName,
		b.BirthDate.Format(BirthDateLayout),
		strconv.Itoa(b.Number),
	}
}

// String serializa a aposta como grupo separado por vírgulas
func (b Bet) String() string {
	return strings.Join(b.WireFields(), ",")
}
