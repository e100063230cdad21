package repo

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
)

// File persiste as apostas num CSV com colunas
// agency, first_name, last_name, document, birthdate, number
type File struct {
	path string
	open func(path string) (appendFile, error)
}

// appendFile é o subconjunto de *os.File usado pelo Append
type appendFile interface {
	io.Writer
	Stat() (os.FileInfo, error)
	Truncate(size int64) error
	Close() error
}

func NewFile(path string) *File {
	return &File{path: path, open: openAppend}
}

func openAppend(path string) (appendFile, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Append monta o lote inteiro em memória e grava com uma única escrita.
// Se a escrita falhar no meio, o arquivo volta ao tamanho anterior: nunca fica linha pela metade.
func (f *File) Append(_ context.Context, bets []lottery.Bet) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, b := range bets {
		if err := w.Write(toRecord(b)); err != nil {
			return fmt.Errorf("encode bet: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode bets: %w", err)
	}

	file, err := f.open(f.path)
	if err != nil {
		return fmt.Errorf("open bets file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("stat bets file: %w", err)
	}

	if _, err := file.Write(buf.Bytes()); err != nil {
		if terr := file.Truncate(info.Size()); terr != nil {
			err = errors.Join(err, fmt.Errorf("rollback bets file: %w", terr))
		}
		_ = file.Close()
		return fmt.Errorf("write bets file: %w", err)
	}
	return file.Close()
}

// LoadAll lê o arquivo inteiro; arquivo inexistente é um conjunto vazio
func (f *File) LoadAll(_ context.Context) ([]lottery.Bet, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open bets file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 6
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read bets file: %w", err)
	}

	bets := make([]lottery.Bet, 0, len(records))
	for i, rec := range records {
		b, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("bets file line %d: %w", i+1, err)
		}
		bets = append(bets, b)
	}
	return bets, nil
}

func toRecord(b lottery.Bet) []string {
	return []string{
		strconv.Itoa(b.AgencyID),
		b.FirstName,
		b.LastName,
		b.Document,
		b.BirthDate.Format(lottery.BirthDateLayout),
		strconv.Itoa(b.Number),
	}
}

func fromRecord(rec []string) (lottery.Bet, error) {
	agencyID, err := strconv.Atoi(rec[0])
	if err != nil {
		return lottery.Bet{}, err
	}
	birth, err := time.Parse(lottery.BirthDateLayout, rec[4])
	if err != nil {
		return lottery.Bet{}, err
	}
	number, err := strconv.Atoi(rec[5])
	if err != nil {
		return lottery.Bet{}, err
	}
	return lottery.Bet{
		AgencyID:  agencyID,
		FirstName: rec[1],
		LastName:  rec[2],
		Document:  rec[3],
		BirthDate: birth,
		Number:    number,
	}, nil
}
