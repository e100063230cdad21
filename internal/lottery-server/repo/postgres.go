package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
)

const schema = `
	CREATE TABLE IF NOT EXISTS bets (
	  id         BIGSERIAL PRIMARY KEY,
	  agency_id  INTEGER NOT NULL,
	  document   TEXT    NOT NULL,
	  first_name TEXT    NOT NULL,
	  last_name  TEXT    NOT NULL,
	  birth_date DATE    NOT NULL,
	  number     INTEGER NOT NULL,
	  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Postgres implementa a persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// EnsureSchema cria a tabela bets se ainda não existir
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create bets table: %w", err)
	}
	return nil
}

// Append insere o lote com COPY dentro de uma transação: ou entra tudo ou nada
func (p *Postgres) Append(ctx context.Context, bets []lottery.Bet) error {
	if len(bets) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("bets",
		"agency_id", "document", "first_name", "last_name", "birth_date", "number"))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}

	for _, b := range bets {
		if _, err := stmt.ExecContext(ctx, b.AgencyID, b.Document, b.FirstName, b.LastName, b.BirthDate, b.Number); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy bet: %w", err)
		}
	}
	// Exec sem argumentos faz o flush do COPY
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}

	return tx.Commit()
}

// LoadAll retorna todas as apostas na ordem de inserção
func (p *Postgres) LoadAll(ctx context.Context) ([]lottery.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT agency_id, document, first_name, last_name, birth_date, number
		FROM bets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select bets: %w", err)
	}
	defer rows.Close()

	var out []lottery.Bet
	for rows.Next() {
		var b lottery.Bet
		if err := rows.Scan(&b.AgencyID, &b.Document, &b.FirstName, &b.LastName, &b.BirthDate, &b.Number); err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
