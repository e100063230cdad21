package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/lottery-agency-poc/internal/shared/db"
	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
)

// Precisa de um Postgres de verdade: POSTGRES_DSN=postgres://... go test ./...
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pg, err := db.ConnectPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Close() })

	p := NewPostgres(pg)
	require.NoError(t, p.EnsureSchema(ctx))
	// idempotente: o servidor roda isso a cada boot
	require.NoError(t, p.EnsureSchema(ctx))
	return p
}

func betsOf(bets []lottery.Bet, agencyID int) []lottery.Bet {
	var out []lottery.Bet
	for _, b := range bets {
		if b.AgencyID == agencyID {
			out = append(out, b)
		}
	}
	return out
}

func TestPostgresAppendAndLoad(t *testing.T) {
	p := newTestPostgres(t)
	ctx := context.Background()

	// agência única por execução para não depender do conteúdo da tabela
	agency := 100000 + int(time.Now().UnixNano()%900000)
	batch := sampleBets()
	for i := range batch {
		batch[i].AgencyID = agency
	}

	require.NoError(t, p.Append(ctx, nil))
	require.NoError(t, p.Append(ctx, batch[:1]))
	require.NoError(t, p.Append(ctx, batch[1:]))

	all, err := p.LoadAll(ctx)
	require.NoError(t, err)
	got := betsOf(all, agency)

	require.Len(t, got, 2)
	for i := range got {
		assert.Equal(t, batch[i].Document, got[i].Document)
		assert.Equal(t, batch[i].FirstName, got[i].FirstName)
		assert.Equal(t, batch[i].LastName, got[i].LastName)
		assert.Equal(t, batch[i].Number, got[i].Number)
		assert.True(t, batch[i].BirthDate.Equal(got[i].BirthDate), "birth date %s", got[i].BirthDate)
	}
}

func TestPostgresAppendCanceledStoresNothing(t *testing.T) {
	p := newTestPostgres(t)

	agency := 100000 + int(time.Now().UnixNano()%900000)
	batch := sampleBets()
	for i := range batch {
		batch[i].AgencyID = agency
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Append(ctx, batch))

	all, err := p.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, betsOf(all, agency))
}
