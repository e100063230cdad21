package lottery

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBet(t *testing.T) {
	b, err := ParseBet([]string{"1", "30904465", "Santiago Lionel", "Lorca", "1999-03-17", "7574"})
	require.NoError(t, err)

	assert.Equal(t, 1, b.AgencyID)
	assert.Equal(t, "30904465", b.Document)
	assert.Equal(t, "Santiago Lionel", b.FirstName)
	assert.Equal(t, "Lorca", b.LastName)
	assert.Equal(t, time.Date(1999, time.March, 17, 0, 0, 0, 0, time.UTC), b.BirthDate)
	assert.Equal(t, 7574, b.Number)

	assert.Equal(t, "1,30904465,Santiago Lionel,Lorca,1999-03-17,7574", b.String())
}

func TestParseBetErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
	}{
		{"five fields", []string{"1", "2", "Juan", "Perez", "2000-01-01"}},
		{"seven fields", []string{"1", "2", "Juan", "Perez", "2000-01-01", "4521", "x"}},
		{"agency not numeric", []string{"a", "2", "Juan", "Perez", "2000-01-01", "4521"}},
		{"bad date", []string{"1", "2", "Juan", "Perez", "01/01/2000", "4521"}},
		{"number not numeric", []string{"1", "2", "Juan", "Perez", "2000-01-01", "n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBet(tt.fields)
			assert.Error(t, err)
		})
	}

	_, err := ParseBet([]string{"1"})
	assert.True(t, errors.Is(err, ErrFieldCount))
}

func TestWinningNumber(t *testing.T) {
	hasWon := WinningNumber(DefaultWinningNumber)

	assert.True(t, hasWon(Bet{Number: 7574}))
	assert.False(t, hasWon(Bet{Number: 4521}))
}
