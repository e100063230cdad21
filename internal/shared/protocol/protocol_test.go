package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
)

const scenarioBatch = "1,2,Juan,Perez,2000-01-01,4521|3,4,Ana,Gomez,1999-05-05,8843|PING"

func TestReceiveBatchAcrossChunks(t *testing.T) {
	f := DefaultFraming()
	r := NewReader(iotest.OneByteReader(strings.NewReader(scenarioBatch)), f)

	msg, err := r.Receive()
	require.NoError(t, err)
	assert.Equal(t, KindBatch, msg.Kind)
	assert.Equal(t, scenarioBatch, msg.Text)
	assert.Zero(t, r.Pending())
}

func TestReceiveKeepsBytesAfterMarker(t *testing.T) {
	f := DefaultFraming()
	r := NewReader(strings.NewReader("1,2,Juan,Perez,2000-01-01,4521|PINGWINNERS|1|PONG"), f)

	first, err := r.Receive()
	require.NoError(t, err)
	assert.Equal(t, KindBatch, first.Kind)
	assert.Equal(t, "1,2,Juan,Perez,2000-01-01,4521|PING", first.Text)

	second, err := r.Receive()
	require.NoError(t, err)
	assert.Equal(t, KindControl, second.Kind)
	assert.Equal(t, "WINNERS|1|PONG", second.Text)
}

func TestReceiveControl(t *testing.T) {
	r := NewReader(strings.NewReader("PONG"), DefaultFraming())

	msg, err := r.Receive()
	require.NoError(t, err)
	assert.Equal(t, KindControl, msg.Kind)
}

func TestReceivePeerClosedMidMessage(t *testing.T) {
	r := NewReader(strings.NewReader("1,2,Juan"), DefaultFraming())

	_, err := r.Receive()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestReceivePeerClosedBetweenMessages(t *testing.T) {
	r := NewReader(strings.NewReader(""), DefaultFraming())

	_, err := r.Receive()
	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, io.EOF))
}

func TestReceiveMaxMessageBytes(t *testing.T) {
	f := DefaultFraming()
	f.MaxMessageBytes = 16
	f.PacketLimit = 8
	r := NewReader(strings.NewReader(strings.Repeat("x", 64)+"PING"), f)

	_, err := r.Receive()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocol))
}

func TestDecodeBatch(t *testing.T) {
	bets, err := DecodeBatch(scenarioBatch, DefaultFraming())
	require.NoError(t, err)
	require.Len(t, bets, 2)

	assert.Equal(t, 1, bets[0].AgencyID)
	assert.Equal(t, "2", bets[0].Document)
	assert.Equal(t, "Juan", bets[0].FirstName)
	assert.Equal(t, 4521, bets[0].Number)
	assert.Equal(t, 3, bets[1].AgencyID)
	assert.Equal(t, "4", bets[1].Document)
	assert.Equal(t, 8843, bets[1].Number)
}

func TestDecodeBatchWrongFieldCount(t *testing.T) {
	bets, err := DecodeBatch("1,2,Juan,Perez,2000-01-01,4521|3,4,Ana,Gomez,1999-05-05|PING", DefaultFraming())
	require.Error(t, err)
	assert.Nil(t, bets)
	assert.True(t, errors.Is(err, ErrProtocol))
	assert.True(t, errors.Is(err, lottery.ErrFieldCount))

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "3,4,Ana,Gomez,1999-05-05", perr.Fragment)
}

func TestDecodeControl(t *testing.T) {
	f := DefaultFraming()

	c, err := DecodeControl("PONG", f)
	require.NoError(t, err)
	assert.Equal(t, ActionDone, c.Action)

	c, err = DecodeControl("WINNERS|3|PONG", f)
	require.NoError(t, err)
	assert.Equal(t, ActionQueryWinners, c.Action)
	assert.Equal(t, 3, c.AgencyID)

	for _, bad := range []string{"LOSERS|1|PONG", "WINNERS", "WINNERS|x|PONG"} {
		_, err := DecodeControl(bad, f)
		assert.True(t, errors.Is(err, ErrProtocol), bad)
	}
}

func TestResponses(t *testing.T) {
	f := DefaultFraming()

	assert.Equal(t, "PONG", f.AckResponse())
	assert.Equal(t, "PROCESSING|PONG", f.ProcessingResponse())
	assert.Equal(t, "WINNERS|2,4|PONG", f.WinnersResponse([]string{"2", "4"}))
	assert.Equal(t, "WINNERS||PONG", f.WinnersResponse(nil))
	assert.Equal(t, "WINNERS|7|PONG", f.WinnersQuery(7))
	assert.Equal(t, "PONG", f.DoneMessage())
}

func TestParseWinnersResponse(t *testing.T) {
	f := DefaultFraming()

	docs, ready, err := ParseWinnersResponse("PROCESSING|PONG", f)
	require.NoError(t, err)
	assert.False(t, ready)
	assert.Nil(t, docs)

	docs, ready, err = ParseWinnersResponse("WINNERS|2,4|PONG", f)
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, []string{"2", "4"}, docs)

	docs, ready, err = ParseWinnersResponse("WINNERS||PONG", f)
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Empty(t, docs)

	_, _, err = ParseWinnersResponse("OOPS|PONG", f)
	assert.True(t, errors.Is(err, ErrProtocol))
}

func TestEncodeBatchRoundTrip(t *testing.T) {
	f := DefaultFraming()
	bets, err := DecodeBatch(scenarioBatch, f)
	require.NoError(t, err)

	encoded := f.EncodeBatch(bets)
	assert.Equal(t, scenarioBatch, encoded)
	assert.Equal(t, len(scenarioBatch), f.BatchSize(bets))
	assert.Equal(t, len(f.EndBatch), f.BatchSize(nil))
	assert.Equal(t, len(bets[0].String())+len(f.BetDelimiter), f.BetSize(bets[0]))
}

// shortWriter aceita no máximo n bytes por chamada
type shortWriter struct {
	n     int
	calls int
	buf   bytes.Buffer
}

func (w *shortWriter) Write(p []byte) (int, error) {
	w.calls++
	if len(p) > w.n {
		p = p[:w.n]
	}
	return w.buf.Write(p)
}

func TestSendAllHandlesShortWrites(t *testing.T) {
	payload := []byte(strings.Repeat("abcdefghij", 10))
	w := &shortWriter{n: 7}

	require.NoError(t, SendAll(w, payload, 16))
	assert.Equal(t, payload, w.buf.Bytes())
	assert.Equal(t, 15, w.calls) // 100 bytes / 7 por chamada
}

func TestSendAllPropagatesWriteError(t *testing.T) {
	err := SendAll(errWriter{}, []byte("PONG"), 8)
	assert.True(t, errors.Is(err, ErrTransport))
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestReceiveResponse(t *testing.T) {
	f := DefaultFraming()

	resp, err := ReceiveResponse(iotest.OneByteReader(strings.NewReader("WINNERS|1,2|PONG")), f)
	require.NoError(t, err)
	assert.Equal(t, "WINNERS|1,2|PONG", resp)

	_, err = ReceiveResponse(strings.NewReader("PROCESS"), f)
	assert.True(t, errors.Is(err, ErrTransport))
}
