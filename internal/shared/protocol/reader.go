package protocol

import (
	"bytes"
	"errors"
	"io"
)

// Kind indica qual marcador encerrou a mensagem
type Kind int

const (
	KindBatch Kind = iota
	KindControl
)

func (k Kind) String() string {
	if k == KindControl {
		return "control"
	}
	return "batch"
}

// RawMessage é o texto acumulado do socket até o primeiro marcador, marcador incluído
type RawMessage struct {
	Kind Kind
	Text string
}

// Reader acumula leituras de até PacketLimit bytes até encontrar um marcador.
// Bytes lidos depois do marcador ficam guardados para a próxima mensagem da mesma conexão.
type Reader struct {
	r       io.Reader
	f       Framing
	buf     []byte
	scanned int // prefixo de buf já procurado sem achar marcador
}

func NewReader(r io.Reader, f Framing) *Reader {
	return &Reader{r: r, f: f}
}

// Receive bloqueia até ter uma mensagem completa.
// Conexão encerrada antes do marcador é erro de transporte.
func (r *Reader) Receive() (RawMessage, error) {
	chunk := make([]byte, r.f.packetLimit())
	for {
		if msg, ok := r.cut(); ok {
			return msg, nil
		}
		if r.f.MaxMessageBytes > 0 && len(r.buf) > r.f.MaxMessageBytes {
			return RawMessage{}, &Error{Op: "receive", Fragment: preview(r.buf), Err: errors.New("message exceeds max_message_bytes")}
		}

		n, err := r.r.Read(chunk)
		if n > 0 {
			r.buf = append(r.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(r.buf) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return RawMessage{}, transportErr("receive", err)
		}
	}
}

// cut separa a mensagem terminada pelo marcador que aparece primeiro
func (r *Reader) cut() (RawMessage, bool) {
	from := r.scanned - max(len(r.f.EndBatch), len(r.f.AllDone)) + 1
	if from < 0 {
		from = 0
	}

	batchAt := indexFrom(r.buf, []byte(r.f.EndBatch), from)
	doneAt := indexFrom(r.buf, []byte(r.f.AllDone), from)

	var (
		kind Kind
		end  int
	)
	switch {
	case doneAt >= 0 && (batchAt < 0 || doneAt <= batchAt):
		kind, end = KindControl, doneAt+len(r.f.AllDone)
	case batchAt >= 0:
		kind, end = KindBatch, batchAt+len(r.f.EndBatch)
	default:
		r.scanned = len(r.buf)
		return RawMessage{}, false
	}

	msg := RawMessage{Kind: kind, Text: string(r.buf[:end])}
	r.buf = append(r.buf[:0], r.buf[end:]...)
	r.scanned = 0
	return msg, true
}

// Pending devolve quantos bytes já foram lidos e ainda não formam mensagem
func (r *Reader) Pending() int { return len(r.buf) }

func indexFrom(buf, sep []byte, from int) int {
	if from >= len(buf) {
		return -1
	}
	i := bytes.Index(buf[from:], sep)
	if i < 0 {
		return -1
	}
	return from + i
}

func preview(b []byte) string {
	const limit = 64
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}

// ReceiveResponse é o lado cliente: acumula até a resposta terminar com o ACK
func ReceiveResponse(r io.Reader, f Framing) (string, error) {
	var (
		resp  []byte
		chunk = make([]byte, f.packetLimit())
	)
	for !bytes.HasSuffix(resp, []byte(f.Ack)) {
		n, err := r.Read(chunk)
		resp = append(resp, chunk[:n]...)
		if err != nil && !bytes.HasSuffix(resp, []byte(f.Ack)) {
			if errors.Is(err, io.EOF) && len(resp) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return "", transportErr("receive response", err)
		}
	}
	return string(resp), nil
}
