package protocol

import (
	"io"
)

// SendAll escreve o payload em pedaços de até limit bytes, repetindo até tudo ser transmitido.
// Escritas parciais continuam do ponto em que pararam.
func SendAll(w io.Writer, payload []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultPacketLimit
	}
	for sent := 0; sent < len(payload); {
		end := min(sent+limit, len(payload))
		n, err := w.Write(payload[sent:end])
		sent += n
		if err != nil {
			return transportErr("send", err)
		}
		if n == 0 {
			return transportErr("send", io.ErrShortWrite)
		}
	}
	return nil
}

// Send codifica a resposta e envia respeitando o PacketLimit do framing
func Send(w io.Writer, response string, f Framing) error {
	return SendAll(w, Encode(response), f.packetLimit())
}

// Encode converte uma resposta textual para bytes do fio
func Encode(response string) []byte {
	return []byte(response)
}
