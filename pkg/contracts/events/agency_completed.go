package events

// Evento emitido quando uma agência avisa que terminou de enviar apostas.
type AgencyCompleted struct {
	Completed int   `json:"completed"`
	Expected  int   `json:"expected"`
	Satisfied bool  `json:"satisfied"` // true quando todas as agências terminaram
	TsUnixMs  int64 `json:"ts_unix_ms"`
}
