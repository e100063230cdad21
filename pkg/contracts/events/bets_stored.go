package events

// Evento emitido pelo lottery-server após persistir um lote de apostas.
type BetsStored struct {
	AgencyID   int   `json:"agency_id"`
	Count      int   `json:"count"`
	WinnersHit int   `json:"winners_hit"` // apostas do lote que já acertaram o número sorteado
	TsUnixMs   int64 `json:"ts_unix_ms"`
}
