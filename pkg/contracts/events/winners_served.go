package events

type WinnersServed struct {
	AgencyID int   `json:"agency_id"`
	Winners  int   `json:"winners"`
	TsUnixMs int64 `json:"ts_unix_ms"`
}
