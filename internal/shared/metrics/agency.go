package metrics

import "github.com/prometheus/client_golang/prometheus"

// Agency agrupa as métricas do cliente de uma agência
type Agency struct {
	BatchesSent prometheus.Counter
	BetsSent    prometheus.Counter
	WinnerPolls *prometheus.CounterVec // label result: "processing" | "served"
}

func NewAgency(reg prometheus.Registerer) *Agency {
	m := &Agency{
		BatchesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agency_batches_sent_total", Help: "lotes confirmados pelo servidor",
		}),
		BetsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agency_bets_sent_total", Help: "apostas confirmadas pelo servidor",
		}),
		WinnerPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agency_winner_polls_total", Help: "consultas de ganhadores por resposta",
		}, []string{"result"}),
	}
	reg.MustRegister(m.BatchesSent, m.BetsSent, m.WinnerPolls)
	return m
}
