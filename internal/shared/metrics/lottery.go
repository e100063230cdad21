package metrics

import "github.com/prometheus/client_golang/prometheus"

// Lottery agrupa as métricas do servidor de apostas
type Lottery struct {
	BetsStored        prometheus.Counter
	Batches           prometheus.Counter
	Sessions          prometheus.Counter
	WinnersQueries    *prometheus.CounterVec // label result: "processing" | "served"
	Errors            *prometheus.CounterVec // label stage
	AgenciesCompleted prometheus.Gauge
}

// NewLottery cria e registra as métricas no registerer informado
func NewLottery(reg prometheus.Registerer) *Lottery {
	m := &Lottery{
		BetsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lottery_bets_stored_total", Help: "apostas persistidas",
		}),
		Batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lottery_batches_total", Help: "lotes persistidos",
		}),
		Sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lottery_sessions_total", Help: "conexões atendidas",
		}),
		WinnersQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lottery_winners_queries_total", Help: "consultas de ganhadores por resultado",
		}, []string{"result"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lottery_errors_total", Help: "erros por estágio",
		}, []string{"stage"}),
		AgenciesCompleted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lottery_agencies_completed", Help: "agências que já enviaram DONE",
		}),
	}
	reg.MustRegister(m.BetsStored, m.Batches, m.Sessions, m.WinnersQueries, m.Errors, m.AgenciesCompleted)
	return m
}
