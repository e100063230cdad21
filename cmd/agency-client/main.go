package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	agencyclient "github.com/radieske/lottery-agency-poc/internal/agency-client"
	"github.com/radieske/lottery-agency-poc/internal/shared/config"
	"github.com/radieske/lottery-agency-poc/internal/shared/logger"
	"github.com/radieske/lottery-agency-poc/internal/shared/metrics"
	"github.com/radieske/lottery-agency-poc/internal/shared/protocol"
)

func main() {
	configPath := pflag.String("config", "", "arquivo YAML de configuração (sobrescrito pelas variáveis de ambiente)")
	dataset := pflag.String("dataset", "", "CSV da agência (padrão: <dataset_dir>/agency-<id>.csv)")
	pflag.Parse()

	if os.Getenv("SERVICE_NAME") == "" {
		_ = os.Setenv("SERVICE_NAME", "agency-client")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	path := *dataset
	if path == "" {
		path = agencyclient.DatasetPath(cfg.DatasetDir, cfg.AgencyID)
	}
	log.Info("config loaded",
		zap.String("server_address", cfg.ServerAddress),
		zap.Int("agency_id", cfg.AgencyID),
		zap.String("dataset", path),
		zap.Int("batch_max_amount", cfg.BatchMaxAmount),
		zap.Duration("poll_max_wait", cfg.PollMaxWait),
	)

	reg := prometheus.NewRegistry()
	m := metrics.NewAgency(reg)
	// Cliente só expõe /metrics se METRICS_PORT_CLIENT estiver definido
	if cfg.MetricsPort != "" {
		msrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, nil)
		defer msrv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := agencyclient.New(agencyclient.Config{
		ServerAddress:  cfg.ServerAddress,
		AgencyID:       cfg.AgencyID,
		DatasetPath:    path,
		BatchMaxAmount: cfg.BatchMaxAmount,
		PollMaxWait:    cfg.PollMaxWait,
		Framing: protocol.Framing{
			EndBatch:        cfg.EndBatchMarker,
			AllDone:         cfg.AllDoneMarker,
			Ack:             cfg.Ack,
			BetDelimiter:    cfg.BetDelimiter,
			PacketLimit:     cfg.PacketLimit,
			MaxMessageBytes: cfg.MaxMessageBytes,
		},
	}, log)
	client.OnBatchSent = func(bets int) {
		m.BatchesSent.Inc()
		m.BetsSent.Add(float64(bets))
	}
	client.OnPoll = func(ready bool) {
		if ready {
			m.WinnerPolls.WithLabelValues("served").Inc()
			return
		}
		m.WinnerPolls.WithLabelValues("processing").Inc()
	}

	winners, err := client.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("signal received, client stopped", zap.Error(err))
			return
		}
		log.Fatal("agency client failed", zap.Error(err))
	}
	log.Info("draw finished",
		zap.Int("winners", len(winners)),
		zap.String("documents", strings.Join(winners, ",")),
	)
}
