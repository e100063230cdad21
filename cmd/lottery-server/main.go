package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/lottery-agency-poc/internal/lottery-server/barrier"
	"github.com/radieske/lottery-agency-poc/internal/lottery-server/producer"
	"github.com/radieske/lottery-agency-poc/internal/lottery-server/repo"
	"github.com/radieske/lottery-agency-poc/internal/lottery-server/server"
	"github.com/radieske/lottery-agency-poc/internal/lottery-server/session"
	"github.com/radieske/lottery-agency-poc/internal/lottery-server/store"
	"github.com/radieske/lottery-agency-poc/internal/lottery-server/winners"
	sharedcache "github.com/radieske/lottery-agency-poc/internal/shared/cache"
	"github.com/radieske/lottery-agency-poc/internal/shared/config"
	"github.com/radieske/lottery-agency-poc/internal/shared/db"
	"github.com/radieske/lottery-agency-poc/internal/shared/logger"
	"github.com/radieske/lottery-agency-poc/internal/shared/lottery"
	"github.com/radieske/lottery-agency-poc/internal/shared/metrics"
	"github.com/radieske/lottery-agency-poc/internal/shared/protocol"
)

func main() {
	configPath := pflag.String("config", "", "arquivo YAML de configuração (sobrescrito pelas variáveis de ambiente)")
	pflag.Parse()

	if os.Getenv("SERVICE_NAME") == "" {
		_ = os.Setenv("SERVICE_NAME", "lottery-server")
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

	log.Info("config loaded",
		zap.String("port", cfg.Port),
		zap.Int("agencies", cfg.Agencies),
		zap.String("storage", cfg.Storage),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx := context.Background()
	var healthChecks []metrics.HealthFunc

	// Persistência: arquivo CSV, Postgres ou memória
	var persistence store.Persistence
	switch cfg.Storage {
	case "postgres":
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("postgres connect", zap.Error(err))
		}
		defer pg.Close()

		pgRepo := repo.NewPostgres(pg)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			log.Fatal("postgres schema", zap.Error(err))
		}
		persistence = pgRepo
		healthChecks = append(healthChecks, pingPostgres(pg))
	case "memory":
		persistence = repo.NewMemory()
	case "file":
		persistence = repo.NewFile(cfg.BetsFile)
	default:
		log.Fatal("unknown storage backend", zap.String("storage", cfg.Storage))
	}

	// Publicação de eventos (opcional): Kafka e/ou Redis Pub/Sub
	publishers := producer.Multi{}
	if cfg.KafkaBrokers != "" {
		kp := producer.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicBetsStored, cfg.TopicAgencyCompleted, cfg.TopicWinnersServed)
		defer kp.Close()
		publishers = append(publishers, kp)
	}
	if cfg.RedisAddr != "" {
		rdb, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		publishers = append(publishers, producer.NewRedisBroadcaster(rdb, cfg.RedisProgressChannel))
		healthChecks = append(healthChecks, pingRedis(rdb))
	}

	// Métricas Prometheus para monitoramento das sessões
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewLottery(reg)

	// Sessões só enfileiram eventos; a entrega ao broker acontece numa goroutine à parte
	var publisher producer.Publisher = producer.Nop{}
	if len(publishers) > 0 {
		async := producer.NewAsync(publishers, log, cfg.PublishQueue, cfg.PublishTimeout)
		async.OnError = func() { m.Errors.WithLabelValues("deliver").Inc() }
		defer async.Close()
		publisher = async
	}
	if cfg.MetricsPort != "" {
		msrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, func(ctx context.Context) error {
			for _, check := range healthChecks {
				if err := check(ctx); err != nil {
					return err
				}
			}
			return nil
		})
		defer msrv.Close()
		log.Info("metrics/health", zap.String("addr", msrv.Addr))
	}

	framing := protocol.Framing{
		EndBatch:        cfg.EndBatchMarker,
		AllDone:         cfg.AllDoneMarker,
		Ack:             cfg.Ack,
		BetDelimiter:    cfg.BetDelimiter,
		PacketLimit:     cfg.PacketLimit,
		MaxMessageBytes: cfg.MaxMessageBytes,
	}
	hasWon := lottery.WinningNumber(cfg.WinningNumber)
	bets := store.New(persistence, hasWon)
	completion := barrier.New(cfg.Agencies)

	handler := &session.Handler{
		Log:       log,
		Framing:   framing,
		Store:     bets,
		Barrier:   completion,
		Winners:   winners.NewResolver(bets),
		Publisher: publisher,
		HasWon:    hasWon,

		OnBatchStored: func(n int) {
			m.Batches.Inc()
			m.BetsStored.Add(float64(n))
		},
		OnAgencyDone: func(completed int) { m.AgenciesCompleted.Set(float64(completed)) },
		OnWinners: func(ready bool) {
			if ready {
				m.WinnersQueries.WithLabelValues("served").Inc()
				return
			}
			m.WinnersQueries.WithLabelValues("processing").Inc()
		},
		OnError: func(stage string) { m.Errors.WithLabelValues(stage).Inc() },
	}

	srv := server.New(server.Config{
		Addr:          ":" + cfg.Port,
		ListenBacklog: cfg.ListenBacklog,
		Workers:       cfg.Agencies + cfg.WorkerSlack,
	}, log, handler)
	srv.OnSession = m.Sessions.Inc

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM): fecha o listener, sessões em andamento terminam
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("signal received, shutting down server")
		srv.Shutdown()
		return nil
	})
	g.Go(func() error {
		err := srv.Run(ctx)
		// Run só volta sozinho em erro; garante que o watcher do sinal também termine
		stop()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
	log.Info("lottery-server stopped")
}

func pingPostgres(pg *sql.DB) metrics.HealthFunc {
	return func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		return nil
	}
}

func pingRedis(rdb *redis.Client) metrics.HealthFunc {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}
}
