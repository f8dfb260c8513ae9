package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"nameledger/internal/auth"
	"nameledger/internal/notify"
	"nameledger/internal/platform/config"
	"nameledger/internal/platform/httpserver"
	"nameledger/internal/platform/kafka"
	"nameledger/internal/platform/logger"
	platformmetrics "nameledger/internal/platform/metrics"
	platformredis "nameledger/internal/platform/redis"
	"nameledger/internal/registry/handler"
	registrymetrics "nameledger/internal/registry/metrics"
	"nameledger/internal/registry/service"
	"nameledger/internal/registry/store"
	addressstore "nameledger/internal/registry/store/address"
	domainstore "nameledger/internal/registry/store/domain"
	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/admin"
	authmw "nameledger/pkg/platform/middleware/auth"
	"nameledger/pkg/platform/middleware/contenttype"
	"nameledger/pkg/platform/middleware/latency"
	"nameledger/pkg/platform/middleware/metadata"
	"nameledger/pkg/platform/middleware/ratelimit"
	"nameledger/pkg/platform/middleware/recovery"
	request "nameledger/pkg/platform/middleware/request"
	"nameledger/pkg/platform/middleware/requestlog"
	"nameledger/pkg/platform/middleware/requesttime"
	"nameledger/pkg/platform/middleware/version"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var (
		db        *sql.DB
		addresses service.AddressStore
		domains   service.DomainStore
		notifier  service.Notifier
		relay     *notify.Relay
		svcOpts   []service.Option
	)

	if cfg.Postgres.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		if err := store.ApplySchema(ctx, db); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}

		addresses = addressstore.NewPostgres(db)
		domains = domainstore.NewPostgres(db)
		svcOpts = append(svcOpts, service.WithTx(newRegistryPostgresTx(db)))

		outbox := notify.NewPostgresOutbox(db)
		notifier = outbox
		if len(cfg.Kafka.Brokers) > 0 {
			producer, err := kafka.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
			if err != nil {
				return fmt.Errorf("connect kafka: %w", err)
			}
			defer producer.Close()
			if err := producer.EnsureTopic(ctx, 1, 1); err != nil {
				return fmt.Errorf("ensure topic %s: %w", cfg.Kafka.Topic, err)
			}
			relay = notify.NewRelay(outbox, producer, log)
			log.Info("notifications relayed to kafka", "topic", cfg.Kafka.Topic)
		} else {
			log.Warn("no kafka brokers configured, outbox entries stay unpublished")
		}
		log.Info("registry backed by postgres")
	} else {
		addresses = addressstore.NewMemory()
		domains = domainstore.NewMemory()
		notifier = notify.NewMemorySink()
		log.Warn("DATABASE_URL not set, registry state is in-memory and not durable")
	}

	svcOpts = append(svcOpts,
		service.WithLogger(log),
		service.WithMetrics(registrymetrics.New()),
	)
	if cfg.Registry.DomainPrice > 0 {
		svcOpts = append(svcOpts, service.WithPrice(cfg.Registry.DomainPrice))
	}
	svc := service.New(addresses, domains, notifier, svcOpts...)

	jwtService := auth.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var counter ratelimit.Counter
	if redisClient != nil {
		defer redisClient.Close()
		counter = ratelimit.NewRedisCounter(redisClient.Client)
		log.Info("rate limit counting backed by redis")
	} else {
		counter = ratelimit.NewMemoryCounter()
	}
	limiter := ratelimit.New(counter, cfg.RateLimit.Limit, cfg.RateLimit.Window, log,
		ratelimit.WithDisabled(!cfg.RateLimit.Enabled))

	h := handler.New(svc, log)

	r := chi.NewRouter()
	r.Use(recovery.Middleware(log))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(requestlog.Middleware(log))
	r.Use(latency.Middleware(platformmetrics.New()))

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(db, redisClient))
	if cfg.Admin.Token != "" {
		r.With(admin.RequireAdminToken(cfg.Admin.Token, log)).
			Get("/metrics", promhttp.Handler().ServeHTTP)
	} else {
		r.Get("/metrics", promhttp.Handler().ServeHTTP)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(version.ExtractVersion(id.APIVersionV1))
		v1.Use(contenttype.JSON)
		v1.Use(authmw.RequireAuth(auth.NewMiddlewareAdapter(jwtService), log))
		v1.Use(version.ValidateTokenVersion(log))
		v1.Use(limiter.Limit)
		h.Register(v1)
	})

	srv := httpserver.New(cfg.Server.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting nameledger", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("notification relay: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type healthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// handleHealthz is the liveness probe. It reports only that the process is up.
func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, &healthResponse{Status: "ok"})
}

// handleReadyz reports whether the process can serve traffic. Only the
// backends actually configured are checked.
func handleReadyz(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable,
					&healthResponse{Status: "unavailable", Reason: "postgres unreachable"})
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable,
					&healthResponse{Status: "unavailable", Reason: "redis unreachable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, &healthResponse{Status: "ready"})
	}
}
