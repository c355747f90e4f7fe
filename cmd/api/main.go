package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httpadp "loan-marketplace/internal/adapter/http"
	"loan-marketplace/internal/adapter/middleware"
	"loan-marketplace/internal/adapter/repository/memory"
	"loan-marketplace/internal/adapter/repository/mysql"
	"loan-marketplace/internal/adapter/repository/redisrepo"
	"loan-marketplace/internal/config"
	"loan-marketplace/internal/infrastructure/cache"
	"loan-marketplace/internal/infrastructure/db"
	"loan-marketplace/internal/infrastructure/logging"
	"loan-marketplace/internal/infrastructure/metrics"
	"loan-marketplace/internal/store"
	"loan-marketplace/internal/usecase/analytics"
	"loan-marketplace/internal/usecase/application"
	"loan-marketplace/internal/usecase/approval"
	"loan-marketplace/internal/usecase/offer"
	"loan-marketplace/internal/usecase/payment"
	"loan-marketplace/internal/usecase/user"
	"loan-marketplace/internal/worker"

	loanuc "loan-marketplace/internal/usecase/loan"
)

func main() {
	log, err := logging.NewLoggerFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(log)
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Fatal("api stopped", zap.Error(err))
	}
}

func run(log *logging.Logger) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// redis is optional unless it is the store backend
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		c, err := cache.OpenRedis(cache.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer c.Close()
		rdb = c
	}

	backend, err := openBackend(ctx, cfg, rdb)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewPrometheusCollector(cfg.MetricsNamespace)
	if err := collector.Register(reg); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	st := store.New(backend, store.Options{MaxRetries: cfg.StoreMaxRetries, Metrics: collector, Logger: log})
	if cfg.SeedDemo {
		var seeded bool
		err := st.WithinTx(ctx, func(d *store.Database) error {
			seeded = store.SeedDemo(d, time.Now())
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if seeded {
			log.Info("demo data seeded")
		}
	}

	uc := httpadp.Usecases{
		Users:        user.NewUsecase(st),
		Offers:       offer.NewUsecase(st),
		Applications: application.NewUsecase(st),
		Approvals:    approval.NewUsecase(st),
		Loans:        loanuc.NewUsecase(st),
		Payments:     payment.NewUsecase(st),
		Analytics:    analytics.NewUsecase(st),
	}
	storeCheck := func(ctx context.Context) error {
		return st.View(ctx, func(*store.Database) error { return nil })
	}
	rc := httpadp.RouterConfig{
		Usecases:    uc,
		Logger:      log,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		HealthCheck: storeCheck,
	}
	if rdb != nil {
		rc.Idempotency = middleware.Idempotency(rdb, middleware.IdempotencyConfig{
			TTL:    cfg.IdempotencyTTL(),
			Prefix: cfg.StoreKey + ":idemp",
		})
	}
	e := httpadp.NewRouter(rc)

	sched := worker.NewScheduler(worker.NewPortfolioJob(uc.Analytics, collector), cfg.PortfolioSchedule)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr), zap.String("store", backend.Name()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		<-sched.Stop().Done()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	<-sched.Stop().Done()
	return shutdown(shutdownCtx, e)
}

func shutdown(ctx context.Context, e *echo.Echo) error {
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, rdb *redis.Client) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		return redisrepo.New(rdb, redisrepo.Config{Key: cfg.StoreKey + ":db"}), nil
	case config.BackendMySQL, config.BackendSQLite:
		var (
			gdb *gorm.DB
			err error
		)
		if cfg.StoreBackend == config.BackendMySQL {
			gdb, err = db.OpenGorm(cfg.MySQLDSN())
		} else {
			gdb, err = db.OpenSQLite(cfg.SQLitePath)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.StoreBackend, err)
		}
		repo := mysql.NewSnapshotRepository(gdb, cfg.StoreKey)
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return repo, nil
	}
	return memory.New(), nil
}
