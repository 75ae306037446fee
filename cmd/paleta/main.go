package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/paleta/internal/config"
	"github.com/pribylovaa/paleta/internal/metrics"
	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/notify"
	"github.com/pribylovaa/paleta/internal/ratelimit"
	"github.com/pribylovaa/paleta/internal/service"
	"github.com/pribylovaa/paleta/internal/storage/postgres"
	httpapi "github.com/pribylovaa/paleta/internal/transport/http"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("postgres_connected")

	if cfg.DB.Migrate {
		migrateCtx, migrateCancel := context.WithTimeout(rootCtx, time.Minute)
		err := str.Migrate(migrateCtx)
		migrateCancel()
		if err != nil {
			log.Error("migrations_failed", slog.String("err", err.Error()))
			rootCancel()
			str.Close()
			os.Exit(1)
		}
		log.Info("migrations_applied")
	}

	// Лимитер: без Redis ограничения отключены.
	var limiter ratelimit.Limiter = ratelimit.Noop{}
	var rl *ratelimit.Redis
	if cfg.Redis.RedisURL != "" {
		redisCtx, redisCancel := context.WithTimeout(rootCtx, 5*time.Second)
		rl, err = ratelimit.NewRedis(redisCtx, cfg.Redis.RedisURL, "")
		redisCancel()
		if err != nil {
			log.Error("redis_connect_failed", slog.String("err", err.Error()))
			rootCancel()
			str.Close()
			os.Exit(1)
		}
		limiter = rl
		log.Info("redis_connected")
	} else {
		log.Warn("rate_limiter_disabled")
	}

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("metrics_register_failed", slog.String("err", err.Error()))
		rootCancel()
		str.Close()
		os.Exit(1)
	}

	// Сервис.
	srvc, err := service.New(str, cfg,
		service.WithLimiter(limiter),
		service.WithSender(setupSender(cfg.Notify, log)),
		service.WithMetrics(m),
	)
	if err != nil {
		log.Error("service_init_failed", slog.String("err", err.Error()))
		rootCancel()
		str.Close()
		os.Exit(1)
	}
	log.Info("service_initialized")

	var ready atomic.Bool
	httpAddr := cfg.HTTP.Addr()

	httpSrv := &http.Server{
		Addr: httpAddr,
		Handler: httpapi.NewRouter(srvc, httpapi.Options{
			Logger:   log,
			Timeout:  cfg.Timeouts.Service,
			Metrics:  m,
			Gatherer: prometheus.DefaultGatherer,
			Ready:    &ready,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Фоновая очистка отработанных кодов сброса.
	startResetCodeJanitor(rootCtx, srvc, log, cfg.Timeouts.Janitor, cfg.Auth.ResetRetention())

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	ready.Store(false)

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	} else {
		log.Info("http_stopped")
	}

	// Явная очистка перед выходом.
	shutdownCancel()
	rootCancel()
	if rl != nil {
		_ = rl.Close()
	}
	str.Close()

	log.Info("service_stopped")
	os.Exit(0)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}

// setupSender выбирает доставку кодов: SMTP для e-mail, если он настроен,
// иначе запись в лог. SMS-шлюза нет, коды для телефона только логируются.
func setupSender(cfg config.NotifyConfig, log *slog.Logger) notify.Sender {
	var email notify.Sender = notify.Log{}
	if cfg.SMTPHost != "" {
		email = notify.NewSMTP(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
		})
		log.Info("smtp_sender_enabled", slog.String("host", cfg.SMTPHost))
	}

	return notify.ByChannel{
		models.ChannelEmail: email,
		models.ChannelPhone: notify.Log{},
	}
}

// startResetCodeJanitor запускает фоновую задачу, которая периодически удаляет
// коды сброса, истёкшие или использованные раньше now-retention.
func startResetCodeJanitor(ctx context.Context, svc *service.Service, log *slog.Logger, period, retention time.Duration) {
	if period <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := svc.CleanupResetCodes(ctx, time.Now().UTC().Add(-retention))
				if err != nil {
					log.Error("reset_code_janitor_failed", slog.String("err", err.Error()))
					continue
				}
				if n > 0 {
					log.Debug("reset_codes_deleted", slog.Int64("count", n))
				}
			}
		}
	}()
}
