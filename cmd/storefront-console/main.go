package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pribylovaa/storefront-console/internal/config"
	"github.com/pribylovaa/storefront-console/internal/controller"
	"github.com/pribylovaa/storefront-console/internal/entity"
	"github.com/pribylovaa/storefront-console/internal/flash"
	consolehttp "github.com/pribylovaa/storefront-console/internal/http"
	"github.com/pribylovaa/storefront-console/internal/http/handlers"
	"github.com/pribylovaa/storefront-console/internal/metrics"
	"github.com/pribylovaa/storefront-console/internal/storefront"
	"github.com/pribylovaa/storefront-console/internal/upstream"
	"github.com/pribylovaa/storefront-console/internal/view"
)

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
	log.Info("starting storefront-console", "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	m := metrics.New()

	api, err := upstream.New(cfg.Upstream, log, m, nil)
	if err != nil {
		log.Error("upstream_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	store, err := flashStore(rootCtx, cfg.Redis)
	if err != nil {
		log.Error("flash_store_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	flasher := flash.New(store)
	defer func() {
		if cerr := flasher.Close(); cerr != nil {
			log.Warn("flash_store_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	proxy, err := handlers.Proxy(api.BaseURL())
	if err != nil {
		log.Error("proxy_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	reg := entity.MustDefault()
	h := handlers.New(
		controller.New(reg, api),
		storefront.New(reg, api),
		view.MustRenderer(),
		flasher,
	)

	consoleHandler := consolehttp.NewRouter(h, consolehttp.Options{
		Logger:   log,
		Timeout:  cfg.Timeouts.Service,
		Metrics:  m,
		Fallback: proxy,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", m.Handler())

	mux.Handle("/", consoleHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("console_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

// flashStore — Redis, если задан URL, иначе память процесса.
func flashStore(ctx context.Context, cfg config.RedisConfig) (flash.Store, error) {
	if cfg.URL == "" {
		slog.Info("flash_store_memory")
		return flash.NewMemoryStore(cfg.FlashTTL), nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return flash.NewRedisStore(pingCtx, cfg.URL, cfg.Prefix, cfg.FlashTTL)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
