package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/piggybank/internal/auth"
	"github.com/mmynk/piggybank/internal/config"
	"github.com/mmynk/piggybank/internal/metrics"
	"github.com/mmynk/piggybank/internal/middleware"
	"github.com/mmynk/piggybank/internal/notify"
	"github.com/mmynk/piggybank/internal/paygroup"
	"github.com/mmynk/piggybank/internal/payments"
	"github.com/mmynk/piggybank/internal/service"
	"github.com/mmynk/piggybank/internal/storage/sqlite"
	"github.com/mmynk/piggybank/internal/sweep"
	"github.com/mmynk/piggybank/pkg/api"
	"github.com/mmynk/piggybank/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info")
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return err
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	directory := auth.NewDirectory(store)
	authenticator := auth.NewPasswordAuthenticator(store)

	m := metrics.New()
	notifier := notify.NewAsync(notify.NewLogger(slog.Default()), cfg.NotifyQueue)
	engine := paygroup.New(store, directory, payments.NewSandbox(cfg.WalletSeed), paygroup.Options{
		Threshold:  cfg.TerminationThreshold,
		InviteTTL:  cfg.InviteTTL,
		Dispatcher: notifier,
		Metrics:    m,
	})

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwtManager),
		middleware.RequireProviderSecret(cfg.ProviderSecret),
		middleware.ValidationInterceptor(),
	)

	mux := http.NewServeMux()
	authPath, authHandler := api.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, directory, slog.Default()),
		interceptors,
	)
	mux.Handle(authPath, authHandler)
	groupPath, groupHandler := api.NewPaymentGroupServiceHandler(service.NewGroupService(engine, directory), interceptors)
	mux.Handle(groupPath, groupHandler)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// h2c serves HTTP/2 without TLS for Connect and gRPC clients.
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(corsMiddleware(mux), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopSweep := func() {}
	if cfg.SweepSchedule != "" {
		scheduler, err := sweep.New(store, engine, nil).Start(cfg.SweepSchedule)
		if err != nil {
			return err
		}
		stopSweep = func() { <-scheduler.Stop().Done() }
		slog.Info("Maturity sweep scheduled", "schedule", cfg.SweepSchedule)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		// The sweep publishes maturity events, so it stops before the notifier.
		stopSweep()
		if cerr := notifier.Close(shutdownCtx); cerr != nil {
			slog.Warn("Notification queue not drained", "error", cerr)
		}
		return err
	})
	return g.Wait()
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, "+api.ErrorKindHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
