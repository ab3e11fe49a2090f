package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/babellm/internal/adapters/http/api"
	"github.com/okian/babellm/internal/adapters/http/site"
	"github.com/okian/babellm/internal/adapters/http/swagger"
	"github.com/okian/babellm/internal/adapters/session"
	app "github.com/okian/babellm/internal/app"
	"github.com/okian/babellm/internal/config"
	"github.com/okian/babellm/pkg/clock"
	"github.com/okian/babellm/pkg/logger"
	"github.com/okian/babellm/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.LogFormat != "text" {
		if err := logger.InitWithWriter(os.Stdout, cfg.LogFormat); err != nil {
			os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
			os.Exit(1)
		}
	}

	log := logger.Get()
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

// run starts the service and the HTTP server and blocks until ctx is done or
// either of them fails.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})
	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("service stop: %w", err))
		}
		log.Info(context.Background(), "server stopped")
		return errors.Join(errs...)
	})
	return g.Wait()
}

// newService builds the quiz service from configuration.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	minLatency, maxLatency := cfg.AnalysisLatency()
	opts := []app.Option{
		app.WithLogger(log),
		app.WithDataDir(cfg.DataDir),
		app.WithItemsPerRound(cfg.ItemsPerRound),
		app.WithScheduler(clock.NewReal(clock.WithFrameInterval(cfg.FrameInterval()))),
		app.WithRevealTiming(cfg.RevealDelay(), cfg.RevealAnimation()),
		app.WithCelebration(cfg.CelebrationDelay(), cfg.Celebration(), cfg.BurstInterval()),
		app.WithAnalysisLatency(minLatency, maxLatency),
		app.WithSessionTTL(cfg.SessionTTL()),
		app.WithRenderPool(cfg.RenderWorkers, cfg.RenderQueueSize),
		app.WithSubmissionGuardSize(cfg.SubmissionGuardSize),
	}

	if cfg.SessionBackend == config.SessionRedis {
		backend, err := session.NewRedisBackend(ctx, cfg.RedisAddr, cfg.RedisDB, session.WithPrefix(cfg.RedisPrefix))
		if err != nil {
			return nil, fmt.Errorf("connect session store: %w", err)
		}
		opts = append(opts, app.WithSessionBackend(config.SessionRedis, backend))
	}
	return app.New(opts...), nil
}

// newMux registers the docs, the API and the quiz page.
func newMux(ctx context.Context, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(apiAdapter{svc}, api.WithLogger(log.Named("api"))).Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}

// apiAdapter adapts the service's concrete reveal stream to api.RevealStream.
type apiAdapter struct {
	*app.Service
}

func (a apiAdapter) Reveal(ctx context.Context, id string) (api.RevealStream, error) {
	st, err := a.Service.Reveal(ctx, id)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Stats refreshes the round and queue gauges as a side effect.
			_ = svc.Stats(ctx)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
