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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/robocloud/internal/adapters/http/api"
	"github.com/okian/robocloud/internal/adapters/http/swagger"
	"github.com/okian/robocloud/internal/adapters/mesh"
	"github.com/okian/robocloud/internal/adapters/preview"
	"github.com/okian/robocloud/internal/adapters/publisher"
	"github.com/okian/robocloud/internal/adapters/udp"
	"github.com/okian/robocloud/internal/adapters/urdf"
	service "github.com/okian/robocloud/internal/app"
	"github.com/okian/robocloud/internal/config"
	"github.com/okian/robocloud/internal/domain/meshstore"
	"github.com/okian/robocloud/internal/domain/transform"
	"github.com/okian/robocloud/pkg/logger"
	"github.com/okian/robocloud/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// application holds the wired components of one process.
type application struct {
	cfg    *config.Config
	store  *meshstore.Store
	latest *publisher.Latest
	svc    *service.Service
	mux    *http.ServeMux
	udp    *udp.Listener
}

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		if errors.Is(err, config.ErrMissingRobotDescription) {
			logger.Get().Fatal(ctx, "robot_description is not set; cannot start without a skeletal model")
		}
		logger.Get().Fatal(ctx, "failed to load config", logger.Error(err))
	}

	if err := logger.InitWithFormat(cfg.LogFormat, os.Stdout); err != nil {
		_ = logger.Init()
		logger.Get().Warn(ctx, "invalid log_format; falling back to text", logger.String("log_format", cfg.LogFormat), logger.Error(err))
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	reportDefaults(ctx, loggerInstance, cfg)

	app, err := newApplication(ctx, cfg)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to initialize", logger.Error(err))
	}

	if err := app.svc.Start(ctx); err != nil {
		loggerInstance.Fatal(ctx, "failed to start service", logger.Error(err))
	}
	defer app.svc.Stop()

	if err := config.Watch(ctx, cfg, applyReload(ctx, loggerInstance), func(err error) {
		loggerInstance.Warn(ctx, "config reload failed", logger.Error(err))
	}); err != nil {
		loggerInstance.Warn(ctx, "config watch disabled", logger.Error(err))
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, app.svc)

	if app.udp != nil {
		go func() {
			if err := app.udp.Serve(ctx, cfg.UDPAddr); err != nil {
				loggerInstance.Error(ctx, "udp listener failed", logger.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newApplication parses the model, loads segment meshes and wires the
// service, publishers and transports. It starts nothing.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	model, err := urdf.Parse([]byte(cfg.RobotDescription))
	if err != nil {
		return nil, fmt.Errorf("robot_description: %w", err)
	}
	metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval()),
	)

	mode := meshstore.Collision
	if cfg.UseVisualMesh {
		mode = meshstore.Visual
	}
	loader := mesh.NewLoader(
		mesh.WithPackagePaths(cfg.PackagePathList()),
		mesh.WithMeshRoot(cfg.MeshRoot),
	)
	store, err := meshstore.Build(ctx, model, mode, loader)
	if err != nil {
		return nil, err
	}

	latest := publisher.NewLatest()
	var pub publisher.Publisher = latest
	if cfg.PCDOutput != "" {
		pub = publisher.Fanout{publisher.NewPCDWriter(cfg.PCDOutput), latest}
	}

	svc := service.New(model, transform.NewStage(store), pub,
		service.WithLogger(logger.Named("service")),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithLoopOptions(
			service.WithFrequency(cfg.PublishFrequency),
			service.WithWaitTimeout(cfg.StateWaitTimeout()),
			service.WithOverrunLogInterval(cfg.OverrunLogInterval()),
			service.WithCapacityHint(store.VertexCount()),
		),
	)

	mux := http.NewServeMux()
	api.NewServer(cfg.JointStatesTopic, &endpoints{Service: svc, Latest: latest}, svc, preview.NewRenderer()).Register(mux)
	swagger.Register(ctx, mux)

	app := &application{
		cfg:    cfg,
		store:  store,
		latest: latest,
		svc:    svc,
		mux:    mux,
	}
	if cfg.UDPAddr != "" {
		app.udp = udp.NewListener(cfg.JointStatesTopic, svc)
	}

	logger.Get().Info(ctx, "model loaded",
		logger.String("robot", model.Name),
		logger.String("root", model.RootLink()),
		logger.String("mode", mode.String()),
		logger.Int("segments", store.Len()),
		logger.Int("vertices", store.VertexCount()))
	return app, nil
}

// endpoints joins ingest and the newest frame for the HTTP handlers.
type endpoints struct {
	*service.Service
	*publisher.Latest
}

// reportDefaults logs optional keys that fell back to their defaults.
func reportDefaults(ctx context.Context, log logger.Logger, cfg *config.Config) {
	if cfg.Missing(config.KeyJointStatesTopic) {
		log.Warn(ctx, "joint_states_topic not set, using default", logger.String("joint_states_topic", cfg.JointStatesTopic))
	}
	if cfg.Missing(config.KeyPublishFrequency) {
		log.Warn(ctx, "publish_frequency not set, using default", logger.Float64("publish_frequency", cfg.PublishFrequency))
	}
	if cfg.Missing(config.KeyUseVisualMesh) {
		log.Info(ctx, "use_visual_mesh not set, using collision meshes", logger.Bool("use_visual_mesh", cfg.UseVisualMesh))
	}
}

// applyReload hot-applies the settings that can change without a restart.
func applyReload(ctx context.Context, log logger.Logger) func(*config.Config) {
	return func(next *config.Config) {
		if err := logger.SetLevelString(next.LogLevel); err != nil {
			log.Warn(ctx, "invalid log_level on reload", logger.String("log_level", next.LogLevel), logger.Error(err))
			return
		}
		log.Info(ctx, "config reloaded", logger.String("log_level", next.LogLevel))
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(2 * metrics.RefreshInterval())
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

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from service stats.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if points, ok := stats["points"].(int); ok {
		if segments, ok := stats["segments"].(int); ok {
			metrics.UpdateFrameSize(points, segments)
		}
	}
}
