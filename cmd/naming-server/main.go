// Command naming-server runs the naming server daemon: the client/SS wire
// listener, the storage-server heartbeat sweep, the flat-file registry
// persistence loop, and the admin HTTP API. It is the production entrypoint;
// operators drive it via the companion cmd/nsctl over the admin API rather
// than signals, except for the initial start/stop.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/marmos91/naming-server/internal/adminapi"
	"github.com/marmos91/naming-server/internal/config"
	"github.com/marmos91/naming-server/internal/dispatcher"
	"github.com/marmos91/naming-server/internal/fallback"
	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/metadata"
	"github.com/marmos91/naming-server/internal/mirror"
	"github.com/marmos91/naming-server/internal/persistence"
	"github.com/marmos91/naming-server/internal/registry"
	"github.com/marmos91/naming-server/internal/telemetry"
)

// version is set via -ldflags at release build time.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to the naming server config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "naming-server",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", logger.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "naming-server",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		logger.Error("failed to initialize profiling", logger.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("naming server starting", "version", version, "config", sourceDescription(*configPath))

	store := metadata.NewStore()
	if err := persistence.LoadRegistry(cfg.Persistence.RegistryPath, store); err != nil {
		logger.Error("failed to load registry", logger.Err(err))
		os.Exit(1)
	}
	store.SetSearchCacheCapacity(cfg.Search.CacheCapacity)

	reg := registry.NewManager(store)
	reg.SetHeartbeatConfig(cfg.Registry.HeartbeatInterval, cfg.Registry.HeartbeatTimeout)

	fb := fallback.NewEngine(cfg.Persistence.CacheDir, cfg.Persistence.BackupDir, store)

	disp := dispatcher.New(store, reg, fb, dispatcher.Config{
		Port:       cfg.Server.Port,
		MaxClients: cfg.Server.MaxClients,
	})

	var mir *mirror.Mirror
	if cfg.Mirror.Enabled {
		mir, err = mirror.New(ctx, cfg.Mirror.Bucket, cfg.Mirror.Region)
		if err != nil {
			logger.Error("failed to initialize DR mirror, continuing without it", logger.Err(err))
			mir = nil
		}
	}

	saver := persistence.NewSaver(store, cfg.Persistence.RegistryPath, cfg.Persistence.SaveInterval, func(path string) {
		if mir != nil {
			mir.UploadRegistry(ctx, path)
		}
	})
	saver.Start()
	defer saver.Stop()

	if mir != nil {
		go mir.Run(ctx, cfg.Persistence.BackupDir, cfg.Mirror.BackupInterval)
	}

	if _, err := config.Watch(*configPath, cfg, config.Hooks{
		OnHeartbeatChange:      reg.SetHeartbeatConfig,
		OnSearchCapacityChange: store.SetSearchCacheCapacity,
		OnLogLevelChange:       logger.SetLevel,
	}); err != nil {
		logger.Warn("config hot-reload watcher disabled", logger.Err(err))
	}

	adminAPI := adminapi.New(store, disp.Ready, cancel, disp.Audit())
	var adminSrv *adminapi.Server
	if cfg.AdminAPI.Enabled {
		adminSrv = adminapi.NewServer(cfg.AdminAPI.Port, cfg.AdminAPI.BindLocalOnly, adminAPI)
		go func() {
			if err := adminSrv.Start(ctx); err != nil {
				logger.Error("admin API server error", logger.Err(err))
			}
		}()
	}

	regDone := make(chan struct{})
	go func() {
		reg.Run(ctx)
		close(regDone)
	}()

	dispDone := make(chan error, 1)
	go func() {
		dispDone <- disp.Serve(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	consoleCh := make(chan struct{})
	go watchConsoleShutdown(consoleCh)

	logger.Info("naming server ready", "port", cfg.Server.Port, "admin_port", cfg.AdminAPI.Port)

	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
	case <-consoleCh:
		logger.Info("SHUTDOWN console command received")
	case err := <-dispDone:
		if err != nil {
			logger.Error("dispatcher stopped unexpectedly", logger.Err(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown requested via admin API")
	}

	cancel()
	disp.Stop()
	reg.Shutdown()
	<-regDone

	// saver.Stop() (deferred) performs one final save, mirroring it too if
	// the DR mirror is enabled, before the other deferred shutdowns run.
	logger.Info("naming server stopped")
}

// watchConsoleShutdown closes done when it reads a "SHUTDOWN" line from
// stdin, the console trigger named alongside signals in the wire protocol's
// shutdown path.
func watchConsoleShutdown(done chan<- struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "SHUTDOWN" {
			close(done)
			return
		}
	}
}

func sourceDescription(configPath string) string {
	if configPath != "" {
		return configPath
	}
	return "defaults"
}
