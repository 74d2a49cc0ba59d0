package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"pecron-mqtt-bridge/pkg/config"
	"pecron-mqtt-bridge/pkg/coordinator"
	"pecron-mqtt-bridge/pkg/health"
	"pecron-mqtt-bridge/pkg/logger"
	"pecron-mqtt-bridge/pkg/metrics"
	"pecron-mqtt-bridge/pkg/mqtt"
	"pecron-mqtt-bridge/pkg/notify"
	"pecron-mqtt-bridge/pkg/registry"
	"pecron-mqtt-bridge/pkg/service"
)

// account bundles everything the bridge runs per cloud account
type account struct {
	settings config.AccountSettings
	coord    *coordinator.Coordinator
	monitor  *health.CloudHealthMonitor
	poller   *service.PollingService
	bridge   *mqtt.DeviceBridge
}

// Application main application class
// Facade Pattern - simplified interface for complex system
type Application struct {
	config    *config.Config
	publisher *mqtt.Publisher
	notices   *notify.Manager
	registry  *registry.Registry
	accounts  []*account
	metrics   *metrics.Server
}

// NewApplication creates a new application instance
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	// Initialize logging with level
	logger.GlobalLogging = &cfg.Logging
	logger.LogStartup("🔧 Logging initialized with level: %s", cfg.Logging.Level)

	publisher := mqtt.NewPublisher(config.NewMQTTSettings(cfg), &cfg.HomeAssistant)
	notices := notify.NewManager(publisher)
	reg := registry.New()

	app := &Application{
		config:    cfg,
		publisher: publisher,
		notices:   notices,
		registry:  reg,
	}

	monitors := make(map[string]*health.CloudHealthMonitor)
	for _, accountCfg := range cfg.Accounts {
		settings := config.NewAccountSettings(accountCfg)
		coord := coordinator.New(settings.Email, settings.Password, settings.Region, nil)
		if err := reg.Add(settings.Email, coord); err != nil {
			return nil, fmt.Errorf("error registering account %s: %w", settings.Email, err)
		}

		monitor := health.NewCloudHealthMonitor(0)
		bridge := mqtt.NewDeviceBridge(publisher, coord, notices)
		// Subscribe before the first refresh so the bridge sees every snapshot
		coord.Subscribe(bridge.HandleSnapshot)

		app.accounts = append(app.accounts, &account{
			settings: settings,
			coord:    coord,
			monitor:  monitor,
			poller:   service.NewPollingService(coord, publisher, monitor),
			bridge:   bridge,
		})
		monitors[settings.Email] = monitor
	}

	if cfg.Metrics.Listen != "" {
		app.metrics = metrics.NewServer(cfg.Metrics.Listen, reg, monitors)
	}

	return app, nil
}

// Start connects the broker, bootstraps every account and launches the
// polling loops. Blocks until ctx is cancelled.
func (app *Application) Start(ctx context.Context) error {
	logger.LogInfo("🚀 Starting Pecron MQTT Bridge...")

	if err := app.publisher.Connect(ctx); err != nil {
		return fmt.Errorf("error connecting publisher: %w", err)
	}

	if err := app.publisher.PublishStatusOnline(ctx); err != nil {
		logger.LogError("⚠️ Error publishing online status: %v", err)
	}

	// First-ever fetch per account, with the coarse bootstrap retry. A cloud
	// that stays unreachable degrades the account instead of aborting startup.
	for _, acc := range app.accounts {
		if err := acc.coord.Bootstrap(ctx, coordinator.DefaultBootstrapPolicy(), app.notices); err != nil {
			return fmt.Errorf("bootstrap of %s failed: %w", acc.settings.Email, err)
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, acc := range app.accounts {
		acc := acc
		group.Go(func() error {
			acc.poller.Start(groupCtx, acc.settings.RefreshInterval)
			return nil
		})
	}
	if app.metrics != nil {
		group.Go(func() error {
			return app.metrics.ListenAndServe()
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return app.metrics.Shutdown(shutdownCtx)
		})
	}

	logger.LogInfo("✅ Pecron MQTT Bridge started with %d account(s)", len(app.accounts))
	return group.Wait()
}

// Stop stops the application
func (app *Application) Stop() {
	logger.LogInfo("🛑 Stopping Pecron MQTT Bridge...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.publisher.PublishStatusOffline(ctx); err != nil {
		logger.LogError("⚠️ Error publishing offline status: %v", err)
	}

	app.registry.ShutdownAll()
	app.publisher.Disconnect()

	logger.LogInfo("✅ Pecron MQTT Bridge stopped")
}

func main() {
	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT and SIGTERM for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	configPath := ""
	for i, arg := range os.Args[1:] {
		if arg == "--help" || arg == "-h" {
			fmt.Printf("Usage: %s [config_path]\n", os.Args[0])
			fmt.Printf("  config_path: Path to configuration file (default: config.yaml)\n")
			return
		} else if i == 0 {
			configPath = arg
		}
	}
	if configPath == "" {
		configPath = "config.yaml"
	}

	app, err := NewApplication(configPath)
	if err != nil {
		logger.LogError("Application creation error: %v", err)
		os.Exit(1)
	}

	go func() {
		sig := <-sigChan
		logger.LogInfo("📡 Received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := app.Start(ctx); err != nil && ctx.Err() == nil {
		logger.LogError("Application error: %v", err)
		app.Stop()
		os.Exit(1)
	}

	app.Stop()
}
