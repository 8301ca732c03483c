// Command laundrywatch watches a laundry machine's indicator panel through a
// webcam and republishes the decoded state over MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/laundrywatch/laundrywatch/internal/config"
	"github.com/laundrywatch/laundrywatch/internal/database"
	"github.com/laundrywatch/laundrywatch/internal/influx"
	"github.com/laundrywatch/laundrywatch/internal/logging"
	"github.com/laundrywatch/laundrywatch/internal/publish"
	"github.com/laundrywatch/laundrywatch/internal/storage"
	"github.com/laundrywatch/laundrywatch/internal/watcher"
	"github.com/laundrywatch/laundrywatch/internal/webcam"
)

const serviceName = "laundrywatch"

// Version can be set at build time via ldflags.
var Version = "0.1.0"

func main() {
	configDir := flag.String("config", ".", "directory containing laundrywatch.cfg.json")
	once := flag.Bool("once", false, "run a single sampling pass and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", serviceName, Version)
		return
	}

	if err := run(*configDir, *once); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configDir string, once bool) error {
	if err := config.Load(configDir); err != nil {
		return err
	}

	logManager, logFile, err := setupLogging()
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger := logManager.Logger()

	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()

	backend, err := setupStorage(zlog, logManager)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer backend.Close()

	var influxManager *influx.Manager
	if viper.GetBool("influx.enabled") {
		influxManager = influx.NewManager(zlog)
		if err := influxManager.Connect(); err != nil {
			logger.Warn("InfluxDB unavailable, readings will not be exported", "error", err)
			influxManager = nil
		} else {
			defer influxManager.Close()
		}
	}

	source := webcam.New(
		viper.GetString("webcam.url"),
		viper.GetString("webcam.username"),
		viper.GetString("webcam.password"),
	)

	publisher := publish.NewMQTTPublisher(publish.Config{
		Host:     viper.GetString("mqtt.host"),
		Port:     viper.GetInt("mqtt.port"),
		Username: viper.GetString("mqtt.username"),
		Password: viper.GetString("mqtt.password"),
	}, logger)

	service, err := watcher.NewService(watcher.Dependencies{
		Source:     source,
		Publisher:  publisher,
		Backend:    backend,
		Influx:     influxManager,
		LogManager: logManager,
	}, config.SampleInterval())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		snap, err := config.TakeSnapshot()
		if err != nil {
			return err
		}
		if _, err := service.RunPass(ctx, snap); err != nil {
			return err
		}
		// leave the publish drain window before tearing the process down
		time.Sleep(publish.DefaultDrainWindow)
		return nil
	}

	logger.Info("Service started",
		"version", Version,
		"interval", config.SampleInterval(),
		"webcam", viper.GetString("webcam.url"))

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Shutting down")
	return nil
}

// setupLogging wires console, session file and optional Graylog outputs.
func setupLogging() (*logging.SlogManager, *os.File, error) {
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs dir: %w", err)
	}

	logFile, err := os.OpenFile(
		logging.LogFilePath(logsDir, serviceName, time.Now()),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var graylogWriter io.Writer
	if viper.GetBool("graylog.enabled") {
		gw, err := gelf.NewWriter(viper.GetString("graylog.address"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog writer unavailable: %v\n", err)
		} else {
			graylogWriter = gw
		}
	}

	logManager := logging.NewSlogManager()
	logManager.Setup(logFile, graylogWriter, viper.GetString("logLevel"))

	return logManager, logFile, nil
}

// setupStorage builds the reading-history backend. A failed database
// connection downgrades to the in-memory backend instead of refusing to
// start.
func setupStorage(zlog zerolog.Logger, logManager *logging.SlogManager) (storage.Backend, error) {
	storageType := viper.GetString("storage.type")

	var db *gorm.DB
	if storageType == "database" {
		manager := database.NewManager(zlog)
		if err := manager.Connect(); err != nil {
			logManager.Logger().Error("Database unavailable, using memory storage", "error", err)
			storageType = "memory"
		} else if err := manager.Setup(); err != nil {
			logManager.Logger().Error("Database migration failed, using memory storage", "error", err)
			storageType = "memory"
		} else {
			db = manager.DB
		}
	}

	memCfg := config.MemoryConfig{OutputDir: viper.GetString("storage.memory.outputDir")}
	return storage.NewBackend(storageType, db, memCfg)
}
