package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/laundrywatch/laundrywatch/internal/marker"
)

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir string `json:"outputDir" mapstructure:"outputDir"`
}

// Snapshot is a read-only view of the sampling configuration taken once per
// pass. The core only ever sees a snapshot, never the live configuration, so
// marker edits can't race an in-flight decode.
type Snapshot struct {
	Markers   []marker.Marker
	Threshold float32
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("webcam.url", "")
	viper.SetDefault("webcam.username", "")
	viper.SetDefault("webcam.password", "")

	viper.SetDefault("mqtt.host", "localhost")
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")

	viper.SetDefault("sample.threshold", 0.4)
	viper.SetDefault("sample.interval", "15s")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./passes")
	viper.SetDefault("storage.sqlitePath", "./laundrywatch.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "laundrywatch")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "laundrywatch-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetConfigName("laundrywatch.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Markers returns the configured marker definitions, validated.
func Markers() ([]marker.Definition, error) {
	var defs []marker.Definition
	if err := viper.UnmarshalKey("markers", &defs); err != nil {
		return nil, fmt.Errorf("error decoding markers: %w", err)
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// TakeSnapshot compiles the current marker list and threshold into a per-pass
// snapshot.
func TakeSnapshot() (Snapshot, error) {
	defs, err := Markers()
	if err != nil {
		return Snapshot{}, err
	}

	markers := make([]marker.Marker, 0, len(defs))
	for _, d := range defs {
		m, err := d.Compile()
		if err != nil {
			return Snapshot{}, err
		}
		markers = append(markers, m)
	}

	return Snapshot{
		Markers:   markers,
		Threshold: float32(viper.GetFloat64("sample.threshold")),
	}, nil
}

// SampleInterval returns the sampling cadence.
func SampleInterval() time.Duration {
	d := viper.GetDuration("sample.interval")
	if d <= 0 {
		d = 15 * time.Second
	}
	return d
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
