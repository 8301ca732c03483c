package influx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/laundrywatch/laundrywatch/internal/model"
)

// BucketReadings receives per-marker decode results.
const BucketReadings = "laundry_readings"

// DefaultBucketNames are the InfluxDB buckets used by laundrywatch.
var DefaultBucketNames = []string{
	BucketReadings,
}

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client      influxdb2.Client
	Writers     map[string]influxdb2_api.WriteAPI
	IsValid     bool
	BucketNames []string
	Logger      zerolog.Logger
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: DefaultBucketNames,
		Logger:      log,
	}
}

// Connect establishes a connection to InfluxDB.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(100).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(context.Background())
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, readings will not be exported")
		return nil
	}

	m.IsValid = true

	if err := m.setupOrganizationAndBuckets(); err != nil {
		return err
	}
	m.CreateWriters()
	m.Logger.Info().Msg("InfluxDB client initialized")

	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	// ensure org exists
	_, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		_, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Error().Err(err).Str("org", orgName).Msg("Error getting organization")
		return err
	}

	// ensure buckets exist with 90 day retention
	for _, bucket := range m.BucketNames {
		_, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket)
		if err != nil {
			m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

			rule := domain.RetentionRuleTypeExpire
			_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
				Type:         &rule,
				EverySeconds: 60 * 60 * 24 * 90, // 90 days
			})
			if err != nil {
				m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
				return err
			}
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		m.Writers[bucket] = m.Client.WriteAPI(orgName, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, errorsCh)
	}

	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePass exports every reading of a pass as one point per marker.
func (m *Manager) WritePass(p *model.Pass) error {
	if !m.IsValid {
		return nil
	}

	for _, r := range p.Readings {
		point := readingToPoint(p, r)
		if err := m.WritePoint(BucketReadings, point); err != nil {
			return err
		}
	}

	return nil
}

// WritePoint writes a point to InfluxDB.
func (m *Manager) WritePoint(bucket string, point *influxdb2_write.Point) error {
	if !m.IsValid {
		return errors.New("influxDB client not initialized")
	}
	writer, ok := m.Writers[bucket]
	if !ok {
		return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
	}
	writer.WritePoint(point)
	return nil
}

// readingToPoint converts one marker reading into a measurement point tagged
// by marker name and decode outcome.
func readingToPoint(p *model.Pass, r model.Reading) *influxdb2_write.Point {
	point := influxdb2_write.NewPointWithMeasurement("marker_reading").
		AddTag("marker", r.Name).
		AddTag("kind", r.Kind).
		SetTime(p.Time)

	point.AddField("threshold", float64(p.Threshold))

	var samples []float32
	if err := json.Unmarshal(r.Samples, &samples); err == nil && len(samples) > 0 {
		var sum float64
		for _, s := range samples {
			sum += float64(s)
		}
		point.AddField("mean_luminance", sum/float64(len(samples)))
	}

	switch {
	case r.BoolValue.Valid:
		point.AddField("bool_value", r.BoolValue.Bool)
	case r.IntValue.Valid:
		point.AddField("int_value", r.IntValue.Int64)
	default:
		point.AddField("absent", true)
	}

	return point
}

// Close flushes pending writes and shuts the client down.
func (m *Manager) Close() {
	if m.Client == nil {
		return
	}
	for _, w := range m.Writers {
		w.Flush()
	}
	m.Client.Close()
}
