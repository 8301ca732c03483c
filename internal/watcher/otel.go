package watcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/laundrywatch/laundrywatch/internal/watcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
