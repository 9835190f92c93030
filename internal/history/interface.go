// Package history implements the optional sample/event journal
// supplementing spec.md with the original implementation's telemetry
// logging (see SPEC_FULL.md section 6). It is disabled by default.
// Collector.Record* calls buffer rows in memory; a background flusher
// writes them on a timer, and a call that fills the batch writes the
// whole batch itself before returning.
package history

import (
	"context"
	"time"

	"mossd/internal/device"
)

// Collector is the domain interface the rest of the daemon records
// through. The no-op implementation returned when history is disabled
// satisfies the same interface so callers never branch on whether
// history is on.
type Collector interface {
	RecordSample(ctx context.Context, id device.ID, sample device.Sample) error
	RecordEvent(ctx context.Context, id device.ID, kind, message string) error
	Close() error
}

// repository is the storage-facing half of the journal: buffering and
// batched flush live here, independent of the domain Collector API.
type repository interface {
	recordSample(entry sampleRow) error
	recordEvent(entry eventRow) error
	Close() error
}

type sampleRow struct {
	DeviceID     string
	Timestamp    time.Time
	TemperatureC int
	FanPercent   int
	PowerUsageW  int
	CoreClockMHz int
	MemClockMHz  int
}

type eventRow struct {
	DeviceID  string
	Timestamp time.Time
	Kind      string
	Message   string
}
