package history

import (
	"context"
	"time"

	"mossd/internal/device"
	"mossd/internal/errors"
	"mossd/internal/logger"
)

type collector struct {
	repo repository
}

// New returns a Collector honoring cfg. When cfg.Enabled is false it
// returns a no-op collector so callers never need to branch on whether
// history is on.
func New(cfg Config) (Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("History journal disabled, using no-op collector")
		return noopCollector{}, nil
	}

	repo, err := newSQLiteRepository(cfg)
	if err != nil {
		return nil, err
	}

	return &collector{repo: repo}, nil
}

func (c *collector) RecordSample(ctx context.Context, id device.ID, sample device.Sample) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(errors.ErrTimeout, ctx.Err())
	default:
	}

	row := sampleRow{
		DeviceID:     string(id),
		Timestamp:    sample.SampledAt,
		TemperatureC: sample.TemperatureC,
	}

	if sample.PowerUsageW != nil {
		row.PowerUsageW = *sample.PowerUsageW
	}
	if sample.CoreClockMHz != nil {
		row.CoreClockMHz = int(*sample.CoreClockMHz)
	}
	if sample.MemClockMHz != nil {
		row.MemClockMHz = int(*sample.MemClockMHz)
	}
	if len(sample.FanSpeedsPercent) > 0 {
		row.FanPercent = averagePercent(sample.FanSpeedsPercent)
	}

	return c.repo.recordSample(row)
}

func (c *collector) RecordEvent(ctx context.Context, id device.ID, kind, message string) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(errors.ErrTimeout, ctx.Err())
	default:
	}

	return c.repo.recordEvent(eventRow{
		DeviceID:  string(id),
		Timestamp: time.Now(),
		Kind:      kind,
		Message:   message,
	})
}

func (c *collector) Close() error {
	return c.repo.Close()
}

func averagePercent(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}

	return sum / len(values)
}

// noopCollector is returned when history is disabled in configuration.
type noopCollector struct{}

func (noopCollector) RecordSample(context.Context, device.ID, device.Sample) error { return nil }
func (noopCollector) RecordEvent(context.Context, device.ID, string, string) error { return nil }
func (noopCollector) Close() error                                                { return nil }
