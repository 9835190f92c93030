package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mossd/internal/device"
)

func TestDisabledReturnsNoop(t *testing.T) {
	c, err := New(Config{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, c.RecordSample(context.Background(), "gpu-1", device.Sample{}))
	require.NoError(t, c.RecordEvent(context.Background(), "gpu-1", "test", "hello"))
	require.NoError(t, c.Close())
}

func TestValidateRequiresDBPathWhenEnabled(t *testing.T) {
	cfg := Config{Enabled: true}
	assert.Error(t, cfg.Validate())

	cfg.DBPath = "/tmp/x.db"
	assert.NoError(t, cfg.Validate())
}

func TestRecordSampleFlushesAndPersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	c, err := New(Config{Enabled: true, DBPath: dbPath, BatchSize: 1, BatchTimeout: 0})
	require.NoError(t, err)

	power := 150
	coreClock := uint32(1800)
	sample := device.Sample{
		SampledAt:        time.Now(),
		TemperatureC:     65,
		PowerUsageW:      &power,
		CoreClockMHz:     &coreClock,
		FanSpeedsPercent: []int{40, 60},
	}

	require.NoError(t, c.RecordSample(context.Background(), "gpu-1", sample))
	require.NoError(t, c.RecordEvent(context.Background(), "gpu-1", "startup", "device discovered"))
	require.NoError(t, c.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM samples WHERE device_id = ?`, "gpu-1").Scan(&count))
	assert.Equal(t, 1, count)

	var fanPercent int
	require.NoError(t, db.QueryRow(`SELECT fan_percent FROM samples WHERE device_id = ?`, "gpu-1").Scan(&fanPercent))
	assert.Equal(t, 50, fanPercent)

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM events WHERE device_id = ?`, "gpu-1").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestAveragePercent(t *testing.T) {
	assert.Equal(t, 50, averagePercent([]int{40, 60}))
	assert.Equal(t, 10, averagePercent([]int{10}))
}
