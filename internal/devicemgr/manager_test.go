package devicemgr

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mossd/internal/device"
	"mossd/internal/fancurve"
	"mossd/internal/history"
)

func noopHistory(t *testing.T) history.Collector {
	t.Helper()
	h, err := history.New(history.Config{})
	require.NoError(t, err)
	return h
}

type recordingHistory struct {
	mu      sync.Mutex
	samples []device.Sample
	events  []string
}

func (r *recordingHistory) RecordSample(_ context.Context, _ device.ID, sample device.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample)
	return nil
}

func (r *recordingHistory) RecordEvent(_ context.Context, _ device.ID, kind, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind)
	return nil
}

func (r *recordingHistory) Close() error { return nil }

func (r *recordingHistory) sampleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func (r *recordingHistory) eventCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fakeHandle struct {
	id         device.ID
	info       device.Info
	vendorInfo device.VendorInfo

	temp    int
	tempErr error

	lastPercent int
	autoCalls   int
	applied     []device.GpuConfig
}

func (f *fakeHandle) ID() device.ID                 { return f.id }
func (f *fakeHandle) Vendor() device.Vendor         { return device.VendorNvidia }
func (f *fakeHandle) FanCount() int                 { return 1 }
func (f *fakeHandle) Info() device.Info             { return f.info }
func (f *fakeHandle) VendorInfo() device.VendorInfo { return f.vendorInfo }

func (f *fakeHandle) ReadTemperatureC() (int, error) { return f.temp, f.tempErr }

func (f *fakeHandle) ReadSample() (device.Sample, error) {
	return device.Sample{SampledAt: time.Now(), TemperatureC: f.temp}, nil
}

func (f *fakeHandle) ReadVendorSample() (device.VendorSample, error) {
	return device.VendorSample{Vendor: device.VendorNvidia}, nil
}

func (f *fakeHandle) SetFanPercent(percent int) error {
	f.lastPercent = percent
	return nil
}

func (f *fakeHandle) EnableAutoFan() error {
	f.autoCalls++
	return nil
}

func (f *fakeHandle) ApplyConfig(cfg device.GpuConfig) error {
	f.applied = append(f.applied, cfg)
	return nil
}

func (f *fakeHandle) Close() error { return nil }

type fakeDriver struct {
	handles      []device.Handle
	discoverErr  error
	shutdownErr  error
	shutdownHits int
}

func (d *fakeDriver) Discover() ([]device.Handle, error) {
	if d.discoverErr != nil {
		return nil, d.discoverErr
	}
	return d.handles, nil
}

func (d *fakeDriver) Shutdown() error {
	d.shutdownHits++
	return d.shutdownErr
}

func TestListDevices(t *testing.T) {
	h := &fakeHandle{id: "gpu-1", info: device.Info{Name: "Test GPU"}}
	drv := &fakeDriver{handles: []device.Handle{h}}

	m := New([]device.Driver{drv}, noopHistory(t), make(chan error, 1))
	client := m.Client()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	ids, err := client.ListDevices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []device.ID{"gpu-1"}, ids)
}

func TestGetDeviceInfoUnknownDevice(t *testing.T) {
	m := New(nil, noopHistory(t), make(chan error, 1))
	client := m.Client()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	_, err := client.GetDeviceInfo(ctx, "missing")
	assert.Error(t, err)
}

func TestSetFanModeManualWritesOnTick(t *testing.T) {
	h := &fakeHandle{id: "gpu-1", info: device.Info{Name: "Test GPU"}}
	drv := &fakeDriver{handles: []device.Handle{h}}

	m := New([]device.Driver{drv}, noopHistory(t), make(chan error, 1))
	client := m.Client()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	require.NoError(t, client.SetFanUpdateInterval(ctx, "gpu-1", 20*time.Millisecond))
	require.NoError(t, client.SetFanMode(ctx, "gpu-1", fancurve.Manual(42)))

	assert.Eventually(t, func() bool {
		return h.lastPercent == 42
	}, 500*time.Millisecond, 10*time.Millisecond)
}

func TestCurveDrivenDefaultsToConstantCurve(t *testing.T) {
	h := &fakeHandle{id: "gpu-1", info: device.Info{Name: "Test GPU"}, temp: 50}
	drv := &fakeDriver{handles: []device.Handle{h}}

	m := New([]device.Driver{drv}, noopHistory(t), make(chan error, 1))
	client := m.Client()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	require.NoError(t, client.SetFanUpdateInterval(ctx, "gpu-1", 20*time.Millisecond))
	require.NoError(t, client.SetFanMode(ctx, "gpu-1", fancurve.CurveDriven()))

	assert.Eventually(t, func() bool {
		return h.lastPercent == 100
	}, 500*time.Millisecond, 10*time.Millisecond)
}

func TestCurveDrivenUsesSafeHighOnTemperatureFailure(t *testing.T) {
	h := &fakeHandle{id: "gpu-1", info: device.Info{Name: "Test GPU"}, tempErr: assert.AnError}
	drv := &fakeDriver{handles: []device.Handle{h}}

	m := New([]device.Driver{drv}, noopHistory(t), make(chan error, 1))
	client := m.Client()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	curve := fancurve.FanCurveInfo{Points: []fancurve.Point{{Temp: 0, Percent: 0}, {Temp: safeHighTempC, Percent: 100}}}
	require.NoError(t, client.SetFanCurve(ctx, "gpu-1", curve))
	require.NoError(t, client.SetFanUpdateInterval(ctx, "gpu-1", 20*time.Millisecond))
	require.NoError(t, client.SetFanMode(ctx, "gpu-1", fancurve.CurveDriven()))

	assert.Eventually(t, func() bool {
		return h.lastPercent == 100
	}, 500*time.Millisecond, 10*time.Millisecond)
}

func TestShutdownRestoresAutoAndClearsConfig(t *testing.T) {
	h := &fakeHandle{id: "gpu-1", info: device.Info{Name: "Test GPU", PowerLimitDefault: 250}}
	drv := &fakeDriver{handles: []device.Handle{h}}

	m := New([]device.Driver{drv}, noopHistory(t), make(chan error, 1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()
	<-done

	assert.Equal(t, 1, h.autoCalls)
	require.Len(t, h.applied, 1)
	require.NotNil(t, h.applied[0].PowerLimitW)
	assert.Equal(t, 250, *h.applied[0].PowerLimitW)
	assert.Equal(t, 1, drv.shutdownHits)
}

func TestFanTickRecordsSampleAndModeChangeRecordsEvent(t *testing.T) {
	h := &fakeHandle{id: "gpu-1", info: device.Info{Name: "Test GPU"}, temp: 55}
	drv := &fakeDriver{handles: []device.Handle{h}}
	hist := &recordingHistory{}

	m := New([]device.Driver{drv}, hist, make(chan error, 1))
	client := m.Client()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	require.NoError(t, client.SetFanUpdateInterval(ctx, "gpu-1", 20*time.Millisecond))
	require.NoError(t, client.SetFanMode(ctx, "gpu-1", fancurve.Manual(42)))

	assert.Eventually(t, func() bool {
		return hist.eventCount() >= 1 && hist.sampleCount() >= 1
	}, 500*time.Millisecond, 10*time.Millisecond)
}

func TestShutdownRecordsEventPerDevice(t *testing.T) {
	h := &fakeHandle{id: "gpu-1", info: device.Info{Name: "Test GPU"}}
	drv := &fakeDriver{handles: []device.Handle{h}}
	hist := &recordingHistory{}

	m := New([]device.Driver{drv}, hist, make(chan error, 1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()
	<-done

	require.Equal(t, 1, hist.eventCount())
	assert.Equal(t, "shutdown", hist.events[0])
}

func TestDiscoveryErrorIsWarningNotFatal(t *testing.T) {
	drv := &fakeDriver{discoverErr: assert.AnError}

	m := New([]device.Driver{drv}, noopHistory(t), make(chan error, 1))
	client := m.Client()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	ids, err := client.ListDevices(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
