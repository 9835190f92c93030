package statemgr

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mossd/internal/configstore"
	"mossd/internal/device"
	"mossd/internal/devicemgr"
	"mossd/internal/fancurve"
	"mossd/internal/history"
)

func noopHistory(t *testing.T) history.Collector {
	t.Helper()
	h, err := history.New(history.Config{})
	require.NoError(t, err)
	return h
}

type stubHandle struct {
	id      device.ID
	info    device.Info
	applied []device.GpuConfig
	percent int
}

func (h *stubHandle) ID() device.ID                 { return h.id }
func (h *stubHandle) Vendor() device.Vendor         { return device.VendorNvidia }
func (h *stubHandle) FanCount() int                 { return 1 }
func (h *stubHandle) Info() device.Info             { return h.info }
func (h *stubHandle) VendorInfo() device.VendorInfo { return device.VendorInfo{Vendor: device.VendorNvidia} }
func (h *stubHandle) ReadTemperatureC() (int, error) { return 40, nil }
func (h *stubHandle) ReadSample() (device.Sample, error) {
	return device.Sample{SampledAt: time.Now(), TemperatureC: 40}, nil
}
func (h *stubHandle) ReadVendorSample() (device.VendorSample, error) {
	return device.VendorSample{Vendor: device.VendorNvidia}, nil
}
func (h *stubHandle) SetFanPercent(p int) error { h.percent = p; return nil }
func (h *stubHandle) EnableAutoFan() error      { return nil }
func (h *stubHandle) ApplyConfig(cfg device.GpuConfig) error {
	h.applied = append(h.applied, cfg)
	return nil
}
func (h *stubHandle) Close() error { return nil }

type stubDriver struct{ handles []device.Handle }

func (d *stubDriver) Discover() ([]device.Handle, error) { return d.handles, nil }
func (d *stubDriver) Shutdown() error                    { return nil }

func TestApplySettingsUsesPersistedProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	errSink := make(chan error, 8)

	cfgMgr, err := configstore.New(path, errSink)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cfgMgr.Run(ctx)

	handle := &stubHandle{id: "gpu-1", info: device.Info{Name: "Test GPU", PowerLimitDefault: 200}}
	devMgr := devicemgr.New([]device.Driver{&stubDriver{handles: []device.Handle{handle}}}, noopHistory(t), errSink)
	go devMgr.Run(ctx)

	configClient := cfgMgr.Client()
	deviceClient := devMgr.Client()

	curve := fancurve.FanCurveInfo{Points: []fancurve.Point{{Temp: 0, Percent: 10}, {Temp: 100, Percent: 90}}}
	require.NoError(t, configClient.SetFanCurve(ctx, "quiet", curve))
	require.NoError(t, configClient.SetProfileFanCurve(ctx, "quiet", ptr("quiet")))
	mode := fancurve.CurveDriven()
	require.NoError(t, configClient.SetProfileFanMode(ctx, "quiet", mode))
	require.NoError(t, configClient.SetProfileUpdateInterval(ctx, "quiet", 20*time.Millisecond))
	require.NoError(t, configClient.AssignProfile(ctx, "gpu-1", "quiet"))

	sm := New(configClient, deviceClient, errSink)
	require.NoError(t, sm.applySettings(ctx))

	assert.Eventually(t, func() bool {
		return handle.percent != 0
	}, 500*time.Millisecond, 10*time.Millisecond)
}

func TestDevicePropertiesTranslatesInfo(t *testing.T) {
	errSink := make(chan error, 8)

	handle := &stubHandle{id: "gpu-1", info: device.Info{Name: "Test GPU", PCIeWidth: 16, PCIeGen: 4}}
	devMgr := devicemgr.New([]device.Driver{&stubDriver{handles: []device.Handle{handle}}}, noopHistory(t), errSink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go devMgr.Run(ctx)

	path := filepath.Join(t.TempDir(), "config.json")
	cfgMgr, err := configstore.New(path, errSink)
	require.NoError(t, err)
	go cfgMgr.Run(ctx)

	sm := New(cfgMgr.Client(), devMgr.Client(), errSink)

	props, err := sm.DeviceProperties(ctx, "gpu-1")
	require.NoError(t, err)
	assert.Equal(t, "Test GPU", props.Name)
	assert.EqualValues(t, 16, props.PCIeWidth)
}

func ptr(s string) *string { return &s }
