package device

import (
	"sync"
	"time"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"mossd/internal/errors"
	"mossd/internal/logger"
)

const milliWattsToWatts = 1000

// NvidiaDriver discovers devices through NVML. It owns the single
// process-wide nvml.Init()/nvml.Shutdown() pair; every NvidiaHandle it
// returns shares the underlying library state by value, matching the
// "shared driver handle... cheap clone semantics" design note.
type NvidiaDriver struct {
	mu          sync.Mutex
	initialized bool
}

// NewNvidiaDriver constructs a driver without touching NVML yet; NVML
// is initialized lazily on the first Discover call.
func NewNvidiaDriver() *NvidiaDriver {
	return &NvidiaDriver{}
}

func (d *NvidiaDriver) Discover() ([]Handle, error) {
	errFactory := errors.New()

	d.mu.Lock()
	if !d.initialized {
		if ret := nvml.Init(); ret != nvml.SUCCESS {
			d.mu.Unlock()
			return nil, errFactory.Wrap(errors.ErrDeviceInitialization, nvmlErr(ret))
		}
		d.initialized = true
	}
	d.mu.Unlock()

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return nil, errFactory.Wrap(errors.ErrDeviceInitialization, nvmlErr(ret))
	}

	handles := make([]Handle, 0, count)

	for i := 0; i < count; i++ {
		handle, err := newNvidiaHandle(i)
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("Skipping GPU that failed discovery")
			continue
		}

		handles = append(handles, handle)
	}

	return handles, nil
}

func (d *NvidiaDriver) Shutdown() error {
	errFactory := errors.New()

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil
	}

	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return errFactory.Wrap(errors.ErrDeviceInitialization, nvmlErr(ret))
	}

	d.initialized = false

	return nil
}

// NvidiaHandle implements Handle for a single Nvidia device.
type NvidiaHandle struct {
	dev      nvml.Device
	id       ID
	fanCount int
	info     Info
	vendor   VendorInfo
}

func newNvidiaHandle(index int) (*NvidiaHandle, error) {
	errFactory := errors.New()

	dev, ret := nvml.DeviceGetHandleByIndex(index)
	if ret != nvml.SUCCESS {
		return nil, errFactory.Wrap(errors.ErrDeviceAcquisition, nvmlErr(ret))
	}

	uuid, ret := dev.GetUUID()
	if ret != nvml.SUCCESS {
		return nil, errFactory.Wrap(errors.ErrDeviceInitialization, nvmlErr(ret))
	}

	h := &NvidiaHandle{dev: dev, id: ID(uuid)}

	fanCount, ret := dev.GetNumFans()
	if ret != nvml.SUCCESS {
		return nil, errFactory.Wrap(errors.ErrDeviceInitialization, nvmlErr(ret))
	}
	h.fanCount = fanCount

	if err := h.loadInfo(); err != nil {
		return nil, err
	}

	if err := h.loadVendorInfo(); err != nil {
		return nil, err
	}

	return h, nil
}

func (h *NvidiaHandle) loadInfo() error {
	errFactory := errors.New()

	name, ret := h.dev.GetName()
	if ret != nvml.SUCCESS {
		return errFactory.Wrap(errors.ErrDeviceInitialization, nvmlErr(ret))
	}

	width, ret := h.dev.GetCurrPcieLinkWidth()
	if ret != nvml.SUCCESS {
		return errFactory.Wrap(errors.ErrDeviceInitialization, nvmlErr(ret))
	}

	gen, ret := h.dev.GetCurrPcieLinkGeneration()
	if ret != nvml.SUCCESS {
		return errFactory.Wrap(errors.ErrDeviceInitialization, nvmlErr(ret))
	}

	minLimit, maxLimit, ret := h.dev.GetPowerManagementLimitConstraints()
	if ret != nvml.SUCCESS {
		return errFactory.Wrap(errors.ErrDeviceInitialization, nvmlErr(ret))
	}

	defLimit, ret := h.dev.GetPowerManagementDefaultLimit()
	if ret != nvml.SUCCESS {
		return errFactory.Wrap(errors.ErrDeviceInitialization, nvmlErr(ret))
	}

	h.info = Info{
		Name:              name,
		PCIeWidth:         uint32(width),
		PCIeGen:           uint32(gen),
		PowerLimitMinW:    int(minLimit / milliWattsToWatts),
		PowerLimitMaxW:    int(maxLimit / milliWattsToWatts),
		PowerLimitDefault: int(defLimit / milliWattsToWatts),
	}

	return nil
}

func (h *NvidiaHandle) loadVendorInfo() error {
	driverVersion, ret := nvml.SystemGetDriverVersion()
	if ret != nvml.SUCCESS {
		driverVersion = ""
	}

	vbios, ret := h.dev.GetVbiosVersion()
	if ret != nvml.SUCCESS {
		vbios = ""
	}

	cores, ret := h.dev.GetNumGpuCores()
	if ret != nvml.SUCCESS {
		cores = 0
	}

	h.vendor = VendorInfo{
		Vendor:        VendorNvidia,
		DriverVersion: driverVersion,
		VBIOSVersion:  vbios,
		CUDACoreCount: uint32(cores),
		MaxTempC:      h.readTempThreshold(nvml.TEMPERATURE_THRESHOLD_GPU_MAX),
		MemMaxTempC:   h.readTempThreshold(nvml.TEMPERATURE_THRESHOLD_MEM_MAX),
		SlowdownTempC: h.readTempThreshold(nvml.TEMPERATURE_THRESHOLD_SLOWDOWN),
		ShutdownTempC: h.readTempThreshold(nvml.TEMPERATURE_THRESHOLD_SHUTDOWN),
	}

	return nil
}

func (h *NvidiaHandle) readTempThreshold(kind nvml.TemperatureThresholds) *uint32 {
	value, ret := h.dev.GetTemperatureThreshold(kind)
	if ret != nvml.SUCCESS {
		return nil
	}

	v := uint32(value)
	return &v
}

func (h *NvidiaHandle) ID() ID                 { return h.id }
func (h *NvidiaHandle) Vendor() Vendor         { return VendorNvidia }
func (h *NvidiaHandle) FanCount() int          { return h.fanCount }
func (h *NvidiaHandle) Info() Info             { return h.info }
func (h *NvidiaHandle) VendorInfo() VendorInfo { return h.vendor }

func (h *NvidiaHandle) ReadTemperatureC() (int, error) {
	errFactory := errors.New()

	temp, ret := h.dev.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret != nvml.SUCCESS {
		return 0, errFactory.Wrap(errors.ErrDeviceQuery, nvmlErr(ret))
	}

	return int(temp), nil
}

func (h *NvidiaHandle) ReadSample() (Sample, error) {
	sample := Sample{}

	temp, err := h.ReadTemperatureC()
	if err != nil {
		return Sample{}, err
	}
	sample.TemperatureC = temp

	if core, ret := h.dev.GetClockInfo(nvml.CLOCK_GRAPHICS); ret == nvml.SUCCESS {
		v := core
		sample.CoreClockMHz = &v
	}
	if mem, ret := h.dev.GetClockInfo(nvml.CLOCK_MEM); ret == nvml.SUCCESS {
		v := mem
		sample.MemClockMHz = &v
	}

	if offset, ret := h.dev.GetGpcClkVfOffset(); ret == nvml.SUCCESS {
		v := offset
		sample.CoreOffsetMHz = &v
	}
	if offset, ret := h.dev.GetMemClkVfOffset(); ret == nvml.SUCCESS {
		v := offset
		sample.MemOffsetMHz = &v
	}

	if limit, ret := h.dev.GetPowerUsage(); ret == nvml.SUCCESS {
		v := int(limit / milliWattsToWatts)
		sample.PowerUsageW = &v
	}
	if limit, ret := h.dev.GetPowerManagementLimit(); ret == nvml.SUCCESS {
		v := int(limit / milliWattsToWatts)
		sample.PowerLimitW = &v
	}

	speeds := make([]int, h.fanCount)
	for i := 0; i < h.fanCount; i++ {
		if speed, ret := h.dev.GetFanSpeed_v2(i); ret == nvml.SUCCESS {
			speeds[i] = speed
		}
	}
	sample.FanSpeedsPercent = speeds

	if util, ret := h.dev.GetUtilizationRates(); ret == nvml.SUCCESS {
		core, mem := util.Gpu, util.Memory
		sample.CoreUtilizationPct = &core
		sample.MemUtilizationPct = &mem
	}

	if mem, ret := h.dev.GetMemoryInfo(); ret == nvml.SUCCESS {
		sample.TotalMemoryBytes = &mem.Total
		sample.UsedMemoryBytes = &mem.Used
		sample.FreeMemoryBytes = &mem.Free
	}

	sample.SampledAt = time.Now()

	return sample, nil
}

func (h *NvidiaHandle) ReadVendorSample() (VendorSample, error) {
	vs := VendorSample{Vendor: VendorNvidia}

	if v, ret := h.dev.GetClockInfo(nvml.CLOCK_GRAPHICS); ret == nvml.SUCCESS {
		vv := v
		vs.GraphicsClockMHz = &vv
	}
	if v, ret := h.dev.GetClockInfo(nvml.CLOCK_VIDEO); ret == nvml.SUCCESS {
		vv := v
		vs.VideoClockMHz = &vv
	}
	if v, ret := h.dev.GetClockInfo(nvml.CLOCK_SM); ret == nvml.SUCCESS {
		vv := v
		vs.SMClockMHz = &vv
	}

	if v, ret := h.dev.GetMaxClockInfo(nvml.CLOCK_GRAPHICS); ret == nvml.SUCCESS {
		vv := v
		vs.GraphicsBoostClockMHz = &vv
	}
	if v, ret := h.dev.GetMaxClockInfo(nvml.CLOCK_VIDEO); ret == nvml.SUCCESS {
		vv := v
		vs.VideoBoostClockMHz = &vv
	}
	if v, ret := h.dev.GetMaxClockInfo(nvml.CLOCK_SM); ret == nvml.SUCCESS {
		vv := v
		vs.SMBoostClockMHz = &vv
	}
	if v, ret := h.dev.GetMaxClockInfo(nvml.CLOCK_MEM); ret == nvml.SUCCESS {
		vv := v
		vs.MemBoostClockMHz = &vv
	}

	return vs, nil
}

// SetFanPercent writes percent to every fan (or fan index 0 only when
// the driver reports a single fan), per the multi-fan open question.
func (h *NvidiaHandle) SetFanPercent(percent int) error {
	errFactory := errors.New()

	fans := h.fanCount
	if fans == 0 {
		fans = 1
	}

	for i := 0; i < fans; i++ {
		if ret := nvml.DeviceSetFanSpeed_v2(h.dev, i, percent); ret != nvml.SUCCESS {
			return errFactory.Wrap(errors.ErrDeviceFan, nvmlErr(ret))
		}
	}

	return nil
}

func (h *NvidiaHandle) EnableAutoFan() error {
	errFactory := errors.New()

	fans := h.fanCount
	if fans == 0 {
		fans = 1
	}

	for i := 0; i < fans; i++ {
		if ret := nvml.DeviceSetDefaultFanSpeed_v2(h.dev, i); ret != nvml.SUCCESS {
			return errFactory.Wrap(errors.ErrDeviceFan, nvmlErr(ret))
		}
	}

	return nil
}

func (h *NvidiaHandle) ApplyConfig(cfg GpuConfig) error {
	errFactory := errors.New()

	if cfg.PowerLimitW != nil {
		limit := uint32(*cfg.PowerLimitW) * milliWattsToWatts
		if ret := h.dev.SetPowerManagementLimit(limit); ret != nvml.SUCCESS {
			return errFactory.Wrap(errors.ErrDeviceFan, nvmlErr(ret))
		}
	}

	if cfg.CoreOffsetMHz != nil {
		if ret := h.dev.SetGpcClkVfOffset(*cfg.CoreOffsetMHz); ret != nvml.SUCCESS {
			return errFactory.Wrap(errors.ErrDeviceFan, nvmlErr(ret))
		}
	}

	if cfg.MemOffsetMHz != nil {
		if ret := h.dev.SetMemClkVfOffset(*cfg.MemOffsetMHz); ret != nvml.SUCCESS {
			return errFactory.Wrap(errors.ErrDeviceFan, nvmlErr(ret))
		}
	}

	return nil
}

func (h *NvidiaHandle) Close() error { return nil }

func nvmlErr(ret nvml.Return) error {
	return errNVML{ret: ret}
}

type errNVML struct{ ret nvml.Return }

func (e errNVML) Error() string { return nvml.ErrorString(e.ret) }
