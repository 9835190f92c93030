// Package device defines the polymorphic device abstraction: the data
// entities from the data model and the small DeviceHandle/Driver
// method set that hides the concrete vendor SDK (NVML today) behind an
// opaque interface, per the "preferred when the set is closed" sum-type
// guidance.
package device

import "time"

// ID is an opaque, globally unique device identifier discovered at
// startup from the driver and immutable thereafter.
type ID string

// Vendor is the closed sum type over known GPU vendors. AMD and Intel
// are reserved slots with no behavior: keeping them named documents the
// shape of the sum type without pretending they are implemented.
type Vendor int

const (
	VendorNvidia Vendor = iota
	VendorAMD           // reserved, unimplemented
	VendorIntel         // reserved, unimplemented
)

func (v Vendor) String() string {
	switch v {
	case VendorNvidia:
		return "nvidia"
	case VendorAMD:
		return "amd"
	case VendorIntel:
		return "intel"
	default:
		return "unknown"
	}
}

// Info holds the static, vendor-neutral device facts populated once per
// device at startup and never refetched.
type Info struct {
	Name              string
	PCIeWidth         uint32
	PCIeGen           uint32
	PowerLimitMinW    int
	PowerLimitMaxW    int
	PowerLimitDefault int
}

// VendorInfo is the vendor-tagged sub-record. Only the field set for
// the matching Vendor is meaningful; the fields are plain exported
// fields, so nothing stops a read across vendors.
type VendorInfo struct {
	Vendor Vendor

	// Nvidia fields, valid only when Vendor == VendorNvidia.
	DriverVersion string
	VBIOSVersion  string
	CUDACoreCount uint32
	MaxTempC      *uint32
	MemMaxTempC   *uint32
	SlowdownTempC *uint32
	ShutdownTempC *uint32
}

// Sample is a point-in-time, vendor-neutral telemetry snapshot,
// refreshed lazily per device on demand. Fields the driver reports as
// unsupported are left nil rather than erroring (spec section 4.3's
// "sample refresh" rule).
type Sample struct {
	SampledAt time.Time

	TemperatureC int

	CoreClockMHz  *uint32
	MemClockMHz   *uint32
	CoreOffsetMHz *int32
	MemOffsetMHz  *int32

	PowerUsageW *int
	PowerLimitW *int

	FanSpeedsPercent []int
	FanSpeedsRPM     []int

	CoreUtilizationPct *uint32
	MemUtilizationPct  *uint32

	TotalMemoryBytes *uint64
	UsedMemoryBytes  *uint64
	FreeMemoryBytes  *uint64
}

// VendorSample carries vendor-specific telemetry not representable in
// the generic Sample, e.g. Nvidia's separate graphics/video/SM clock
// domains and their boost ceilings (supplemented from the original
// source's broader GpuData, see SPEC_FULL.md section 6).
type VendorSample struct {
	Vendor Vendor

	GraphicsClockMHz *uint32
	VideoClockMHz    *uint32
	SMClockMHz       *uint32

	GraphicsBoostClockMHz *uint32
	VideoBoostClockMHz    *uint32
	SMBoostClockMHz       *uint32
	MemBoostClockMHz      *uint32
}

// GpuConfig is the non-fan tuning parameter bundle: any field left nil
// leaves the corresponding device setting unchanged when applied.
// Shutdown restoration applies RestorationConfig, which clears offsets
// and power overrides.
type GpuConfig struct {
	PowerLimitW   *int
	CoreOffsetMHz *int
	MemOffsetMHz  *int
}

// RestorationConfig builds the GpuConfig applied on shutdown: offsets
// cleared to zero and the power limit reset to the device's own
// default. It does not restore values that were set on the device
// before the daemon started.
func RestorationConfig(info Info) GpuConfig {
	zero := 0
	defaultLimit := info.PowerLimitDefault

	return GpuConfig{PowerLimitW: &defaultLimit, CoreOffsetMHz: &zero, MemOffsetMHz: &zero}
}
