package device

// Handle is the small, vendor-agnostic method set every concrete device
// implements, named after the design note's suggested interface:
// get_info, get_vendor_info, get_data, get_vendor_data, set_fan_mode
// (callers pass the percent to write), apply_config. update_fan and
// set_data_update_interval are scheduling concerns owned by the Device
// Manager, not the handle, so they are not part of this interface; the
// handle only ever performs a single scoped operation per call, per the
// "scoped acquisition" design note.
type Handle interface {
	ID() ID
	Vendor() Vendor
	FanCount() int

	Info() Info
	VendorInfo() VendorInfo

	ReadTemperatureC() (int, error)
	ReadSample() (Sample, error)
	ReadVendorSample() (VendorSample, error)

	// SetFanPercent writes percent to every fan on the device (or fan
	// index 0 only when the driver reports a single fan), per the
	// multi-fan open question.
	SetFanPercent(percent int) error
	EnableAutoFan() error

	// ApplyConfig calls the driver once per present field; a nil field
	// leaves the corresponding device setting unchanged.
	ApplyConfig(cfg GpuConfig) error

	// Close releases any resources scoped to this handle's lifetime.
	Close() error
}

// Driver discovers the set of devices available through one vendor SDK.
// Discovery errors are warnings in the Device Manager: the daemon
// continues with whatever devices were found.
type Driver interface {
	Discover() ([]Handle, error)
	Shutdown() error
}
