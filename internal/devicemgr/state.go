// Package devicemgr implements the Device Manager actor: it owns the
// discovered DeviceHandles, tracks per-device fan state, and drives the
// fan scheduler loop, per spec section 4.3.
package devicemgr

import (
	"time"

	"mossd/internal/device"
	"mossd/internal/fancurve"
)

// safeHighTempC is substituted for a failed temperature read so a stuck
// sensor never stalls the fans.
const safeHighTempC = 110

// defaultSampleRefreshInterval bounds how often ReadSample re-samples
// the driver for a device that has not set its own interval.
const defaultSampleRefreshInterval = 1 * time.Second

// defaultFanInterval is the initial per-device fan update cadence
// before the State Manager applies any persisted configuration.
const defaultFanInterval = 2 * time.Second

// deviceState is the per-device bundle the Device Manager mutates on
// every tick and every Set* command.
type deviceState struct {
	handle device.Handle

	info       device.Info
	vendorInfo device.VendorInfo

	fanMode  fancurve.FanMode
	fanCurve fancurve.Curve

	fanInterval    time.Duration
	lastFanUpdate  time.Time
	sampleInterval time.Duration

	lastSample device.Sample
	hasSample  bool
	sampledAt  time.Time
}

// deadline is when this device's next fan tick is due.
func (d *deviceState) deadline() time.Time {
	return d.lastFanUpdate.Add(d.fanInterval)
}

// constantCurve is the default curve installed when a device enters
// CurveDriven mode with no curve configured yet: full speed at every
// temperature, matching spec section 4.3's "constant-100% curve".
type constantCurve struct{}

func (constantCurve) GetSpeed(int) int { return 100 }
