package devicemgr

import (
	"time"

	"mossd/internal/actor"
	"mossd/internal/device"
	"mossd/internal/fancurve"
)

type listDevicesMsg struct {
	reply actor.Reply[[]device.ID]
}

type getDeviceInfoMsg struct {
	id    device.ID
	reply actor.Reply[device.Info]
}

type getDeviceVendorInfoMsg struct {
	id    device.ID
	reply actor.Reply[device.VendorInfo]
}

type getDeviceDataMsg struct {
	id    device.ID
	reply actor.Reply[device.Sample]
}

type getDeviceVendorDataMsg struct {
	id    device.ID
	reply actor.Reply[device.VendorSample]
}

type setDataUpdateIntervalMsg struct {
	id       device.ID
	interval time.Duration
	reply    actor.Reply[struct{}]
}

type setFanUpdateIntervalMsg struct {
	id       device.ID
	interval time.Duration
	reply    actor.Reply[struct{}]
}

type setFanModeMsg struct {
	id    device.ID
	mode  fancurve.FanMode
	reply actor.Reply[struct{}]
}

type setFanCurveMsg struct {
	id    device.ID
	curve fancurve.FanCurveInfo
	reply actor.Reply[struct{}]
}

type applyGpuConfigMsg struct {
	id     device.ID
	config device.GpuConfig
	reply  actor.Reply[struct{}]
}
