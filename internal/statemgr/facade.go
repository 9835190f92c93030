package statemgr

import (
	"context"

	"mossd/internal/device"
	"mossd/internal/errors"
)

// DeviceProperties is the read-only projection of device.Info the IPC
// Service exposes on every generic device object.
type DeviceProperties struct {
	UUID              string
	Name              string
	PCIeWidth         uint32
	PCIeGen           uint32
	PowerLimitMaxW    int
	PowerLimitMinW    int
	PowerLimitDefault int
}

// VendorProperties is the read-only projection of device.VendorInfo
// the IPC Service exposes on the vendor-tagged object variant.
type VendorProperties struct {
	Vendor        device.Vendor
	DriverVersion string
	VBIOSVersion  string
	CUDACoreCount uint32
	MaxTempC      *uint32
	MemMaxTempC   *uint32
	SlowdownTempC *uint32
	ShutdownTempC *uint32
}

// ListDevices is the adapter backing the IPC Service's device
// enumeration at startup.
func (m *Manager) ListDevices(ctx context.Context) ([]device.ID, error) {
	ids, err := m.devices.ListDevices(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDeviceQuery, err)
	}

	return ids, nil
}

// DeviceProperties translates a Device Manager GetDeviceInfo reply
// into the property set a generic object exposes.
func (m *Manager) DeviceProperties(ctx context.Context, id device.ID) (DeviceProperties, error) {
	info, err := m.devices.GetDeviceInfo(ctx, id)
	if err != nil {
		return DeviceProperties{}, errors.Wrap(errors.ErrDeviceQuery, err)
	}

	return DeviceProperties{
		UUID:              string(id),
		Name:              info.Name,
		PCIeWidth:         info.PCIeWidth,
		PCIeGen:           info.PCIeGen,
		PowerLimitMaxW:    info.PowerLimitMaxW,
		PowerLimitMinW:    info.PowerLimitMinW,
		PowerLimitDefault: info.PowerLimitDefault,
	}, nil
}

// VendorProperties translates a Device Manager GetDeviceVendorInfo
// reply into the vendor-tagged property set. An unrecognized vendor
// reply is an InvalidResponse, matching the adapter contract.
func (m *Manager) VendorProperties(ctx context.Context, id device.ID) (VendorProperties, error) {
	info, err := m.devices.GetDeviceVendorInfo(ctx, id)
	if err != nil {
		return VendorProperties{}, errors.Wrap(errors.ErrDeviceQuery, err)
	}

	switch info.Vendor {
	case device.VendorNvidia:
		return VendorProperties{
			Vendor:        info.Vendor,
			DriverVersion: info.DriverVersion,
			VBIOSVersion:  info.VBIOSVersion,
			CUDACoreCount: info.CUDACoreCount,
			MaxTempC:      info.MaxTempC,
			MemMaxTempC:   info.MemMaxTempC,
			SlowdownTempC: info.SlowdownTempC,
			ShutdownTempC: info.ShutdownTempC,
		}, nil
	default:
		return VendorProperties{}, errors.NewCode(errors.ErrInvalidResponse)
	}
}
