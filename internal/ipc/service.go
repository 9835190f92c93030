// Package ipc implements the IPC Service façade: a thin adapter that
// exposes per-device read-only properties on an external object bus,
// per spec section 4.5. The object-bus itself (github.com/godbus/
// dbus/v5) is the transport; nothing here assumes a particular client.
package ipc

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"mossd/internal/device"
	"mossd/internal/errors"
	"mossd/internal/logger"
	"mossd/internal/statemgr"
)

const (
	busName         = "io.mossd.Gpud1"
	gpuInterface    = "io.mossd.Gpud1.Gpu"
	nvidiaInterface = "io.mossd.Gpud1.Nvidia"
	pathPrefix      = "/io/mossd/Gpud1/Gpu"
)

// StateClient is the subset of the State Manager the service depends
// on, named so this package can be tested without a live bus or a
// live Device Manager.
type StateClient interface {
	ListDevices(ctx context.Context) ([]device.ID, error)
	DeviceProperties(ctx context.Context, id device.ID) (statemgr.DeviceProperties, error)
	VendorProperties(ctx context.Context, id device.ID) (statemgr.VendorProperties, error)
}

// Service owns the bus connection and the registered device objects.
type Service struct {
	state StateClient
	conn  *dbus.Conn
}

// New builds a Service bound to state. Connect is called separately by
// Run so construction never touches the network.
func New(state StateClient) *Service {
	return &Service{state: state}
}

// Run connects to the bus, registers one object per device (generic
// properties plus a vendor-tagged variant where applicable), and only
// then requests the well-known bus name. Registering before acquiring
// the name is required: clients must never observe a partially
// published server.
func (s *Service) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return errors.Wrap(errors.ErrBusConnection, err)
	}
	s.conn = conn
	defer conn.Close()

	ids, err := s.state.ListDevices(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrDeviceQuery, err)
	}

	for i, id := range ids {
		path := dbus.ObjectPath(fmt.Sprintf("%s%d", pathPrefix, i+1))
		if err := s.registerDevice(ctx, path, id); err != nil {
			return err
		}
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return errors.Wrap(errors.ErrBusConnection, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errors.WithMessage(errors.ErrBusConnection, "bus name already owned by another process")
	}

	logger.Info().Str("name", busName).Int("devices", len(ids)).Msg("IPC service published")

	<-ctx.Done()
	return nil
}

// registerDevice exports the generic Gpu interface and, where the
// device's vendor info is recognized, the vendor-tagged interface on
// the same object path.
func (s *Service) registerDevice(ctx context.Context, path dbus.ObjectPath, id device.ID) error {
	info, err := s.state.DeviceProperties(ctx, id)
	if err != nil {
		return errors.Wrap(errors.ErrDeviceQuery, err)
	}

	props := map[string]map[string]*prop.Prop{
		gpuInterface: {
			"uuid":                readOnly(info.UUID),
			"name":                readOnly(info.Name),
			"pcie_width":          readOnly(info.PCIeWidth),
			"pcie_gen":            readOnly(info.PCIeGen),
			"power_limit_max":     readOnly(uint32(info.PowerLimitMaxW)),
			"power_limit_min":     readOnly(uint32(info.PowerLimitMinW)),
			"power_limit_default": readOnly(uint32(info.PowerLimitDefault)),
		},
	}

	vendor, err := s.state.VendorProperties(ctx, id)
	if err != nil {
		logger.Debug().Str("device", string(id)).Msg("No vendor-tagged properties for this device")
	} else {
		props[nvidiaInterface] = map[string]*prop.Prop{
			"driver_version":  readOnly(vendor.DriverVersion),
			"vbios":           readOnly(vendor.VBIOSVersion),
			"cuda_core_count": readOnly(vendor.CUDACoreCount),
			"max_temp":        readOnly(optionalU32(vendor.MaxTempC)),
			"mem_max_temp":    readOnly(optionalU32(vendor.MemMaxTempC)),
			"slowdown_temp":   readOnly(optionalU32(vendor.SlowdownTempC)),
			"shutdown_temp":   readOnly(optionalU32(vendor.ShutdownTempC)),
		}
	}

	if _, err := prop.Export(s.conn, path, props); err != nil {
		return errors.Wrap(errors.ErrBusObject, err)
	}

	node := &introspect.Node{
		Name: string(path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
		},
	}
	for iface := range props {
		node.Interfaces = append(node.Interfaces, introspect.Interface{Name: iface})
	}

	if err := s.conn.Export(introspect.NewIntrospectable(node), path, "org.freedesktop.DBus.Introspectable"); err != nil {
		return errors.Wrap(errors.ErrBusObject, err)
	}

	return nil
}

func readOnly(value any) *prop.Prop {
	return &prop.Prop{Value: value, Writable: false, Emit: prop.EmitFalse}
}

func optionalU32(v *uint32) uint32 {
	if v == nil {
		return 0
	}

	return *v
}
