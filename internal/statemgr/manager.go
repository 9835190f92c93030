// Package statemgr implements the State Manager actor: the
// orchestrator that applies persisted configuration to devices at
// startup and translates IPC requests into Device/Configuration
// Manager operations, per spec section 4.4.
package statemgr

import (
	"context"

	"mossd/internal/configstore"
	"mossd/internal/device"
	"mossd/internal/devicemgr"
	"mossd/internal/errors"
	"mossd/internal/logger"
)

// Manager is the State Manager actor. Unlike the Configuration and
// Device Managers it owns no mutable domain state of its own: it is a
// thin orchestrator over the two clients plus the shared error sink.
type Manager struct {
	config  configstore.Client
	devices devicemgr.Client
	errSink <-chan error
}

// New wires a State Manager to the given clients and the shared error
// channel every other actor reports failures on.
func New(config configstore.Client, devices devicemgr.Client, errSink <-chan error) *Manager {
	return &Manager{config: config, devices: devices, errSink: errSink}
}

// Run applies the persisted configuration once at startup, then
// consumes the error sink until ctx is canceled.
func (m *Manager) Run(ctx context.Context) {
	if err := m.applySettings(ctx); err != nil {
		m.logError(err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-m.errSink:
			m.logError(err)
		}
	}
}

// applySettings implements the startup-apply algorithm from spec
// section 4.4: for each known device, fetch curve, interval, mode and
// config from the Configuration Manager and push whichever are
// present to the Device Manager, in curve -> interval -> mode order so
// the first curve evaluation uses the intended curve.
func (m *Manager) applySettings(ctx context.Context) error {
	ids, err := m.devices.ListDevices(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrDeviceQuery, err)
	}

	for _, id := range ids {
		if err := m.applyDevice(ctx, id); err != nil {
			m.logError(err)
		}
	}

	return nil
}

func (m *Manager) applyDevice(ctx context.Context, id device.ID) error {
	curve, err := m.config.GetFanCurve(ctx, id)
	if err != nil {
		return err
	}
	if curve != nil {
		if err := m.devices.SetFanCurve(ctx, id, *curve); err != nil {
			return err
		}
	}

	interval, err := m.config.GetFanUpdateInterval(ctx, id)
	if err != nil {
		return err
	}
	if interval > 0 {
		if err := m.devices.SetFanUpdateInterval(ctx, id, interval); err != nil {
			return err
		}
	}

	mode, err := m.config.GetFanMode(ctx, id)
	if err != nil {
		return err
	}
	if err := m.devices.SetFanMode(ctx, id, mode); err != nil {
		return err
	}

	cfg, err := m.config.GetConfig(ctx, id)
	if err != nil {
		return err
	}
	if cfg != nil {
		if err := m.devices.ApplyGpuConfig(ctx, id, *cfg); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) logError(err error) {
	if err == nil {
		logger.Warn().Msg("Parsing empty error message")
		return
	}

	logger.Error().Err(err).Msg("Actor reported an error")
}
