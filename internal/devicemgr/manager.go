package devicemgr

import (
	"context"
	"time"

	"mossd/internal/actor"
	"mossd/internal/device"
	"mossd/internal/errors"
	"mossd/internal/fancurve"
	"mossd/internal/history"
	"mossd/internal/logger"
)

// Manager is the Device Manager actor: it owns every discovered
// DeviceHandle and drives the fan scheduler loop described in spec
// section 4.3.
type Manager struct {
	mailbox chan any
	errSink chan<- error
	history history.Collector

	drivers []device.Driver
	order   []device.ID
	devices map[device.ID]*deviceState
}

// New discovers devices from every driver and returns a Manager ready
// to Run. A driver that fails to discover is logged as a warning; the
// daemon continues with whatever devices were found. hist records a
// sample on every refresh and an event on every mode change or
// shutdown; pass a no-op Collector to disable journaling.
func New(drivers []device.Driver, hist history.Collector, errSink chan<- error) *Manager {
	m := &Manager{
		mailbox: make(chan any, actor.MailboxCapacity),
		errSink: errSink,
		history: hist,
		drivers: drivers,
		devices: make(map[device.ID]*deviceState),
	}

	for _, drv := range drivers {
		handles, err := drv.Discover()
		if err != nil {
			logger.Warn().Err(err).Msg("Device discovery failed for a driver, continuing without it")
			continue
		}

		for _, h := range handles {
			id := h.ID()
			m.order = append(m.order, id)
			m.devices[id] = &deviceState{
				handle:         h,
				info:           h.Info(),
				vendorInfo:     h.VendorInfo(),
				fanMode:        fancurve.Auto(),
				fanInterval:    defaultFanInterval,
				sampleInterval: defaultSampleRefreshInterval,
			}
		}
	}

	return m
}

// Run drives the scheduler loop until ctx is canceled, then performs
// best-effort shutdown restoration. A single timer is reused across
// iterations and drained before every reset so the loop never
// accumulates a *time.Timer per tick.
func (m *Manager) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		deadline, ok := m.nextDeadline()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}

		var timerC <-chan time.Time
		if ok {
			d := time.Until(deadline)
			if d < 0 {
				d = 0
			}
			timer.Reset(d)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			m.shutdown(ctx)
			return
		case msg := <-m.mailbox:
			m.handle(ctx, msg)
		case <-timerC:
			m.tickDue(ctx)
		}
	}
}

// nextDeadline returns the earliest per-device fan deadline, if any
// device exists.
func (m *Manager) nextDeadline() (time.Time, bool) {
	var min time.Time
	found := false

	for _, id := range m.order {
		d := m.devices[id].deadline()
		if !found || d.Before(min) {
			min = d
			found = true
		}
	}

	return min, found
}

// tickDue runs one fan update on whichever device's deadline has
// elapsed, breaking ties by stable order.
func (m *Manager) tickDue(ctx context.Context) {
	now := time.Now()

	for _, id := range m.order {
		st := m.devices[id]
		if !st.deadline().After(now) {
			m.fanTick(ctx, id, st)
			return
		}
	}
}

func (m *Manager) fanTick(ctx context.Context, id device.ID, st *deviceState) {
	switch st.fanMode.Kind {
	case fancurve.FanModeAuto:
		logger.Trace().Str("device", string(id)).Msg("Auto fan mode, skipping write")
	case fancurve.FanModeCurveDriven:
		temp, err := st.handle.ReadTemperatureC()
		if err != nil {
			logger.Warn().Err(err).Str("device", string(id)).Msg("Temperature read failed, using safe-high substitute")
			temp = safeHighTempC
		}

		curve := st.fanCurve
		if curve == nil {
			curve = constantCurve{}
		}

		percent := curve.GetSpeed(temp)
		if err := st.handle.SetFanPercent(percent); err != nil {
			logger.Error().Err(err).Str("device", string(id)).Msg("Failed to write fan speed")
		}
	case fancurve.FanModeManual:
		if err := st.handle.SetFanPercent(st.fanMode.ManualPercent); err != nil {
			logger.Error().Err(err).Str("device", string(id)).Msg("Failed to write manual fan speed")
		}
	}

	st.lastFanUpdate = time.Now()

	if _, err := m.refreshSample(ctx, id, st); err != nil {
		logger.Warn().Err(err).Str("device", string(id)).Msg("Failed to refresh sample after fan tick")
	}
}

// shutdown restores every device to Auto fan mode with offsets and
// power overrides cleared. Failures are logged, not propagated.
func (m *Manager) shutdown(ctx context.Context) {
	// ctx is already canceled here; the journal rejects canceled contexts.
	recordCtx := context.WithoutCancel(ctx)

	for _, id := range m.order {
		st := m.devices[id]

		if err := st.handle.EnableAutoFan(); err != nil {
			logger.Warn().Err(err).Str("device", string(id)).Msg("Failed to restore auto fan mode on shutdown")
		}

		if err := st.handle.ApplyConfig(device.RestorationConfig(st.info)); err != nil {
			logger.Warn().Err(err).Str("device", string(id)).Msg("Failed to restore GPU config on shutdown")
		}

		if err := m.history.RecordEvent(recordCtx, id, "shutdown", "device restored to auto fan mode"); err != nil {
			logger.Warn().Err(err).Str("device", string(id)).Msg("Failed to record shutdown event")
		}
	}

	for _, drv := range m.drivers {
		if err := drv.Shutdown(); err != nil {
			logger.Warn().Err(err).Msg("Driver shutdown failed")
		}
	}
}

func (m *Manager) handle(ctx context.Context, msg any) {
	switch req := msg.(type) {
	case listDevicesMsg:
		ids := make([]device.ID, len(m.order))
		copy(ids, m.order)
		req.reply.Send(ids, nil)

	case getDeviceInfoMsg:
		st, err := m.lookup(req.id)
		if err != nil {
			req.reply.Send(device.Info{}, err)
			return
		}
		req.reply.Send(st.info, nil)

	case getDeviceVendorInfoMsg:
		st, err := m.lookup(req.id)
		if err != nil {
			req.reply.Send(device.VendorInfo{}, err)
			return
		}
		req.reply.Send(st.vendorInfo, nil)

	case getDeviceDataMsg:
		st, err := m.lookup(req.id)
		if err != nil {
			req.reply.Send(device.Sample{}, err)
			return
		}
		sample, err := m.refreshSample(ctx, req.id, st)
		req.reply.Send(sample, err)

	case getDeviceVendorDataMsg:
		st, err := m.lookup(req.id)
		if err != nil {
			req.reply.Send(device.VendorSample{}, err)
			return
		}
		vs, err := st.handle.ReadVendorSample()
		if err != nil {
			req.reply.Send(device.VendorSample{}, errors.Wrap(errors.ErrDeviceQuery, err))
			return
		}
		req.reply.Send(vs, nil)

	case setDataUpdateIntervalMsg:
		st, err := m.lookup(req.id)
		if err != nil {
			req.reply.Send(struct{}{}, err)
			return
		}
		st.sampleInterval = req.interval
		req.reply.Send(struct{}{}, nil)

	case setFanUpdateIntervalMsg:
		st, err := m.lookup(req.id)
		if err != nil {
			req.reply.Send(struct{}{}, err)
			return
		}
		st.fanInterval = req.interval
		req.reply.Send(struct{}{}, nil)

	case setFanModeMsg:
		st, err := m.lookup(req.id)
		if err != nil {
			req.reply.Send(struct{}{}, err)
			return
		}
		if req.mode.Kind == fancurve.FanModeCurveDriven && st.fanCurve == nil {
			st.fanCurve = constantCurve{}
		}
		st.fanMode = req.mode
		if err := m.history.RecordEvent(ctx, req.id, "fan_mode_changed", req.mode.Kind.String()); err != nil {
			logger.Warn().Err(err).Str("device", string(req.id)).Msg("Failed to record fan mode change event")
		}
		req.reply.Send(struct{}{}, nil)

	case setFanCurveMsg:
		st, err := m.lookup(req.id)
		if err != nil {
			req.reply.Send(struct{}{}, err)
			return
		}
		st.fanCurve = req.curve.BuildCurve()
		req.reply.Send(struct{}{}, nil)

	case applyGpuConfigMsg:
		st, err := m.lookup(req.id)
		if err != nil {
			req.reply.Send(struct{}{}, err)
			return
		}
		if err := st.handle.ApplyConfig(req.config); err != nil {
			req.reply.Send(struct{}{}, errors.Wrap(errors.ErrDeviceFan, err))
			return
		}
		req.reply.Send(struct{}{}, nil)
	}
}

func (m *Manager) lookup(id device.ID) (*deviceState, error) {
	st, ok := m.devices[id]
	if !ok {
		return nil, errors.NewCode(errors.ErrInvalidDevice)
	}

	return st, nil
}

// refreshSample returns the device's cached sample, re-sampling first
// if it is stale or has never been taken. Every real re-sample is
// journaled through history, not the cached fast path.
func (m *Manager) refreshSample(ctx context.Context, id device.ID, st *deviceState) (device.Sample, error) {
	if st.hasSample && time.Since(st.sampledAt) < st.sampleInterval {
		return st.lastSample, nil
	}

	sample, err := st.handle.ReadSample()
	if err != nil {
		return device.Sample{}, errors.Wrap(errors.ErrDeviceQuery, err)
	}

	if err := m.history.RecordSample(ctx, id, sample); err != nil {
		logger.Warn().Err(err).Str("device", string(id)).Msg("Failed to record sample in history journal")
	}

	st.lastSample = sample
	st.sampledAt = time.Now()
	st.hasSample = true

	return sample, nil
}
