package configstore

import (
	"context"
	"time"

	"mossd/internal/actor"
	"mossd/internal/device"
	"mossd/internal/errors"
	"mossd/internal/fancurve"
	"mossd/internal/logger"
)

// Manager is the Configuration Manager actor: a single-consumer task
// owning the in-memory profile/curve/config model and the JSON document
// on disk. All access goes through its mailbox to preserve the
// single-writer invariant from spec section 5.
type Manager struct {
	path    string
	mailbox chan any
	errSink chan<- error
	store   *store
}

// New loads path (if present) and returns a Manager ready to Run.
func New(path string, errSink chan<- error) (*Manager, error) {
	s, err := load(path)
	if err != nil {
		return nil, err
	}

	return &Manager{
		path:    path,
		mailbox: make(chan any, actor.MailboxCapacity),
		errSink: errSink,
		store:   s,
	}, nil
}

// Run drives the actor until ctx is canceled.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-m.mailbox:
			m.handle(msg)
		}
	}
}

func (m *Manager) handle(msg any) {
	switch req := msg.(type) {
	case getFanModeMsg:
		req.reply.Send(m.store.resolveFanMode(req.id), nil)
	case getFanCurveMsg:
		req.reply.Send(m.store.resolveFanCurve(req.id), nil)
	case getFanUpdateIntervalMsg:
		req.reply.Send(m.store.resolveUpdateInterval(req.id), nil)
	case getConfigMsg:
		req.reply.Send(m.store.resolveConfig(req.id), nil)
	case assignProfileMsg:
		m.store.bindings[req.id] = req.profile
		req.reply.Send(struct{}{}, nil)
	case setProfileFanModeMsg:
		req.reply.Send(struct{}{}, m.setProfileField(req.profile, func(p *Profile) { p.FanMode = req.mode }))
	case setProfileFanCurveMsg:
		req.reply.Send(struct{}{}, m.setProfileField(req.profile, func(p *Profile) { p.FanCurveName = req.curveName }))
	case setProfileConfigMsg:
		req.reply.Send(struct{}{}, m.setProfileField(req.profile, func(p *Profile) { p.ConfigName = req.configName }))
	case setProfileUpdateIntervalMsg:
		req.reply.Send(struct{}{}, m.setProfileField(req.profile, func(p *Profile) { p.UpdateInterval = req.interval }))
	case setFanCurveMsg:
		m.store.curves[req.name] = req.info
		req.reply.Send(struct{}{}, nil)
	case setConfigMsg:
		m.store.configs[req.name] = req.config
		req.reply.Send(struct{}{}, nil)
	case saveConfigMsg:
		req.reply.Send(struct{}{}, m.save())
	}
}

// setProfileField applies mutate to the named profile, creating it (as
// a copy of the default) if absent, and rejecting the default-profile
// name per the default-profile-protection invariant.
func (m *Manager) setProfileField(name string, mutate func(*Profile)) error {
	if name == DefaultProfileName {
		return errors.NewCode(errors.ErrConfigSet)
	}

	profile, ok := m.store.profiles[name]
	if !ok {
		profile = Profile{Name: name, FanMode: fancurve.Auto(), UpdateInterval: defaultUpdateInterval}
	}

	mutate(&profile)
	m.store.profiles[name] = profile

	return nil
}

func (m *Manager) save() error {
	if err := save(m.path, m.store); err != nil {
		m.sinkError(err)
		return err
	}

	return nil
}

func (m *Manager) sinkError(err error) {
	select {
	case m.errSink <- err:
	default:
		logger.Error().Err(err).Msg("Configuration Manager error sink full, dropping error")
	}
}

// --- message types ---

type getFanModeMsg struct {
	id    device.ID
	reply actor.Reply[fancurve.FanMode]
}

type getFanCurveMsg struct {
	id    device.ID
	reply actor.Reply[*fancurve.FanCurveInfo]
}

type getFanUpdateIntervalMsg struct {
	id    device.ID
	reply actor.Reply[time.Duration]
}

type getConfigMsg struct {
	id    device.ID
	reply actor.Reply[*device.GpuConfig]
}

type assignProfileMsg struct {
	id      device.ID
	profile string
	reply   actor.Reply[struct{}]
}

type setProfileFanModeMsg struct {
	profile string
	mode    fancurve.FanMode
	reply   actor.Reply[struct{}]
}

type setProfileFanCurveMsg struct {
	profile   string
	curveName *string
	reply     actor.Reply[struct{}]
}

type setProfileConfigMsg struct {
	profile    string
	configName *string
	reply      actor.Reply[struct{}]
}

type setProfileUpdateIntervalMsg struct {
	profile  string
	interval time.Duration
	reply    actor.Reply[struct{}]
}

type setFanCurveMsg struct {
	name  string
	info  fancurve.FanCurveInfo
	reply actor.Reply[struct{}]
}

type setConfigMsg struct {
	name   string
	config device.GpuConfig
	reply  actor.Reply[struct{}]
}

type saveConfigMsg struct {
	reply actor.Reply[struct{}]
}
