package configstore

import (
	"context"
	"time"

	"mossd/internal/actor"
	"mossd/internal/device"
	"mossd/internal/fancurve"
)

// Client is the handle other actors use to talk to a running Manager.
// Every method sends a request and waits for its one-shot reply.
type Client struct {
	mailbox chan any
}

// Client returns a handle bound to this manager's mailbox.
func (m *Manager) Client() Client {
	return Client{mailbox: m.mailbox}
}

func (c Client) GetFanMode(ctx context.Context, id device.ID) (fancurve.FanMode, error) {
	reply := actor.NewReply[fancurve.FanMode]()
	if err := actor.Send(ctx, c.mailbox, any(getFanModeMsg{id: id, reply: reply})); err != nil {
		return fancurve.FanMode{}, err
	}

	return reply.Wait(ctx)
}

func (c Client) GetFanCurve(ctx context.Context, id device.ID) (*fancurve.FanCurveInfo, error) {
	reply := actor.NewReply[*fancurve.FanCurveInfo]()
	if err := actor.Send(ctx, c.mailbox, any(getFanCurveMsg{id: id, reply: reply})); err != nil {
		return nil, err
	}

	return reply.Wait(ctx)
}

func (c Client) GetFanUpdateInterval(ctx context.Context, id device.ID) (time.Duration, error) {
	reply := actor.NewReply[time.Duration]()
	if err := actor.Send(ctx, c.mailbox, any(getFanUpdateIntervalMsg{id: id, reply: reply})); err != nil {
		return 0, err
	}

	return reply.Wait(ctx)
}

func (c Client) GetConfig(ctx context.Context, id device.ID) (*device.GpuConfig, error) {
	reply := actor.NewReply[*device.GpuConfig]()
	if err := actor.Send(ctx, c.mailbox, any(getConfigMsg{id: id, reply: reply})); err != nil {
		return nil, err
	}

	return reply.Wait(ctx)
}

func (c Client) AssignProfile(ctx context.Context, id device.ID, profile string) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(assignProfileMsg{id: id, profile: profile, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) SetProfileFanMode(ctx context.Context, profile string, mode fancurve.FanMode) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(setProfileFanModeMsg{profile: profile, mode: mode, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) SetProfileFanCurve(ctx context.Context, profile string, curveName *string) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(setProfileFanCurveMsg{profile: profile, curveName: curveName, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) SetProfileConfig(ctx context.Context, profile string, configName *string) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(setProfileConfigMsg{profile: profile, configName: configName, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) SetProfileUpdateInterval(ctx context.Context, profile string, interval time.Duration) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(setProfileUpdateIntervalMsg{profile: profile, interval: interval, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) SetFanCurve(ctx context.Context, name string, info fancurve.FanCurveInfo) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(setFanCurveMsg{name: name, info: info, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) SetConfig(ctx context.Context, name string, config device.GpuConfig) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(setConfigMsg{name: name, config: config, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) SaveConfig(ctx context.Context) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(saveConfigMsg{reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}
