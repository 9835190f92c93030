package devicemgr

import (
	"context"
	"time"

	"mossd/internal/actor"
	"mossd/internal/device"
	"mossd/internal/fancurve"
)

// Client is the handle other actors use to talk to a running Manager.
type Client struct {
	mailbox chan any
}

// Client returns a handle bound to this manager's mailbox.
func (m *Manager) Client() Client {
	return Client{mailbox: m.mailbox}
}

func (c Client) ListDevices(ctx context.Context) ([]device.ID, error) {
	reply := actor.NewReply[[]device.ID]()
	if err := actor.Send(ctx, c.mailbox, any(listDevicesMsg{reply: reply})); err != nil {
		return nil, err
	}

	return reply.Wait(ctx)
}

func (c Client) GetDeviceInfo(ctx context.Context, id device.ID) (device.Info, error) {
	reply := actor.NewReply[device.Info]()
	if err := actor.Send(ctx, c.mailbox, any(getDeviceInfoMsg{id: id, reply: reply})); err != nil {
		return device.Info{}, err
	}

	return reply.Wait(ctx)
}

func (c Client) GetDeviceVendorInfo(ctx context.Context, id device.ID) (device.VendorInfo, error) {
	reply := actor.NewReply[device.VendorInfo]()
	if err := actor.Send(ctx, c.mailbox, any(getDeviceVendorInfoMsg{id: id, reply: reply})); err != nil {
		return device.VendorInfo{}, err
	}

	return reply.Wait(ctx)
}

func (c Client) GetDeviceData(ctx context.Context, id device.ID) (device.Sample, error) {
	reply := actor.NewReply[device.Sample]()
	if err := actor.Send(ctx, c.mailbox, any(getDeviceDataMsg{id: id, reply: reply})); err != nil {
		return device.Sample{}, err
	}

	return reply.Wait(ctx)
}

func (c Client) GetDeviceVendorData(ctx context.Context, id device.ID) (device.VendorSample, error) {
	reply := actor.NewReply[device.VendorSample]()
	if err := actor.Send(ctx, c.mailbox, any(getDeviceVendorDataMsg{id: id, reply: reply})); err != nil {
		return device.VendorSample{}, err
	}

	return reply.Wait(ctx)
}

func (c Client) SetDataUpdateInterval(ctx context.Context, id device.ID, interval time.Duration) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(setDataUpdateIntervalMsg{id: id, interval: interval, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) SetFanUpdateInterval(ctx context.Context, id device.ID, interval time.Duration) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(setFanUpdateIntervalMsg{id: id, interval: interval, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) SetFanMode(ctx context.Context, id device.ID, mode fancurve.FanMode) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(setFanModeMsg{id: id, mode: mode, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) SetFanCurve(ctx context.Context, id device.ID, curve fancurve.FanCurveInfo) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(setFanCurveMsg{id: id, curve: curve, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}

func (c Client) ApplyGpuConfig(ctx context.Context, id device.ID, config device.GpuConfig) error {
	reply := actor.NewReply[struct{}]()
	if err := actor.Send(ctx, c.mailbox, any(applyGpuConfigMsg{id: id, config: config, reply: reply})); err != nil {
		return err
	}

	_, err := reply.Wait(ctx)
	return err
}
