package sharing

import (
	"sharingd/internal/adapter"
	"sharingd/internal/native"
	"sharingd/pkg/types"
)

// observer is the one callback installed on the native service.
type observer struct {
	c *Client
}

var _ native.EventCallback = (*observer)(nil)

func (o *observer) OnSharingStateChanged(running bool) {
	o.c.reg.Dispatch(types.NewSharingStateEvent(running))
}

func (o *observer) OnInterfaceSharingStateChanged(t native.IfaceType, iface string, st native.IfaceState) {
	info, err := adapter.InterfaceInfoFromNative(native.InterfaceSharingStateInfo{ShareType: t, Iface: iface, State: st})
	if err != nil {
		o.drop(types.EventInterfaceSharingStateChange, err)
		return
	}
	o.c.reg.Dispatch(types.NewInterfaceStateEvent(info))
}

func (o *observer) OnSharingUpstreamChanged(h native.NetHandle) {
	o.c.reg.Dispatch(types.NewUpstreamEvent(adapter.NetHandleFromNative(h)))
}

func (o *observer) drop(kind types.EventKind, err error) {
	droppedEventsTotal.WithLabelValues(kind.String()).Inc()
	o.c.log.Error().Err(err).Str("event", kind.String()).Msg("dropping unconvertible native event")
}

// subscriber installs and removes the observer on the native service.
type subscriber struct {
	c *Client
}

func (s *subscriber) Subscribe() error {
	return s.c.status(native.OpRegisterSharingEvent, s.c.svc.RegisterSharingEvent(s.c.obs))
}

func (s *subscriber) Unsubscribe() error {
	return s.c.status(native.OpUnregisterSharingEvt, s.c.svc.UnregisterSharingEvent(s.c.obs))
}
