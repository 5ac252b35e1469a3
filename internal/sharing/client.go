package sharing

import (
	"fmt"

	"github.com/rs/zerolog"

	"sharingd/internal/adapter"
	"sharingd/internal/native"
	"sharingd/internal/registry"
	"sharingd/pkg/types"
)

// Option configures a Client.
type Option func(*Client)

// WithLogger installs a structured logger on the client and its registry.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client binds a native sharing service.
type Client struct {
	svc native.Service
	reg *registry.Registry
	obs *observer
	log zerolog.Logger
}

// New wires a Client to svc. No native subscription is made until the
// first On call.
func New(svc native.Service, opts ...Option) *Client {
	c := &Client{svc: svc, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	c.obs = &observer{c: c}
	c.reg = registry.New(&subscriber{c: c}, registry.WithLogger(c.log.With().Str("component", "registry").Logger()))
	return c
}

func (c *Client) status(op string, code int32) error {
	recordCall(op, code)
	err := adapter.Translate(c.svc, code)
	if err != nil {
		c.log.Debug().Str("op", op).Int32("native_code", code).Err(err).Msg("native call failed")
	}
	return err
}

func invalidType(t types.SharingIfaceType) error {
	return types.NewBusinessError(types.CodeParameterError, fmt.Sprintf("invalid sharing type %d", int32(t)))
}

func invalidState(s types.SharingIfaceState) error {
	return types.NewBusinessError(types.CodeParameterError, fmt.Sprintf("invalid sharing state %d", int32(s)))
}

// IsSharingSupported reports whether the device can share its network.
func (c *Client) IsSharingSupported() (bool, error) {
	v, code := c.svc.IsSharingSupported()
	if err := c.status(native.OpIsSharingSupported, code); err != nil {
		return false, err
	}
	return v, nil
}

// IsSharing reports whether any link is being shared.
func (c *Client) IsSharing() (bool, error) {
	v, code := c.svc.IsSharing()
	if err := c.status(native.OpIsSharing, code); err != nil {
		return false, err
	}
	return v, nil
}

// StartSharing starts sharing over the given link type.
func (c *Client) StartSharing(t types.SharingIfaceType) error {
	if !t.Valid() {
		return invalidType(t)
	}
	return c.status(native.OpStartSharing, c.svc.StartSharing(adapter.IfaceTypeToNative(t)))
}

// StopSharing stops sharing over the given link type.
func (c *Client) StopSharing(t types.SharingIfaceType) error {
	if !t.Valid() {
		return invalidType(t)
	}
	return c.status(native.OpStopSharing, c.svc.StopSharing(adapter.IfaceTypeToNative(t)))
}

// GetStatsRxBytes returns received traffic in KB.
func (c *Client) GetStatsRxBytes() (int32, error) {
	v, code := c.svc.GetStatsRxBytes()
	if err := c.status(native.OpGetStatsRxBytes, code); err != nil {
		return 0, err
	}
	return v, nil
}

// GetStatsTxBytes returns sent traffic in KB.
func (c *Client) GetStatsTxBytes() (int32, error) {
	v, code := c.svc.GetStatsTxBytes()
	if err := c.status(native.OpGetStatsTxBytes, code); err != nil {
		return 0, err
	}
	return v, nil
}

// GetStatsTotalBytes returns total shared traffic in KB.
func (c *Client) GetStatsTotalBytes() (int32, error) {
	v, code := c.svc.GetStatsTotalBytes()
	if err := c.status(native.OpGetStatsTotalBytes, code); err != nil {
		return 0, err
	}
	return v, nil
}

// GetSharingIfaces lists interface names currently in state.
func (c *Client) GetSharingIfaces(state types.SharingIfaceState) ([]string, error) {
	if !state.Valid() {
		return nil, invalidState(state)
	}
	v, code := c.svc.GetSharingIfaces(adapter.IfaceStateToNative(state))
	if err := c.status(native.OpGetSharingIfaces, code); err != nil {
		return nil, err
	}
	if v == nil {
		v = []string{}
	}
	return v, nil
}

// GetSharingState returns the state of the interface behind t.
func (c *Client) GetSharingState(t types.SharingIfaceType) (types.SharingIfaceState, error) {
	if !t.Valid() {
		return 0, invalidType(t)
	}
	v, code := c.svc.GetSharingState(adapter.IfaceTypeToNative(t))
	if err := c.status(native.OpGetSharingState, code); err != nil {
		return 0, err
	}
	return adapter.IfaceStateFromNative(v)
}

// GetSharableRegexes returns the interface name patterns t may share.
func (c *Client) GetSharableRegexes(t types.SharingIfaceType) ([]string, error) {
	if !t.Valid() {
		return nil, invalidType(t)
	}
	v, code := c.svc.GetSharableRegexes(adapter.IfaceTypeToNative(t))
	if err := c.status(native.OpGetSharableRegexes, code); err != nil {
		return nil, err
	}
	if v == nil {
		v = []string{}
	}
	return v, nil
}

// On registers cb for kind under h. Registering the same handle twice for
// one kind fails with types.CodeDuplicateRegistration.
func (c *Client) On(kind types.EventKind, h registry.Handle, cb registry.Callback) error {
	if h.IsZero() {
		return types.NewBusinessError(types.CodeParameterError, "callback handle is required")
	}
	return c.reg.Register(kind, h, cb)
}

// Off removes the observer h of kind, or every observer of kind when h is
// nil.
func (c *Client) Off(kind types.EventKind, h *registry.Handle) error {
	return c.reg.Unregister(kind, h)
}

// Observers returns how many observers kind has.
func (c *Client) Observers(kind types.EventKind) int {
	return c.reg.Len(kind)
}

// Subscribed reports whether the native callback is currently installed.
func (c *Client) Subscribed() bool {
	return c.reg.Subscribed()
}

// Close drops every observer and removes the native callback.
func (c *Client) Close() error {
	return c.reg.Close()
}
