package native

import (
	"sort"
	"sync"
)

// Operation names accepted by Simulator.SetStatus.
const (
	OpIsSharingSupported   = "IsSharingSupported"
	OpIsSharing            = "IsSharing"
	OpStartSharing         = "StartSharing"
	OpStopSharing          = "StopSharing"
	OpGetStatsRxBytes      = "GetStatsRxBytes"
	OpGetStatsTxBytes      = "GetStatsTxBytes"
	OpGetStatsTotalBytes   = "GetStatsTotalBytes"
	OpGetSharingIfaces     = "GetSharingIfaces"
	OpGetSharingState      = "GetSharingState"
	OpGetSharableRegexes   = "GetSharableRegexes"
	OpRegisterSharingEvent = "RegisterSharingEvent"
	OpUnregisterSharingEvt = "UnregisterSharingEvent"
)

// SimConfig describes the device the Simulator pretends to be.
type SimConfig struct {
	Supported bool
	// Ifaces maps every enabled link type to its interface name.
	Ifaces map[IfaceType]string
	// Regexes maps a link type to the interface name patterns it may share.
	Regexes       map[IfaceType][]string
	UpstreamNetID int32
}

// DefaultSimConfig enables Wi-Fi, USB and Bluetooth with the usual
// interface names.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Supported: true,
		Ifaces: map[IfaceType]string{
			SharingWifi:      "wlan0",
			SharingUSB:       "usb0",
			SharingBluetooth: "bt-pan",
		},
		Regexes: map[IfaceType][]string{
			SharingWifi:      {`wlan\d`},
			SharingUSB:       {`usb\d`, `rndis\d`},
			SharingBluetooth: {`bt-pan`},
		},
		UpstreamNetID: 100,
	}
}

// Simulator is an in-memory Service. Callbacks are invoked after the
// simulator lock is released, in registration order, on the goroutine that
// triggered the notification.
type Simulator struct {
	mu        sync.Mutex
	cfg       SimConfig
	states    map[IfaceType]IfaceState
	rx, tx    int32
	callbacks []EventCallback
	statuses  map[string]int32
	messages  map[int32]string

	registerCalls   int
	unregisterCalls int
}

// NewSimulator builds a Simulator with every enabled type in NicCanServer.
func NewSimulator(cfg SimConfig) *Simulator {
	s := &Simulator{
		cfg:      cfg,
		states:   make(map[IfaceType]IfaceState, len(cfg.Ifaces)),
		statuses: make(map[string]int32),
		messages: make(map[int32]string),
	}
	for t := range cfg.Ifaces {
		s.states[t] = NicCanServer
	}
	return s
}

var _ Service = (*Simulator)(nil)

// SetStatus makes every subsequent call to op fail with code. A zero code
// clears the override.
func (s *Simulator) SetStatus(op string, code int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == Success {
		delete(s.statuses, op)
		return
	}
	s.statuses[op] = code
}

// SetMessage overrides the message ErrorCodeAndMessage returns for code.
// The code itself is then returned unnormalized.
func (s *Simulator) SetMessage(code int32, msg string) {
	s.mu.Lock()
	s.messages[code] = msg
	s.mu.Unlock()
}

// SetSupported toggles device support for sharing.
func (s *Simulator) SetSupported(v bool) {
	s.mu.Lock()
	s.cfg.Supported = v
	s.mu.Unlock()
}

// SetIfaceState forces the state of an enabled type without notifying.
func (s *Simulator) SetIfaceState(t IfaceType, st IfaceState) {
	s.mu.Lock()
	if _, ok := s.cfg.Ifaces[t]; ok {
		s.states[t] = st
	}
	s.mu.Unlock()
}

// AddTraffic accumulates shared traffic counters (KB).
func (s *Simulator) AddTraffic(rx, tx int32) {
	s.mu.Lock()
	s.rx += rx
	s.tx += tx
	s.mu.Unlock()
}

// RegisterCalls reports how many successful RegisterSharingEvent calls were made.
func (s *Simulator) RegisterCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerCalls
}

// UnregisterCalls reports how many successful UnregisterSharingEvent calls were made.
func (s *Simulator) UnregisterCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unregisterCalls
}

// Callbacks reports how many callbacks are currently registered.
func (s *Simulator) Callbacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}

func (s *Simulator) statusLocked(op string) int32 {
	return s.statuses[op]
}

func (s *Simulator) anyServingLocked() bool {
	for _, st := range s.states {
		if st == NicServing {
			return true
		}
	}
	return false
}

func (s *Simulator) IsSharingSupported() (bool, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.statusLocked(OpIsSharingSupported); code != Success {
		return false, code
	}
	return s.cfg.Supported, Success
}

func (s *Simulator) IsSharing() (bool, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.statusLocked(OpIsSharing); code != Success {
		return false, code
	}
	return s.anyServingLocked(), Success
}

func (s *Simulator) StartSharing(t IfaceType) int32 {
	s.mu.Lock()
	if code := s.statusLocked(OpStartSharing); code != Success {
		s.mu.Unlock()
		return code
	}
	if !s.cfg.Supported {
		s.mu.Unlock()
		return ErrServiceUnavailable
	}
	iface, ok := s.cfg.Ifaces[t]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownType
	}
	if s.states[t] == NicServing {
		s.mu.Unlock()
		return ErrUnavailableIface
	}
	wasSharing := s.anyServingLocked()
	s.states[t] = NicServing
	upstream := NetHandle{NetID: s.cfg.UpstreamNetID}
	cbs := s.snapshotLocked()
	s.mu.Unlock()

	for _, cb := range cbs {
		cb.OnInterfaceSharingStateChanged(t, iface, NicServing)
	}
	if !wasSharing {
		for _, cb := range cbs {
			cb.OnSharingStateChanged(true)
		}
		for _, cb := range cbs {
			cb.OnSharingUpstreamChanged(upstream)
		}
	}
	return Success
}

func (s *Simulator) StopSharing(t IfaceType) int32 {
	s.mu.Lock()
	if code := s.statusLocked(OpStopSharing); code != Success {
		s.mu.Unlock()
		return code
	}
	iface, ok := s.cfg.Ifaces[t]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownType
	}
	if s.states[t] != NicServing {
		s.mu.Unlock()
		return Success
	}
	s.states[t] = NicCanServer
	stillSharing := s.anyServingLocked()
	cbs := s.snapshotLocked()
	s.mu.Unlock()

	for _, cb := range cbs {
		cb.OnInterfaceSharingStateChanged(t, iface, NicCanServer)
	}
	if !stillSharing {
		for _, cb := range cbs {
			cb.OnSharingStateChanged(false)
		}
	}
	return Success
}

func (s *Simulator) GetStatsRxBytes() (int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.statusLocked(OpGetStatsRxBytes); code != Success {
		return 0, code
	}
	return s.rx, Success
}

func (s *Simulator) GetStatsTxBytes() (int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.statusLocked(OpGetStatsTxBytes); code != Success {
		return 0, code
	}
	return s.tx, Success
}

func (s *Simulator) GetStatsTotalBytes() (int32, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.statusLocked(OpGetStatsTotalBytes); code != Success {
		return 0, code
	}
	return s.rx + s.tx, Success
}

func (s *Simulator) GetSharingIfaces(state IfaceState) ([]string, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.statusLocked(OpGetSharingIfaces); code != Success {
		return nil, code
	}
	if state < NicServing || state > NicError {
		return nil, ErrInvalidParameter
	}
	var out []string
	for t, st := range s.states {
		if st == state {
			out = append(out, s.cfg.Ifaces[t])
		}
	}
	sort.Strings(out)
	return out, Success
}

func (s *Simulator) GetSharingState(t IfaceType) (IfaceState, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.statusLocked(OpGetSharingState); code != Success {
		return NicCanServer, code
	}
	st, ok := s.states[t]
	if !ok {
		return NicCanServer, ErrUnknownType
	}
	return st, Success
}

func (s *Simulator) GetSharableRegexes(t IfaceType) ([]string, int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.statusLocked(OpGetSharableRegexes); code != Success {
		return nil, code
	}
	if _, ok := s.cfg.Ifaces[t]; !ok {
		return nil, ErrUnknownType
	}
	return append([]string(nil), s.cfg.Regexes[t]...), Success
}

func (s *Simulator) RegisterSharingEvent(cb EventCallback) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.statusLocked(OpRegisterSharingEvent); code != Success {
		return code
	}
	if cb == nil {
		return ErrParameter
	}
	s.registerCalls++
	for _, c := range s.callbacks {
		if c == cb {
			return Success
		}
	}
	s.callbacks = append(s.callbacks, cb)
	return Success
}

func (s *Simulator) UnregisterSharingEvent(cb EventCallback) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code := s.statusLocked(OpUnregisterSharingEvt); code != Success {
		return code
	}
	if cb == nil {
		return ErrParameter
	}
	s.unregisterCalls++
	for i, c := range s.callbacks {
		if c == cb {
			s.callbacks = append(s.callbacks[:i], s.callbacks[i+1:]...)
			break
		}
	}
	return Success
}

func (s *Simulator) ErrorCodeAndMessage(code int32) (int32, string) {
	s.mu.Lock()
	msg, ok := s.messages[code]
	s.mu.Unlock()
	if ok {
		return code, msg
	}
	return ConvertErrorCode(code)
}

// ForceSharingStateEvent delivers a raw sharing state notification.
func (s *Simulator) ForceSharingStateEvent(running bool) {
	for _, cb := range s.snapshot() {
		cb.OnSharingStateChanged(running)
	}
}

// ForceInterfaceEvent delivers a raw interface notification. Values outside
// the known enums are passed through untouched.
func (s *Simulator) ForceInterfaceEvent(t IfaceType, iface string, st IfaceState) {
	for _, cb := range s.snapshot() {
		cb.OnInterfaceSharingStateChanged(t, iface, st)
	}
}

// ForceUpstreamEvent delivers a raw upstream notification.
func (s *Simulator) ForceUpstreamEvent(h NetHandle) {
	for _, cb := range s.snapshot() {
		cb.OnSharingUpstreamChanged(h)
	}
}

func (s *Simulator) snapshot() []EventCallback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() []EventCallback {
	out := make([]EventCallback, len(s.callbacks))
	copy(out, s.callbacks)
	return out
}
