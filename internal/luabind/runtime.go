// Package luabind exposes the sharing client to Lua scripts as the global
// `sharing` module.
//
// gopher-lua states are not goroutine-safe. A Runtime must be driven from a
// single goroutine: scripts run there, and so do event handlers. Registry
// callbacks only enqueue deliveries; Pump, Serve and the Lua-side
// sharing.poll drain the queue and invoke handlers with a protected call.
package luabind

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"sharingd/internal/registry"
	"sharingd/internal/sharing"
	"sharingd/pkg/types"
)

// DefaultQueueSize bounds pending deliveries per runtime.
const DefaultQueueSize = 64

var (
	// ErrClosed is returned when using a closed runtime.
	ErrClosed = errors.New("lua runtime closed")

	errQueueFull = errors.New("lua event queue full")
)

type delivery struct {
	key string
	ev  types.SharingEvent
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runtime) { r.log = l }
}

// WithQueueSize sets the capacity of the delivery queue.
func WithQueueSize(n int) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// WithName labels the runtime in logs, usually with the script name.
func WithName(name string) Option {
	return func(r *Runtime) { r.name = name }
}

// Runtime is one Lua state bound to a sharing client.
type Runtime struct {
	id        string
	name      string
	L         *lua.LState
	client    *sharing.Client
	log       zerolog.Logger
	queueSize int
	queue     chan delivery

	// Owned by the goroutine driving the runtime.
	keys       map[*lua.LFunction]string
	fns        map[string]*lua.LFunction
	registered map[types.EventKind]map[string]bool
	nextKey    uint64
	closed     bool
}

// New creates a runtime with the safe standard libraries and the sharing
// module installed.
func New(client *sharing.Client, opts ...Option) *Runtime {
	r := &Runtime{
		id:         uuid.NewString(),
		client:     client,
		log:        zerolog.Nop(),
		queueSize:  DefaultQueueSize,
		keys:       make(map[*lua.LFunction]string),
		fns:        make(map[string]*lua.LFunction),
		registered: make(map[types.EventKind]map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.name == "" {
		r.name = r.id
	}
	r.log = r.log.With().Str("runtime", r.name).Logger()
	r.queue = make(chan delivery, r.queueSize)

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.L.SetGlobal("print", r.L.NewFunction(r.print))
	r.L.SetGlobal("sharing", newModule(r).table(r.L))
	return r
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// ID returns the runtime's unique id.
func (r *Runtime) ID() string { return r.id }

func (r *Runtime) scope() string { return "lua:" + r.id }

// DoFile executes a script file.
func (r *Runtime) DoFile(path string) error {
	if r.closed {
		return ErrClosed
	}
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("run %s: %w", path, err)
	}
	return nil
}

// DoString executes a chunk of Lua source.
func (r *Runtime) DoString(src string) error {
	if r.closed {
		return ErrClosed
	}
	return r.L.DoString(src)
}

// Pump runs every queued handler without blocking and returns how many
// were invoked.
func (r *Runtime) Pump() int {
	n := 0
	for {
		select {
		case d := <-r.queue:
			if r.deliver(d) {
				n++
			}
		default:
			return n
		}
	}
}

// Serve runs queued handlers as they arrive until ctx is done.
func (r *Runtime) Serve(ctx context.Context) error {
	if r.closed {
		return ErrClosed
	}
	for {
		select {
		case <-ctx.Done():
			r.Pump()
			return nil
		case d := <-r.queue:
			r.deliver(d)
		}
	}
}

// Registered returns how many handlers the runtime holds for kind.
func (r *Runtime) Registered(kind types.EventKind) int {
	return len(r.registered[kind])
}

// Close unregisters every handler this runtime owns and closes the Lua
// state. Unregistration errors are joined and returned.
func (r *Runtime) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var errs []error
	for _, kind := range types.AllEventKinds() {
		if err := r.offAll(kind); err != nil {
			errs = append(errs, err)
		}
	}
	r.L.Close()
	r.log.Debug().Msg("lua runtime closed")
	return errors.Join(errs...)
}

// keyFor returns the stable key of fn, allocating one on first use.
func (r *Runtime) keyFor(fn *lua.LFunction) string {
	if k, ok := r.keys[fn]; ok {
		return k
	}
	r.nextKey++
	k := fmt.Sprintf("fn%d", r.nextKey)
	r.keys[fn] = k
	r.fns[k] = fn
	return k
}

func (r *Runtime) on(kind types.EventKind, fn *lua.LFunction) error {
	key := r.keyFor(fn)
	cb := func(ev types.SharingEvent) error {
		select {
		case r.queue <- delivery{key: key, ev: ev}:
			return nil
		default:
			return errQueueFull
		}
	}
	if err := r.client.On(kind, registry.NewHandle(r.scope(), key), cb); err != nil {
		r.forgetIfUnused(key)
		return err
	}
	set := r.registered[kind]
	if set == nil {
		set = make(map[string]bool)
		r.registered[kind] = set
	}
	set[key] = true
	return nil
}

func (r *Runtime) off(kind types.EventKind, fn *lua.LFunction) error {
	key, ok := r.keys[fn]
	if !ok || !r.registered[kind][key] {
		return nil
	}
	h := registry.NewHandle(r.scope(), key)
	if err := r.client.Off(kind, &h); err != nil {
		return err
	}
	delete(r.registered[kind], key)
	r.forgetIfUnused(key)
	return nil
}

// offAll removes this runtime's handlers of kind. Handlers owned by other
// runtimes or stream clients are left alone.
func (r *Runtime) offAll(kind types.EventKind) error {
	for key := range r.registered[kind] {
		h := registry.NewHandle(r.scope(), key)
		if err := r.client.Off(kind, &h); err != nil {
			return err
		}
		delete(r.registered[kind], key)
		r.forgetIfUnused(key)
	}
	return nil
}

func (r *Runtime) forgetIfUnused(key string) {
	for _, set := range r.registered {
		if set[key] {
			return
		}
	}
	if fn, ok := r.fns[key]; ok {
		delete(r.keys, fn)
		delete(r.fns, key)
	}
}

// deliver invokes the handler behind d unless it was removed after the
// event was queued.
func (r *Runtime) deliver(d delivery) bool {
	if r.closed || !r.registered[d.ev.Kind][d.key] {
		return false
	}
	fn := r.fns[d.key]
	err := r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, eventToLua(r.L, d.ev))
	if err != nil {
		r.log.Error().Err(err).Str("event", d.ev.Kind.String()).Str("handler", d.key).Msg("lua handler failed")
		return false
	}
	return true
}

func (r *Runtime) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	r.log.Info().Msg(strings.Join(parts, "\t"))
	return 0
}
