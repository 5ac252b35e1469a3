// Package registry is the process-wide observer registry for sharing
// notifications.
//
// Policy: any number of distinct callbacks may observe the same event kind,
// and registering an equal Handle twice for one kind is rejected with
// types.CodeDuplicateRegistration. All observers share a single native
// subscription that is established on the first registration and torn down
// when the last observer is removed.
//
// A failed native subscribe leaves no entry behind. A failed native
// unsubscribe leaves the entries in place so the caller can retry.
//
// One mutex guards the observer list and the subscription flag. Dispatch
// holds it while invoking observers, so an observer is never invoked after
// its Unregister call has returned. Observers must therefore not block and
// must not call back into the Registry.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"sharingd/pkg/types"
)

// ErrClosed is returned by Register after Close.
var ErrClosed = errors.New("registry closed")

// Callback receives a converted event.
type Callback func(types.SharingEvent) error

// Subscriber controls the shared native notification channel.
type Subscriber interface {
	Subscribe() error
	Unsubscribe() error
}

type entry struct {
	kind   types.EventKind
	handle Handle
	cb     Callback
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// Registry holds the observers of every event kind.
type Registry struct {
	mu         sync.Mutex
	sub        Subscriber
	entries    []entry
	subscribed bool
	closed     bool
	log        zerolog.Logger
}

// New creates an empty registry backed by sub.
func New(sub Subscriber, opts ...Option) *Registry {
	r := &Registry{sub: sub, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds cb under kind, subscribing to the native service first if
// this is the first observer.
func (r *Registry) Register(kind types.EventKind, h Handle, cb Callback) error {
	if cb == nil {
		return types.NewBusinessError(types.CodeParameterError, "callback is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	for _, e := range r.entries {
		if e.kind == kind && e.handle == h {
			return types.NewBusinessError(types.CodeDuplicateRegistration,
				fmt.Sprintf("callback %s already registered for %s", h, kind))
		}
	}
	if !r.subscribed {
		err := r.sub.Subscribe()
		recordSubscription("subscribe", err)
		if err != nil {
			r.log.Error().Err(err).Str("event", kind.String()).Msg("native subscribe failed")
			return err
		}
		r.subscribed = true
		r.log.Info().Msg("native sharing subscription established")
	}
	r.entries = append(r.entries, entry{kind: kind, handle: h, cb: cb})
	observersGauge.WithLabelValues(kind.String()).Inc()
	r.log.Debug().Str("event", kind.String()).Str("handle", h.String()).Msg("observer registered")
	return nil
}

// Unregister removes the observer identified by h under kind, or every
// observer of kind when h is nil. Removing nothing is not an error.
func (r *Registry) Unregister(kind types.EventKind, h *Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keep := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.kind == kind && (h == nil || e.handle == *h) {
			continue
		}
		keep = append(keep, e)
	}
	removed := len(r.entries) - len(keep)
	if removed == 0 {
		return nil
	}
	if len(keep) == 0 && r.subscribed {
		err := r.sub.Unsubscribe()
		recordSubscription("unsubscribe", err)
		if err != nil {
			r.log.Error().Err(err).Str("event", kind.String()).Msg("native unsubscribe failed")
			return err
		}
		r.subscribed = false
		r.log.Info().Msg("native sharing subscription torn down")
	}
	r.entries = keep
	observersGauge.WithLabelValues(kind.String()).Sub(float64(removed))
	r.log.Debug().Str("event", kind.String()).Int("removed", removed).Msg("observers unregistered")
	return nil
}

// Dispatch delivers ev to every observer of ev.Kind in registration order
// and returns how many observers accepted it. A failing or panicking
// observer is logged and skipped.
func (r *Registry) Dispatch(ev types.SharingEvent) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dispatchedTotal.WithLabelValues(ev.Kind.String()).Inc()
	delivered := 0
	for _, e := range r.entries {
		if e.kind != ev.Kind {
			continue
		}
		if r.invoke(e, ev) {
			delivered++
		}
	}
	return delivered
}

func (r *Registry) invoke(e entry, ev types.SharingEvent) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			ok = false
			observerFailuresTotal.WithLabelValues(e.kind.String(), "panic").Inc()
			r.log.Error().Str("event", e.kind.String()).Str("handle", e.handle.String()).
				Interface("panic", p).Msg("observer panicked")
		}
	}()
	if err := e.cb(ev); err != nil {
		observerFailuresTotal.WithLabelValues(e.kind.String(), "error").Inc()
		r.log.Error().Err(err).Str("event", e.kind.String()).Str("handle", e.handle.String()).
			Msg("observer failed")
		return false
	}
	return true
}

// Len returns the number of observers of kind.
func (r *Registry) Len(kind types.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// Total returns the number of observers of every kind.
func (r *Registry) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Handles returns the handles registered under kind in dispatch order.
func (r *Registry) Handles(kind types.EventKind) []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Handle
	for _, e := range r.entries {
		if e.kind == kind {
			out = append(out, e.handle)
		}
	}
	return out
}

// Subscribed reports whether the native subscription is active.
func (r *Registry) Subscribed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subscribed
}

// Close drops every observer and tears down the native subscription. The
// entries are dropped even if the native unsubscribe fails; its error is
// returned. Register fails with ErrClosed afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	for _, e := range r.entries {
		observersGauge.WithLabelValues(e.kind.String()).Dec()
	}
	r.entries = nil
	if !r.subscribed {
		return nil
	}
	r.subscribed = false
	err := r.sub.Unsubscribe()
	recordSubscription("unsubscribe", err)
	if err != nil {
		r.log.Error().Err(err).Msg("native unsubscribe on close failed")
		return err
	}
	return nil
}
