package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"sharingd/pkg/types"
)

type fakeSubscriber struct {
	mu           sync.Mutex
	subscribes   int
	unsubscribes int
	subErr       error
	unsubErr     error
}

func (f *fakeSubscriber) Subscribe() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return f.subErr
	}
	f.subscribes++
	return nil
}

func (f *fakeSubscriber) Unsubscribe() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unsubErr != nil {
		return f.unsubErr
	}
	f.unsubscribes++
	return nil
}

func (f *fakeSubscriber) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes, f.unsubscribes
}

type recorder struct {
	mu     sync.Mutex
	events []types.SharingEvent
}

func (r *recorder) cb(ev types.SharingEvent) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestRegister_DuplicateRejected(t *testing.T) {
	sub := &fakeSubscriber{}
	r := New(sub)
	h := NewHandle("test", "c1")
	rec := &recorder{}
	if err := r.Register(types.EventSharingStateChange, h, rec.cb); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := r.Register(types.EventSharingStateChange, h, rec.cb)
	if !types.IsDuplicateRegistration(err) {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}
	if r.Len(types.EventSharingStateChange) != 1 {
		t.Fatalf("len=%d", r.Len(types.EventSharingStateChange))
	}
	// Same handle under another kind is a distinct registration.
	if err := r.Register(types.EventSharingUpstreamChange, h, rec.cb); err != nil {
		t.Fatalf("register other kind: %v", err)
	}
}

func TestRegister_NilCallbackIsParameterError(t *testing.T) {
	r := New(&fakeSubscriber{})
	err := r.Register(types.EventSharingStateChange, NewHandle("t", "x"), nil)
	be, ok := types.AsBusinessError(err)
	if !ok || be.Code != types.CodeParameterError {
		t.Fatalf("expected parameter error, got %v", err)
	}
}

func TestSubscription_EstablishedOnceAndTornDownOnce(t *testing.T) {
	sub := &fakeSubscriber{}
	r := New(sub)
	rec := &recorder{}
	for i := 0; i < 3; i++ {
		h := NewHandle("test", fmt.Sprintf("c%d", i))
		if err := r.Register(types.EventInterfaceSharingStateChange, h, rec.cb); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}
	if s, _ := sub.counts(); s != 1 {
		t.Fatalf("subscribes=%d, want 1", s)
	}
	for i := 0; i < 3; i++ {
		h := NewHandle("test", fmt.Sprintf("c%d", i))
		if err := r.Unregister(types.EventInterfaceSharingStateChange, &h); err != nil {
			t.Fatalf("unregister %d: %v", i, err)
		}
		_, u := sub.counts()
		if i < 2 && u != 0 {
			t.Fatalf("unsubscribed early after %d removals", i+1)
		}
	}
	if _, u := sub.counts(); u != 1 {
		t.Fatalf("unsubscribes=%d, want 1", u)
	}
	if r.Subscribed() {
		t.Fatalf("expected no active subscription")
	}
	// Registering again re-establishes exactly once more.
	_ = r.Register(types.EventSharingStateChange, NewHandle("test", "again"), rec.cb)
	if s, _ := sub.counts(); s != 2 {
		t.Fatalf("subscribes=%d, want 2", s)
	}
}

func TestRegister_FailedSubscribeRollsBack(t *testing.T) {
	sub := &fakeSubscriber{subErr: types.NewBusinessError(2200002, "Failed to connect to the service.")}
	r := New(sub)
	rec := &recorder{}
	err := r.Register(types.EventSharingStateChange, NewHandle("t", "a"), rec.cb)
	be, ok := types.AsBusinessError(err)
	if !ok || be.Code != 2200002 {
		t.Fatalf("expected native error, got %v", err)
	}
	if r.Total() != 0 || r.Subscribed() {
		t.Fatalf("failed subscribe left state behind: total=%d subscribed=%v", r.Total(), r.Subscribed())
	}
	sub.mu.Lock()
	sub.subErr = nil
	sub.mu.Unlock()
	if err := r.Register(types.EventSharingStateChange, NewHandle("t", "a"), rec.cb); err != nil {
		t.Fatalf("retry register: %v", err)
	}
}

func TestUnregister_FailedUnsubscribeKeepsEntries(t *testing.T) {
	sub := &fakeSubscriber{}
	r := New(sub)
	rec := &recorder{}
	h := NewHandle("t", "a")
	_ = r.Register(types.EventSharingUpstreamChange, h, rec.cb)

	sub.mu.Lock()
	sub.unsubErr = errors.New("ipc down")
	sub.mu.Unlock()
	if err := r.Unregister(types.EventSharingUpstreamChange, &h); err == nil {
		t.Fatalf("expected unsubscribe failure")
	}
	if r.Len(types.EventSharingUpstreamChange) != 1 || !r.Subscribed() {
		t.Fatalf("entry should stay for retry")
	}
	sub.mu.Lock()
	sub.unsubErr = nil
	sub.mu.Unlock()
	if err := r.Unregister(types.EventSharingUpstreamChange, &h); err != nil {
		t.Fatalf("retry unregister: %v", err)
	}
	if r.Total() != 0 {
		t.Fatalf("total=%d", r.Total())
	}
}

func TestUnregister_UnknownIsNoop(t *testing.T) {
	sub := &fakeSubscriber{}
	r := New(sub)
	rec := &recorder{}
	kept := NewHandle("t", "kept")
	_ = r.Register(types.EventSharingStateChange, kept, rec.cb)

	missing := NewHandle("t", "missing")
	if err := r.Unregister(types.EventSharingStateChange, &missing); err != nil {
		t.Fatalf("unregister unknown: %v", err)
	}
	if err := r.Unregister(types.EventSharingUpstreamChange, nil); err != nil {
		t.Fatalf("unregister empty kind: %v", err)
	}
	if r.Len(types.EventSharingStateChange) != 1 {
		t.Fatalf("other observer affected")
	}
	if _, u := sub.counts(); u != 0 {
		t.Fatalf("no-op must not touch the native subscription")
	}
}

func TestUnregister_AllOfKindLeavesOtherKinds(t *testing.T) {
	r := New(&fakeSubscriber{})
	rec := &recorder{}
	_ = r.Register(types.EventSharingStateChange, NewHandle("t", "a"), rec.cb)
	_ = r.Register(types.EventSharingStateChange, NewHandle("t", "b"), rec.cb)
	_ = r.Register(types.EventSharingUpstreamChange, NewHandle("t", "c"), rec.cb)

	if err := r.Unregister(types.EventSharingStateChange, nil); err != nil {
		t.Fatalf("unregister all: %v", err)
	}
	if r.Len(types.EventSharingStateChange) != 0 {
		t.Fatalf("state observers remain")
	}
	if got := r.Handles(types.EventSharingUpstreamChange); len(got) != 1 || got[0].Key != "c" {
		t.Fatalf("upstream observers=%v", got)
	}
	if !r.Subscribed() {
		t.Fatalf("subscription must stay while observers remain")
	}
}

func TestDispatch_OnlyMatchingKind(t *testing.T) {
	r := New(&fakeSubscriber{})
	state, upstream := &recorder{}, &recorder{}
	_ = r.Register(types.EventSharingStateChange, NewHandle("t", "s1"), state.cb)
	_ = r.Register(types.EventSharingStateChange, NewHandle("t", "s2"), state.cb)
	_ = r.Register(types.EventSharingUpstreamChange, NewHandle("t", "u"), upstream.cb)

	if n := r.Dispatch(types.NewSharingStateEvent(true)); n != 2 {
		t.Fatalf("delivered=%d, want 2", n)
	}
	if state.len() != 2 || upstream.len() != 0 {
		t.Fatalf("state=%d upstream=%d", state.len(), upstream.len())
	}
}

func TestDispatch_IsolatesFailingObservers(t *testing.T) {
	r := New(&fakeSubscriber{})
	rec := &recorder{}
	_ = r.Register(types.EventSharingStateChange, NewHandle("t", "panics"), func(types.SharingEvent) error {
		panic("boom")
	})
	_ = r.Register(types.EventSharingStateChange, NewHandle("t", "errors"), func(types.SharingEvent) error {
		return errors.New("nope")
	})
	_ = r.Register(types.EventSharingStateChange, NewHandle("t", "ok"), rec.cb)

	if n := r.Dispatch(types.NewSharingStateEvent(false)); n != 1 {
		t.Fatalf("delivered=%d, want 1", n)
	}
	if rec.len() != 1 {
		t.Fatalf("healthy observer missed the event")
	}
}

func TestUpstreamScenario(t *testing.T) {
	sub := &fakeSubscriber{}
	r := New(sub)
	rec := &recorder{}
	c1 := NewHandle("script", "C1")
	if err := r.Register(types.EventSharingUpstreamChange, c1, rec.cb); err != nil {
		t.Fatalf("register: %v", err)
	}
	r.Dispatch(types.NewUpstreamEvent(types.NetHandle{NetID: 7}))
	if rec.len() != 1 || rec.events[0].Upstream == nil || rec.events[0].Upstream.NetID != 7 {
		t.Fatalf("unexpected events: %+v", rec.events)
	}
	if err := r.Unregister(types.EventSharingUpstreamChange, &c1); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	r.Dispatch(types.NewUpstreamEvent(types.NetHandle{NetID: 7}))
	if rec.len() != 1 {
		t.Fatalf("callback invoked after unregistration")
	}
	if _, u := sub.counts(); u != 1 {
		t.Fatalf("native unsubscribe not issued")
	}
}

func TestClose(t *testing.T) {
	sub := &fakeSubscriber{}
	r := New(sub)
	rec := &recorder{}
	_ = r.Register(types.EventSharingStateChange, NewHandle("t", "a"), rec.cb)
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, u := sub.counts(); u != 1 {
		t.Fatalf("close must unsubscribe")
	}
	if err := r.Register(types.EventSharingStateChange, NewHandle("t", "b"), rec.cb); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestConcurrentRegisterDispatch(t *testing.T) {
	sub := &fakeSubscriber{}
	r := New(sub)
	rec := &recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			h := NewHandle("t", fmt.Sprintf("g%d", i))
			for j := 0; j < 50; j++ {
				_ = r.Register(types.EventSharingStateChange, h, rec.cb)
				_ = r.Unregister(types.EventSharingStateChange, &h)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Dispatch(types.NewSharingStateEvent(j%2 == 0))
			}
		}()
	}
	wg.Wait()
	if r.Total() != 0 || r.Subscribed() {
		t.Fatalf("total=%d subscribed=%v", r.Total(), r.Subscribed())
	}
	s, u := sub.counts()
	if s != u {
		t.Fatalf("subscribes=%d unsubscribes=%d must balance", s, u)
	}
}

func TestHandleEquality(t *testing.T) {
	a := NewHandle("lua:1", "f1")
	b := a
	if a != b || a.IsZero() {
		t.Fatalf("copied handle must compare equal")
	}
	if a == NewHandle("lua:2", "f1") {
		t.Fatalf("scope must participate in equality")
	}
	if a.String() != "lua:1/f1" {
		t.Fatalf("string=%q", a.String())
	}
}
