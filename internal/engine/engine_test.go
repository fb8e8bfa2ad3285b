package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CryptoBia/Infinex/internal/domain"
	"github.com/CryptoBia/Infinex/internal/event"
)

func newTestEngine(t *testing.T, admitted chan *domain.Order) *Engine {
	t.Helper()
	hooks := Hooks{}
	if admitted != nil {
		hooks.OnAdmitted = func(o *domain.Order) { admitted <- o }
	}
	return New(stubRegistry{info: testPairInfo()}, newStubBalances(), &stubHistory{},
		stubSigner{pub: "op"}, nil, nil, hooks, 16)
}

func TestRegisterPair(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newTestEngine(t, nil)
	if err := e.RegisterPair(ctx, 99, 1000, allRoles); !errors.Is(err, domain.ErrUnknownPair) {
		t.Fatalf("expected ErrUnknownPair for unconfigured pair, got %v", err)
	}

	if err := e.RegisterPair(ctx, testPairID, 1000, allRoles); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	// Idempotent.
	if err := e.RegisterPair(ctx, testPairID, 1000, allRoles); err != nil {
		t.Fatalf("re-register failed: %v", err)
	}
	if e.Pair(testPairID) == nil {
		t.Fatal("registered pair not retrievable")
	}
}

func TestEnqueueDispatchesToWriter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	admitted := make(chan *domain.Order, 1)
	e := newTestEngine(t, admitted)
	if err := e.RegisterPair(ctx, testPairID, 1000, allRoles); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	env := &testEnv{}
	o := env.order(domain.SideBid, 100, 10, 100, 1000)

	ev := event.AcquireSubmitEvent()
	ev.Order = o
	if err := e.Enqueue(ev); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	select {
	case got := <-admitted:
		if got.OrderID != 1 {
			t.Errorf("expected sequence ID 1, got %d", got.OrderID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("order was not processed by the pair writer")
	}
}

func TestEnqueueUnknownPair(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newTestEngine(t, nil)
	if err := e.RegisterPair(ctx, testPairID, 1000, allRoles); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	ev := &event.PeerOrderEvent{Order: &domain.Order{PairID: 42}}
	if err := e.Enqueue(ev); !errors.Is(err, domain.ErrUnknownPair) {
		t.Fatalf("expected ErrUnknownPair, got %v", err)
	}
}
