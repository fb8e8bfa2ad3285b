package engine

import (
	"testing"

	"github.com/CryptoBia/Infinex/internal/domain"
)

func bookOrder(id int64, side domain.Side, price, qty uint64, user string) *domain.Order {
	return &domain.Order{
		OrderID:      id,
		PairID:       testPairID,
		Side:         side,
		Price:        price,
		Quantity:     qty,
		RemainingQty: int64(qty),
		UserPubKey:   user,
	}
}

func TestScanCrossingBidOrder(t *testing.T) {
	b := NewBook(testPairID)
	b.Insert(bookOrder(1, domain.SideAsk, 102, 1, "a"))
	b.Insert(bookOrder(2, domain.SideAsk, 100, 1, "a"))
	b.Insert(bookOrder(3, domain.SideAsk, 101, 1, "a"))
	b.Insert(bookOrder(4, domain.SideAsk, 100, 1, "b")) // same level, later

	var visited []int64
	b.ScanCrossing(bookOrder(9, domain.SideBid, 101, 10, "c"), func(o *domain.Order) bool {
		visited = append(visited, o.OrderID)
		return true
	})

	// Lowest ask first, FIFO within the level; 102 does not cross.
	want := []int64{2, 4, 3}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited %v, want %v", visited, want)
		}
	}
}

func TestScanCrossingAskOrder(t *testing.T) {
	b := NewBook(testPairID)
	b.Insert(bookOrder(1, domain.SideBid, 98, 1, "a"))
	b.Insert(bookOrder(2, domain.SideBid, 100, 1, "a"))
	b.Insert(bookOrder(3, domain.SideBid, 99, 1, "a"))

	var visited []int64
	b.ScanCrossing(bookOrder(9, domain.SideAsk, 99, 10, "c"), func(o *domain.Order) bool {
		visited = append(visited, o.OrderID)
		return true
	})

	// Highest bid first; 98 does not cross.
	want := []int64{2, 3}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited %v, want %v", visited, want)
		}
	}
}

func TestScanCrossingStopsOnFalse(t *testing.T) {
	b := NewBook(testPairID)
	b.Insert(bookOrder(1, domain.SideAsk, 100, 1, "a"))
	b.Insert(bookOrder(2, domain.SideAsk, 100, 1, "a"))

	count := 0
	b.ScanCrossing(bookOrder(9, domain.SideBid, 100, 10, "c"), func(o *domain.Order) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("expected scan to stop after first order, visited %d", count)
	}
}

func TestOrdersByUser(t *testing.T) {
	b := NewBook(testPairID)
	b.Insert(bookOrder(1, domain.SideBid, 100, 1, "alice"))
	b.Insert(bookOrder(2, domain.SideAsk, 110, 1, "bob"))
	b.Insert(bookOrder(3, domain.SideBid, 90, 1, "alice"))

	ids := b.OrdersByUser("alice")
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("unexpected alice orders: %v", ids)
	}
	if got := b.OrdersByUser("nobody"); len(got) != 0 {
		t.Errorf("expected no orders, got %v", got)
	}
}

func TestCompactCleansIndices(t *testing.T) {
	b := NewBook(testPairID)
	filled := bookOrder(1, domain.SideBid, 100, 1, "alice")
	filled.RemainingQty = 0
	b.Insert(filled)
	b.Insert(bookOrder(2, domain.SideBid, 100, 1, "alice"))

	if removed := b.Compact(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if b.Get(1) != nil {
		t.Error("filled order should be gone")
	}
	if ids := b.OrdersByUser("alice"); len(ids) != 1 || ids[0] != 2 {
		t.Errorf("user index not cleaned: %v", ids)
	}

	// The surviving order still crosses.
	count := 0
	b.ScanCrossing(bookOrder(9, domain.SideAsk, 100, 1, "c"), func(o *domain.Order) bool {
		count++
		return true
	})
	if count != 1 {
		t.Errorf("expected 1 crossing order after compact, got %d", count)
	}
}

// BenchmarkSubmitAndMatch measures the full hotpath: intake pipeline,
// admission, matching and settlement generation.
func BenchmarkSubmitAndMatch(b *testing.B) {
	state := &domain.PairState{
		PairID:           testPairID,
		Roles:            allRoles,
		MaxSubmitDriftMs: 1 << 40,
	}
	env := &testEnv{balances: newStubBalances(), history: &stubHistory{}}
	env.pe = NewPairEngine(state, stubRegistry{info: testPairInfo()},
		env.balances, env.history, stubSigner{pub: "op"}, nil, nil, Hooks{})
	env.pe.now = func() int64 { return 50_000 }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		side := domain.SideAsk
		if i%2 == 1 {
			side = domain.SideBid
		}
		o := env.order(side, 100, 1, 100, int64(i))
		if err := env.pe.Submit(o); err != nil {
			b.Fatalf("submit failed: %v", err)
		}
		if i%1024 == 0 {
			env.pe.Book().Compact()
		}
	}
}
