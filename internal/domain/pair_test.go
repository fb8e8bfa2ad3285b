package domain

import "testing"

func TestValidSubmissionTime(t *testing.T) {
	s := &PairState{MaxSubmitDriftMs: 1000}

	cases := []struct {
		name     string
		last     int64
		submit   int64
		accepted bool
	}{
		{"fresh state accepts anything", 0, 5, true},
		{"ahead of tracker", 10_000, 12_000, true},
		{"behind within tolerance", 10_000, 9_500, true},
		{"exactly at tolerance", 10_000, 9_000, true},
		{"behind beyond tolerance", 10_000, 8_999, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s.LastSubmitTime = tc.last
			if got := s.ValidSubmissionTime(tc.submit); got != tc.accepted {
				t.Errorf("last=%d submit=%d: got %v, want %v", tc.last, tc.submit, got, tc.accepted)
			}
		})
	}
}

func TestSetRolesRefusedMidSync(t *testing.T) {
	s := &PairState{Roles: RoleSet(RoleProcess)}
	s.SyncInProgress = true

	if err := s.SetRoles(RoleSet(RoleMatch)); err != ErrSyncInProgress {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}
	if !s.Roles.Has(RoleProcess) {
		t.Error("refused transition must not change roles")
	}

	s.SyncInProgress = false
	if err := s.SetRoles(RoleSet(RoleMatch)); err != nil {
		t.Fatalf("role change failed: %v", err)
	}
	if !s.Roles.Has(RoleMatch) || s.Roles.Has(RoleProcess) {
		t.Errorf("unexpected role set: %b", s.Roles)
	}
}

func TestRoleSetHas(t *testing.T) {
	set := RoleSet(RoleProcess | RoleChart)

	if !set.Has(RoleProcess) || !set.Has(RoleChart) {
		t.Error("held roles not reported")
	}
	if set.Has(RoleMatch) || set.Has(RoleOrderBook) {
		t.Error("unheld roles reported")
	}
}

func TestOrderSignPayloadDistinguishesFields(t *testing.T) {
	base := Order{
		PairID: 7, Side: SideBid, Price: 100, Quantity: 10, Amount: 990,
		FeeBps: 100, UserPubKey: "u", SubmitTime: 1000, UserHash: "h1",
	}

	a := base
	b := base
	b.Price = 101
	if string(a.SignPayload()) == string(b.SignPayload()) {
		t.Error("price change must alter the payload")
	}

	c := base
	c.OrderID = 5
	c.OperatorPubKey = "op"
	if string(base.SignPayload()) != string(c.SignPayload()) {
		t.Error("operator fields must not be covered by the user signature")
	}
	if string(c.AdmissionPayload()) == string(c.SignPayload()) {
		t.Error("admission payload must extend the user payload")
	}
}

func TestSideOpposite(t *testing.T) {
	if SideBid.Opposite() != SideAsk || SideAsk.Opposite() != SideBid {
		t.Error("opposite sides wrong")
	}
	if SideBid.String() != "BID" || SideAsk.String() != "ASK" {
		t.Error("side names wrong")
	}
}
