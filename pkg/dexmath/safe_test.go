package dexmath

import "testing"

func TestSafeMul(t *testing.T) {
	if got := SafeMul(250, 4); got != 1000 {
		t.Errorf("SafeMul(250, 4) = %d", got)
	}
	if got := SafeMul(0, 42); got != 0 {
		t.Errorf("SafeMul(0, 42) = %d", got)
	}
}

func TestSafeMulPanicsOnOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on wrapped product")
		}
	}()
	SafeMul(1<<63, 4)
}

func TestSafeAddPanicsOnOverflow(t *testing.T) {
	if got := SafeAdd(40, 2); got != 42 {
		t.Errorf("SafeAdd(40, 2) = %d", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic on wrapped sum")
		}
	}()
	SafeAdd(int64(1)<<62, int64(1)<<62)
}

func TestSafeSubPanicsOnOverflow(t *testing.T) {
	if got := SafeSub(40, 2); got != 38 {
		t.Errorf("SafeSub(40, 2) = %d", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic on wrapped difference")
		}
	}()
	SafeSub(-(int64(1) << 62), int64(1)<<62+1)
}
