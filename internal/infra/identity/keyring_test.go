package identity

import (
	"strings"
	"testing"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	k, err := NewEphemeralKeyRing()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	payload := []byte("1100000010000100")
	sig := k.Sign(payload)

	if !k.Verify(k.PubKey(), sig, payload) {
		t.Error("signature should verify against own pub key")
	}
	if k.Verify(k.PubKey(), sig, []byte("tampered")) {
		t.Error("signature should not verify against a different payload")
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	a, _ := NewEphemeralKeyRing()
	b, _ := NewEphemeralKeyRing()

	payload := []byte("payload")
	sig := a.Sign(payload)

	if b.Verify(b.PubKey(), sig, payload) {
		t.Error("signature from a should not verify under b's key")
	}
	if !b.Verify(a.PubKey(), sig, payload) {
		t.Error("any keyring should verify a's signature under a's key")
	}
}

func TestVerifyMalformedInputs(t *testing.T) {
	k, _ := NewEphemeralKeyRing()
	payload := []byte("payload")
	sig := k.Sign(payload)

	if k.Verify("not-hex", sig, payload) {
		t.Error("non-hex pub key must not verify")
	}
	if k.Verify("abcd", sig, payload) {
		t.Error("short pub key must not verify")
	}
	if k.Verify(k.PubKey(), sig[:10], payload) {
		t.Error("truncated signature must not verify")
	}
}

func TestSeedDeterminism(t *testing.T) {
	seed := strings.Repeat("ab", 32)

	k1, err := NewKeyRing(seed)
	if err != nil {
		t.Fatalf("keyring from seed: %v", err)
	}
	k2, _ := NewKeyRing(seed)

	if k1.PubKey() != k2.PubKey() {
		t.Errorf("same seed must derive same pub key: %s vs %s", k1.PubKey(), k2.PubKey())
	}

	if _, err := NewKeyRing("zz"); err == nil {
		t.Error("invalid hex seed must be rejected")
	}
	if _, err := NewKeyRing("abcd"); err == nil {
		t.Error("short seed must be rejected")
	}
}
