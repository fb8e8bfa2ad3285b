// Package identity provides the operator signing identity and peer
// signature verification on ed25519 keys. Public keys travel as hex strings
// everywhere outside this package.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// KeyRing holds the local operator key pair and verifies peer signatures.
type KeyRing struct {
	priv   ed25519.PrivateKey
	pubHex string
}

// NewKeyRing derives the operator key pair from a 32-byte hex seed.
func NewKeyRing(seedHex string) (*KeyRing, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &KeyRing{
		priv:   priv,
		pubHex: hex.EncodeToString(priv.Public().(ed25519.PublicKey)),
	}, nil
}

// NewEphemeralKeyRing generates a random key pair. Used by tests and
// single-node development setups.
func NewEphemeralKeyRing() (*KeyRing, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyRing{
		priv:   priv,
		pubHex: hex.EncodeToString(priv.Public().(ed25519.PublicKey)),
	}, nil
}

// PubKey returns the hex-encoded operator public key.
func (k *KeyRing) PubKey() string {
	return k.pubHex
}

// Sign signs a payload with the operator key.
func (k *KeyRing) Sign(payload []byte) []byte {
	return ed25519.Sign(k.priv, payload)
}

// Verify checks a signature against a hex-encoded public key. Malformed
// keys and signatures verify as false, never as an error.
func (k *KeyRing) Verify(pubKey string, sig []byte, payload []byte) bool {
	raw, err := hex.DecodeString(pubKey)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return false
	}
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(raw), payload, sig)
}
