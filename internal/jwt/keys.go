package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// KeySet mantiene una sola clave activa. Rotar = cambiar el seed y reiniciar;
// las sesiones firmadas con la clave anterior dejan de validar.
type KeySet struct {
	Priv ed25519.PrivateKey
	Pub  ed25519.PublicKey
	KID  string
	Alg  string // "EdDSA"
}

// NewFromSeed deriva la clave Ed25519 de un seed base64 de 32 bytes.
func NewFromSeed(seedB64 string) (*KeySet, error) {
	seedB64 = strings.TrimSpace(seedB64)
	seed, err := base64.StdEncoding.DecodeString(seedB64)
	if err != nil {
		seed, err = base64.RawURLEncoding.DecodeString(seedB64)
	}
	if err != nil {
		return nil, fmt.Errorf("jwt: signing seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("jwt: signing seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return newKeySet(priv), nil
}

// NewEphemeral genera una clave en memoria (dev/tests).
func NewEphemeral() (*KeySet, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return newKeySet(priv), nil
}

func newKeySet(priv ed25519.PrivateKey) *KeySet {
	pub := priv.Public().(ed25519.PublicKey)
	sum := sha256.Sum256(pub)
	return &KeySet{
		Priv: priv,
		Pub:  pub,
		KID:  base64.RawURLEncoding.EncodeToString(sum[:8]),
		Alg:  "EdDSA",
	}
}
