// Package secretbox cifra campos secretos (app password, api secret) en reposo.
//
// Formato: base64(nonce)|base64(ciphertext), AES-256-GCM. Cada propósito usa una
// subclave derivada con HKDF-SHA256 de la clave maestra, así un valor cifrado como
// api secret no se puede descifrar como app password.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	nonceSizeGCM      = 12
	requiredKeyLength = 32
	sep               = "|"
)

// Purpose identifica el campo cifrado; forma parte del info de HKDF.
type Purpose string

const (
	PurposeAppPassword Purpose = "employee.app_password"
	PurposeAPISecret   Purpose = "user.api_secret"
)

var (
	ErrInvalidKey    = errors.New("secretbox: master key must be 32 bytes")
	ErrInvalidFormat = errors.New("secretbox: expected base64(nonce)|base64(ciphertext)")
)

// Box cifra y descifra con subclaves derivadas de una clave maestra.
type Box struct {
	master []byte
}

// New acepta la clave en base64 (std/raw), hex de 64 chars o 32 bytes crudos.
func New(key string) (*Box, error) {
	k, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	return &Box{master: k}, nil
}

// ParseKey decodifica la clave maestra probando base64, hex y crudo, en ese orden.
func ParseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if len(key) == 2*requiredKeyLength {
		if b, err := hex.DecodeString(key); err == nil {
			return b, nil
		}
	}
	if len(key) == requiredKeyLength {
		return []byte(key), nil
	}
	return nil, ErrInvalidKey
}

func (b *Box) aead(p Purpose) (cipher.AEAD, error) {
	sub := make([]byte, requiredKeyLength)
	r := hkdf.New(sha256.New, b.master, nil, []byte(p))
	if _, err := io.ReadFull(r, sub); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	block, err := aes.NewCipher(sub)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt cifra plain para el propósito dado.
func (b *Box) Encrypt(p Purpose, plain string) (string, error) {
	aead, err := b.aead(p)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}
	ct := aead.Seal(nil, nonce, []byte(plain), []byte(p))
	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt revierte Encrypt. Falla si el valor fue manipulado o es de otro propósito.
func (b *Box) Decrypt(p Purpose, enc string) (string, error) {
	parts := strings.Split(enc, sep)
	if len(parts) != 2 {
		return "", ErrInvalidFormat
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(nonce) != nonceSizeGCM {
		return "", fmt.Errorf("secretbox: nonce must be %d bytes, got %d", nonceSizeGCM, len(nonce))
	}
	aead, err := b.aead(p)
	if err != nil {
		return "", err
	}
	pt, err := aead.Open(nil, nonce, ct, []byte(p))
	if err != nil {
		return "", fmt.Errorf("gcm auth/decrypt: %w", err)
	}
	return string(pt), nil
}
