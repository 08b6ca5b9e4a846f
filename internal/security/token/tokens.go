package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// GenerateHash devuelve length caracteres hex aleatorios (api_key / api_secret).
func GenerateHash(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("tokens: invalid length %d", length)
	}
	b := make([]byte, (length+1)/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b)[:length], nil
}

// Equal compara dos secretos en tiempo constante.
// Hashea primero para no filtrar la longitud del valor guardado.
func Equal(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
