package password

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist es un set inmutable de passwords prohibidos.
type Blacklist struct {
	data map[string]struct{}
}

// LoadBlacklist lee un archivo con un password por línea ("#" comenta).
// Path vacío devuelve una lista vacía.
func LoadBlacklist(path string) (*Blacklist, error) {
	if strings.TrimSpace(path) == "" {
		return &Blacklist{data: map[string]struct{}{}}, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBlacklist(f)
}

// ReadBlacklist construye la lista desde un reader.
func ReadBlacklist(r io.Reader) (*Blacklist, error) {
	bl := &Blacklist{data: map[string]struct{}{}}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(strings.ToLower(sc.Text()))
		if s != "" && !strings.HasPrefix(s, "#") {
			bl.data[s] = struct{}{}
		}
	}
	return bl, sc.Err()
}

// Contains es nil-safe.
func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}
