package session

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/security/secretbox"
	tokens "github.com/dropDatabas3/essgate/internal/security/token"
)

// ErrInvalidAPIToken credenciales api_key:api_secret inválidas.
var ErrInvalidAPIToken = errors.New("invalid api token")

// APITokenAuthenticator valida "Authorization: token <api_key>:<api_secret>",
// el esquema que usa la app después del login.
type APITokenAuthenticator struct {
	users repository.UserRepository
	box   *secretbox.Box
}

func NewAPITokenAuthenticator(users repository.UserRepository, box *secretbox.Box) *APITokenAuthenticator {
	return &APITokenAuthenticator{users: users, box: box}
}

// ParseAPIToken separa "key:secret".
func ParseAPIToken(raw string) (key, secret string, ok bool) {
	key, secret, ok = strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || key == "" || secret == "" {
		return "", "", false
	}
	return key, secret, true
}

// Authenticate resuelve el usuario dueño de key si secret coincide con el guardado.
func (a *APITokenAuthenticator) Authenticate(ctx context.Context, key, secret string) (*Identity, error) {
	u, err := a.users.GetByAPIKey(ctx, key)
	if repository.IsNotFound(err) {
		return nil, ErrInvalidAPIToken
	}
	if err != nil {
		return nil, err
	}
	if u.APISecretEnc == "" {
		return nil, ErrInvalidAPIToken
	}
	stored, err := a.box.Decrypt(secretbox.PurposeAPISecret, u.APISecretEnc)
	if err != nil {
		return nil, err
	}
	if !tokens.Equal(stored, secret) {
		return nil, ErrInvalidAPIToken
	}
	return &Identity{UserID: u.ID}, nil
}
