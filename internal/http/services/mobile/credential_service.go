package mobile

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
	"github.com/dropDatabas3/essgate/internal/security/secretbox"
	tokens "github.com/dropDatabas3/essgate/internal/security/token"
)

// CredentialLength largo de api_key y api_secret.
const CredentialLength = 15

const maxKeyAttempts = 3

// Credentials par api_key / api_secret en claro.
type Credentials struct {
	APIKey    string
	APISecret string
}

// CredentialService emite credenciales API para un usuario.
type CredentialService interface {
	// Issue conserva api_key si ya existe, rota api_secret y devuelve el
	// secreto tal como quedó guardado.
	Issue(ctx context.Context, userID string) (*Credentials, error)
}

type credentialService struct {
	users repository.UserRepository
	box   *secretbox.Box
}

func NewCredentialService(d Deps) CredentialService {
	return &credentialService{users: d.Users, box: d.Box}
}

func (s *credentialService) Issue(ctx context.Context, userID string) (*Credentials, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("mobile.credentials"),
		logger.Op("Issue"),
		logger.UserID(userID),
	)

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}

	for attempt := 1; ; attempt++ {
		key := u.APIKey
		fresh := key == ""
		if fresh {
			if key, err = tokens.GenerateHash(CredentialLength); err != nil {
				return nil, err
			}
		}
		secret, err := tokens.GenerateHash(CredentialLength)
		if err != nil {
			return nil, err
		}
		enc, err := s.box.Encrypt(secretbox.PurposeAPISecret, secret)
		if err != nil {
			return nil, fmt.Errorf("encrypt api secret: %w", err)
		}

		err = s.users.UpdateAPICredentials(ctx, userID, key, enc)
		if errors.Is(err, repository.ErrConflict) && fresh && attempt < maxKeyAttempts {
			log.Warn("api key collision, regenerating")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save api credentials: %w", err)
		}
		if fresh {
			log.Info("api key created")
		}
		break
	}

	// releer: lo devuelto es lo persistido
	saved, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user %s: %w", userID, err)
	}
	plain, err := s.box.Decrypt(secretbox.PurposeAPISecret, saved.APISecretEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt api secret: %w", err)
	}
	return &Credentials{APIKey: saved.APIKey, APISecret: plain}, nil
}
