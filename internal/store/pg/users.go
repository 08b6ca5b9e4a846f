package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
)

// UserRepo implementa repository.UserRepository sobre app_user.
type UserRepo struct {
	db DB
}

func NewUserRepo(db DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, full_name, roles, api_key, api_secret_enc`

func (r *UserRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(repository.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With("id", id).Wrap(err)
	}
	return u, nil
}

func (r *UserRepo) GetByAPIKey(ctx context.Context, apiKey string) (*repository.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE api_key = $1`, apiKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(repository.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With("operation", "get by api key").Wrap(err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*repository.User, error) {
	var (
		u              repository.User
		apiKey, secret *string
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Roles, &apiKey, &secret); err != nil {
		return nil, err
	}
	u.APIKey = deref(apiKey)
	u.APISecretEnc = deref(secret)
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	roles := in.Roles
	if roles == nil {
		roles = []string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO app_user (id, full_name, roles) VALUES ($1, $2, $3)`,
		in.ID, in.FullName, roles,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, oops.Code("USER_CONFLICT").With("id", in.ID).Wrap(repository.ErrConflict)
		}
		return nil, oops.Code("USER_CREATE_FAILED").With("id", in.ID).Wrap(err)
	}
	return &repository.User{ID: in.ID, FullName: in.FullName, Roles: roles}, nil
}

func (r *UserRepo) UpdateAPICredentials(ctx context.Context, id, apiKey, apiSecretEnc string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE app_user SET api_key = $2, api_secret_enc = $3 WHERE id = $1`,
		id, apiKey, apiSecretEnc,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_API_KEY_CONFLICT").With("id", id).Wrap(repository.ErrConflict)
		}
		return oops.Code("USER_UPDATE_CREDENTIALS_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id).Wrap(repository.ErrNotFound)
	}
	return nil
}
