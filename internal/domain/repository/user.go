package repository

import "context"

// User es la identidad con la que se abre sesión y se emiten credenciales de API.
type User struct {
	ID       string // username / email
	FullName string
	Roles    []string

	// APIKey es estable: se genera una sola vez.
	APIKey string
	// APISecretEnc se regenera en cada login y se guarda cifrado.
	APISecretEnc string
}

// CreateUserInput se usa en seed y tests.
type CreateUserInput struct {
	ID       string
	FullName string
	Roles    []string
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// GetByID retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByAPIKey retorna ErrNotFound si ninguna cuenta tiene esa api_key.
	GetByAPIKey(ctx context.Context, apiKey string) (*User, error)

	// Create inserta un usuario. ErrConflict si ya existe.
	Create(ctx context.Context, in CreateUserInput) (*User, error)

	// UpdateAPICredentials persiste api_key y api_secret (cifrado).
	UpdateAPICredentials(ctx context.Context, id, apiKey, apiSecretEnc string) error
}
