// Package seed carga usuarios y empleados iniciales desde un YAML.
// Pensado para el driver memory, que arranca vacío en cada proceso.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
	"github.com/dropDatabas3/essgate/internal/security/secretbox"
)

// File es el contenido del seed.
//
//	users:
//	  - id: ana@acme.test
//	    full_name: Ana Pérez
//	    roles: [Employee]
//	employees:
//	  - id: HR-EMP-00001
//	    user: ana@acme.test
//	    app_id: ana
//	    app_password: "1234"
type File struct {
	Users     []User     `yaml:"users"`
	Employees []Employee `yaml:"employees"`
}

type User struct {
	ID       string   `yaml:"id"`
	FullName string   `yaml:"full_name"`
	Roles    []string `yaml:"roles"`
}

type Employee struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	User         string `yaml:"user"`
	Email        string `yaml:"email"`
	AppID        string `yaml:"app_id"`
	AppPassword  string `yaml:"app_password"` // texto plano; se cifra al cargar
	AllowESS     *bool  `yaml:"allow_ess"`    // nil = true
	RequireReset bool   `yaml:"require_password_reset"`
}

// Repos es lo que necesita Apply.
type Repos interface {
	Employees() repository.EmployeeRepository
	Users() repository.UserRepository
}

// Load lee y valida el YAML.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, oops.Code("SEED_PARSE_FAILED").With("path", path).Wrap(err)
	}
	if err := f.Validate(); err != nil {
		return nil, oops.Code("SEED_INVALID").With("path", path).Wrap(err)
	}
	return &f, nil
}

func (f *File) Validate() error {
	for i, u := range f.Users {
		if strings.TrimSpace(u.ID) == "" {
			return fmt.Errorf("users[%d]: id required", i)
		}
	}
	appIDs := map[string]string{}
	for i, e := range f.Employees {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.AppID) == "" {
			return fmt.Errorf("employees[%d]: id and app_id required", i)
		}
		if prev, ok := appIDs[e.AppID]; ok {
			return fmt.Errorf("employees[%d]: app_id %q already used by %s", i, e.AppID, prev)
		}
		appIDs[e.AppID] = e.ID
	}
	return nil
}

// Apply crea lo que falta; usuarios o empleados ya existentes se dejan como están.
func Apply(ctx context.Context, repos Repos, box *secretbox.Box, f *File) error {
	log := logger.Named("seed")

	for _, u := range f.Users {
		if err := EnsureUser(ctx, repos.Users(), u); err != nil {
			return err
		}
	}

	created := 0
	for _, e := range f.Employees {
		if e.User != "" {
			if err := EnsureUser(ctx, repos.Users(), User{ID: e.User, Roles: []string{"Employee"}}); err != nil {
				return err
			}
		}
		in := repository.CreateEmployeeInput{
			ID:                   e.ID,
			EmployeeName:         e.Name,
			UserID:               e.User,
			CompanyEmail:         e.Email,
			AppID:                e.AppID,
			AllowESS:             e.AllowESS == nil || *e.AllowESS,
			RequirePasswordReset: e.RequireReset,
		}
		if e.AppPassword != "" {
			enc, err := box.Encrypt(secretbox.PurposeAppPassword, e.AppPassword)
			if err != nil {
				return oops.Code("SEED_ENCRYPT_FAILED").With("employee", e.ID).Wrap(err)
			}
			in.AppPasswordEnc = &enc
		}
		_, err := repos.Employees().Create(ctx, in)
		switch {
		case err == nil:
			created++
		case errors.Is(err, repository.ErrConflict):
			log.Debug("employee already present", logger.EmployeeID(e.ID))
		default:
			return oops.Code("SEED_EMPLOYEE_FAILED").With("employee", e.ID).Wrap(err)
		}
	}

	log.Info("seed applied", logger.Int("users", len(f.Users)), logger.Int("employees_created", created))
	return nil
}

// EnsureUser crea el usuario si no existe.
func EnsureUser(ctx context.Context, users repository.UserRepository, u User) error {
	_, err := users.GetByID(ctx, u.ID)
	if err == nil {
		return nil
	}
	if !repository.IsNotFound(err) {
		return fmt.Errorf("user %s: %w", u.ID, err)
	}
	_, err = users.Create(ctx, repository.CreateUserInput{ID: u.ID, FullName: u.FullName, Roles: u.Roles})
	if err != nil && !errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("user %s: %w", u.ID, err)
	}
	return nil
}
