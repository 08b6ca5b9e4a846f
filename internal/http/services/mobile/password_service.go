package mobile

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
	"github.com/dropDatabas3/essgate/internal/security/secretbox"
	tokens "github.com/dropDatabas3/essgate/internal/security/token"
)

const (
	kindReset  = "reset"
	kindChange = "change"
)

// PasswordService maneja el password de la app del empleado del usuario en sesión.
type PasswordService interface {
	// Reset fija un password nuevo sin pedir el anterior y baja
	// require_password_reset (flujo de primer login).
	Reset(ctx context.Context, userID, newPassword string) error

	// Change exige el password actual antes de guardar el nuevo.
	Change(ctx context.Context, userID, oldPassword, newPassword string) error
}

type passwordService struct {
	deps Deps
}

func NewPasswordService(d Deps) PasswordService {
	return &passwordService{deps: d}
}

func (s *passwordService) Reset(ctx context.Context, userID, newPassword string) (err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("mobile.password"),
		logger.Op("Reset"),
	)
	defer func() { s.deps.Metrics.PasswordUpdate(kindReset, outcome(err)) }()

	if userID == "" {
		return ErrAuthRequired
	}
	emp, err := s.deps.Employees.GetByUserID(ctx, userID)
	if repository.IsNotFound(err) {
		return ErrEmployeeNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup employee by user: %w", err)
	}
	log = log.With(logger.EmployeeID(emp.ID))

	enc, err := s.sealNew(newPassword)
	if err != nil {
		return err
	}
	if err := s.deps.Employees.UpdateAppPassword(ctx, emp.ID, enc, true); err != nil {
		return fmt.Errorf("save app password: %w", err)
	}

	log.Info("app password reset")
	return nil
}

func (s *passwordService) Change(ctx context.Context, userID, oldPassword, newPassword string) (err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("mobile.password"),
		logger.Op("Change"),
	)
	defer func() { s.deps.Metrics.PasswordUpdate(kindChange, outcome(err)) }()

	if userID == "" {
		return ErrAuthRequired
	}
	emp, err := s.deps.Employees.GetByUserID(ctx, userID)
	if repository.IsNotFound(err) {
		return ErrNoEmployeeRecord
	}
	if err != nil {
		return fmt.Errorf("lookup employee by user: %w", err)
	}
	log = log.With(logger.EmployeeID(emp.ID))

	// sin password guardado cuenta como no coincidente
	current := ""
	if emp.HasAppPassword() {
		if current, err = s.deps.Box.Decrypt(secretbox.PurposeAppPassword, *emp.AppPasswordEnc); err != nil {
			return fmt.Errorf("decrypt app password: %w", err)
		}
	}
	if !emp.HasAppPassword() || !tokens.Equal(current, oldPassword) {
		log.Info("current app password mismatch")
		return ErrCurrentPasswordIncorrect
	}

	enc, err := s.sealNew(newPassword)
	if err != nil {
		return err
	}
	if err := s.deps.Employees.UpdateAppPassword(ctx, emp.ID, enc, false); err != nil {
		return fmt.Errorf("save app password: %w", err)
	}

	log.Info("app password changed")
	s.deps.Notifier.PasswordChanged(ctx, emp.CompanyEmail, emp.EmployeeName, emp.ID)
	return nil
}

// sealNew valida el password nuevo contra la política y lo cifra.
func (s *passwordService) sealNew(newPassword string) (string, error) {
	if strings.TrimSpace(newPassword) == "" {
		return "", ErrNewPasswordRequired
	}
	if ok, reasons := s.deps.Policy.Validate(newPassword); !ok {
		return "", fmt.Errorf("%w: %s", ErrPasswordPolicy, strings.Join(reasons, ","))
	}
	enc, err := s.deps.Box.Encrypt(secretbox.PurposeAppPassword, newPassword)
	if err != nil {
		return "", fmt.Errorf("encrypt app password: %w", err)
	}
	return enc, nil
}

// outcome etiqueta el resultado para métricas.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case isClientError(err):
		return "rejected"
	default:
		return "error"
	}
}
