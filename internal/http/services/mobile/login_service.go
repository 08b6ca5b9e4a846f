package mobile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	dto "github.com/dropDatabas3/essgate/internal/http/dto/mobile"
	"github.com/dropDatabas3/essgate/internal/metrics"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
	"github.com/dropDatabas3/essgate/internal/security/secretbox"
	tokens "github.com/dropDatabas3/essgate/internal/security/token"
)

// LoginService autentica a un empleado desde la app móvil.
type LoginService interface {
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResult, error)
}

type loginService struct {
	deps  Deps
	creds CredentialService
}

func NewLoginService(d Deps, creds CredentialService) LoginService {
	return &loginService{deps: d, creds: creds}
}

func (s *loginService) Login(ctx context.Context, in dto.LoginRequest) (res *dto.LoginResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("mobile.login"),
		logger.Op("Login"),
	)
	defer func() { s.deps.Metrics.Login(loginResult(err)) }()

	// Paso 0: validación
	appID := strings.TrimSpace(in.AppID)
	if appID == "" {
		return nil, ErrAppIDRequired
	}
	log = log.With(logger.AppID(appID))

	// Paso 1: empleado por app_id
	emp, err := s.deps.Employees.GetByAppID(ctx, appID)
	if repository.IsNotFound(err) {
		log.Debug("unknown app id")
		return nil, ErrInvalidAppID
	}
	if err != nil {
		return nil, fmt.Errorf("lookup app id: %w", err)
	}
	log = log.With(logger.EmployeeID(emp.ID))

	// Paso 2: gating ESS y password configurado
	if !emp.AllowESS {
		log.Info("ess disabled")
		return nil, ErrESSDisabled
	}
	if !emp.HasAppPassword() {
		log.Info("app password not set")
		return nil, ErrPasswordNotSet
	}

	// Paso 3: password
	stored, err := s.deps.Box.Decrypt(secretbox.PurposeAppPassword, *emp.AppPasswordEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt app password: %w", err)
	}
	if !tokens.Equal(stored, in.AppPassword) {
		log.Info("invalid app password")
		return nil, ErrInvalidPassword
	}

	// Paso 4: binding de dispositivo
	if err := s.verifyDevice(ctx, emp, in); err != nil {
		if errors.Is(err, ErrDeviceMismatch) {
			log.Warn("device mismatch", logger.DeviceID(in.DeviceID))
		}
		return nil, err
	}

	// Paso 5: sesión + credenciales
	if emp.UserID == "" {
		return nil, fmt.Errorf("employee %s has no linked user", emp.ID)
	}
	sess, err := s.deps.Sessions.Login(ctx, emp.UserID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	creds, err := s.creds.Issue(ctx, emp.UserID)
	if err != nil {
		// sin credenciales no hay login: la sesión recién abierta no debe quedar viva
		if rerr := s.deps.Sessions.Revoke(ctx, sess.ID); rerr != nil {
			log.Error("revoke session after failed issue", logger.SessionID(sess.ID), logger.Err(rerr))
		}
		return nil, err
	}

	log.Info("mobile login ok", logger.UserID(emp.UserID), logger.SessionID(sess.ID))
	return &dto.LoginResult{
		Data: dto.LoginData{
			EmployeeID:           emp.ID,
			EmployeeName:         emp.EmployeeName,
			User:                 emp.UserID,
			APIKey:               creds.APIKey,
			APISecret:            creds.APISecret,
			DeviceID:             in.DeviceID,
			AppID:                emp.AppID,
			RequirePasswordReset: emp.RequirePasswordReset,
		},
		SessionToken:     sess.Token,
		SessionExpiresAt: sess.ExpiresAt,
	}, nil
}

// verifyDevice registra el dispositivo en el primer login o exige que coincida.
// Sin device_id no hay nada que vincular: la cuenta sigue libre.
func (s *loginService) verifyDevice(ctx context.Context, emp *repository.Employee, in dto.LoginRequest) error {
	if emp.Device != nil {
		if !emp.Device.Matches(in.DeviceID, in.DeviceModel, in.DeviceBrand) {
			return ErrDeviceMismatch
		}
		return nil
	}
	if in.DeviceID == "" {
		return nil
	}

	dev := repository.BoundDevice{
		ID:           in.DeviceID,
		Model:        in.DeviceModel,
		Brand:        in.DeviceBrand,
		RegisteredOn: s.deps.Now().UTC(),
	}
	err := s.deps.Employees.BindDevice(ctx, emp.ID, dev)
	switch {
	case err == nil:
		s.deps.Metrics.DeviceBound()
		logger.From(ctx).Info("device bound", logger.EmployeeID(emp.ID), logger.DeviceID(dev.ID))
		return nil
	case errors.Is(err, repository.ErrDeviceAlreadyBound):
		// otro login concurrente ganó: verificar contra su dispositivo
		cur, gerr := s.deps.Employees.GetByID(ctx, emp.ID)
		if gerr != nil {
			return fmt.Errorf("reload employee: %w", gerr)
		}
		if cur.Device == nil || !cur.Device.Matches(in.DeviceID, in.DeviceModel, in.DeviceBrand) {
			return ErrDeviceMismatch
		}
		return nil
	default:
		return fmt.Errorf("bind device: %w", err)
	}
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return metrics.LoginSuccess
	case errors.Is(err, ErrAppIDRequired):
		return metrics.LoginValidation
	case errors.Is(err, ErrInvalidAppID):
		return metrics.LoginInvalidAppID
	case errors.Is(err, ErrESSDisabled):
		return metrics.LoginESSDisabled
	case errors.Is(err, ErrPasswordNotSet):
		return metrics.LoginPasswordNotSet
	case errors.Is(err, ErrInvalidPassword):
		return metrics.LoginInvalidPassword
	case errors.Is(err, ErrDeviceMismatch):
		return metrics.LoginDeviceMismatch
	default:
		return metrics.LoginError
	}
}
