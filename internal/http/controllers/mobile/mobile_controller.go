// Package mobile contiene los controllers HTTP de la app móvil.
package mobile

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/essgate/internal/errorlog"
	dto "github.com/dropDatabas3/essgate/internal/http/dto/mobile"
	httperrors "github.com/dropDatabas3/essgate/internal/http/errors"
	"github.com/dropDatabas3/essgate/internal/http/helpers"
	"github.com/dropDatabas3/essgate/internal/http/middlewares"
	svc "github.com/dropDatabas3/essgate/internal/http/services/mobile"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
)

// Títulos del error log y mensajes genéricos por operación.
const (
	titleLogin          = "Mobile App Login Error"
	titleResetPassword  = "Reset App Password Error"
	titleResetDevice    = "Reset Device ID Error"
	titleChangePassword = "Change App Password Error"

	msgLoginFailed   = "An error occurred during login. Please try again"
	msgGenericFailed = "An error occurred. Please try again"
)

// MobileController maneja los endpoints /api/v1/mobile/*.
type MobileController struct {
	services svc.Services
	sink     errorlog.Sink
	cookie   helpers.CookieConfig
}

func NewMobileController(s svc.Services, sink errorlog.Sink, cookie helpers.CookieConfig) *MobileController {
	return &MobileController{services: s, sink: sink, cookie: cookie}
}

// Login maneja POST /api/v1/mobile/login (guest).
func (c *MobileController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Component("mobile"),
		logger.Op("Login"),
	)

	var req dto.LoginRequest
	if err := helpers.DecodeBody(w, r, &req); err != nil {
		log.Debug("invalid body", logger.Err(err))
		httperrors.WriteError(w, r, bodyError(err))
		return
	}

	res, err := c.services.Login.Login(ctx, req)
	if err != nil {
		c.writeError(w, r, err, titleLogin, msgLoginFailed)
		return
	}

	if res.SessionToken != "" {
		http.SetCookie(w, helpers.BuildCookie(c.cookie, res.SessionToken, time.Until(res.SessionExpiresAt)))
	}
	helpers.WriteSuccess(w, r, "Login successful", res.Data)
}

// ResetPassword maneja POST /api/v1/mobile/password/reset (sesión).
func (c *MobileController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := helpers.DecodeBody(w, r, &req); err != nil {
		httperrors.WriteError(w, r, bodyError(err))
		return
	}

	userID := middlewares.GetUserID(r.Context())
	if err := c.services.Password.Reset(r.Context(), userID, req.NewPassword); err != nil {
		c.writeError(w, r, err, titleResetPassword, msgGenericFailed)
		return
	}
	helpers.WriteSuccess(w, r, "Password reset successfully", nil)
}

// ResetDevice maneja POST /api/v1/mobile/device/reset (sesión + Employee:write).
func (c *MobileController) ResetDevice(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetDeviceRequest
	if err := helpers.DecodeBody(w, r, &req); err != nil {
		httperrors.WriteError(w, r, bodyError(err))
		return
	}

	actorID := middlewares.GetUserID(r.Context())
	if err := c.services.Device.Reset(r.Context(), actorID, req.EmployeeID); err != nil {
		c.writeError(w, r, err, titleResetDevice, msgGenericFailed)
		return
	}
	helpers.WriteSuccess(w, r, "Device ID has been reset successfully. Employee can now login from a new device.", nil)
}

// ChangePassword maneja POST /api/v1/mobile/password/change (sesión).
func (c *MobileController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := helpers.DecodeBody(w, r, &req); err != nil {
		httperrors.WriteError(w, r, bodyError(err))
		return
	}

	userID := middlewares.GetUserID(r.Context())
	if err := c.services.Password.Change(r.Context(), userID, req.OldAppPassword, req.NewAppPassword); err != nil {
		c.writeError(w, r, err, titleChangePassword, msgGenericFailed)
		return
	}
	helpers.WriteSuccess(w, r, "App password changed successfully", nil)
}

// writeError mapea errores del service a respuestas. Lo no reconocido es
// interno: se registra en el error log y el cliente recibe el mensaje genérico.
func (c *MobileController) writeError(w http.ResponseWriter, r *http.Request, err error, title, generic string) {
	if appErr := mapServiceError(err); appErr != nil {
		httperrors.WriteError(w, r, appErr)
		return
	}
	if c.sink != nil {
		c.sink.Record(r.Context(), title, err)
	}
	httperrors.WriteError(w, r, httperrors.ErrInternal.WithMessage(generic).WithCause(err))
}

func mapServiceError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, svc.ErrAppIDRequired):
		return httperrors.ErrAppIDRequired
	case errors.Is(err, svc.ErrNewPasswordRequired):
		return httperrors.ErrNewPasswordRequired
	case errors.Is(err, svc.ErrPasswordPolicy):
		return httperrors.ErrPasswordPolicy.WithDetail(policyReasons(err))
	case errors.Is(err, svc.ErrEmployeeIDRequired):
		return httperrors.ErrEmployeeIDRequired
	case errors.Is(err, svc.ErrInvalidAppID):
		return httperrors.ErrInvalidAppID
	case errors.Is(err, svc.ErrESSDisabled):
		return httperrors.ErrESSDisabled
	case errors.Is(err, svc.ErrPasswordNotSet):
		return httperrors.ErrPasswordNotSet
	case errors.Is(err, svc.ErrInvalidPassword):
		return httperrors.ErrInvalidAppPassword
	case errors.Is(err, svc.ErrDeviceMismatch):
		return httperrors.ErrDeviceMismatch
	case errors.Is(err, svc.ErrAuthRequired):
		return httperrors.ErrAuthRequired
	case errors.Is(err, svc.ErrEmployeeNotFound):
		return httperrors.ErrEmployeeNotFound
	case errors.Is(err, svc.ErrNoEmployeeRecord):
		return httperrors.ErrNoEmployeeRecord
	case errors.Is(err, svc.ErrInsufficientPermissions):
		return httperrors.ErrInsufficientPermissions
	case errors.Is(err, svc.ErrCurrentPasswordIncorrect):
		return httperrors.ErrCurrentPasswordIncorrect
	default:
		return nil
	}
}

// policyReasons extrae "too_short,missing_digit" del error envuelto.
func policyReasons(err error) string {
	_, reasons, _ := strings.Cut(err.Error(), svc.ErrPasswordPolicy.Error()+": ")
	return reasons
}

func bodyError(err error) *httperrors.AppError {
	if errors.Is(err, helpers.ErrBodyTooBig) {
		return httperrors.ErrBodyTooLarge
	}
	return httperrors.ErrInvalidJSON
}
