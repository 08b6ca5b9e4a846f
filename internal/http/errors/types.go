// Package errors define los errores HTTP de la API móvil y el envelope de respuesta.
//
// Message es siempre el texto fuente en inglés; WriteError lo traduce según el
// idioma del request (ver i18n).
package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, sólo para logs
}

// Error implementa la interfaz error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError.
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap crea un AppError envolviendo un error existente.
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// FromError convierte err en AppError; cualquier otro error es interno.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail devuelve una COPIA con detalle adicional.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// WithMessage devuelve una COPIA con otro mensaje (ej. el genérico de cada operación).
func (e *AppError) WithMessage(msg string) *AppError {
	newErr := *e
	newErr.Message = msg
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// 400 - validación
var (
	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "Invalid request body",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrAppIDRequired = &AppError{
		Code:       "APP_ID_REQUIRED",
		Message:    "App ID is required",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrNewPasswordRequired = &AppError{
		Code:       "NEW_PASSWORD_REQUIRED",
		Message:    "New password is required",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrPasswordPolicy = &AppError{
		Code:       "PASSWORD_POLICY",
		Message:    "New password does not meet the password policy",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrEmployeeIDRequired = &AppError{
		Code:       "EMPLOYEE_ID_REQUIRED",
		Message:    "Employee ID is required",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "Invalid request body",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// 401 - autenticación y credenciales
var (
	ErrAuthRequired = &AppError{
		Code:       "AUTH_REQUIRED",
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidAppID = &AppError{
		Code:       "INVALID_APP_ID",
		Message:    "Invalid App ID",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidAppPassword = &AppError{
		Code:       "INVALID_APP_PASSWORD",
		Message:    "Invalid app password",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrCurrentPasswordIncorrect = &AppError{
		Code:       "CURRENT_PASSWORD_INCORRECT",
		Message:    "Current app password is incorrect",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// 403 - autorización
var (
	ErrESSDisabled = &AppError{
		Code:       "ESS_DISABLED",
		Message:    "Employee Self Service is not enabled for this account",
		HTTPStatus: http.StatusForbidden,
	}

	ErrPasswordNotSet = &AppError{
		Code:       "APP_PASSWORD_NOT_SET",
		Message:    "App password not set. Please contact administrator",
		HTTPStatus: http.StatusForbidden,
	}

	ErrDeviceMismatch = &AppError{
		Code:       "DEVICE_MISMATCH",
		Message:    "Access denied. This account is registered to a different device. Please contact HR to reset device access.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrInsufficientPermissions = &AppError{
		Code:       "INSUFFICIENT_PERMISSIONS",
		Message:    "Insufficient permissions",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404
var (
	ErrEmployeeNotFound = &AppError{
		Code:       "EMPLOYEE_NOT_FOUND",
		Message:    "Employee record not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrNoEmployeeRecord = &AppError{
		Code:       "NO_EMPLOYEE_RECORD",
		Message:    "No employee record found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRouteNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Not found",
		HTTPStatus: http.StatusNotFound,
	}
)

// 405 / 429
var (
	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests. Please try again later",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// 500+
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An error occurred. Please try again",
		HTTPStatus: http.StatusInternalServerError,
	}
)
