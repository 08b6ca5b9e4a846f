package mobile

import "errors"

// Errores de validación
var (
	ErrAppIDRequired       = errors.New("app id is required")
	ErrNewPasswordRequired = errors.New("new password is required")
	ErrPasswordPolicy      = errors.New("new password does not meet the policy")
	ErrEmployeeIDRequired  = errors.New("employee id is required")
)

// Errores de autenticación, autorización y búsqueda
var (
	ErrInvalidAppID             = errors.New("invalid app id")
	ErrESSDisabled              = errors.New("employee self service disabled")
	ErrPasswordNotSet           = errors.New("app password not set")
	ErrInvalidPassword          = errors.New("invalid app password")
	ErrDeviceMismatch           = errors.New("device mismatch")
	ErrAuthRequired             = errors.New("authentication required")
	ErrEmployeeNotFound         = errors.New("employee record not found")
	ErrNoEmployeeRecord         = errors.New("no employee record for user")
	ErrInsufficientPermissions  = errors.New("insufficient permissions")
	ErrCurrentPasswordIncorrect = errors.New("current app password is incorrect")
)

// isClientError indica si err es un rechazo esperado (no un error interno).
func isClientError(err error) bool {
	for _, e := range []error{
		ErrAppIDRequired, ErrNewPasswordRequired, ErrPasswordPolicy,
		ErrEmployeeIDRequired, ErrInvalidAppID, ErrESSDisabled, ErrPasswordNotSet,
		ErrInvalidPassword, ErrDeviceMismatch, ErrAuthRequired, ErrEmployeeNotFound,
		ErrNoEmployeeRecord, ErrInsufficientPermissions, ErrCurrentPasswordIncorrect,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
