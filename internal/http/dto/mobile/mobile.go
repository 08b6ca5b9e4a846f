// Package mobile contiene los DTOs de los endpoints de la app móvil.
package mobile

import "time"

// LoginRequest es el body de POST /api/v1/mobile/login.
type LoginRequest struct {
	AppID       string `json:"usr"`
	AppPassword string `json:"app_password"`
	DeviceID    string `json:"device_id"`
	DeviceModel string `json:"device_model"`
	DeviceBrand string `json:"device_brand"`
}

// LoginData es el campo data de un login exitoso.
type LoginData struct {
	EmployeeID           string `json:"employee_id"`
	EmployeeName         string `json:"employee_name"`
	User                 string `json:"user"`
	APIKey               string `json:"api_key"`
	APISecret            string `json:"api_secret"`
	DeviceID             string `json:"device_id"`
	AppID                string `json:"app_id"`
	RequirePasswordReset bool   `json:"require_password_reset"`
}

// LoginResult es el resultado interno del service: data + sesión para la cookie.
type LoginResult struct {
	Data             LoginData
	SessionToken     string
	SessionExpiresAt time.Time
}

// ResetPasswordRequest es el body de POST /api/v1/mobile/password/reset.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ResetDeviceRequest es el body de POST /api/v1/mobile/device/reset.
type ResetDeviceRequest struct {
	EmployeeID string `json:"employee_id"`
}

// ChangePasswordRequest es el body de POST /api/v1/mobile/password/change.
type ChangePasswordRequest struct {
	OldAppPassword string `json:"old_app_password"`
	NewAppPassword string `json:"new_app_password"`
}
