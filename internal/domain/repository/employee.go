package repository

import (
	"context"
	"time"
)

// Employee es el registro de RRHH que habilita el acceso desde la app móvil.
type Employee struct {
	ID           string // nombre interno, ej. HR-EMP-00001
	EmployeeName string
	UserID       string
	CompanyEmail string

	AppID string
	// AppPasswordEnc es el password de la app cifrado con secretbox; nil = no seteado.
	AppPasswordEnc       *string
	AllowESS             bool
	RequirePasswordReset bool

	// Device es nil mientras la cuenta no tiene dispositivo registrado.
	Device *BoundDevice
}

// HasAppPassword indica si el empleado tiene password de app configurado.
func (e *Employee) HasAppPassword() bool {
	return e.AppPasswordEnc != nil && *e.AppPasswordEnc != ""
}

// BoundDevice es el dispositivo al que quedó atada la cuenta en el primer login.
type BoundDevice struct {
	ID           string
	Model        string
	Brand        string
	RegisteredOn time.Time
}

// Matches compara los tres descriptores; los tres deben coincidir exactamente.
func (d BoundDevice) Matches(id, model, brand string) bool {
	return d.ID == id && d.Model == model && d.Brand == brand
}

// CreateEmployeeInput se usa en seed y tests.
type CreateEmployeeInput struct {
	ID                   string
	EmployeeName         string
	UserID               string
	CompanyEmail         string
	AppID                string
	AppPasswordEnc       *string
	AllowESS             bool
	RequirePasswordReset bool
}

// EmployeeRepository define las operaciones sobre Employee que usan los handlers móviles.
type EmployeeRepository interface {
	// GetByID busca por nombre interno. ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Employee, error)

	// GetByAppID busca por app_id. ErrNotFound si no existe.
	GetByAppID(ctx context.Context, appID string) (*Employee, error)

	// GetByUserID busca el empleado vinculado a un usuario. ErrNotFound si no existe.
	GetByUserID(ctx context.Context, userID string) (*Employee, error)

	// Create inserta un empleado. ErrConflict si id o app_id ya existen.
	Create(ctx context.Context, in CreateEmployeeInput) (*Employee, error)

	// BindDevice registra el dispositivo sólo si la cuenta no tiene uno.
	// Devuelve ErrDeviceAlreadyBound si otro request lo registró antes.
	BindDevice(ctx context.Context, id string, dev BoundDevice) error

	// ClearDevice borra los cuatro campos de dispositivo. ErrNotFound si no existe.
	ClearDevice(ctx context.Context, id string) error

	// UpdateAppPassword guarda el password cifrado; si clearReset es true
	// también baja el flag require_password_reset.
	UpdateAppPassword(ctx context.Context, id, passwordEnc string, clearReset bool) error
}
