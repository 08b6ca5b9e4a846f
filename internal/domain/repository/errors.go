package repository

import "errors"

var (
	// ErrNotFound indica que el registro solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto de unicidad (ej: app_id duplicado).
	ErrConflict = errors.New("conflict")

	// ErrDeviceAlreadyBound lo devuelve BindDevice cuando otro login ya registró un dispositivo.
	ErrDeviceAlreadyBound = errors.New("device already bound")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
