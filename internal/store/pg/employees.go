package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
)

// EmployeeRepo implementa repository.EmployeeRepository.
type EmployeeRepo struct {
	db DB
}

func NewEmployeeRepo(db DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

const employeeColumns = `id, employee_name, user_id, company_email, app_id, app_password_enc,
	allow_ess, require_password_reset,
	device_id, device_model, device_brand, device_registered_on`

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*repository.Employee, error) {
	return r.getOne(ctx, "id", `SELECT `+employeeColumns+` FROM employee WHERE id = $1`, id)
}

func (r *EmployeeRepo) GetByAppID(ctx context.Context, appID string) (*repository.Employee, error) {
	return r.getOne(ctx, "app_id", `SELECT `+employeeColumns+` FROM employee WHERE app_id = $1`, appID)
}

func (r *EmployeeRepo) GetByUserID(ctx context.Context, userID string) (*repository.Employee, error) {
	// Un usuario puede tener un solo empleado vinculado; si hubiera varios gana el primero por id.
	return r.getOne(ctx, "user_id", `SELECT `+employeeColumns+` FROM employee WHERE user_id = $1 ORDER BY id LIMIT 1`, userID)
}

func (r *EmployeeRepo) getOne(ctx context.Context, field, q, value string) (*repository.Employee, error) {
	emp, err := scanEmployee(r.db.QueryRow(ctx, q, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("EMPLOYEE_NOT_FOUND").With(field, value).Wrap(repository.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("EMPLOYEE_GET_FAILED").With(field, value).Wrap(err)
	}
	return emp, nil
}

func scanEmployee(row pgx.Row) (*repository.Employee, error) {
	var (
		e                         repository.Employee
		userID, email             *string
		devID, devModel, devBrand *string
		devRegistered             *time.Time
	)
	if err := row.Scan(
		&e.ID, &e.EmployeeName, &userID, &email, &e.AppID, &e.AppPasswordEnc,
		&e.AllowESS, &e.RequirePasswordReset,
		&devID, &devModel, &devBrand, &devRegistered,
	); err != nil {
		return nil, err
	}
	e.UserID = deref(userID)
	e.CompanyEmail = deref(email)
	if devID != nil && *devID != "" {
		e.Device = &repository.BoundDevice{
			ID:    *devID,
			Model: deref(devModel),
			Brand: deref(devBrand),
		}
		if devRegistered != nil {
			e.Device.RegisteredOn = *devRegistered
		}
	}
	return &e, nil
}

func (r *EmployeeRepo) Create(ctx context.Context, in repository.CreateEmployeeInput) (*repository.Employee, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO employee (
			id, employee_name, user_id, company_email, app_id, app_password_enc,
			allow_ess, require_password_reset
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		in.ID, in.EmployeeName, nullIfEmpty(in.UserID), nullIfEmpty(in.CompanyEmail),
		in.AppID, in.AppPasswordEnc, in.AllowESS, in.RequirePasswordReset,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, oops.Code("EMPLOYEE_CONFLICT").With("id", in.ID).With("app_id", in.AppID).Wrap(repository.ErrConflict)
		}
		return nil, oops.Code("EMPLOYEE_CREATE_FAILED").With("id", in.ID).Wrap(err)
	}
	return &repository.Employee{
		ID:                   in.ID,
		EmployeeName:         in.EmployeeName,
		UserID:               in.UserID,
		CompanyEmail:         in.CompanyEmail,
		AppID:                in.AppID,
		AppPasswordEnc:       in.AppPasswordEnc,
		AllowESS:             in.AllowESS,
		RequirePasswordReset: in.RequirePasswordReset,
	}, nil
}

// BindDevice sólo actualiza si el empleado sigue sin dispositivo; dos logins concurrentes no pueden ganar ambos.
// device_id '' cuenta como libre, igual que en scanEmployee (filas cargadas fuera del servicio).
func (r *EmployeeRepo) BindDevice(ctx context.Context, id string, dev repository.BoundDevice) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE employee
		SET device_id = $2, device_model = $3, device_brand = $4, device_registered_on = $5
		WHERE id = $1 AND (device_id IS NULL OR device_id = '')
	`, id, dev.ID, dev.Model, dev.Brand, dev.RegisteredOn)
	if err != nil {
		return oops.Code("EMPLOYEE_BIND_DEVICE_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employee WHERE id = $1)`, id).Scan(&exists); err != nil {
		return oops.Code("EMPLOYEE_BIND_DEVICE_FAILED").With("id", id).Wrap(err)
	}
	if !exists {
		return oops.Code("EMPLOYEE_NOT_FOUND").With("id", id).Wrap(repository.ErrNotFound)
	}
	return oops.Code("EMPLOYEE_DEVICE_ALREADY_BOUND").With("id", id).Wrap(repository.ErrDeviceAlreadyBound)
}

func (r *EmployeeRepo) ClearDevice(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE employee
		SET device_id = NULL, device_model = NULL, device_brand = NULL, device_registered_on = NULL
		WHERE id = $1
	`, id)
	if err != nil {
		return oops.Code("EMPLOYEE_CLEAR_DEVICE_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("EMPLOYEE_NOT_FOUND").With("id", id).Wrap(repository.ErrNotFound)
	}
	return nil
}

func (r *EmployeeRepo) UpdateAppPassword(ctx context.Context, id, passwordEnc string, clearReset bool) error {
	q := `UPDATE employee SET app_password_enc = $2 WHERE id = $1`
	if clearReset {
		q = `UPDATE employee SET app_password_enc = $2, require_password_reset = false WHERE id = $1`
	}
	tag, err := r.db.Exec(ctx, q, id, passwordEnc)
	if err != nil {
		return oops.Code("EMPLOYEE_UPDATE_PASSWORD_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("EMPLOYEE_NOT_FOUND").With("id", id).Wrap(repository.ErrNotFound)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
