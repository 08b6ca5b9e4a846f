package mobile

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
	"github.com/dropDatabas3/essgate/internal/permission"
)

// EmployeeDoctype es el recurso sobre el que se chequea el permiso de escritura.
const EmployeeDoctype = "Employee"

// DeviceService desvincula el dispositivo de un empleado (acción de RR. HH.).
type DeviceService interface {
	Reset(ctx context.Context, actorID, employeeID string) error
}

type deviceService struct {
	deps Deps
}

func NewDeviceService(d Deps) DeviceService {
	return &deviceService{deps: d}
}

func (s *deviceService) Reset(ctx context.Context, actorID, employeeID string) (err error) {
	employeeID = strings.TrimSpace(employeeID)
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("mobile.device"),
		logger.Op("Reset"),
		logger.EmployeeID(employeeID),
	)
	defer func() { s.deps.Metrics.DeviceReset(outcome(err)) }()

	// el permiso se chequea antes de validar o leer el empleado
	allowed := false
	if actorID != "" {
		allowed, err = s.deps.Permissions.HasPermission(ctx, actorID, EmployeeDoctype, permission.Write)
		if err != nil {
			return fmt.Errorf("check permission: %w", err)
		}
	}
	if !allowed {
		log.Warn("device reset denied", logger.String("actor", actorID))
		return ErrInsufficientPermissions
	}

	if employeeID == "" {
		return ErrEmployeeIDRequired
	}
	emp, err := s.deps.Employees.GetByID(ctx, employeeID)
	if repository.IsNotFound(err) {
		return ErrEmployeeNotFound
	}
	if err != nil {
		return fmt.Errorf("load employee: %w", err)
	}

	if err := s.deps.Employees.ClearDevice(ctx, employeeID); err != nil {
		if repository.IsNotFound(err) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("clear device: %w", err)
	}

	log.Info("device reset", logger.String("actor", actorID))
	s.deps.Notifier.DeviceReset(ctx, emp.CompanyEmail, emp.EmployeeName, emp.ID, actorID)
	return nil
}
