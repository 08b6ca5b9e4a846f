// Package mobile contiene los services de autenticación de la app móvil:
// login con binding de dispositivo, emisión de credenciales API, reset y
// cambio de password de la app y reset administrativo del dispositivo.
//
// La identidad del usuario llega explícita como parámetro; los services no
// leen el contexto HTTP.
package mobile

import (
	"context"
	"time"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
	"github.com/dropDatabas3/essgate/internal/metrics"
	"github.com/dropDatabas3/essgate/internal/permission"
	"github.com/dropDatabas3/essgate/internal/security/password"
	"github.com/dropDatabas3/essgate/internal/security/secretbox"
	"github.com/dropDatabas3/essgate/internal/session"
)

// SessionOpener abre la sesión del usuario resuelto en el login.
type SessionOpener interface {
	Login(ctx context.Context, userID string) (*session.Session, error)
	Revoke(ctx context.Context, sessionID string) error
}

// Notifier envía avisos de seguridad; los fallos no se propagan.
type Notifier interface {
	DeviceReset(ctx context.Context, to, employeeName, employeeID, actorID string)
	PasswordChanged(ctx context.Context, to, employeeName, employeeID string)
}

// Deps contiene las dependencias de los services móviles.
type Deps struct {
	Employees   repository.EmployeeRepository
	Users       repository.UserRepository
	Sessions    SessionOpener
	Permissions permission.Checker
	Box         *secretbox.Box
	Policy      password.Policy
	Notifier    Notifier         // nil = sin avisos
	Metrics     *metrics.Metrics // nil = sin métricas
	Now         func() time.Time // nil = time.Now
}

// Services agrupa los services del dominio mobile.
type Services struct {
	Login       LoginService
	Credentials CredentialService
	Password    PasswordService
	Device      DeviceService
}

func NewServices(d Deps) Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = noopNotifier{}
	}
	creds := NewCredentialService(d)
	return Services{
		Login:       NewLoginService(d, creds),
		Credentials: creds,
		Password:    NewPasswordService(d),
		Device:      NewDeviceService(d),
	}
}

type noopNotifier struct{}

func (noopNotifier) DeviceReset(context.Context, string, string, string, string) {}
func (noopNotifier) PasswordChanged(context.Context, string, string, string)     {}
