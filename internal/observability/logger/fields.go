package logger

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// ─── HTTP ───

func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

func Method(v string) zap.Field {
	return zap.String("method", v)
}

func Path(v string) zap.Field {
	return zap.String("path", v)
}

func Route(v string) zap.Field {
	return zap.String("route", v)
}

func Status(v int) zap.Field {
	return zap.Int("status", v)
}

func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// DurationMs registra la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// ─── Dominio ───

// EmployeeID es el nombre interno del registro Employee (ej. HR-EMP-00001).
func EmployeeID(v string) zap.Field {
	return zap.String("employee_id", v)
}

// AppID es el identificador externo con el que la app móvil hace login.
func AppID(v string) zap.Field {
	return zap.String("app_id", v)
}

func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

func DeviceID(v string) zap.Field {
	return zap.String("device_id", v)
}

func SessionID(v string) zap.Field {
	return zap.String("session_id", v)
}

// Email loguea la dirección enmascarada: ana@acme.test => a…@a….test
func Email(v string) zap.Field {
	return zap.String("email", MaskEmail(v))
}

func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		if s == "" {
			return ""
		}
		if len(s) <= 3 {
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	dparts := strings.Split(dom, ".")
	if len(dparts) > 0 && len(dparts[0]) > 1 {
		dparts[0] = dparts[0][:1] + "…"
	}
	return user + "@" + strings.Join(dparts, ".")
}

// ─── Sistema ───

func Component(v string) zap.Field {
	return zap.String("component", v)
}

func Op(v string) zap.Field {
	return zap.String("op", v)
}

func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

func Err(err error) zap.Field {
	return zap.Error(err)
}

func String(key, v string) zap.Field {
	return zap.String(key, v)
}

func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}

func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}

