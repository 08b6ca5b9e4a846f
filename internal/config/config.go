package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"app_env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr         string `yaml:"addr"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
		// MetricsEnabled expone /metrics en el mismo listener.
		MetricsEnabled bool `yaml:"metrics_enabled"`
	} `yaml:"server"`

	Storage struct {
		Driver string `yaml:"driver"` // memory | postgres
		DSN    string `yaml:"dsn"`
		// SeedFile: YAML de usuarios/empleados que se cargan al arrancar (sólo faltantes).
		// Es la forma de poblar el driver memory; relativo al config.yaml.
		SeedFile string `yaml:"seed_file"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
			ConnectRetries  int    `yaml:"connect_retries"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Session struct {
		Issuer     string `yaml:"issuer"`
		TTL        string `yaml:"ttl"`
		CookieName string `yaml:"cookie_name"`
		Domain     string `yaml:"domain"`
		SameSite   string `yaml:"same_site"` // Lax | Strict | None
		Secure     bool   `yaml:"secure"`
		// SigningSeed: base64 de 32 bytes (seed Ed25519). Vacío => clave efímera (sólo dev).
		SigningSeed string `yaml:"signing_seed"`
	} `yaml:"session"`

	Security struct {
		// SecretBoxMasterKey cifra app_password y api_secret en reposo.
		SecretBoxMasterKey string `yaml:"secretbox_master_key"`
		AppPasswordPolicy  struct {
			MinLength     int    `yaml:"min_length"`
			RequireUpper  bool   `yaml:"require_upper"`
			RequireLower  bool   `yaml:"require_lower"`
			RequireDigit  bool   `yaml:"require_digit"`
			RequireSymbol bool   `yaml:"require_symbol"`
			BlacklistPath string `yaml:"blacklist_path"`
		} `yaml:"app_password_policy"`
	} `yaml:"security"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	// RBAC mapea rol => permisos "Doctype:perm" ("*" = todo).
	RBAC struct {
		Roles map[string][]string `yaml:"roles"`
	} `yaml:"rbac"`

	I18n struct {
		DefaultLanguage string `yaml:"default_language"`
	} `yaml:"i18n"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`
}

// Load lee el YAML (si path no está vacío), aplica defaults y overrides por env.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	// Normalizar ruta de blacklist (si relativa) respecto al directorio del YAML
	if p := strings.TrimSpace(c.Security.AppPasswordPolicy.BlacklistPath); p != "" && path != "" && !filepath.IsAbs(p) {
		c.Security.AppPasswordPolicy.BlacklistPath = filepath.Clean(filepath.Join(filepath.Dir(path), p))
	}
	if p := strings.TrimSpace(c.Storage.SeedFile); p != "" && path != "" && !filepath.IsAbs(p) {
		c.Storage.SeedFile = filepath.Clean(filepath.Join(filepath.Dir(path), p))
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.ConnectRetries == 0 {
		c.Storage.Postgres.ConnectRetries = 5
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "essgate"
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = "essgate"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "72h"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "sid"
	}
	if c.Session.SameSite == "" {
		c.Session.SameSite = "Lax"
	}
	if c.Security.AppPasswordPolicy.MinLength == 0 {
		c.Security.AppPasswordPolicy.MinLength = 4
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if len(c.RBAC.Roles) == 0 {
		c.RBAC.Roles = map[string][]string{
			"System Manager": {"*"},
			"HR Manager":     {"Employee:read", "Employee:write"},
			"HR User":        {"Employee:read", "Employee:write"},
			"Employee":       {"Employee:read"},
		}
	}
	if c.I18n.DefaultLanguage == "" {
		c.I18n.DefaultLanguage = "en"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
}

// Durations parseadas; Validate garantiza que no fallan.

func (c *Config) SessionTTL() time.Duration         { return mustDur(c.Session.TTL) }
func (c *Config) RateLoginWindow() time.Duration    { return mustDur(c.Rate.Login.Window) }
func (c *Config) CacheDefaultTTL() time.Duration    { return mustDur(c.Cache.Memory.DefaultTTL) }
func (c *Config) ServerReadTimeout() time.Duration  { return mustDur(c.Server.ReadTimeout) }
func (c *Config) ServerWriteTimeout() time.Duration { return mustDur(c.Server.WriteTimeout) }

func mustDur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvBool("SERVER_METRICS_ENABLED"); ok {
		c.Server.MetricsEnabled = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("STORAGE_SEED_FILE"); ok {
		c.Storage.SeedFile = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvStr("SESSION_COOKIE_NAME"); ok {
		c.Session.CookieName = v
	}
	if v, ok := getEnvBool("SESSION_COOKIE_SECURE"); ok {
		c.Session.Secure = v
	}
	if v, ok := getEnvStr("SESSION_SIGNING_SEED"); ok {
		c.Session.SigningSeed = v
	}

	// SECURITY
	if v, ok := getEnvStr("SECRETBOX_MASTER_KEY"); ok {
		c.Security.SecretBoxMasterKey = v
	}
	if v, ok := getEnvInt("APP_PASSWORD_MIN_LENGTH"); ok {
		c.Security.AppPasswordPolicy.MinLength = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}

	// I18N
	if v, ok := getEnvStr("I18N_DEFAULT_LANGUAGE"); ok {
		c.I18n.DefaultLanguage = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = v
	}
}

// Validate chequea valores críticos.
func (c *Config) Validate() error {
	durs := map[string]string{
		"session.ttl":          c.Session.TTL,
		"rate.login.window":    c.Rate.Login.Window,
		"cache.memory.default": c.Cache.Memory.DefaultTTL,
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		durs["storage.postgres.conn_max_lifetime"] = c.Storage.Postgres.ConnMaxLifetime
	}
	for name, v := range durs {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres", "pg":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.dsn required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache kind %q", c.Cache.Kind)
	}

	if strings.TrimSpace(c.Security.SecretBoxMasterKey) == "" {
		return fmt.Errorf("config: SECRETBOX_MASTER_KEY required; generate one with: openssl rand -base64 32")
	}
	if strings.EqualFold(c.App.Env, "prod") && strings.TrimSpace(c.Session.SigningSeed) == "" {
		return fmt.Errorf("config: session.signing_seed required in prod")
	}
	return nil
}
