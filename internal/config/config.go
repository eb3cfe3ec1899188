package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/accountsd/internal/security/password"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"app_env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Un pool por clase de tenant.
	Tenants struct {
		Customer Pool `yaml:"customer"`
		Staff    Pool `yaml:"staff"`
		Admin    Pool `yaml:"admin"`
	} `yaml:"tenants"`

	IdP struct {
		Region   string `yaml:"region"`
		Endpoint string `yaml:"endpoint"` // vacío => endpoint AWS por defecto
	} `yaml:"idp"`

	Profiles struct {
		Driver string `yaml:"driver"` // memory | mongo | postgres
		Mongo  struct {
			URI        string `yaml:"uri"`
			Database   string `yaml:"database"`
			Collection string `yaml:"collection"`
		} `yaml:"mongo"`
		Postgres struct {
			DSN   string `yaml:"dsn"`
			Table string `yaml:"table"`
		} `yaml:"postgres"`
	} `yaml:"profiles"`

	Reset struct {
		TTL           time.Duration `yaml:"ttl"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
		Store         string        `yaml:"store"` // memory | redis
		FrontendURL   string        `yaml:"frontend_url"`
	} `yaml:"reset"`

	Redis struct {
		Addr     string `yaml:"addr"`
		DB       int    `yaml:"db"`
		Password string `yaml:"password"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	Rate struct {
		Disabled bool   `yaml:"disabled"`
		Backend  string `yaml:"backend"` // memory | redis

		Forgot struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"forgot"`
	} `yaml:"rate"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Email struct {
		From    string `yaml:"from"`
		AppName string `yaml:"app_name"`
		// log => no envía, sólo registra (dev)
		Transport string `yaml:"transport"` // smtp | log
	} `yaml:"email"`

	Captcha struct {
		SecretKey      string        `yaml:"secret_key"`
		VerifyURL      string        `yaml:"verify_url"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowDevBypass bool          `yaml:"allow_dev_bypass"`
	} `yaml:"captcha"`

	Admin struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"admin"`

	Security struct {
		PasswordPolicy password.Policy `yaml:"password_policy"`
	} `yaml:"security"`
}

// Pool identifica el user pool y el app client de una clase de tenant.
type Pool struct {
	PoolID       string `yaml:"pool_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

func (p Pool) Configured() bool {
	return p.PoolID != "" && p.ClientID != "" && p.ClientSecret != ""
}

func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}

// Load lee el YAML (si path no está vacío), aplica defaults y overrides de
// entorno y valida.
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

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "accountsd"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.IdP.Region == "" {
		c.IdP.Region = "eu-west-3"
	}
	if c.Profiles.Driver == "" {
		c.Profiles.Driver = "memory"
	}
	if c.Profiles.Mongo.Collection == "" {
		c.Profiles.Mongo.Collection = "customers"
	}
	if c.Profiles.Postgres.Table == "" {
		c.Profiles.Postgres.Table = "profiles"
	}
	if c.Reset.TTL == 0 {
		c.Reset.TTL = time.Hour
	}
	if c.Reset.SweepInterval == 0 {
		c.Reset.SweepInterval = 5 * time.Minute
	}
	if c.Reset.Store == "" {
		c.Reset.Store = "memory"
	}
	if c.Reset.FrontendURL == "" && !c.IsProd() {
		c.Reset.FrontendURL = "http://localhost:3000"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "accountsd:"
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Forgot.Limit == 0 {
		c.Rate.Forgot.Limit = 5
	}
	if c.Rate.Forgot.Window == 0 {
		c.Rate.Forgot.Window = 15 * time.Minute
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Email.AppName == "" {
		c.Email.AppName = c.App.Name
	}
	if c.Email.Transport == "" {
		if c.SMTP.Host == "" {
			c.Email.Transport = "log"
		} else {
			c.Email.Transport = "smtp"
		}
	}
	if c.Captcha.Timeout == 0 {
		c.Captcha.Timeout = 10 * time.Second
	}
	if c.Admin.Issuer == "" {
		c.Admin.Issuer = c.App.Name
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy = password.Default()
	}
	// Guardia dura: nunca bypass de captcha en prod.
	if c.IsProd() {
		c.Captcha.AllowDevBypass = false
	}
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

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func setStr(dst *string, keys ...string) {
	for _, k := range keys {
		if v, ok := getEnvStr(k); ok {
			*dst = strings.TrimSpace(v)
			return
		}
	}
}

// applyEnvOverrides: pisa config.yaml con variables de entorno. Los nombres
// COGNITO_* coinciden con los del despliegue existente.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	} else if v, ok := getEnvStr("NODE_ENV"); ok {
		if strings.EqualFold(v, "production") {
			v = "prod"
		}
		c.App.Env = strings.ToLower(v)
	}
	setStr(&c.App.Version, "APP_VERSION")

	// SERVER
	setStr(&c.Server.Addr, "SERVER_ADDR")
	if v, ok := getEnvInt("PORT"); ok && os.Getenv("SERVER_ADDR") == "" {
		c.Server.Addr = ":" + strconv.Itoa(v)
	}
	if v, ok := getEnvDur("SERVER_SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}

	setStr(&c.Log.Level, "LOG_LEVEL")

	// TENANTS
	setStr(&c.Tenants.Customer.PoolID, "COGNITO_CLIENT_USER_POOL_ID")
	setStr(&c.Tenants.Customer.ClientID, "COGNITO_CLIENT_APP_CLIENT_ID")
	setStr(&c.Tenants.Customer.ClientSecret, "COGNITO_CLIENT_APP_SECRET")
	setStr(&c.Tenants.Staff.PoolID, "COGNITO_INTERNAL_USER_POOL_ID")
	setStr(&c.Tenants.Staff.ClientID, "COGNITO_INTERNAL_APP_CLIENT_ID")
	setStr(&c.Tenants.Staff.ClientSecret, "COGNITO_INTERNAL_APP_SECRET")
	setStr(&c.Tenants.Admin.PoolID, "COGNITO_ADMIN_USER_POOL_ID")
	setStr(&c.Tenants.Admin.ClientID, "COGNITO_ADMIN_APP_CLIENT_ID")
	setStr(&c.Tenants.Admin.ClientSecret, "COGNITO_ADMIN_APP_SECRET")

	// IDP
	setStr(&c.IdP.Region, "COGNITO_REGION", "AWS_REGION")
	setStr(&c.IdP.Endpoint, "COGNITO_ENDPOINT")

	// PROFILES
	setStr(&c.Profiles.Driver, "PROFILES_DRIVER")
	setStr(&c.Profiles.Mongo.URI, "MONGODB_URI")
	setStr(&c.Profiles.Mongo.Database, "MONGODB_DATABASE")
	setStr(&c.Profiles.Postgres.DSN, "PROFILES_PG_DSN", "DATABASE_URL")

	// RESET
	if v, ok := getEnvDur("RESET_TTL"); ok {
		c.Reset.TTL = v
	}
	if v, ok := getEnvDur("RESET_SWEEP_INTERVAL"); ok {
		c.Reset.SweepInterval = v
	}
	setStr(&c.Reset.Store, "RESET_STORE")
	setStr(&c.Reset.FrontendURL, "FRONTEND_URL")

	// REDIS
	setStr(&c.Redis.Addr, "REDIS_ADDR")
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}
	setStr(&c.Redis.Password, "REDIS_PASSWORD")
	setStr(&c.Redis.Prefix, "REDIS_PREFIX")

	// RATE
	if v, ok := getEnvBool("DISABLE_RATE_LIMIT"); ok {
		c.Rate.Disabled = v
	}
	setStr(&c.Rate.Backend, "RATE_BACKEND")
	if v, ok := getEnvInt("RATE_FORGOT_LIMIT"); ok {
		c.Rate.Forgot.Limit = v
	}
	if v, ok := getEnvDur("RATE_FORGOT_WINDOW"); ok {
		c.Rate.Forgot.Window = v
	}

	// SMTP
	setStr(&c.SMTP.Host, "SMTP_HOST")
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	setStr(&c.SMTP.Username, "SMTP_USER", "GMAIL_USER")
	setStr(&c.SMTP.Password, "SMTP_PASS", "GMAIL_APP_PASSWORD")
	setStr(&c.SMTP.TLS, "SMTP_TLS")
	if v, ok := getEnvBool("SMTP_SECURE"); ok && v && os.Getenv("SMTP_TLS") == "" {
		c.SMTP.TLS = "ssl"
	}

	// EMAIL
	setStr(&c.Email.From, "EMAIL_FROM")
	setStr(&c.Email.Transport, "EMAIL_TRANSPORT")

	// CAPTCHA
	setStr(&c.Captcha.SecretKey, "RECAPTCHA_SECRET_KEY")
	if v, ok := getEnvBool("CAPTCHA_ALLOW_DEV_BYPASS"); ok {
		c.Captcha.AllowDevBypass = v
	}

	// ADMIN
	setStr(&c.Admin.JWTSecret, "ADMIN_JWT_SECRET")
	setStr(&c.Admin.Issuer, "ADMIN_JWT_ISSUER")
}

// Validate chequea valores críticos. Las clases sin pool no son un error de
// arranque: sus operaciones fallan con Configuration.
func (c *Config) Validate() error {
	var errs []error

	switch c.Profiles.Driver {
	case "memory":
	case "mongo":
		if c.Profiles.Mongo.URI == "" {
			errs = append(errs, errors.New("profiles.mongo.uri is required for driver mongo"))
		}
	case "postgres":
		if c.Profiles.Postgres.DSN == "" {
			errs = append(errs, errors.New("profiles.postgres.dsn is required for driver postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("profiles.driver %q not supported", c.Profiles.Driver))
	}

	for name, v := range map[string]string{"reset.store": c.Reset.Store, "rate.backend": c.Rate.Backend} {
		switch v {
		case "memory":
		case "redis":
			if c.Redis.Addr == "" {
				errs = append(errs, fmt.Errorf("%s=redis requires redis.addr", name))
			}
		default:
			errs = append(errs, fmt.Errorf("%s %q not supported", name, v))
		}
	}

	switch c.Email.Transport {
	case "log":
	case "smtp":
		if c.SMTP.Host == "" {
			errs = append(errs, errors.New("smtp.host is required for email transport smtp"))
		}
	default:
		errs = append(errs, fmt.Errorf("email.transport %q not supported", c.Email.Transport))
	}

	if c.Reset.TTL <= 0 {
		errs = append(errs, errors.New("reset.ttl must be positive"))
	}
	if c.Rate.Forgot.Limit < 0 || c.Rate.Forgot.Window < 0 {
		errs = append(errs, errors.New("rate.forgot limit and window must not be negative"))
	}

	if c.IsProd() {
		if len(c.Admin.JWTSecret) < 32 {
			errs = append(errs, errors.New("admin.jwt_secret must be at least 32 bytes in prod"))
		}
		if c.Reset.FrontendURL == "" {
			errs = append(errs, errors.New("reset.frontend_url (FRONTEND_URL) is required in prod"))
		}
		if c.Captcha.SecretKey == "" {
			errs = append(errs, errors.New("captcha.secret_key (RECAPTCHA_SECRET_KEY) is required in prod"))
		}
		if c.Email.Transport == "log" {
			errs = append(errs, errors.New("email.transport log is not allowed in prod"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
