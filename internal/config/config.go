// config предоставляет структуру конфигурации Paleta и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Допустимые политики реакции на повторное предъявление ротированного refresh-токена.
const (
	ReusePolicyReject        = "reject"
	ReusePolicyRevokeLineage = "revoke_lineage"
	ReusePolicyRevokeUser    = "revoke_user"
)

// Нижние границы, ниже которых значения из конфигурации поднимаются.
const (
	minAccessTTLMinutes   = 1
	minRefreshTTLDays     = 1
	minResetCodeTTL       = 5
	minResetCodeAttempts  = 3
	defaultPageLimit      = 20
	defaultMaxPageLimit   = 50
	defaultResetRetention = 24 * time.Hour
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	Notify   NotifyConfig  `yaml:"notify"`
	Limits   LimitsConfig  `yaml:"limits"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
	// Janitor — период фоновой очистки отработанных кодов сброса.
	Janitor time.Duration `yaml:"janitor" env:"JANITOR_PERIOD" env-default:"30m"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и проверки токенов и кодов сброса пароля.
// Сроки задаются целыми минутами/днями; минимумы применяются в аксессорах.
type AuthConfig struct {
	SigningSecret        string `yaml:"signing_secret" env:"SIGNING_SECRET" env-required:"true"`
	AccessTTLMinutes     int    `yaml:"access_ttl_minutes" env:"ACCESS_TTL_MINUTES" env-default:"15"`
	RefreshTTLDays       int    `yaml:"refresh_ttl_days" env:"REFRESH_TTL_DAYS" env-default:"30"`
	Issuer               string `yaml:"issuer" env:"ISSUER" env-default:"paleta"`
	Audience             string `yaml:"audience" env:"AUDIENCE" env-default:"paleta-mobile"`
	ResetCodeTTLMinutes  int    `yaml:"reset_code_ttl_minutes" env:"RESET_CODE_TTL_MINUTES" env-default:"15"`
	ResetCodeMaxAttempts int    `yaml:"reset_code_max_attempts" env:"RESET_CODE_MAX_ATTEMPTS" env-default:"5"`
	RefreshReusePolicy   string `yaml:"refresh_reuse_policy" env:"REFRESH_REUSE_POLICY" env-default:"reject"`
	// ResetCodeRetention — сколько хранить истёкшие/использованные коды до удаления.
	ResetCodeRetention time.Duration `yaml:"reset_code_retention" env:"RESET_CODE_RETENTION" env-default:"24h"`
}

// AccessTTL — срок жизни access-токена, не меньше минуты.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(max(a.AccessTTLMinutes, minAccessTTLMinutes)) * time.Minute
}

// RefreshTTL — срок жизни refresh-токена, не меньше суток.
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(max(a.RefreshTTLDays, minRefreshTTLDays)) * 24 * time.Hour
}

// ResetCodeTTL — срок жизни кода сброса, не меньше пяти минут.
func (a AuthConfig) ResetCodeTTL() time.Duration {
	return time.Duration(max(a.ResetCodeTTLMinutes, minResetCodeTTL)) * time.Minute
}

// MaxResetAttempts — предел попыток ввода кода, не меньше трёх.
func (a AuthConfig) MaxResetAttempts() int {
	return max(a.ResetCodeMaxAttempts, minResetCodeAttempts)
}

// ReusePolicy возвращает нормализованную политику; неизвестные значения трактуются как reject.
func (a AuthConfig) ReusePolicy() string {
	switch p := strings.ToLower(strings.TrimSpace(a.RefreshReusePolicy)); p {
	case ReusePolicyRevokeLineage, ReusePolicyRevokeUser:
		return p
	default:
		return ReusePolicyReject
	}
}

// ResetRetention — срок хранения отработанных кодов сброса.
func (a AuthConfig) ResetRetention() time.Duration {
	if a.ResetCodeRetention <= 0 {
		return defaultResetRetention
	}

	return a.ResetCodeRetention
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
	// Migrate — применять встроенные миграции при старте.
	Migrate bool `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"`
}

// RedisConfig — подключение к Redis для лимитера запросов.
// Пустой URL отключает ограничение частоты.
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
}

// NotifyConfig — доставка кодов сброса пароля.
// Пустой SMTPHost включает доставку через лог (для local/dev).
type NotifyConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     string `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser     string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	From         string `yaml:"from" env:"SMTP_FROM" env-default:"no-reply@paleta.local"`
	PhoneRegion  string `yaml:"phone_region" env:"PHONE_REGION" env-default:"RU"`
}

// LimitsConfig — ограничения размера страниц списков.
type LimitsConfig struct {
	Default int `yaml:"default" env:"PAGE_LIMIT_DEFAULT" env-default:"20"`
	Max     int `yaml:"max" env:"PAGE_LIMIT_MAX" env-default:"50"`
}

// Normalized возвращает лимиты с исправленными некорректными значениями.
func (l LimitsConfig) Normalized() LimitsConfig {
	out := l
	if out.Max <= 0 {
		out.Max = defaultMaxPageLimit
	}

	if out.Default <= 0 {
		out.Default = defaultPageLimit
	}

	if out.Default > out.Max {
		out.Default = out.Max
	}

	return out
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла ENV-переменные накладываются поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", p, err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	switch {
	case path != "":
		return readFile(path)
	case os.Getenv("CONFIG_PATH") != "":
		return readFile(os.Getenv("CONFIG_PATH"))
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
