// Package config содержит логику чтения конфигурации портала самодиспетчеризации.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultDellBaseURL   = "https://apigtw.dell.com/techdirect"
	defaultLenovoBaseURL = "https://api.lenovo.com/techdirect"
	defaultTimeout       = 30 * time.Second
	defaultStubAddress   = "localhost:8080"
)

// Config содержит параметры клиентов вендоров и стаб-сервера.
// Учётные данные приложения Dell задаются только извне и не имеют
// значений по умолчанию.
type Config struct {
	DellBaseURL      string        `env:"DELL_BASE_URL"`
	DellClientID     string        `env:"DELL_CLIENT_ID"`
	DellClientSecret string        `env:"DELL_CLIENT_SECRET"`
	LenovoBaseURL    string        `env:"LENOVO_BASE_URL"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT"`
	StubAddress      string        `env:"STUB_ADDRESS"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значения из окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envDellBaseURL := cfg.DellBaseURL
	envLenovoBaseURL := cfg.LenovoBaseURL
	envTimeout := cfg.RequestTimeout
	envStubAddress := cfg.StubAddress

	flag.StringVar(&cfg.DellBaseURL, "dell-url", defaultDellBaseURL, "Dell TechDirect base URL")
	flag.StringVar(&cfg.LenovoBaseURL, "lenovo-url", defaultLenovoBaseURL, "Lenovo base URL")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", defaultTimeout, "per-request timeout")
	flag.StringVar(&cfg.StubAddress, "a", defaultStubAddress, "address and port for the stub vendor server")

	flag.Parse()

	if envDellBaseURL != "" {
		cfg.DellBaseURL = envDellBaseURL
	}
	if envLenovoBaseURL != "" {
		cfg.LenovoBaseURL = envLenovoBaseURL
	}
	if envTimeout != 0 {
		cfg.RequestTimeout = envTimeout
	}
	if envStubAddress != "" {
		cfg.StubAddress = envStubAddress
	}

	return cfg, nil
}

// FromEnv считывает конфигурацию только из переменных окружения.
// Используется CLI, где разбором аргументов занимается cobra.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DellBaseURL == "" {
		cfg.DellBaseURL = defaultDellBaseURL
	}
	if cfg.LenovoBaseURL == "" {
		cfg.LenovoBaseURL = defaultLenovoBaseURL
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	if cfg.StubAddress == "" {
		cfg.StubAddress = defaultStubAddress
	}

	return cfg, nil
}
