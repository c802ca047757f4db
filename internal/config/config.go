package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	// AdminKey is the shared operator secret gating confirm/reject and the
	// admin listings. No default on purpose.
	AdminKey string `env:"ADMIN_KEY"`

	// DataDir holds the three ledger documents.
	DataDir string `env:"DATA_DIR" envDefault:"data"`

	Relay Relay `envPrefix:"RELAY_"`
}

type Relay struct {
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"60s"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
