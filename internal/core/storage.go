package core

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"flowcore/internal/infra/container"
	"flowcore/internal/infra/container/memory"
	"flowcore/internal/infra/container/postgres"
	"flowcore/internal/infra/container/sqlite"
)

// ContainerConfig selects the case container driver from the environment.
type ContainerConfig struct {
	Driver      container.Driver `env:"FLOWCORE_CONTAINER_DRIVER" envDefault:"sqlite"`
	PostgresDSN string           `env:"FLOWCORE_POSTGRES_DSN"`
}

// LoadContainerConfig parses the container configuration from process
// environment variables.
func LoadContainerConfig() (ContainerConfig, error) {
	var cfg ContainerConfig
	if err := env.Parse(&cfg); err != nil {
		return ContainerConfig{}, fmt.Errorf("parse container config: %w", err)
	}
	return cfg, nil
}

// OpenContainer opens the case container at path using the environment's
// driver selection. The postgres driver keys slots by the path, so many
// cases share one database.
func OpenContainer(path string) (container.Container, error) {
	cfg, err := LoadContainerConfig()
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case container.DriverSQLite:
		return sqlite.Open(path)
	case container.DriverPostgres:
		return postgres.Open(cfg.PostgresDSN, path)
	case container.DriverMemory:
		return memory.Open(path), nil
	default:
		return nil, fmt.Errorf("unknown container driver %q", cfg.Driver)
	}
}
