package launch

import (
	"net"
	"strconv"

	"smartfarm-backend/internal/common/config"
	errs "smartfarm-backend/internal/common/errors"
)

const (
	// WorkerCount is fixed at 4 regardless of environment.
	WorkerCount = 4

	// BindHost is the wildcard address the served application binds to.
	BindHost = "0.0.0.0"
)

// ErrPortMissing is returned when PORT is absent from the environment.
// There is no default and no validation beyond presence.
var ErrPortMissing = errs.New(errs.ErrCodePortMissing, "PORT environment variable is not set")

// Config is the flat launch configuration consumed by a single invocation.
// It is constructed once and never mutated or shared.
type Config struct {
	Manager     string   // process manager binary
	App         string   // target application reference
	WorkerClass string   // async worker plugin identifier
	Install     []string // dependency acquisition command, may be empty
	Port        string   // from the PORT environment variable
}

// New builds the launch configuration. env is the environment lookup,
// os.Getenv outside of tests.
func New(lc config.LaunchConfig, env func(string) string) (*Config, error) {
	port := env("PORT")
	if port == "" {
		return nil, ErrPortMissing
	}

	return &Config{
		Manager:     lc.Manager,
		App:         lc.App,
		WorkerClass: lc.WorkerClass,
		Install:     lc.Install,
		Port:        port,
	}, nil
}

// BindAddress is the host:port pair the launched server accepts
// connections on.
func (c *Config) BindAddress() string {
	return net.JoinHostPort(BindHost, c.Port)
}

// Args assembles the process manager's argument list, excluding argv[0].
func (c *Config) Args() []string {
	return []string{
		c.App,
		"--workers", strconv.Itoa(WorkerCount),
		"--worker-class", c.WorkerClass,
		"--bind", c.BindAddress(),
	}
}
