package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
)

type GlobalConfig struct {
	Database Database `mapstructure:",squash"`
	Redis    Redis    `mapstructure:",squash"`
	Server   Server   `mapstructure:",squash"`
	Auth     Auth     `mapstructure:",squash"`
	RPC      RPC      `mapstructure:",squash"`
	Log      Log      `mapstructure:",squash"`
	Trace    Trace    `mapstructure:",squash"`
	Mail     Mail     `mapstructure:",squash"`
	Workflow Workflow `mapstructure:",squash"`
}

var config = &GlobalConfig{}

func init() {
	if err := defaults.Set(config); err != nil {
		fmt.Printf("set default err: %+v", err)
		os.Exit(1)
	}
}

func Global() *GlobalConfig {
	return config
}

const devSecret = "labinv-dev-secret"

// Validate rejects settings that are only acceptable in development.
func (c *GlobalConfig) Validate() error {
	if c.Server.Env != "dev" && c.Auth.JWTSecret == devSecret {
		return fmt.Errorf("JWT_SECRET must be set when ENV=%s", c.Server.Env)
	}
	if c.Server.NodeID < 0 || c.Server.NodeID > 1023 {
		return fmt.Errorf("NODE_ID %d out of range 0-1023", c.Server.NodeID)
	}
	if c.Auth.LoginRateLimit > 0 && c.Auth.LoginRateWindow <= 0 {
		return fmt.Errorf("LOGIN_RATE_WINDOW must be positive when LOGIN_RATE_LIMIT is set")
	}
	if c.Mail.RateLimit > 0 && c.Mail.RateWindow <= 0 {
		return fmt.Errorf("MAIL_RATE_WINDOW must be positive when MAIL_RATE_LIMIT is set")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	return nil
}
