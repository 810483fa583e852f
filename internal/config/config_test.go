package config

import (
	"testing"
	"time"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := &GlobalConfig{}
	require.NoError(t, defaults.Set(c))

	assert.Equal(t, DriverPostgres, c.Database.Driver)
	assert.True(t, c.Workflow.EnforceStock)
	assert.False(t, c.Workflow.RestockOnReturn)
	assert.Equal(t, 24*time.Hour, c.Auth.TokenTTL)
	assert.False(t, c.Mail.Enabled())
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	c := &GlobalConfig{}
	require.NoError(t, defaults.Set(c))

	c.Server.Env = "prod"
	assert.Error(t, c.Validate())
	c.Auth.JWTSecret = "prod-secret"
	assert.NoError(t, c.Validate())

	c.Server.NodeID = 2048
	assert.Error(t, c.Validate())
	c.Server.NodeID = 3

	c.Database.Driver = "sqlserver"
	assert.Error(t, c.Validate())
}

func TestValidateRateWindows(t *testing.T) {
	c := &GlobalConfig{}
	require.NoError(t, defaults.Set(c))

	c.Mail.RateWindow = 0
	assert.Error(t, c.Validate())
	c.Mail.RateLimit = 0
	assert.NoError(t, c.Validate(), "a zero limit needs no window")

	c.Auth.LoginRateWindow = -time.Minute
	assert.Error(t, c.Validate())
	c.Auth.LoginRateWindow = time.Minute
	assert.NoError(t, c.Validate())
}
