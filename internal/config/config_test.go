package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetDefaultsFillsZeroValues(t *testing.T) {
	var c Config
	c.SetDefaults()
	require.Equal(t, ":8080", c.Server.Addr)
	require.Equal(t, 30, c.Search.DefaultTimeLimitSeconds)
	require.Equal(t, "info", c.Logging.Level)
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	c.Logging.Level = "verbose"
	require.Error(t, c.Validate())
}

func TestValidateRejectsMaxBelowDefault(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	c.Search.MaxTimeLimitSeconds = 5
	c.Search.DefaultTimeLimitSeconds = 30
	require.Error(t, c.Validate())
}
