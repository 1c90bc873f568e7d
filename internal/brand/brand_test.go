package brand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	b := Get()
	assert.Equal(t, "WingWifi", b.Name)
	assert.NotEmpty(t, Version)
	assert.Equal(t, b.DefaultWirelessName, DefaultWirelessName)
	assert.NotEmpty(t, SessionCookie)
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, Name+"/1.2.0", UserAgent("1.2.0"))
	assert.Equal(t, Name+"/dev", UserAgent(""))
}

func TestGetDirectories(t *testing.T) {
	t.Setenv(ConfigEnvPrefix+"_PREFIX", "")
	t.Setenv(ConfigEnvPrefix+"_CONFIG_DIR", "")
	t.Setenv(ConfigEnvPrefix+"_STATE_DIR", "")

	assert.Equal(t, DefaultConfigDir, GetConfigDir())
	assert.Equal(t, DefaultStateDir, GetStateDir())

	t.Setenv(ConfigEnvPrefix+"_PREFIX", "/tmp/wingwifi")
	assert.Equal(t, "/tmp/wingwifi/config", GetConfigDir())
	assert.Equal(t, "/tmp/wingwifi/state", GetStateDir())
	assert.Equal(t, "/tmp/wingwifi/config/config.json", DefaultConfigPath())

	t.Setenv(ConfigEnvPrefix+"_CONFIG_DIR", "/custom/config")
	assert.Equal(t, "/custom/config", GetConfigDir())
}
