package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "username": " ubnt ",
  "password": "secret",
  "location": "https://10.0.0.2:8443/",
  "site": "default",
  "cookieTimeout": 600,
  "printer_ip": "10.0.0.50",
  "wireless_name": "Lobby"
}`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ubnt", cfg.Username)
	assert.Equal(t, "https://10.0.0.2:8443", cfg.Location)
	assert.Equal(t, 600, cfg.CookieTimeout)
	assert.Equal(t, "10.0.0.50", cfg.PrinterIP)
	assert.Equal(t, "Lobby", cfg.WirelessName)
}

func TestLoadFile_HCL(t *testing.T) {
	path := writeFile(t, "wingwifi.hcl", `
username = "ubnt"
password = "secret"
location = "https://unifi.example.com"

session {
  backend = "sqlite"
  path    = "/tmp/sessions.db"
}

controller "hq" {
  name     = "Headquarters"
  user     = "admin"
  password = "pw"
  url      = "https://hq.example.com:8443"
}

controller "lab" {
  url = "https://lab.example.com"
}
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, SessionBackendSQLite, cfg.Session.Backend)
	require.Len(t, cfg.Controllers, 2)
	assert.Equal(t, "hq", cfg.Controllers[0].ID)
	assert.Equal(t, "Headquarters", cfg.Controllers[0].Name)
	assert.Equal(t, DefaultControllerName, cfg.Controllers[1].Name)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = LoadFile(writeFile(t, "bad.hcl", "username = "))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "empty.json", `{}`))
	assert.True(t, IsMissing(err))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WINGWIFI_PASSWORD", "from-env")
	t.Setenv("WINGWIFI_LOG_LEVEL", "debug")

	path := writeFile(t, "config.json", `{"username":"u","password":"p","location":"https://x.local"}`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Password)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := writeFile(t, ".env", "WINGWIFI_TEST_DOTENV=loaded\n")
	t.Setenv("WINGWIFI_TEST_DOTENV", "")
	os.Unsetenv("WINGWIFI_TEST_DOTENV")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("WINGWIFI_TEST_DOTENV"))
}
