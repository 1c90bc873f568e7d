// Package config loads the WingWifi configuration file.
//
// The file is JSON (the historical config.json layout) or HCL; both decode
// into the same Config. Keys are kept compatible with existing config.json
// deployments, so the JSON names are not uniformly snake_case.
package config

import (
	"strings"
	"time"

	"grimm.is/wingwifi/internal/brand"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

// Defaults applied by Normalize.
const (
	DefaultCookieTimeout     = 3600
	DefaultControllerTimeout = 30
	DefaultPrinterTimeout    = 5
	DefaultLang              = "en"
	DefaultControllerName    = "Controller"
)

// Config is the root configuration.
type Config struct {
	// Default controller credentials (single-controller mode and voucher desk).
	Username string `hcl:"username,optional" json:"username"`
	Password string `hcl:"password,optional" json:"password"`
	Location string `hcl:"location,optional" json:"location"`
	Site     string `hcl:"site,optional" json:"site"`

	// CookieTimeout is the session inactivity timeout in seconds.
	CookieTimeout int `hcl:"cookie_timeout,optional" json:"cookieTimeout"`

	PrinterIP    string `hcl:"printer_ip,optional" json:"printer_ip"`
	PrinterLogo  string `hcl:"printer_logo,optional" json:"printer_logo"`
	WirelessName string `hcl:"wireless_name,optional" json:"wireless_name"`
	DefaultLang  string `hcl:"default_lang,optional" json:"default_lang"`

	// Admin gate for the API browser. Empty username or password disables it.
	AdminUsername string `hcl:"sys_admin_username,optional" json:"sys_admin_username"`
	AdminPassword string `hcl:"sys_admin_password,optional" json:"sys_admin_password"`

	Listen            string `hcl:"listen,optional" json:"listen"`
	VerifyTLS         bool   `hcl:"verify_tls,optional" json:"verify_tls"`
	ControllerTimeout int    `hcl:"controller_timeout,optional" json:"controller_timeout"`
	PrinterTimeout    int    `hcl:"printer_timeout,optional" json:"printer_timeout"`

	Session *SessionConfig `hcl:"session,block" json:"session,omitempty"`
	Log     *LogConfig     `hcl:"log,block" json:"log,omitempty"`

	// Controllers enables multi-controller mode in the API browser.
	Controllers []ControllerConfig `hcl:"controller,block" json:"controllers,omitempty"`
}

// SessionConfig selects where browser sessions are kept.
type SessionConfig struct {
	Backend  string `hcl:"backend,optional" json:"backend"`
	Path     string `hcl:"path,optional" json:"path"`
	RedisURL string `hcl:"redis_url,optional" json:"redis_url"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `hcl:"level,optional" json:"level"`
	JSON  bool   `hcl:"json,optional" json:"json"`
}

// ControllerConfig is one entry of the controller dropdown.
type ControllerConfig struct {
	ID       string `hcl:"id,label" json:"id"`
	Name     string `hcl:"name,optional" json:"name"`
	User     string `hcl:"user,optional" json:"user"`
	Password string `hcl:"password,optional" json:"password"`
	URL      string `hcl:"url,optional" json:"url"`
}

// Normalize trims credentials and fills defaults. It is idempotent.
func (c *Config) Normalize() {
	c.Username = strings.TrimSpace(c.Username)
	c.Location = strings.TrimRight(strings.TrimSpace(c.Location), "/")
	c.Site = strings.TrimSpace(c.Site)

	if c.CookieTimeout <= 0 {
		c.CookieTimeout = DefaultCookieTimeout
	}
	if c.ControllerTimeout <= 0 {
		c.ControllerTimeout = DefaultControllerTimeout
	}
	if c.PrinterTimeout <= 0 {
		c.PrinterTimeout = DefaultPrinterTimeout
	}
	if c.WirelessName == "" {
		c.WirelessName = brand.DefaultWirelessName
	}
	if c.DefaultLang == "" {
		c.DefaultLang = DefaultLang
	}
	if c.Listen == "" {
		c.Listen = brand.DefaultListen
	}
	if c.Session == nil {
		c.Session = &SessionConfig{}
	}
	if c.Session.Backend == "" {
		c.Session.Backend = SessionBackendMemory
	}
	if c.Log == nil {
		c.Log = &LogConfig{Level: "info"}
	}

	for i := range c.Controllers {
		ctl := &c.Controllers[i]
		ctl.User = strings.TrimSpace(ctl.User)
		ctl.URL = strings.TrimRight(strings.TrimSpace(ctl.URL), "/")
		if ctl.Name == "" {
			ctl.Name = DefaultControllerName
		}
	}
}

// SessionTimeout returns CookieTimeout as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.CookieTimeout) * time.Second
}

// ControllerRequestTimeout returns the HTTP timeout for controller calls.
func (c *Config) ControllerRequestTimeout() time.Duration {
	return time.Duration(c.ControllerTimeout) * time.Second
}

// PrinterDialTimeout returns the TCP timeout for the receipt printer.
func (c *Config) PrinterDialTimeout() time.Duration {
	return time.Duration(c.PrinterTimeout) * time.Second
}

// AdminGateEnabled reports whether the API browser requires an admin login.
func (c *Config) AdminGateEnabled() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

// DefaultController returns the controller described by the top-level
// credentials. The site setting doubles as its display name.
func (c *Config) DefaultController() ControllerConfig {
	name := c.Site
	if name == "" {
		name = DefaultControllerName
	}
	return ControllerConfig{
		Name:     name,
		User:     c.Username,
		Password: c.Password,
		URL:      c.Location,
	}
}

// FindController looks up a controller by id.
func FindController(controllers []ControllerConfig, id string) (ControllerConfig, bool) {
	for _, ctl := range controllers {
		if ctl.ID == id {
			return ctl, true
		}
	}
	return ControllerConfig{}, false
}
