// Package brand provides centralized branding constants.
//
// The brand identity is loaded from brand.json at compile time via go:embed,
// so templates, the CLI and the receipt printer all agree on names and paths.
package brand

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information.
type Brand struct {
	Name                string `json:"name"`
	LowerName           string `json:"lowerName"`
	Vendor              string `json:"vendor"`
	Website             string `json:"website"`
	Description         string `json:"description"`
	ConfigEnvPrefix     string `json:"configEnvPrefix"`
	DefaultConfigDir    string `json:"defaultConfigDir"`
	DefaultStateDir     string `json:"defaultStateDir"`
	BinaryName          string `json:"binaryName"`
	ConfigFileName      string `json:"configFileName"`
	DefaultWirelessName string `json:"defaultWirelessName"`
	DefaultListen       string `json:"defaultListen"`
	SessionCookie       string `json:"sessionCookie"`
	Copyright           string `json:"copyright"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	LowerName = b.LowerName
	Vendor = b.Vendor
	Website = b.Website
	Description = b.Description
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	DefaultStateDir = b.DefaultStateDir
	BinaryName = b.BinaryName
	ConfigFileName = b.ConfigFileName
	DefaultWirelessName = b.DefaultWirelessName
	DefaultListen = b.DefaultListen
	SessionCookie = b.SessionCookie
	Copyright = b.Copyright
}

var (
	Name                string
	LowerName           string
	Vendor              string
	Website             string
	Description         string
	ConfigEnvPrefix     string
	DefaultConfigDir    string
	DefaultStateDir     string
	BinaryName          string
	ConfigFileName      string
	DefaultWirelessName string
	DefaultListen       string
	SessionCookie       string
	Copyright           string

	// Version is set at build time via -ldflags
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Get returns the full Brand struct
func Get() Brand {
	return b
}

// UserAgent returns a User-Agent string for controller requests.
func UserAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return Name + "/" + version
}

// GetConfigDir returns the config directory.
// Priority: WINGWIFI_CONFIG_DIR > WINGWIFI_PREFIX/config > DefaultConfigDir
func GetConfigDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "config")
	}
	return DefaultConfigDir
}

// GetStateDir returns the directory holding the session database.
// Priority: WINGWIFI_STATE_DIR > WINGWIFI_PREFIX/state > DefaultStateDir
func GetStateDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_STATE_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "state")
	}
	return DefaultStateDir
}

// DefaultConfigPath is the config file used when none is given on the command line.
func DefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), ConfigFileName)
}
