// Package cmd implements the wingwifi subcommands.
package cmd

import (
	"fmt"

	"grimm.is/wingwifi/internal/config"
	"grimm.is/wingwifi/internal/i18n"
	"grimm.is/wingwifi/internal/logging"
	"grimm.is/wingwifi/internal/unifi"
)

// Printer localizes CLI output.
var Printer = i18n.NewCLIPrinter()

// loadConfig loads envFile (when given) and then the configuration.
func loadConfig(configFile, envFile string) (*config.Config, error) {
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return nil, err
		}
	}
	return config.LoadFile(configFile)
}

// setupLogging installs the configured process logger.
func setupLogging(cfg *config.Config) *logging.Logger {
	lc := logging.DefaultConfig()
	if cfg != nil && cfg.Log != nil {
		lc.Level = logging.ParseLevel(cfg.Log.Level)
		lc.JSON = cfg.Log.JSON
	}
	logger := logging.New(lc)
	logging.SetDefault(logger)
	return logger
}

// controllerClient logs in to the configured controller on site.
func controllerClient(cfg *config.Config, site string) (*unifi.Client, error) {
	client, err := unifi.NewClient(cfg.Location, cfg.Username, cfg.Password,
		unifi.WithSite(site),
		unifi.WithTimeout(cfg.ControllerRequestTimeout()),
		unifi.WithVerifyTLS(cfg.VerifyTLS),
	)
	if err != nil {
		return nil, fmt.Errorf("controller client: %w", err)
	}
	return client, nil
}
