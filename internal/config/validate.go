package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// MissingError reports a required configuration field that is absent.
type MissingError struct {
	Field string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("configuration missing: %s", e.Field)
}

// IsMissing reports whether err is (or wraps) a *MissingError.
func IsMissing(err error) bool {
	var me *MissingError
	return errors.As(err, &me)
}

// ValidationError represents an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks a normalized config. Missing credentials are reported
// first, as a *MissingError, because nothing else can work without them.
func (c *Config) Validate() error {
	switch {
	case c.Username == "":
		return &MissingError{Field: "username"}
	case c.Password == "":
		return &MissingError{Field: "password"}
	case c.Location == "":
		return &MissingError{Field: "location"}
	}

	var errs ValidationErrors
	if err := checkURL(c.Location); err != nil {
		errs = append(errs, ValidationError{Field: "location", Message: err.Error()})
	}

	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendSQLite:
	case SessionBackendRedis:
		if c.Session.RedisURL == "" {
			errs = append(errs, ValidationError{Field: "session.redis_url", Message: "required for the redis backend"})
		}
	default:
		errs = append(errs, ValidationError{Field: "session.backend", Message: fmt.Sprintf("unknown backend %q", c.Session.Backend)})
	}

	seen := make(map[string]bool, len(c.Controllers))
	for i, ctl := range c.Controllers {
		field := fmt.Sprintf("controllers[%d]", i)
		if ctl.ID == "" {
			errs = append(errs, ValidationError{Field: field, Message: "id is required"})
			continue
		}
		if seen[ctl.ID] {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("duplicate id %q", ctl.ID)})
		}
		seen[ctl.ID] = true
		if ctl.URL != "" {
			if err := checkURL(ctl.URL); err != nil {
				errs = append(errs, ValidationError{Field: field + ".url", Message: err.Error()})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is empty")
	}
	return nil
}
