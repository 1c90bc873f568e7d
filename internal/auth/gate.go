// Package auth implements the admin gate in front of the API browser.
package auth

import (
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"grimm.is/wingwifi/internal/logging"
	"grimm.is/wingwifi/internal/metrics"
	"grimm.is/wingwifi/internal/ratelimit"
)

// Login throttling per client address.
const (
	MaxAttempts   = 5
	AttemptWindow = 15 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Gate checks admin credentials from the configuration. The configured
// password may be plain text or a bcrypt hash.
type Gate struct {
	username string
	password string
	limiter  *ratelimit.Limiter
	metrics  *metrics.Registry
	logger   *logging.Logger
}

// NewGate creates a gate. A nil limiter disables throttling.
func NewGate(username, password string, limiter *ratelimit.Limiter, m *metrics.Registry) *Gate {
	return &Gate{
		username: username,
		password: password,
		limiter:  limiter,
		metrics:  m,
		logger:   logging.WithComponent("auth"),
	}
}

// Enabled reports whether both admin username and password are configured.
func (g *Gate) Enabled() bool {
	return g.username != "" && g.password != ""
}

// Check validates a login attempt coming from client.
func (g *Gate) Check(client, username, password string) error {
	if g.limiter != nil && !g.limiter.Allow(client, MaxAttempts, AttemptWindow) {
		g.logger.Warn("admin login throttled", "client", client)
		g.metrics.RecordLogin("admin", false)
		return ErrTooManyAttempts
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := VerifyPassword(g.password, password)
	if !g.Enabled() || !userOK || !passOK {
		g.logger.Warn("admin login failed", "client", client, "user", username)
		g.metrics.RecordLogin("admin", false)
		return ErrInvalidCredentials
	}

	if g.limiter != nil {
		g.limiter.Reset(client)
	}
	g.logger.Audit("admin_login", "api_browser", map[string]any{"client": client, "user": username})
	g.metrics.RecordLogin("admin", true)
	return nil
}

// HashPassword returns a bcrypt hash suitable for sys_admin_password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares given with stored, which is either a bcrypt hash
// or a plain-text password.
func VerifyPassword(stored, given string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// ClientIP returns the host part of the request's remote address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
