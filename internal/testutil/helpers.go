// Package testutil holds test doubles shared across packages.
package testutil

import (
	"os"
	"testing"
)

// RequireEnv skips the test unless the named environment variable is set,
// and returns its value. Tests against real Redis servers or controllers use it.
func RequireEnv(t *testing.T, name string) string {
	t.Helper()
	v := os.Getenv(name)
	if v == "" {
		t.Skipf("Skipping test: %s not set", name)
	}
	return v
}
