package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/wingwifi/internal/auth"
	"grimm.is/wingwifi/internal/testutil"
)

func writeConfig(t *testing.T, values map[string]any) string {
	t.Helper()
	data, err := json.Marshal(values)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRunVoucher_CreateAndList(t *testing.T) {
	ctl := testutil.NewFakeController(t)
	path := writeConfig(t, map[string]any{
		"username": ctl.User,
		"password": ctl.Password,
		"location": ctl.URL(),
	})
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, RunVoucher(ctx, &out, path, []string{"create", "-minutes", "120", "-note", "front desk"}))
	assert.Contains(t, out.String(), "12345-00001")
	assert.Contains(t, out.String(), "2 hours")
	assert.Contains(t, out.String(), "front desk")

	out.Reset()
	require.NoError(t, RunVoucher(ctx, &out, path, []string{"list", "-site", "default"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)

	out.Reset()
	require.NoError(t, RunVoucher(ctx, &out, path, []string{"revoke", "-id", "v1"}))
	assert.Empty(t, ctl.Vouchers("default"))
}

func TestRunVoucher_Print(t *testing.T) {
	printer := testutil.NewFakePrinter(t)
	path := writeConfig(t, map[string]any{
		"username":      "admin",
		"password":      "secret",
		"location":      "https://unifi.example.com:8443",
		"printer_ip":    printer.Addr(),
		"wireless_name": "Hotel Guest",
	})

	var out bytes.Buffer
	require.NoError(t, RunVoucher(context.Background(), &out, path, []string{"print", "-code", "1234567890", "-lang", "sr"}))
	assert.Contains(t, out.String(), "12345-67890")

	job := string(printer.WaitJobs(t, 1)[0])
	assert.Contains(t, job, "Hotel Guest")
	assert.Contains(t, job, "12345-67890")
}

func TestRunVoucher_Errors(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"username": "admin",
		"password": "secret",
		"location": "https://unifi.example.com:8443",
	})
	ctx := context.Background()

	assert.Error(t, RunVoucher(ctx, &bytes.Buffer{}, path, nil))
	assert.Error(t, RunVoucher(ctx, &bytes.Buffer{}, path, []string{"explode"}))
	assert.Error(t, RunVoucher(ctx, &bytes.Buffer{}, path, []string{"print", "-code", "1234567890"}), "no printer configured")
}

func TestRunHashPassword(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunHashPassword(&out, "hunter2"))

	hash := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.True(t, auth.VerifyPassword(hash, "hunter2"))
	assert.Error(t, RunHashPassword(&out, ""))
}
