package unifi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/wingwifi/internal/clock"
)

// fakeController emulates a classic controller with one site and a voucher store.
type fakeController struct {
	t        *testing.T
	vouchers []Voucher
	lastBody map[string]any
}

func (f *fakeController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.lastBody = nil
	if len(body) > 0 {
		json.Unmarshal(body, &f.lastBody)
	}

	ok := func(data any) {
		json.NewEncoder(w).Encode(map[string]any{"meta": map[string]any{"rc": "ok"}, "data": data})
	}

	switch r.URL.Path {
	case "/":
		http.Redirect(w, r, "/manage", http.StatusFound)
	case "/api/login":
		if f.lastBody["username"] != "admin" || f.lastBody["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"meta": map[string]any{"rc": "error", "msg": "api.err.Invalid"}})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "unifises", Value: "sess-1", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "csrf_token", Value: "csrf-1", Path: "/"})
		ok([]any{})
	case "/logout":
		ok([]any{})
	default:
		if ck, err := r.Cookie("unifises"); err != nil || ck.Value != "sess-1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"meta": map[string]any{"rc": "error", "msg": "api.err.LoginRequired"}})
			return
		}
		f.serveAPI(w, r, ok)
	}
}

func (f *fakeController) serveAPI(w http.ResponseWriter, r *http.Request, ok func(any)) {
	switch r.URL.Path {
	case "/api/self/sites":
		ok([]Site{
			{ID: "2", Name: "branch", Desc: "Zagreb"},
			{ID: "1", Name: "default", Desc: "Beograd"},
		})
	case "/api/s/default/stat/sysinfo":
		ok([]Sysinfo{{Version: "5.12.35"}})
	case "/api/s/default/stat/sta":
		ok([]map[string]any{{"mac": "aa:bb"}, {"mac": "cc:dd"}})
	case "/api/s/default/cmd/hotspot":
		if f.lastBody["cmd"] == "create-voucher" {
			n := int(f.lastBody["n"].(float64))
			for i := 0; i < n; i++ {
				f.vouchers = append(f.vouchers, Voucher{
					ID: "v" + string(rune('0'+i)), Code: "1234567890", CreateTime: 1700000000,
					Duration: int(f.lastBody["expire"].(float64)), Quota: int(f.lastBody["quota"].(float64)),
				})
			}
			ok([]map[string]any{{"create_time": 1700000000}})
			return
		}
		ok([]any{})
	case "/api/s/default/stat/voucher":
		ok(f.vouchers)
	case "/api/s/default/stat/broken":
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"meta": map[string]any{"rc": "error", "msg": "api.err.NoSiteContext"}, "data": []any{}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, password string) (*Client, *fakeController) {
	t.Helper()
	fake := &fakeController{t: t}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", "admin", password,
		WithClock(clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, err)
	return c, fake
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("unifi.local:8443", "u", "p")
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestClient(t, "secret")
	require.NoError(t, c.Login(ctx))
	assert.False(t, c.IsUniFiOS())
	assert.True(t, c.LoggedIn())
	assert.Contains(t, c.Cookie(), "unifises=sess-1")

	bad, _ := newTestClient(t, "wrong")
	err := bad.Login(ctx)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestLogin_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, "admin", "secret", WithTimeout(time.Second))
	require.NoError(t, err)
	assert.ErrorIs(t, c.Login(context.Background()), ErrAuthFailed)
}

func TestCookieRestore(t *testing.T) {
	ctx := context.Background()
	first, fake := newTestClient(t, "secret")
	require.NoError(t, first.Login(ctx))
	cookie := first.Cookie()

	second, err := NewClient(first.baseURL.String(), "admin", "secret")
	require.NoError(t, err)
	second.SetCookie(cookie)

	records, err := second.Do(ctx, ListClients())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	_ = fake
}

func TestDo_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, "secret")

	_, err := c.Do(context.Background(), ListClients())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestDo_ErrorEnvelope(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, "secret")
	require.NoError(t, c.Login(ctx))

	_, err := c.Do(ctx, get("stat/broken"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "error", apiErr.RC)
	assert.Equal(t, "api.err.NoSiteContext", apiErr.Msg)
	assert.False(t, IsUnauthorized(err))
}

func TestSitesAndVersion(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, "secret")
	require.NoError(t, c.Login(ctx))

	sites, err := c.Sites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "Beograd", sites[0].Desc)
	assert.Equal(t, "5.12.35", c.DetectVersion(ctx))

	c.SetSite("nowhere")
	assert.Equal(t, VersionUndetected, c.DetectVersion(ctx))
}

func TestCreateVouchers(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t, "secret")
	require.NoError(t, c.Login(ctx))

	vouchers, err := c.CreateVouchers(ctx, VoucherSpec{Minutes: 60, Count: 1, Quota: 1, Note: "room 12"})
	require.NoError(t, err)
	require.Len(t, vouchers, 1)
	assert.Equal(t, 60, vouchers[0].Duration)
	assert.Equal(t, 1, vouchers[0].Quota)

	require.NoError(t, c.RevokeVoucher(ctx, vouchers[0].ID))
	assert.Equal(t, "delete-voucher", fake.lastBody["cmd"])
	assert.Error(t, c.RevokeVoucher(ctx, ""))
}

func TestUniFiOSPaths(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/":
			w.WriteHeader(http.StatusOK)
		case "/api/auth/login":
			w.Header().Set("X-CSRF-Token", "tok")
			http.SetCookie(w, &http.Cookie{Name: "TOKEN", Value: "a.b.c", Path: "/"})
		default:
			assert.Equal(t, "tok", r.Header.Get("X-CSRF-Token"))
			json.NewEncoder(w).Encode(map[string]any{"meta": map[string]any{"rc": "ok"}, "data": []any{}})
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "admin", "secret")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx))
	assert.True(t, c.IsUniFiOS())

	_, err = c.Do(ctx, ListDevices())
	require.NoError(t, err)
	require.NoError(t, c.Logout(ctx))

	assert.Contains(t, seen, "GET /proxy/network/api/s/default/stat/device")
	assert.Contains(t, seen, "POST /api/auth/logout")
}

func TestCSRFFromJWT(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"csrfToken":"xyz"}`))
	assert.Equal(t, "xyz", csrfFromJWT("h."+payload+".sig"))
	assert.Equal(t, "", csrfFromJWT("garbage"))

	c, err := NewClient("https://console.local", "u", "p")
	require.NoError(t, err)
	c.SetCookie("TOKEN=h." + payload + ".sig")
	assert.True(t, c.IsUniFiOS())
	assert.Equal(t, "xyz", c.csrfToken)
}

func TestUnwrapEnvelope(t *testing.T) {
	data, err := unwrapEnvelope("p", 200, []byte(`{"meta":{"rc":"ok"},"data":{"count":3}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"count":3}]`, data)

	data, err = unwrapEnvelope("p", 200, []byte(`[1,2]`))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, data)

	_, err = unwrapEnvelope("p", 502, []byte(`<html>`))
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestReportWindow(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	req := Report(IntervalHourly, "site", SiteReportAttrs, now)

	assert.Equal(t, "stat/report/hourly.site", req.Path)
	p := req.Payload.(map[string]any)
	assert.Equal(t, now.UnixMilli(), p["end"])
	assert.Equal(t, now.Add(-7*24*time.Hour).UnixMilli(), p["start"])
}
