package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/wingwifi/internal/auth"
	"grimm.is/wingwifi/internal/config"
	"grimm.is/wingwifi/internal/metrics"
	"grimm.is/wingwifi/internal/ratelimit"
	"grimm.is/wingwifi/internal/session"
	"grimm.is/wingwifi/internal/testutil"
)

type testEnv struct {
	ctl    *testutil.FakeController
	server *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	return newTestEnvWith(t, mutate, nil)
}

func newTestEnvWith(t *testing.T, mutate func(*config.Config), withOpts func(*ServerOptions)) *testEnv {
	t.Helper()
	ctl := testutil.NewFakeController(t)
	cfg := &config.Config{
		Username:     ctl.User,
		Password:     ctl.Password,
		Location:     ctl.URL(),
		WirelessName: "WingWifi",
	}
	if mutate != nil {
		mutate(cfg)
	}
	cfg.Normalize()

	reg := prometheus.NewRegistry()
	opts := ServerOptions{
		Config:   cfg,
		Sessions: session.NewManager(session.NewMemoryStore(), session.Options{Timeout: time.Hour}),
		Metrics:  metrics.NewRegistry(reg, reg),
	}
	if withOpts != nil {
		withOpts(&opts)
	}
	srv, err := NewServer(opts)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{ctl: ctl, server: ts, client: &http.Client{Jar: jar}}
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) ajax(t *testing.T, form url.Values) (int, ajaxResponse) {
	t.Helper()
	status, body := e.post(t, "/?type=ajax", form)
	var resp ajaxResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp), body)
	return status, resp
}

var csrfPattern = regexp.MustCompile(`name="(?:csrf-token" content|csrf_token" value)="([^"]+)"`)

func csrfFrom(t *testing.T, page string) string {
	t.Helper()
	m := csrfPattern.FindStringSubmatch(page)
	require.NotNil(t, m, "no csrf token in page")
	return m[1]
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"status":"ok"`)
}

func TestConfigErrorMode(t *testing.T) {
	srv, err := NewServer(ServerOptions{ConfigErr: &config.MissingError{Field: "location"}})
	require.NoError(t, err)
	h := srv.Handler()

	for _, path := range []string{"/", "/admin/", "/?show=sites"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, path)
		assert.Contains(t, rr.Body.String(), "configuration missing: location", path)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"error"`)
}

func TestNewServer_RequiresConfig(t *testing.T) {
	_, err := NewServer(ServerOptions{})
	assert.Error(t, err)
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	if cfg.ReadHeaderTimeout <= 0 || cfg.ReadTimeout <= 0 || cfg.IdleTimeout <= 0 {
		t.Error("timeouts should be positive")
	}
	if cfg.WriteTimeout < 30*time.Second {
		t.Errorf("WriteTimeout %v is shorter than the controller timeout", cfg.WriteTimeout)
	}
	if cfg.MaxBodyBytes <= 0 {
		t.Error("MaxBodyBytes should be positive")
	}
}

func TestBrowser_Navigation(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.get(t, "/admin/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please select a site from the Sites menu")
	assert.Contains(t, body, "Beograd")
	assert.Contains(t, body, "Zagreb")

	_, body = env.get(t, "/admin/?site_id=default&site_name=Beograd")
	assert.Contains(t, body, "Please select a data collection from the menu")
	assert.Contains(t, body, "6.5.55")

	_, body = env.get(t, "/admin/?action=list_clients")
	assert.Contains(t, body, "aa:bb:cc:00:00:01")
	assert.Contains(t, body, "Records: 2")

	// the controller cookie is kept in the session
	assert.Equal(t, 1, env.ctl.Logins())
}

func TestBrowser_OutputFormat(t *testing.T) {
	env := newTestEnv(t, nil)

	env.get(t, "/admin/?site_id=default&site_name=Beograd")
	_, body := env.get(t, "/admin/?action=list_clients&output_format=yaml")
	assert.Contains(t, body, "- mac: aa:bb:cc:00:00:01")

	_, body = env.get(t, "/admin/?output_format=bogus")
	assert.Contains(t, body, `&#34;mac&#34;`)
}

func TestBrowser_ExpiredControllerSession(t *testing.T) {
	env := newTestEnv(t, nil)

	env.get(t, "/admin/?site_id=default&site_name=Beograd")
	require.Equal(t, 1, env.ctl.Logins())

	env.ctl.ExpireSession()
	_, body := env.get(t, "/admin/?action=list_clients")
	assert.Contains(t, body, "The request failed")

	_, body = env.get(t, "/admin/")
	assert.Contains(t, body, "aa:bb:cc:00:00:01")
	assert.Equal(t, 2, env.ctl.Logins())
}

func TestBrowser_LoginForm(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Password = ""
	})

	status, body := env.get(t, "/admin/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Log in to Controller with username admin")
	assert.Contains(t, body, `href="`+env.ctl.URL()+`"`)
	assert.Contains(t, body, `name="controller_password"`)

	form := url.Values{
		"controller_password": {env.ctl.Password},
		CSRFField:             {csrfFrom(t, body)},
	}
	status, body = env.post(t, "/admin/", form)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please select a site from the Sites menu")

	status, _ = env.post(t, "/admin/", url.Values{"controller_password": {"x"}})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestBrowser_LoginAlertNamesController(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Controllers = []config.ControllerConfig{{ID: "hq", Name: "HQ"}}
	})

	_, body := env.get(t, "/admin/?controller_id=hq")
	assert.Contains(t, body, "Log in to HQ")
	assert.NotContains(t, body, "with username")
	assert.NotContains(t, body, `class="alert-link"`)

	env = newTestEnv(t, func(c *config.Config) {
		c.Password = ""
		c.Site = "Hotel Beograd"
	})
	_, body = env.get(t, "/admin/")
	assert.Contains(t, body, "Log in to Hotel Beograd with username admin")
}

func TestBrowser_VersionDetectionRetried(t *testing.T) {
	env := newTestEnv(t, nil)
	env.ctl.FailSysinfo(1)

	_, body := env.get(t, "/admin/?site_id=default&site_name=Beograd")
	assert.Contains(t, body, "action=list_clients")
	assert.NotContains(t, body, "action=list_tags")

	_, body = env.get(t, "/admin/")
	assert.Contains(t, body, "action=list_tags")
	assert.Contains(t, body, "6.5.55")
}

func TestBrowser_VersionDetectedBeforeSiteChoice(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.get(t, "/admin/")
	assert.Contains(t, body, "Please select a site from the Sites menu")
	assert.Contains(t, body, "6.5.55")
}

func TestBrowser_SiteNameFilledFromCache(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.get(t, "/admin/?site_id=branch")
	assert.Contains(t, body, `id="sites" data-toggle="dropdown">Zagreb</a>`)
}

func TestBrowser_AboutDialog(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.get(t, "/admin/?site_id=default&site_name=Beograd")
	assert.Contains(t, body, `id="about_modal"`)
	assert.Contains(t, body, `<dd class="col-sm-7" id="about_controller_user">admin</dd>`)
	assert.Contains(t, body, `<dd class="col-sm-7" id="about_controller_url">`+env.ctl.URL()+`</dd>`)
	assert.Contains(t, body, `<dd class="col-sm-7" id="about_controller_version">6.5.55</dd>`)
	assert.Contains(t, body, `<dd class="col-sm-7" id="about_go_version">`+runtime.Version()+`</dd>`)
	assert.Contains(t, body, `<dd class="col-sm-7" id="about_platform">`+runtime.GOOS+"/"+runtime.GOARCH+`</dd>`)
	assert.Contains(t, body, `id="about_memory_used"`)
	assert.NotContains(t, body, env.ctl.Password)
}

func TestBrowser_WrongControllerPassword(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Password = "wrong"
	})

	_, body := env.get(t, "/admin/")
	assert.Contains(t, body, "Unable to log in to the controller Controller")
	assert.Contains(t, body, `name="controller_password"`)
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.AdminUsername = "boss"
		c.AdminPassword = "hunter2"
	})

	status, body := env.get(t, "/admin/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `action="/admin/login"`)
	token := csrfFrom(t, body)

	status, body = env.post(t, "/admin/login", url.Values{
		"username": {"boss"}, "password": {"nope"}, CSRFField: {token},
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "Invalid username or password")

	status, body = env.post(t, "/admin/login", url.Values{
		"username": {"boss"}, "password": {"hunter2"}, CSRFField: {token},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please select a site from the Sites menu")

	// reset keeps the admin login
	_, body = env.get(t, "/admin/?reset_session=1")
	assert.Contains(t, body, "Please select a site from the Sites menu")

	status, body = env.post(t, "/admin/logout", url.Values{CSRFField: {csrfFrom(t, body)}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `action="/admin/login"`)
}

func TestAdminGate_Throttled(t *testing.T) {
	env := newTestEnvWith(t, nil, func(o *ServerOptions) {
		o.Gate = auth.NewGate("boss", "hunter2", ratelimit.NewLimiter(nil), nil)
	})
	_, body := env.get(t, "/admin/login")
	token := csrfFrom(t, body)

	for i := 0; i < auth.MaxAttempts; i++ {
		status, _ := env.post(t, "/admin/login", url.Values{
			"username": {"boss"}, "password": {"nope"}, CSRFField: {token},
		})
		require.Equal(t, http.StatusUnauthorized, status)
	}
	status, body := env.post(t, "/admin/login", url.Values{
		"username": {"boss"}, "password": {"hunter2"}, CSRFField: {token},
	})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, body, "Too many login attempts")
}

func TestDesk_Sites(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "/?show=site&amp;name=default")
	assert.Contains(t, body, "Zagreb")

	status, body = env.get(t, "/?show=site&name=nowhere")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Site not found")

	status, body = env.get(t, "/?show=error&msg=Printer+offline")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Printer offline")

	// one desk login serves all requests
	assert.Equal(t, 1, env.ctl.Logins())
}

func TestDesk_SitePageListsVouchers(t *testing.T) {
	env := newTestEnv(t, nil)
	env.ctl.AddVoucher("default", map[string]any{
		"_id": "v9", "code": "5555566666", "create_time": 1, "duration": 60, "quota": 1,
	})

	status, body := env.get(t, "/?show=site&name=default")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "55555-66666")
	assert.Contains(t, body, "Expired")
	assert.Contains(t, body, "1 hour")
}

func TestDesk_AjaxCreateAndRevoke(t *testing.T) {
	env := newTestEnv(t, nil)
	_, page := env.get(t, "/?show=site&name=default")
	token := csrfFrom(t, page)

	status, resp := env.ajax(t, url.Values{
		"action": {"create"}, "site": {"default"}, "duration": {"60"}, "count": {"1"}, CSRFField: {token},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, statusSuccess, resp.Status)
	assert.Equal(t, "Voucher created", resp.Message)
	assert.Contains(t, resp.HTML, "12345-00001")

	vouchers := env.ctl.Vouchers("default")
	require.Len(t, vouchers, 1)
	assert.EqualValues(t, 60, vouchers[0]["duration"])
	assert.EqualValues(t, 1, vouchers[0]["quota"])

	_, resp = env.ajax(t, url.Values{"action": {"revoke"}, "site": {"default"}, "id": {"v1"}, CSRFField: {token}})
	assert.Equal(t, statusSuccess, resp.Status)
	assert.Empty(t, env.ctl.Vouchers("default"))

	_, resp = env.ajax(t, url.Values{"action": {"revoke"}, "site": {"default"}, "id": {"v1"}, CSRFField: {token}})
	assert.Equal(t, statusError, resp.Status)
	assert.Equal(t, "Failed to revoke voucher", resp.Message)
}

func TestDesk_AjaxPrint(t *testing.T) {
	printer := testutil.NewFakePrinter(t)
	env := newTestEnv(t, func(c *config.Config) {
		c.PrinterIP = printer.Addr()
	})
	_, page := env.get(t, "/")
	token := csrfFrom(t, page)

	_, resp := env.ajax(t, url.Values{"action": {"print"}, "code": {"12345-67890"}, "lang": {"en"}, CSRFField: {token}})
	assert.Equal(t, statusSuccess, resp.Status)
	jobs := printer.WaitJobs(t, 1)
	assert.Contains(t, string(jobs[0]), "12345-67890")
	assert.Contains(t, string(jobs[0]), "WingWifi")

	_, resp = env.ajax(t, url.Values{"action": {"print"}, "code": {"1234567890"}, "lang": {"xx"}, CSRFField: {token}})
	assert.Equal(t, statusError, resp.Status)
	assert.Equal(t, "Failed to print voucher", resp.Message)
}

func TestDesk_AjaxPrintWithoutPrinter(t *testing.T) {
	env := newTestEnv(t, nil)
	_, page := env.get(t, "/")

	_, resp := env.ajax(t, url.Values{"action": {"print"}, "code": {"1234567890"}, CSRFField: {csrfFrom(t, page)}})
	assert.Equal(t, statusError, resp.Status)
}

func TestDesk_AjaxRejects(t *testing.T) {
	env := newTestEnv(t, nil)
	_, page := env.get(t, "/")
	token := csrfFrom(t, page)

	status, resp := env.ajax(t, url.Values{"action": {"create"}, "site": {"default"}})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, statusError, resp.Status)

	status, resp = env.ajax(t, url.Values{"action": {"explode"}, CSRFField: {token}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Unknown request", resp.Message)

	status, _ = env.post(t, "/", url.Values{"action": {"create"}, CSRFField: {token}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Empty(t, env.ctl.Vouchers("default"))
}

func TestDesk_Serbian(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.get(t, "/?lang=sr")
	assert.Contains(t, body, `<html lang="sr">`)

	// the choice sticks through the cookie
	_, body = env.get(t, "/")
	assert.Contains(t, body, `<html lang="sr">`)
}

func TestSpecFromForm(t *testing.T) {
	spec := specFromForm(url.Values{"duration": {"abc"}, "count": {" 3 "}, "usage": {"multi"}, "note": {" desk "}, "down": {"512"}})
	assert.Equal(t, 60, spec.Minutes)
	assert.Equal(t, 3, spec.Count)
	assert.Equal(t, 0, spec.Quota)
	assert.Equal(t, "desk", spec.Note)
	assert.Equal(t, 512, spec.DownKbps)
	assert.Equal(t, 0, spec.UpKbps)

	assert.Equal(t, 1, specFromForm(url.Values{}).Quota)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/", routeLabel("/"))
	assert.Equal(t, "/admin/", routeLabel("/admin/"))
	assert.Equal(t, "/healthz", routeLabel("/healthz"))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.get(t, "/healthz")

	status, body := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(body, "wingwifi_http_requests_total"), "http counter missing")
}
