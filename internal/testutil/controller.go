package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const fakeSessionCookie = "unifises"

// FakeController emulates a classic UniFi controller: cookie login, a site
// list, sysinfo, clients and the hotspot voucher commands. Unknown site-scoped
// endpoints answer with an empty data array.
type FakeController struct {
	User       string
	Password   string
	Version    string
	CreateTime int64

	mu       sync.Mutex
	sites    []map[string]any
	vouchers map[string][]map[string]any
	clients  map[string][]map[string]any
	logins   int
	nextID   int
	// sysinfoFailures makes the next sysinfo calls answer with an error.
	sysinfoFailures int
	token    string
	server   *httptest.Server
}

// NewFakeController starts a controller accepting admin/secret with the
// sites "default" (Beograd) and "branch" (Zagreb).
func NewFakeController(t testing.TB) *FakeController {
	t.Helper()
	f := &FakeController{
		User:       "admin",
		Password:   "secret",
		Version:    "6.5.55",
		CreateTime: 1700000000,
		sites: []map[string]any{
			{"_id": "s2", "name": "branch", "desc": "Zagreb"},
			{"_id": "s1", "name": "default", "desc": "Beograd"},
		},
		vouchers: map[string][]map[string]any{},
		clients: map[string][]map[string]any{
			"default": {{"mac": "aa:bb:cc:00:00:01"}, {"mac": "aa:bb:cc:00:00:02"}},
		},
	}
	f.server = httptest.NewServer(f)
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the controller base URL.
func (f *FakeController) URL() string {
	return f.server.URL
}

// Logins returns the number of successful logins.
func (f *FakeController) Logins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

// Vouchers returns a copy of the vouchers stored for site.
func (f *FakeController) Vouchers(site string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.vouchers[site]...)
}

// AddVoucher stores a voucher for site.
func (f *FakeController) AddVoucher(site string, v map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vouchers[site] = append(f.vouchers[site], v)
}

// FailSysinfo makes the next n sysinfo requests fail.
func (f *FakeController) FailSysinfo(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sysinfoFailures = n
}

// ExpireSession invalidates the current login cookie.
func (f *FakeController) ExpireSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
}

func (f *FakeController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/":
		http.Redirect(w, r, "/manage", http.StatusFound)
		return
	case "/api/login":
		if body["username"] != f.User || body["password"] != f.Password {
			writeEnvelope(w, http.StatusBadRequest, "error", "api.err.Invalid", nil)
			return
		}
		f.logins++
		f.token = fmt.Sprintf("sess-%d", f.logins)
		http.SetCookie(w, &http.Cookie{Name: fakeSessionCookie, Value: f.token, Path: "/"})
		writeEnvelope(w, http.StatusOK, "ok", "", []any{})
		return
	case "/logout":
		f.token = ""
		writeEnvelope(w, http.StatusOK, "ok", "", []any{})
		return
	}

	if ck, err := r.Cookie(fakeSessionCookie); err != nil || f.token == "" || ck.Value != f.token {
		writeEnvelope(w, http.StatusUnauthorized, "error", "api.err.LoginRequired", nil)
		return
	}

	switch r.URL.Path {
	case "/api/self/sites", "/api/stat/sites":
		writeEnvelope(w, http.StatusOK, "ok", "", f.sites)
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/api/s/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	site, endpoint, _ := strings.Cut(rest, "/")
	if !f.hasSite(site) {
		writeEnvelope(w, http.StatusBadRequest, "error", "api.err.NoSiteContext", nil)
		return
	}
	f.serveSite(w, site, endpoint, body)
}

func (f *FakeController) hasSite(name string) bool {
	for _, s := range f.sites {
		if s["name"] == name {
			return true
		}
	}
	return false
}

func (f *FakeController) serveSite(w http.ResponseWriter, site, endpoint string, body map[string]any) {
	switch endpoint {
	case "stat/sysinfo":
		if f.sysinfoFailures > 0 {
			f.sysinfoFailures--
			writeEnvelope(w, http.StatusInternalServerError, "error", "api.err.ServerError", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "ok", "", []map[string]any{{"version": f.Version}})
	case "stat/sta":
		writeEnvelope(w, http.StatusOK, "ok", "", orEmpty(f.clients[site]))
	case "stat/voucher":
		list := f.vouchers[site]
		if ct, ok := body["create_time"].(float64); ok {
			var matched []map[string]any
			for _, v := range list {
				if toInt64(v["create_time"]) == int64(ct) {
					matched = append(matched, v)
				}
			}
			list = matched
		}
		writeEnvelope(w, http.StatusOK, "ok", "", orEmpty(list))
	case "cmd/hotspot":
		f.hotspot(w, site, body)
	default:
		writeEnvelope(w, http.StatusOK, "ok", "", []any{})
	}
}

func (f *FakeController) hotspot(w http.ResponseWriter, site string, body map[string]any) {
	switch body["cmd"] {
	case "create-voucher":
		n := int(toInt64(body["n"]))
		for i := 0; i < n; i++ {
			f.nextID++
			f.vouchers[site] = append(f.vouchers[site], map[string]any{
				"_id":         fmt.Sprintf("v%d", f.nextID),
				"code":        fmt.Sprintf("%010d", 1234500000+f.nextID),
				"create_time": f.CreateTime,
				"duration":    toInt64(body["expire"]),
				"quota":       toInt64(body["quota"]),
				"note":        body["note"],
			})
		}
		writeEnvelope(w, http.StatusOK, "ok", "", []map[string]any{{"create_time": f.CreateTime}})
	case "delete-voucher":
		id, _ := body["_id"].(string)
		kept := f.vouchers[site][:0]
		found := false
		for _, v := range f.vouchers[site] {
			if v["_id"] == id {
				found = true
				continue
			}
			kept = append(kept, v)
		}
		f.vouchers[site] = kept
		if !found {
			writeEnvelope(w, http.StatusBadRequest, "error", "api.err.InvalidObject", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "ok", "", []any{})
	default:
		writeEnvelope(w, http.StatusBadRequest, "error", "api.err.InvalidCommand", nil)
	}
}

func writeEnvelope(w http.ResponseWriter, status int, rc, msg string, data any) {
	meta := map[string]any{"rc": rc}
	if msg != "" {
		meta["msg"] = msg
	}
	if data == nil {
		data = []any{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"meta": meta, "data": data})
}

func orEmpty(list []map[string]any) any {
	if list == nil {
		return []any{}
	}
	return list
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
