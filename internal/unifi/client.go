// Package unifi is a thin client for the UniFi Network controller HTTP API.
//
// It covers what WingWifi needs: cookie login on classic controllers and
// UniFi OS consoles, the read-only listing and statistics endpoints, and
// hotspot voucher management. Session cookies can be exported and restored
// so a browser session does not log in on every request.
package unifi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"

	"grimm.is/wingwifi/internal/brand"
	"grimm.is/wingwifi/internal/clock"
	"grimm.is/wingwifi/internal/logging"
)

// DefaultSite is the site every controller ships with.
const DefaultSite = "default"

const unifiOSPrefix = "/proxy/network"

var (
	// ErrAuthFailed covers rejected credentials and unreachable controllers.
	ErrAuthFailed = errors.New("controller authentication failed")
	// ErrRequestFailed is wrapped by every failed endpoint call.
	ErrRequestFailed = errors.New("controller request failed")
)

// APIError describes a non-success controller response.
type APIError struct {
	Path   string
	Status int
	RC     string
	Msg    string
}

func (e *APIError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s: status %d rc=%q: %s", e.Path, e.Status, e.RC, msg)
}

// Unwrap lets callers test for ErrRequestFailed.
func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}

// IsUnauthorized reports whether err is a 401 from the controller,
// meaning a stored session cookie is no longer valid.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client talks to one controller.
type Client struct {
	baseURL  *url.URL
	user     string
	password string
	site     string

	httpClient *http.Client
	jar        *cookiejar.Jar
	clock      clock.Clock
	logger     *logging.Logger

	insecure  bool
	unifiOS   bool
	detected  bool
	csrfToken string
	loggedIn  bool
}

// Option configures the Client.
type Option func(*Client)

// WithSite selects the site used for site-scoped requests.
func WithSite(site string) Option {
	return func(c *Client) {
		if site != "" {
			c.site = site
		}
	}
}

// WithTimeout sets the HTTP timeout per request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithVerifyTLS enables certificate verification. Controllers usually run
// with self-signed certificates, so verification is off by default.
func WithVerifyTLS(verify bool) Option {
	return func(c *Client) {
		c.insecure = !verify
	}
}

// WithClock sets the time source used for statistics windows.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		c.clock = clk
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the controller at baseURL.
func NewClient(baseURL, user, password string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid controller url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid controller url %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:  u,
		user:     user,
		password: password,
		site:     DefaultSite,
		jar:      jar,
		insecure: true,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
			// classic controllers answer / with a redirect, UniFi OS with 200
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.clock = clock.OrDefault(c.clock)
	if c.logger == nil {
		c.logger = logging.WithComponent("unifi")
	}
	c.httpClient.Transport = &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: c.insecure},
	}
	return c, nil
}

// Site returns the site used for site-scoped requests.
func (c *Client) Site() string {
	return c.site
}

// SetSite switches the site used for subsequent requests.
func (c *Client) SetSite(site string) {
	if site == "" {
		site = DefaultSite
	}
	c.site = site
}

// IsUniFiOS reports whether the controller was detected as a UniFi OS console.
func (c *Client) IsUniFiOS() bool {
	return c.unifiOS
}

// Now returns the client's clock time, used for statistics windows.
func (c *Client) Now() time.Time {
	return c.clock.Now()
}

// detect requests the base URL once: UniFi OS answers 200, classic controllers redirect.
func (c *Client) detect(ctx context.Context) error {
	if c.detected {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String()+"/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", brand.UserAgent(brand.Version))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	c.unifiOS = resp.StatusCode == http.StatusOK
	c.detected = true
	return nil
}

// Login authenticates with username and password and keeps the session cookie.
func (c *Client) Login(ctx context.Context) error {
	if err := c.detect(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	path := "/api/login"
	if c.unifiOS {
		path = "/api/auth/login"
	}
	body, _ := json.Marshal(map[string]any{
		"username": c.user,
		"password": c.password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String()+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}
	if token := resp.Header.Get("X-CSRF-Token"); token != "" {
		c.csrfToken = token
	}
	c.loggedIn = true
	c.logger.Debug("logged in", "controller", c.baseURL.Host, "unifi_os", c.unifiOS)
	return nil
}

// Logout ends the controller session and drops the cookie.
func (c *Client) Logout(ctx context.Context) error {
	method, path := http.MethodGet, "/logout"
	if c.unifiOS {
		method, path = http.MethodPost, "/api/auth/logout"
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: logout: %v", ErrRequestFailed, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	c.clearCookies()
	c.loggedIn = false
	return nil
}

// Cookie exports the session cookies as a Cookie header value.
func (c *Client) Cookie() string {
	cookies := c.jar.Cookies(c.baseURL)
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}

// SetCookie restores cookies previously exported with Cookie.
// A TOKEN cookie marks a UniFi OS console and carries its CSRF token.
func (c *Client) SetCookie(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	header := http.Header{"Cookie": {raw}}
	cookies := (&http.Request{Header: header}).Cookies()
	c.jar.SetCookies(c.baseURL, cookies)

	for _, ck := range cookies {
		if ck.Name == "TOKEN" {
			c.unifiOS = true
			c.detected = true
			if token := csrfFromJWT(ck.Value); token != "" {
				c.csrfToken = token
			}
		}
	}
	c.loggedIn = len(cookies) > 0
}

// LoggedIn reports whether the client holds a session cookie.
func (c *Client) LoggedIn() bool {
	return c.loggedIn
}

func (c *Client) clearCookies() {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	c.jar = jar
	c.httpClient.Jar = jar
	c.csrfToken = ""
}

// csrfFromJWT pulls the csrfToken claim out of a UniFi OS TOKEN cookie.
func csrfFromJWT(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return ""
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}
	return gjson.GetBytes(payload, "csrfToken").String()
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", brand.UserAgent(brand.Version))
	if c.csrfToken != "" {
		req.Header.Set("X-CSRF-Token", c.csrfToken)
	}
}

// endpoint builds the absolute URL for r.
func (c *Client) endpoint(r Request) string {
	path := r.Path
	if !r.Global {
		path = "/api/s/" + url.PathEscape(c.site) + "/" + strings.TrimPrefix(r.Path, "/")
	}
	if c.unifiOS {
		path = unifiOSPrefix + path
	}
	return c.baseURL.String() + path
}

// Do performs r and returns the records in the response's data array.
func (c *Client) Do(ctx context.Context, r Request) (Records, error) {
	var records Records
	if err := c.DoInto(ctx, r, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DoInto performs r and decodes the response's data array into out.
func (c *Client) DoInto(ctx context.Context, r Request, out any) error {
	method := r.Method
	if method == "" {
		method = http.MethodGet
		if r.Payload != nil {
			method = http.MethodPost
		}
	}

	var body io.Reader
	if r.Payload != nil {
		data, err := json.Marshal(r.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s payload: %w", r.Path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(r), body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	c.setHeaders(req)

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRequestFailed, r.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRequestFailed, r.Path, err)
	}
	if token := resp.Header.Get("X-CSRF-Token"); token != "" {
		c.csrfToken = token
	}
	c.logger.Debug("controller call", "path", r.Path, "status", resp.StatusCode, "duration", c.clock.Since(start))

	data, err := unwrapEnvelope(r.Path, resp.StatusCode, raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("%w: %s: decode data: %v", ErrRequestFailed, r.Path, err)
	}
	return nil
}

// unwrapEnvelope validates a {meta:{rc,msg},data:[...]} response and returns the raw data.
func unwrapEnvelope(path string, status int, raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		if status != http.StatusOK {
			return "", &APIError{Path: path, Status: status}
		}
		return "", fmt.Errorf("%w: %s: response is not JSON", ErrRequestFailed, path)
	}

	meta := gjson.GetBytes(raw, "meta")
	rc := meta.Get("rc").String()
	if status != http.StatusOK || (meta.Exists() && rc != "ok") {
		return "", &APIError{Path: path, Status: status, RC: rc, Msg: meta.Get("msg").String()}
	}

	data := gjson.GetBytes(raw, "data")
	switch {
	case data.IsArray():
		return data.Raw, nil
	case data.IsObject():
		return "[" + data.Raw + "]", nil
	case !meta.Exists() && gjson.ParseBytes(raw).IsArray():
		return string(raw), nil
	default:
		return "[]", nil
	}
}
