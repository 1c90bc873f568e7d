// Package session holds the per-browser navigation state of WingWifi.
//
// A Session is loaded once at the start of a request by the Manager,
// mutated by the navigation resolver and the handlers, and saved once at
// the end. Request parameters reach it only through Get and Set, which
// accept an explicit allow-list of keys.
package session

import (
	"errors"
	"fmt"
	"time"

	"grimm.is/wingwifi/internal/unifi"
)

// Allow-listed keys settable from request parameters.
const (
	KeyControllerID = "controller_id"
	KeySiteID       = "site_id"
	KeySiteName     = "site_name"
	KeyAction       = "action"
	KeyOutputFormat = "output_format"
	KeyTheme        = "theme"
)

// ErrUnknownKey is returned by Get and Set for keys outside the allow-list.
var ErrUnknownKey = errors.New("unknown session key")

// Controller holds the credentials of the selected controller.
type Controller struct {
	Name     string `json:"name,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Complete reports whether all credentials needed to log in are present.
func (c Controller) Complete() bool {
	return c.User != "" && c.Password != "" && c.URL != ""
}

// Session is the state of one browser.
type Session struct {
	ID string `json:"id"`

	ControllerID    string       `json:"controller_id,omitempty"`
	Controller      Controller   `json:"controller"`
	SiteID          string       `json:"site_id,omitempty"`
	SiteName        string       `json:"site_name,omitempty"`
	Action          string       `json:"action,omitempty"`
	OutputFormat    string       `json:"output_format,omitempty"`
	Theme           string       `json:"theme,omitempty"`
	AuthCookie      string       `json:"auth_cookie,omitempty"`
	Sites           []unifi.Site `json:"sites,omitempty"`
	SitesCached     bool         `json:"sites_cached,omitempty"`
	DetectedVersion string       `json:"detected_version,omitempty"`

	AdminAuthenticated bool   `json:"admin_authenticated,omitempty"`
	CSRFToken          string `json:"csrf_token,omitempty"`

	LastActivity time.Time `json:"last_activity"`
}

// New returns an empty session with the given id.
func New(id string) *Session {
	return &Session{ID: id}
}

func (s *Session) field(key string) (*string, error) {
	switch key {
	case KeyControllerID:
		return &s.ControllerID, nil
	case KeySiteID:
		return &s.SiteID, nil
	case KeySiteName:
		return &s.SiteName, nil
	case KeyAction:
		return &s.Action, nil
	case KeyOutputFormat:
		return &s.OutputFormat, nil
	case KeyTheme:
		return &s.Theme, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Get returns the stored value for key. An empty value is reported as absent.
func (s *Session) Get(key string) (string, bool) {
	f, err := s.field(key)
	if err != nil || *f == "" {
		return "", false
	}
	return *f, true
}

// Set stores value under key.
func (s *Session) Set(key, value string) error {
	f, err := s.field(key)
	if err != nil {
		return err
	}
	*f = value
	return nil
}

// Clear drops all state except the session id.
func (s *Session) Clear() {
	*s = Session{ID: s.ID}
}

// Touch records activity at now. If the previous activity is older than
// timeout the session is cleared first and Touch reports true.
func (s *Session) Touch(now time.Time, timeout time.Duration) bool {
	expired := false
	if !s.LastActivity.IsZero() && timeout > 0 && now.Sub(s.LastActivity) > timeout {
		s.Clear()
		expired = true
	}
	s.LastActivity = now
	return expired
}

// SelectController switches to another controller. Everything fetched from
// or selected on the previous controller is dropped.
func (s *Session) SelectController(id string, ctl Controller) {
	s.ControllerID = id
	s.Controller = ctl
	s.ClearControllerState()
	s.Action = ""
}

// ClearControllerState forgets the site selection, cached sites, detected
// version and auth cookie. The selected action is kept.
func (s *Session) ClearControllerState() {
	s.SiteID = ""
	s.SiteName = ""
	s.Sites = nil
	s.SitesCached = false
	s.DetectedVersion = ""
	s.AuthCookie = ""
}

// SelectSite switches site. The selected action is deliberately left alone.
func (s *Session) SelectSite(id, name string) {
	s.SiteID = id
	s.SiteName = name
}

// CacheSites stores the controller's site list.
func (s *Session) CacheSites(sites []unifi.Site) {
	s.Sites = sites
	s.SitesCached = true
}

// FindSite returns the cached site with the given short name.
func (s *Session) FindSite(name string) (unifi.Site, bool) {
	for _, site := range s.Sites {
		if site.Name == name {
			return site, true
		}
	}
	return unifi.Site{}, false
}
