// Package navigation merges request parameters into the session to decide
// which controller, site, action, output format and theme a page shows.
package navigation

import (
	"net/url"
	"slices"

	"grimm.is/wingwifi/internal/config"
	"grimm.is/wingwifi/internal/session"
)

// Request parameter names outside the session allow-list.
const (
	ParamResetSession       = "reset_session"
	ParamControllerUser     = "controller_user"
	ParamControllerPassword = "controller_password"
	ParamControllerURL      = "controller_url"
)

// DefaultTheme is the stock Bootstrap theme.
const DefaultTheme = "bootstrap"

// Themes lists the selectable Bootswatch themes.
var Themes = []string{
	"bootstrap", "cerulean", "cosmo", "cyborg", "darkly", "flatly",
	"journal", "lumen", "paper", "readable", "sandstone", "simplex",
	"slate", "spacelab", "superhero", "united", "yeti",
}

// Alert is the hint shown above the result panel.
type Alert int

const (
	AlertNone Alert = iota
	AlertSelectCollection
	AlertSelectSite
	AlertSelectController
	AlertLogin
)

// Result is what a request resolved to beyond the session mutations.
type Result struct {
	// ResetSession asks the caller to discard the session and redirect.
	ResetSession bool
	// ShowLogin asks for the controller credentials form.
	ShowLogin bool
	Alert     Alert
	// ControllerChanged is set when this request switched controllers.
	ControllerChanged bool
}

// Options configures a Resolver.
type Options struct {
	// Controllers enables multi-controller mode when non-empty.
	Controllers []config.ControllerConfig
	// Default is used in single-controller mode to fill missing credentials.
	Default       session.Controller
	OutputFormats []string
	DefaultFormat string
}

// Resolver applies navigation rules to sessions.
type Resolver struct {
	opts Options
}

// NewResolver creates a Resolver.
func NewResolver(opts Options) *Resolver {
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = "json"
	}
	if opts.Default.Name == "" {
		opts.Default.Name = config.DefaultControllerName
	}
	return &Resolver{opts: opts}
}

// MultiController reports whether a controller dropdown is offered.
func (r *Resolver) MultiController() bool {
	return len(r.opts.Controllers) > 0
}

// Controllers returns the configured controllers.
func (r *Resolver) Controllers() []config.ControllerConfig {
	return r.opts.Controllers
}

// SessionController copies a configured controller into session form.
func SessionController(c config.ControllerConfig) session.Controller {
	return session.Controller{Name: c.Name, User: c.User, Password: c.Password, URL: c.URL}
}

// Resolve merges query and form into sess. Query values take precedence over
// stored values, which take precedence over defaults. form carries the POSTed
// controller credentials and may be nil.
func (r *Resolver) Resolve(sess *session.Session, query, form url.Values) Result {
	var res Result
	if query.Has(ParamResetSession) {
		res.ResetSession = true
		return res
	}

	if query.Has(session.KeyControllerID) {
		id := query.Get(session.KeyControllerID)
		ctl, ok := config.FindController(r.opts.Controllers, id)
		if !ok {
			res.ResetSession = true
			return res
		}
		if id != sess.ControllerID {
			sess.SelectController(id, SessionController(ctl))
			res.ControllerChanged = true
		}
	} else {
		if !r.MultiController() {
			r.fillDefaults(sess)
		}
		// a site picked in the same request as a controller switch is ignored
		if query.Has(session.KeySiteID) {
			sess.SelectSite(query.Get(session.KeySiteID), query.Get(session.KeySiteName))
		}
	}

	r.applyCredentials(sess, form)

	if theme := query.Get(session.KeyTheme); theme != "" {
		sess.Set(session.KeyTheme, validOr(theme, Themes, DefaultTheme))
	}
	if sess.Theme == "" {
		sess.Theme = DefaultTheme
	}

	if query.Has(session.KeyOutputFormat) {
		format := query.Get(session.KeyOutputFormat)
		if len(r.opts.OutputFormats) > 0 {
			format = validOr(format, r.opts.OutputFormats, r.opts.DefaultFormat)
		}
		sess.Set(session.KeyOutputFormat, format)
	}
	if sess.OutputFormat == "" {
		sess.OutputFormat = r.opts.DefaultFormat
	}

	if query.Has(session.KeyAction) {
		sess.Set(session.KeyAction, query.Get(session.KeyAction))
	}

	res.ShowLogin, res.Alert = r.alert(sess)
	return res
}

func (r *Resolver) fillDefaults(sess *session.Session) {
	c := &sess.Controller
	if c.User == "" {
		c.User = r.opts.Default.User
	}
	if c.Password == "" {
		c.Password = r.opts.Default.Password
	}
	if c.URL == "" {
		c.URL = r.opts.Default.URL
	}
	if c.Name == "" {
		c.Name = r.opts.Default.Name
	}
}

// applyCredentials lets non-empty POSTed fields override the controller.
func (r *Resolver) applyCredentials(sess *session.Session, form url.Values) {
	if form == nil {
		return
	}
	if v := form.Get(ParamControllerUser); v != "" {
		sess.Controller.User = v
	}
	if v := form.Get(ParamControllerPassword); v != "" {
		sess.Controller.Password = v
	}
	if v := form.Get(ParamControllerURL); v != "" {
		sess.Controller.URL = v
	}
	if sess.Controller.Name == "" && sess.Controller.URL != "" {
		sess.Controller.Name = r.opts.Default.Name
	}
}

// alert picks the most pressing hint: login, then controller, then site, then collection.
func (r *Resolver) alert(sess *session.Session) (bool, Alert) {
	controllerSelected := !r.MultiController() || sess.ControllerID != ""
	if controllerSelected && sess.AuthCookie == "" && !sess.Controller.Complete() {
		return true, AlertLogin
	}
	switch {
	case !controllerSelected:
		return false, AlertSelectController
	case sess.SiteID == "":
		return false, AlertSelectSite
	case sess.Action == "":
		return false, AlertSelectCollection
	}
	return false, AlertNone
}

func validOr(v string, allowed []string, fallback string) string {
	if slices.Contains(allowed, v) {
		return v
	}
	return fallback
}
