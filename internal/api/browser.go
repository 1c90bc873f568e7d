package api

import (
	"context"
	"net/http"
	"net/url"

	"grimm.is/wingwifi/internal/config"
	"grimm.is/wingwifi/internal/dispatch"
	"grimm.is/wingwifi/internal/i18n"
	"grimm.is/wingwifi/internal/navigation"
	"grimm.is/wingwifi/internal/render"
	"grimm.is/wingwifi/internal/session"
	"grimm.is/wingwifi/internal/unifi"
)

// Controller phases reported to metrics.
const (
	phaseLogin = "login"
	phaseLoad  = "load"
)

type browserPage struct {
	pageBase

	MultiController bool
	Controllers     []config.ControllerConfig
	ControllerID    string
	Controller      session.Controller
	ShowLogin       bool

	Sites    []unifi.Site
	SiteID   string
	SiteName string
	Version  string

	Menu        []dispatch.MenuGroup
	Action      string
	ActionLabel string

	Formats []render.Format
	Format  render.Format
	Themes  []string

	Alert      string
	LoginAlert bool
	Error      string
	HasResult bool
	Output    string
	Count     int
	Timing    render.Breakdown

	AdminGate bool
	About     aboutInfo
}

func (s *Server) handleBrowser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	timing := render.Timing{Start: s.clock.Now()}

	sess, err := s.sessions.Begin(w, r)
	if err != nil {
		s.logger.Error("session load failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.T(ctx, "The request failed: %s", err), "")
		return
	}

	if s.gate.Enabled() && !sess.AdminAuthenticated {
		s.commit(ctx, sess)
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	var form url.Values
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, http.StatusBadRequest, i18n.T(ctx, "Unknown request"), err.Error())
			return
		}
		if !validCSRF(r, sess) {
			s.renderError(w, r, http.StatusForbidden, i18n.T(ctx, "The form has expired, please reload the page"), "")
			return
		}
		form = r.PostForm
	}

	res := s.resolver.Resolve(sess, r.URL.Query(), form)
	if res.ResetSession {
		s.resetBrowser(w, r, sess)
		return
	}
	if res.ControllerChanged {
		s.logger.Info("controller selected", "controller", sess.ControllerID)
	}

	page := &browserPage{
		pageBase:        s.base(r, i18n.T(ctx, "UniFi API browser"), sess.Theme, sess.CSRFToken),
		MultiController: s.resolver.MultiController(),
		Controllers:     s.resolver.Controllers(),
		ShowLogin:       res.ShowLogin,
		Formats:         render.Formats,
		Format:          render.Parse(sess.OutputFormat),
		Themes:          navigation.Themes,
		AdminGate:       s.gate.Enabled(),
	}

	if !res.ShowLogin && sess.Controller.URL != "" {
		s.loadController(ctx, sess, page, &timing)
	}
	if page.Error == "" && !page.HasResult {
		page.Alert = alertText(ctx, res.Alert, sess.Controller)
		page.LoginAlert = res.Alert == navigation.AlertLogin
	}

	page.ControllerID = sess.ControllerID
	page.Controller = sess.Controller
	page.Controller.Password = ""
	page.Sites = sess.Sites
	page.SiteID = sess.SiteID
	page.SiteName = sess.SiteName
	page.Version = sess.DetectedVersion
	page.Action = sess.Action
	page.Menu = dispatch.Menu(sess.DetectedVersion)
	page.About = s.about(sess)

	timing.End = s.clock.Now()
	page.Timing = timing.Breakdown()

	s.commit(ctx, sess)
	s.renderPage(w, r, "browser", http.StatusOK, page)
}

// loadController logs in, fills the site list and runs the selected action.
// Failures end up in page.Error; a rejected cookie is dropped so the next
// request logs in again.
func (s *Server) loadController(ctx context.Context, sess *session.Session, page *browserPage, timing *render.Timing) {
	name := sess.Controller.Name
	log := s.logger.WithFields(map[string]any{"controller": name, "site": sess.SiteID})
	client, err := s.newClient(sess.Controller, sess.SiteID)
	if err != nil {
		page.Error = i18n.T(ctx, "Unable to log in to the controller %s", name)
		page.ShowLogin = true
		return
	}

	if sess.AuthCookie != "" {
		client.SetCookie(sess.AuthCookie)
	} else {
		start := s.clock.Now()
		err := client.Login(ctx)
		s.metrics.ObserveController(phaseLogin, s.clock.Since(start))
		s.metrics.RecordLogin("controller", err == nil)
		if err != nil {
			log.Warn("controller login failed", "error", err)
			page.Error = i18n.T(ctx, "Unable to log in to the controller %s", name)
			page.ShowLogin = true
			return
		}
		sess.AuthCookie = client.Cookie()
	}
	timing.Login = s.clock.Now()

	loadStart := s.clock.Now()
	defer func() {
		timing.Load = s.clock.Now()
		s.metrics.ObserveController(phaseLoad, s.clock.Since(loadStart))
		if sess.AuthCookie != "" {
			sess.AuthCookie = client.Cookie()
		}
	}()

	if !sess.SitesCached {
		sites, err := client.Sites(ctx)
		if err != nil {
			s.dropCookie(sess, err)
			page.Error = i18n.T(ctx, "Unable to load the site list: %s", err)
			return
		}
		sess.CacheSites(sites)
	}
	if sess.SiteID != "" && sess.SiteName == "" {
		if site, ok := sess.FindSite(sess.SiteID); ok {
			sess.SiteName = site.Desc
		}
	}

	// a failed lookup is retried on every request until sysinfo answers
	if sess.DetectedVersion == "" || sess.DetectedVersion == unifi.VersionUndetected {
		sess.DetectedVersion = client.DetectVersion(ctx)
		if sess.DetectedVersion == unifi.VersionUndetected {
			log.Warn("controller version not detected")
		}
	}

	if sess.SiteID == "" || sess.Action == "" {
		return
	}

	result := dispatch.New(client, s.clock, nil).Dispatch(ctx, sess.Action, sess.Sites)
	s.metrics.RecordAction(sess.Action, result.Failed())
	if result.Err != nil {
		s.dropCookie(sess, result.Err)
		page.Error = i18n.T(ctx, "The request failed: %s", result.Err)
		return
	}
	if result.Label != "" {
		page.ActionLabel = i18n.T(ctx, result.Label)
	}

	out, err := render.Render(result.Payload, page.Format)
	if err != nil {
		page.Error = i18n.T(ctx, "The request failed: %s", err)
		return
	}
	page.HasResult = true
	page.Output = out
	page.Count = result.Count
	if result.Empty && out == "" {
		page.Alert = i18n.T(ctx, "No data returned")
	}
}

func (s *Server) dropCookie(sess *session.Session, err error) {
	if unifi.IsUnauthorized(err) {
		s.logger.Info("controller session expired", "controller", sess.Controller.Name)
		sess.AuthCookie = ""
	}
}

// resetBrowser discards the navigation state but keeps the admin login.
func (s *Server) resetBrowser(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ctx := r.Context()
	admin := sess.AdminAuthenticated
	fresh, err := s.sessions.Reset(ctx, w, sess)
	if err != nil {
		s.logger.Error("session reset failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.T(ctx, "The request failed: %s", err), "")
		return
	}
	fresh.AdminAuthenticated = admin
	s.commit(ctx, fresh)
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}

func (s *Server) commit(ctx context.Context, sess *session.Session) {
	if err := s.sessions.Commit(ctx, sess); err != nil {
		s.logger.Error("session save failed", "error", err)
	}
}

func alertText(ctx context.Context, a navigation.Alert, ctl session.Controller) string {
	switch a {
	case navigation.AlertSelectCollection:
		return i18n.T(ctx, "Please select a data collection from the menu")
	case navigation.AlertSelectSite:
		return i18n.T(ctx, "Please select a site from the Sites menu")
	case navigation.AlertSelectController:
		return i18n.T(ctx, "Please select a controller from the Controllers menu")
	case navigation.AlertLogin:
		if ctl.User != "" {
			return i18n.T(ctx, "Log in to %s with username %s", ctl.Name, ctl.User)
		}
		return i18n.T(ctx, "Log in to %s", ctl.Name)
	}
	return ""
}
