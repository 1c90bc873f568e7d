package api

import (
	"errors"
	"net/http"

	"grimm.is/wingwifi/internal/auth"
	"grimm.is/wingwifi/internal/i18n"
)

type adminLoginPage struct {
	pageBase
	Username string
	Error    string
}

func (s *Server) handleAdminLoginPage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Begin(w, r)
	if err != nil {
		s.logger.Error("session load failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.T(r.Context(), "The request failed: %s", err), "")
		return
	}
	s.commit(r.Context(), sess)

	if !s.gate.Enabled() || sess.AdminAuthenticated {
		http.Redirect(w, r, "/admin/", http.StatusSeeOther)
		return
	}
	s.renderPage(w, r, "admin_login", http.StatusOK, adminLoginPage{
		pageBase: s.base(r, i18n.T(r.Context(), "Sign in"), sess.Theme, sess.CSRFToken),
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := s.sessions.Begin(w, r)
	if err != nil {
		s.logger.Error("session load failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.T(ctx, "The request failed: %s", err), "")
		return
	}
	if !s.gate.Enabled() {
		s.commit(ctx, sess)
		http.Redirect(w, r, "/admin/", http.StatusSeeOther)
		return
	}

	page := adminLoginPage{
		pageBase: s.base(r, i18n.T(ctx, "Sign in"), sess.Theme, sess.CSRFToken),
		Username: r.PostFormValue("username"),
	}
	if !validCSRF(r, sess) {
		s.commit(ctx, sess)
		page.Error = i18n.T(ctx, "The form has expired, please reload the page")
		s.renderPage(w, r, "admin_login", http.StatusForbidden, page)
		return
	}

	err = s.gate.Check(auth.ClientIP(r), page.Username, r.PostFormValue("password"))
	switch {
	case errors.Is(err, auth.ErrTooManyAttempts):
		s.commit(ctx, sess)
		page.Error = i18n.T(ctx, "Too many login attempts, please try again later")
		s.renderPage(w, r, "admin_login", http.StatusTooManyRequests, page)
		return
	case err != nil:
		s.commit(ctx, sess)
		page.Error = i18n.T(ctx, "Invalid username or password")
		s.renderPage(w, r, "admin_login", http.StatusUnauthorized, page)
		return
	}

	sess.AdminAuthenticated = true
	s.commit(ctx, sess)
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}

// handleAdminLogout ends the controller session, if any, and discards the
// browser session including the admin login.
func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := s.sessions.Begin(w, r)
	if err != nil {
		s.logger.Error("session load failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.T(ctx, "The request failed: %s", err), "")
		return
	}
	if !validCSRF(r, sess) {
		s.commit(ctx, sess)
		s.renderError(w, r, http.StatusForbidden, i18n.T(ctx, "The form has expired, please reload the page"), "")
		return
	}

	if sess.AuthCookie != "" && sess.Controller.URL != "" {
		if client, err := s.newClient(sess.Controller, sess.SiteID); err == nil {
			client.SetCookie(sess.AuthCookie)
			if err := client.Logout(ctx); err != nil {
				s.logger.Debug("controller logout failed", "error", err)
			}
		}
	}

	fresh, err := s.sessions.Reset(ctx, w, sess)
	if err != nil {
		s.logger.Error("session reset failed", "error", err)
	} else {
		s.commit(ctx, fresh)
	}
	if s.gate.Enabled() {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}
