package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"grimm.is/wingwifi/internal/i18n"
	"grimm.is/wingwifi/internal/navigation"
	"grimm.is/wingwifi/internal/receipt"
	"grimm.is/wingwifi/internal/session"
	"grimm.is/wingwifi/internal/unifi"
	"grimm.is/wingwifi/internal/voucher"
)

// Ajax response statuses.
const (
	statusSuccess = "success"
	statusError   = "error"
)

type deskSite struct {
	unifi.Site
	Href string
}

type deskPage struct {
	pageBase
	Sites     []deskSite
	Site      *deskSite
	Rows      deskRows
	Languages []string
	Spec      unifi.VoucherSpec
}

// deskRows feeds the voucher_rows fragment, which is also returned by ajax
// calls.
type deskRows struct {
	Site     string
	Vouchers []voucher.Entry
	Printer  bool
	Lang     string
	// Fresh rows are prepended to an existing table.
	Fresh bool
}

type ajaxResponse struct {
	HTML    string `json:"html"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleDesk(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Begin(w, r)
	if err != nil {
		s.logger.Error("session load failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.T(r.Context(), "The request failed: %s", err), "")
		return
	}
	s.commit(r.Context(), sess)

	q := r.URL.Query()
	switch q.Get("show") {
	case "error":
		s.renderError(w, r, http.StatusOK, q.Get("msg"), "")
	case "site":
		s.deskSitePage(w, r, sess, q.Get("name"))
	default:
		s.deskSitesPage(w, r, sess)
	}
}

func (s *Server) deskSitesPage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ctx := r.Context()
	sites, err := s.deskSites(ctx)
	if err != nil {
		s.deskUnavailable(w, r, err)
		return
	}
	s.renderPage(w, r, "desk_sites", http.StatusOK, deskPage{
		pageBase: s.base(r, i18n.T(ctx, "Voucher desk"), "", sess.CSRFToken),
		Sites:    sites,
	})
}

func (s *Server) deskSitePage(w http.ResponseWriter, r *http.Request, sess *session.Session, name string) {
	ctx := r.Context()
	sites, err := s.deskSites(ctx)
	if err != nil {
		s.deskUnavailable(w, r, err)
		return
	}
	site, ok := lo.Find(sites, func(ds deskSite) bool { return ds.Name == name })
	if !ok {
		s.renderError(w, r, http.StatusNotFound, i18n.T(ctx, "Site not found"), name)
		return
	}

	client, err := s.deskClient(ctx, site.Name)
	if err != nil {
		s.deskUnavailable(w, r, err)
		return
	}
	entries, err := s.desk.List(ctx, client)
	s.keepDeskCookie(client, err)
	if err != nil {
		s.deskUnavailable(w, r, err)
		return
	}

	lang := s.deskLang(r)
	s.renderPage(w, r, "desk_site", http.StatusOK, deskPage{
		pageBase:  s.base(r, site.Desc, "", sess.CSRFToken),
		Sites:     sites,
		Site:      &site,
		Rows:      deskRows{Site: site.Name, Vouchers: entries, Printer: s.cfg.PrinterIP != "", Lang: lang},
		Languages: receipt.Languages(),
		Spec:      voucher.NewSpec(),
	})
}

func (s *Server) deskUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("voucher desk unavailable", "error", err)
	ctx := r.Context()
	s.renderError(w, r, http.StatusBadGateway,
		i18n.T(ctx, "There was a problem connecting to the UniFi controller"),
		i18n.T(ctx, "Please contact support for further assistance"))
}

func (s *Server) deskSites(ctx context.Context) ([]deskSite, error) {
	client, err := s.deskClient(ctx, "")
	if err != nil {
		return nil, err
	}
	sites, err := client.Sites(ctx)
	s.keepDeskCookie(client, err)
	if err != nil {
		return nil, err
	}
	return lo.Map(sites, func(site unifi.Site, _ int) deskSite {
		return deskSite{Site: site, Href: "/?show=site&name=" + url.QueryEscape(site.Name)}
	}), nil
}

// deskClient returns a client on the configured controller, reusing the
// shared desk login when there is one.
func (s *Server) deskClient(ctx context.Context, site string) (*unifi.Client, error) {
	client, err := s.newClient(navigation.SessionController(s.cfg.DefaultController()), site)
	if err != nil {
		return nil, err
	}

	s.deskMu.Lock()
	cookie := s.deskCookie
	s.deskMu.Unlock()
	if cookie != "" {
		client.SetCookie(cookie)
		return client, nil
	}

	err = client.Login(ctx)
	s.metrics.RecordLogin("desk", err == nil)
	if err != nil {
		return nil, err
	}
	s.keepDeskCookie(client, nil)
	return client, nil
}

// keepDeskCookie stores the client's session for the next desk request, or
// forgets it when the controller rejected it.
func (s *Server) keepDeskCookie(client *unifi.Client, err error) {
	s.deskMu.Lock()
	defer s.deskMu.Unlock()
	if unifi.IsUnauthorized(err) {
		s.deskCookie = ""
		return
	}
	if c := client.Cookie(); c != "" {
		s.deskCookie = c
	}
}

// deskLang is the default receipt language: the UI language when a receipt
// text exists for it.
func (s *Server) deskLang(r *http.Request) string {
	lang := i18n.Code(i18n.Lang(r.Context()))
	if _, err := receipt.LoadLanguage(lang); err == nil {
		return lang
	}
	if s.cfg.DefaultLang != "" {
		return s.cfg.DefaultLang
	}
	return voucher.DefaultLang
}

func (s *Server) handleDeskAjax(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.URL.Query().Get("type") != "ajax" {
		WriteJSON(w, http.StatusBadRequest, ajaxResponse{Status: statusError, Message: i18n.T(ctx, "Unknown request")})
		return
	}

	sess, err := s.sessions.Begin(w, r)
	if err != nil {
		s.logger.Error("session load failed", "error", err)
		WriteJSON(w, http.StatusInternalServerError, ajaxResponse{Status: statusError, Message: i18n.T(ctx, "The request failed: %s", err)})
		return
	}
	s.commit(ctx, sess)

	if err := r.ParseForm(); err != nil {
		WriteJSON(w, http.StatusBadRequest, ajaxResponse{Status: statusError, Message: i18n.T(ctx, "Unknown request")})
		return
	}
	if !validCSRF(r, sess) {
		WriteJSON(w, http.StatusForbidden, ajaxResponse{Status: statusError, Message: i18n.T(ctx, "The form has expired, please reload the page")})
		return
	}

	var resp ajaxResponse
	switch action := r.PostForm.Get("action"); action {
	case "create":
		resp = s.ajaxCreate(r)
	case "revoke":
		resp = s.ajaxRevoke(r)
	case "print":
		resp = s.ajaxPrint(r)
	default:
		WriteJSON(w, http.StatusBadRequest, ajaxResponse{Status: statusError, Message: i18n.T(ctx, "Unknown request")})
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) ajaxCreate(r *http.Request) ajaxResponse {
	ctx := r.Context()
	site := r.PostForm.Get("site")
	failed := ajaxResponse{Status: statusError, Message: i18n.T(ctx, "Failed to create voucher")}

	client, err := s.deskClient(ctx, site)
	if err != nil {
		s.logger.Warn("voucher desk login failed", "error", err)
		return failed
	}
	entries, err := s.desk.Create(ctx, client, specFromForm(r.PostForm))
	s.keepDeskCookie(client, err)
	if err != nil {
		return failed
	}

	html, err := s.execute(r, "voucher_rows", deskRows{
		Site:     site,
		Vouchers: entries,
		Printer:  s.cfg.PrinterIP != "",
		Lang:     s.deskLang(r),
		Fresh:    true,
	})
	if err != nil {
		s.logger.Error("template failed", "template", "voucher_rows", "error", err)
	}
	return ajaxResponse{HTML: string(html), Status: statusSuccess, Message: i18n.T(ctx, "Voucher created")}
}

func (s *Server) ajaxRevoke(r *http.Request) ajaxResponse {
	ctx := r.Context()
	failed := ajaxResponse{Status: statusError, Message: i18n.T(ctx, "Failed to revoke voucher")}
	id := r.PostForm.Get("id")
	if id == "" {
		return failed
	}

	client, err := s.deskClient(ctx, r.PostForm.Get("site"))
	if err != nil {
		s.logger.Warn("voucher desk login failed", "error", err)
		return failed
	}
	err = s.desk.Revoke(ctx, client, id)
	s.keepDeskCookie(client, err)
	if err != nil {
		return failed
	}
	return ajaxResponse{Status: statusSuccess, Message: i18n.T(ctx, "Voucher revoked")}
}

func (s *Server) ajaxPrint(r *http.Request) ajaxResponse {
	ctx := r.Context()
	if err := s.desk.Print(ctx, r.PostForm.Get("code"), r.PostForm.Get("lang")); err != nil {
		return ajaxResponse{Status: statusError, Message: i18n.T(ctx, "Failed to print voucher")}
	}
	return ajaxResponse{Status: statusSuccess, Message: i18n.T(ctx, "Voucher printed")}
}

// specFromForm reads a create request. Missing or malformed numbers keep
// the defaults; usage "multi" lifts the single-use limit.
func specFromForm(form url.Values) unifi.VoucherSpec {
	spec := voucher.NewSpec()
	spec.Minutes = formInt(form, "duration", spec.Minutes)
	spec.Count = formInt(form, "count", spec.Count)
	if form.Get("usage") == "multi" {
		spec.Quota = 0
	}
	spec.Note = strings.TrimSpace(form.Get("note"))
	spec.UpKbps = formInt(form, "up", 0)
	spec.DownKbps = formInt(form, "down", 0)
	spec.MBytes = formInt(form, "mbytes", 0)
	return spec
}

func formInt(form url.Values, key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(form.Get(key)))
	if err != nil {
		return fallback
	}
	return n
}
