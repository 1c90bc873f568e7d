package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"grimm.is/wingwifi/internal/brand"
	"grimm.is/wingwifi/internal/i18n"
	"grimm.is/wingwifi/internal/navigation"
	"grimm.is/wingwifi/internal/voucher"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	bootstrapCSS  = "https://cdn.jsdelivr.net/npm/bootstrap@4.6.2/dist/css/bootstrap.min.css"
	bootswatchCSS = "https://cdn.jsdelivr.net/npm/bootswatch@4.6.2/dist/%s/bootstrap.min.css"
)

// pageBase is embedded by every page.
type pageBase struct {
	Title      string
	Theme      string
	Lang       string
	AppName    string
	AppVersion string
	CSRFToken  string
}

func (s *Server) base(r *http.Request, title, theme, csrf string) pageBase {
	if theme == "" {
		theme = navigation.DefaultTheme
	}
	return pageBase{
		Title:      title,
		Theme:      theme,
		Lang:       i18n.Code(i18n.Lang(r.Context())),
		AppName:    brand.Name,
		AppVersion: brand.Version,
		CSRFToken:  csrf,
	}
}

// Request-specific functions are bound per render; these are placeholders
// so the templates parse.
var baseFuncs = template.FuncMap{
	"t":        func(key string, args ...any) string { return fmt.Sprintf(key, args...) },
	"duration": func(minutes int) string { return voucher.FormatDuration(minutes, "en") },
	"themeURL": themeURL,
	"unixtime": func(sec int64) string { return time.Unix(sec, 0).Format("2006-01-02 15:04") },
	"lower":    strings.ToLower,
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("pages").Funcs(baseFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func themeURL(theme string) string {
	if theme == "" || theme == navigation.DefaultTheme {
		return bootstrapCSS
	}
	return fmt.Sprintf(bootswatchCSS, theme)
}

// execute runs the named template with the request's language bound.
func (s *Server) execute(r *http.Request, name string, data any) ([]byte, error) {
	tmpl, err := s.templates.Clone()
	if err != nil {
		return nil, err
	}
	p := i18n.GetPrinter(r.Context())
	lang := i18n.Code(i18n.Lang(r.Context()))
	tmpl.Funcs(template.FuncMap{
		"t":        func(key string, args ...any) string { return p.Sprintf(key, args...) },
		"duration": func(minutes int) string { return voucher.FormatDuration(minutes, lang) },
	})

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, status int, data any) {
	out, err := s.execute(r, name, data)
	if err != nil {
		s.logger.Error("template failed", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(out)
}

type errorPage struct {
	pageBase
	Message string
	Detail  string
}

// renderError shows the error page.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message, detail string) {
	s.renderPage(w, r, "error", status, errorPage{
		pageBase: s.base(r, i18n.T(r.Context(), "Voucher desk"), "", ""),
		Message:  message,
		Detail:   detail,
	})
}
