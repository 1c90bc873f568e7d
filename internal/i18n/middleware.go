package i18n

import (
	"net/http"
	"time"
)

// CookieName remembers an explicit language choice.
const CookieName = "wingwifi_lang"

// Middleware picks the request language from the lang query parameter, the
// language cookie or Accept-Language, in that order, and injects a printer
// into the context. An explicit lang parameter is remembered in the cookie.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := MatchLanguage(r.Header.Get("Accept-Language"))
		if ck, err := r.Cookie(CookieName); err == nil && ck.Value != "" {
			tag = Parse(ck.Value)
		}
		if q := r.URL.Query().Get("lang"); q != "" {
			tag = Parse(q)
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    Code(tag),
				Path:     "/",
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(WithPrinter(r.Context(), tag)))
	})
}
