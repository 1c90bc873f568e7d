// Package i18n selects the UI language and translates UI strings.
//
// Strings are keyed by their English text; catalog.go registers the
// Serbian translations.
package i18n

import (
	"context"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language
var DefaultLang = language.English

// SupportedLangs are the UI languages, in preference order.
var SupportedLangs = []language.Tag{
	language.English,
	language.Serbian,
}

var matcher = language.NewMatcher(SupportedLangs)

type contextKey struct{}

var printerKey = contextKey{}

type langKey struct{}

// MatchLanguage returns the best matching language for an Accept-Language value.
func MatchLanguage(acceptLang string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLang)
	_, idx, _ := matcher.Match(tags...)
	return SupportedLangs[idx]
}

// Parse maps a language code such as "sr" or "en-US" to a supported tag.
func Parse(code string) language.Tag {
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLang
	}
	_, idx, _ := matcher.Match(tag)
	return SupportedLangs[idx]
}

// Code returns the two-letter code of tag, e.g. "sr".
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// NewPrinter returns a message printer for the given language
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// WithPrinter returns a new context carrying a printer for tag.
func WithPrinter(ctx context.Context, tag language.Tag) context.Context {
	ctx = context.WithValue(ctx, langKey{}, tag)
	return context.WithValue(ctx, printerKey, NewPrinter(tag))
}

// GetPrinter returns the printer from the context, or a default one
func GetPrinter(ctx context.Context) *message.Printer {
	p, ok := ctx.Value(printerKey).(*message.Printer)
	if !ok {
		return message.NewPrinter(DefaultLang)
	}
	return p
}

// Lang returns the language selected for the request.
func Lang(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(langKey{}).(language.Tag); ok {
		return tag
	}
	return DefaultLang
}

// T translates key for the request language.
func T(ctx context.Context, key string, args ...any) string {
	return GetPrinter(ctx).Sprintf(key, args...)
}

// NewCLIPrinter returns a printer for the system's locale (from env vars)
func NewCLIPrinter() *message.Printer {
	return message.NewPrinter(CLILang())
}

// CLILang reads LC_ALL or LANG, e.g. "sr_RS.UTF-8".
func CLILang() language.Tag {
	lang := os.Getenv("LC_ALL")
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	if lang == "" || lang == "C" || lang == "POSIX" {
		return DefaultLang
	}

	// Strip encoding (e.g. .UTF-8) if present
	if i := strings.Index(lang, "."); i != -1 {
		lang = lang[:i]
	}
	return Parse(strings.ReplaceAll(lang, "_", "-"))
}
