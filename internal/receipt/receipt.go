// Package receipt lays out voucher receipts for 56-column ESC/POS printers.
package receipt

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path"
	"sort"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"grimm.is/wingwifi/internal/escpos"
)

// LineSize is the number of font B characters per printed line.
const LineSize = 56

// RuleChar draws the horizontal rules around a receipt.
const RuleChar = '='

// AccessLineSpacing is the line spacing, in dots, of the enlarged access block.
const AccessLineSpacing = 70

// ErrUnknownLanguage is returned for languages without a receipt text.
var ErrUnknownLanguage = errors.New("receipt: unknown language")

//go:embed lang/*.json
var langFS embed.FS

// Language holds the translatable receipt texts.
type Language struct {
	Greetings string `json:"greetings"`
	Message   string `json:"message"`
	Name      string `json:"name"`
	Password  string `json:"password"`
}

// LoadLanguage returns the texts for code, e.g. "en" or "sr".
func LoadLanguage(code string) (Language, error) {
	var lang Language
	if code == "" || strings.ContainsAny(code, "/\\.") {
		return lang, fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	data, err := langFS.ReadFile(path.Join("lang", code+".json"))
	if err != nil {
		return lang, fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	if err := json.Unmarshal(data, &lang); err != nil {
		return lang, fmt.Errorf("receipt: language %q: %w", code, err)
	}
	return lang, nil
}

// Languages lists the embedded language codes.
func Languages() []string {
	entries, err := langFS.ReadDir("lang")
	if err != nil {
		return nil
	}
	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		codes = append(codes, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(codes)
	return codes
}

// Rule returns a full-width horizontal line.
func Rule() string {
	return strings.Repeat(string(RuleChar), LineSize)
}

// Message returns the greeting line followed by the wrapped message.
func Message(lang Language) string {
	return lang.Greetings + ",\n" + wordwrap.WrapString(lang.Message, LineSize)
}

// AccessData returns the network name and password lines. It is empty when
// either the code or the network name is missing.
func AccessData(lang Language, ssid, code string) string {
	if code == "" || ssid == "" {
		return ""
	}
	return lang.Name + ": " + ssid + "\n" + lang.Password + ": " + code
}

// Printer is the subset of escpos.Printer a receipt needs.
type Printer interface {
	Initialize()
	SetFont(escpos.Font)
	Text(string)
	Feed(int)
	Image(image.Image)
	SetTextSize(width, height int)
	SetLineSpacing(dots int)
	Cut()
	Pulse()
	Close() error
}

// Receipt is one voucher printout.
type Receipt struct {
	Lang Language
	SSID string
	Code string
	Logo image.Image
}

// Print writes the receipt and closes the printer.
func (r Receipt) Print(p Printer) error {
	p.Initialize()
	p.SetFont(escpos.FontB)
	p.Text(Rule())
	p.Feed(1)
	if r.Logo != nil {
		p.Image(r.Logo)
		p.Feed(1)
	}
	p.Text(Message(r.Lang))
	p.Feed(1)
	p.SetTextSize(2, 2)
	p.SetLineSpacing(AccessLineSpacing)
	p.Text(AccessData(r.Lang, r.SSID, r.Code))
	p.Feed(1)
	p.SetTextSize(1, 1)
	p.SetLineSpacing(0)
	p.Text(Rule())
	p.Cut()
	p.Pulse()
	return p.Close()
}
