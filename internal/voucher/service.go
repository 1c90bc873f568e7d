// Package voucher implements the voucher desk: listing, issuing, revoking
// and printing hotspot vouchers for one site at a time.
package voucher

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/samber/lo"

	"grimm.is/wingwifi/internal/clock"
	"grimm.is/wingwifi/internal/escpos"
	"grimm.is/wingwifi/internal/logging"
	"grimm.is/wingwifi/internal/metrics"
	"grimm.is/wingwifi/internal/receipt"
	"grimm.is/wingwifi/internal/unifi"
)

// Defaults for a create request.
const (
	DefaultMinutes = 60
	DefaultCount   = 1
	DefaultQuota   = 1
	DefaultLang    = "en"
)

var (
	// ErrNoCode is returned when printing without a voucher code.
	ErrNoCode = errors.New("voucher: no code to print")
	// ErrNoPrinter is returned when no printer address is configured.
	ErrNoPrinter = errors.New("voucher: no printer configured")
)

// Controller is the subset of the UniFi client the desk uses. The client's
// current site scopes every call.
type Controller interface {
	Vouchers(ctx context.Context) ([]unifi.Voucher, error)
	CreateVouchers(ctx context.Context, spec unifi.VoucherSpec) ([]unifi.Voucher, error)
	RevokeVoucher(ctx context.Context, id string) error
}

// DialFunc opens a connection to the receipt printer.
type DialFunc func(ctx context.Context, addr string, timeout time.Duration) (receipt.Printer, error)

// Entry is a voucher annotated for display.
type Entry struct {
	unifi.Voucher
	ExpiresAt time.Time `json:"expires_at"`
	Invalid   bool      `json:"invalid"`
}

// DisplayCode formats ten-digit codes as 12345-67890.
func (e Entry) DisplayCode() string {
	return FormatCode(e.Code)
}

// NormalizeCode strips the separators a code may be typed with.
func NormalizeCode(code string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(code))
}

// FormatCode inserts the dash the controller UI shows in ten-digit codes.
func FormatCode(code string) string {
	if len(code) == 10 {
		return code[:5] + "-" + code[5:]
	}
	return code
}

// Options configures a Service.
type Options struct {
	PrinterAddr    string
	PrinterTimeout time.Duration
	SSID           string
	Logo           image.Image
	Dial           DialFunc
	Clock          clock.Clock
	Logger         *logging.Logger
	Metrics        *metrics.Registry
}

// Service runs voucher desk operations.
type Service struct {
	opts   Options
	clock  clock.Clock
	logger *logging.Logger
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	if opts.Dial == nil {
		opts.Dial = func(ctx context.Context, addr string, timeout time.Duration) (receipt.Printer, error) {
			return escpos.Dial(ctx, addr, timeout)
		}
	}
	if opts.PrinterTimeout <= 0 {
		opts.PrinterTimeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.WithComponent("voucher")
	}
	return &Service{opts: opts, clock: clock.OrDefault(opts.Clock), logger: logger}
}

// List returns the site's vouchers. A voucher whose create time plus
// duration lies in the past is marked Invalid.
func (s *Service) List(ctx context.Context, ctl Controller) ([]Entry, error) {
	vouchers, err := ctl.Vouchers(ctx)
	s.opts.Metrics.RecordVoucherOp(metrics.OpList, err == nil)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	return lo.Map(vouchers, func(v unifi.Voucher, _ int) Entry {
		return annotate(v, now)
	}), nil
}

func annotate(v unifi.Voucher, now time.Time) Entry {
	expires := time.Unix(v.CreateTime, 0).Add(time.Duration(v.Duration) * time.Minute)
	return Entry{Voucher: v, ExpiresAt: expires, Invalid: expires.Before(now)}
}

// NewSpec returns a create request with the default duration, count and
// single-use quota.
func NewSpec() unifi.VoucherSpec {
	return unifi.VoucherSpec{Minutes: DefaultMinutes, Count: DefaultCount, Quota: DefaultQuota}
}

// Create issues vouchers. Non-positive minutes or count fall back to the
// defaults; a negative quota means single-use.
func (s *Service) Create(ctx context.Context, ctl Controller, spec unifi.VoucherSpec) ([]Entry, error) {
	if spec.Minutes <= 0 {
		spec.Minutes = DefaultMinutes
	}
	if spec.Count <= 0 {
		spec.Count = DefaultCount
	}
	if spec.Quota < 0 {
		spec.Quota = DefaultQuota
	}

	vouchers, err := ctl.CreateVouchers(ctx, spec)
	s.opts.Metrics.RecordVoucherOp(metrics.OpCreate, err == nil)
	if err != nil {
		s.logger.Warn("voucher create failed", "minutes", spec.Minutes, "count", spec.Count, "error", err)
		return nil, err
	}
	s.opts.Metrics.AddVouchersCreated(len(vouchers))
	s.logger.Info("vouchers created", "count", len(vouchers), "minutes", spec.Minutes, "quota", spec.Quota)

	now := s.clock.Now()
	return lo.Map(vouchers, func(v unifi.Voucher, _ int) Entry {
		return annotate(v, now)
	}), nil
}

// Revoke deletes a voucher.
func (s *Service) Revoke(ctx context.Context, ctl Controller, id string) error {
	err := ctl.RevokeVoucher(ctx, id)
	s.opts.Metrics.RecordVoucherOp(metrics.OpRevoke, err == nil)
	if err != nil {
		s.logger.Warn("voucher revoke failed", "id", id, "error", err)
		return err
	}
	s.logger.Info("voucher revoked", "id", id)
	return nil
}

// Print sends a receipt for code to the printer. code may be given with or
// without its dash; the receipt always shows the dashed form. An empty lang
// prints in English; an unknown one fails. Printer panics are reported as
// errors.
func (s *Service) Print(ctx context.Context, code, lang string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("voucher: print: %v", r)
		}
		s.opts.Metrics.RecordVoucherOp(metrics.OpPrint, err == nil)
		if err != nil {
			s.logger.Warn("voucher print failed", "printer", s.opts.PrinterAddr, "error", err)
		}
	}()

	code = NormalizeCode(code)
	if code == "" {
		return ErrNoCode
	}
	if s.opts.PrinterAddr == "" {
		return ErrNoPrinter
	}
	if lang == "" {
		lang = DefaultLang
	}
	texts, err := receipt.LoadLanguage(lang)
	if err != nil {
		return err
	}

	p, err := s.opts.Dial(ctx, s.opts.PrinterAddr, s.opts.PrinterTimeout)
	if err != nil {
		return err
	}
	r := receipt.Receipt{
		Lang: texts,
		SSID: s.opts.SSID,
		Code: FormatCode(code),
		Logo: s.opts.Logo,
	}
	return r.Print(p)
}
