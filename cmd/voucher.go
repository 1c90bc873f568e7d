package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"grimm.is/wingwifi/internal/brand"
	"grimm.is/wingwifi/internal/config"
	"grimm.is/wingwifi/internal/receipt"
	"grimm.is/wingwifi/internal/unifi"
	"grimm.is/wingwifi/internal/voucher"
)

// RunVoucher runs "voucher list|create|revoke|print" against the configured
// controller and printer.
func RunVoucher(ctx context.Context, w io.Writer, configFile string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s voucher <list|create|revoke|print> [options]", brand.BinaryName)
	}
	sub, args := args[0], args[1:]

	fs := flag.NewFlagSet("voucher "+sub, flag.ContinueOnError)
	fs.SetOutput(w)
	site := fs.String("site", "", "Site name (default: configured site)")
	lang := fs.String("lang", "", "Receipt language")

	var (
		minutes, count, up, down, mbytes *int
		multi                            *bool
		note, id, code                   *string
	)
	switch sub {
	case "list":
	case "create":
		minutes = fs.Int("minutes", voucher.DefaultMinutes, "Validity in minutes")
		count = fs.Int("count", voucher.DefaultCount, "Number of vouchers")
		multi = fs.Bool("multi", false, "Allow unlimited uses")
		note = fs.String("note", "", "Note stored with the voucher")
		up = fs.Int("up", 0, "Upload limit in kbps")
		down = fs.Int("down", 0, "Download limit in kbps")
		mbytes = fs.Int("mbytes", 0, "Data limit in MB")
	case "revoke":
		id = fs.String("id", "", "Voucher id")
	case "print":
		code = fs.String("code", "", "Voucher code")
	default:
		return fmt.Errorf("unknown voucher command: %s", sub)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	setupLogging(cfg)

	desk, err := newDesk(cfg)
	if err != nil {
		return err
	}

	if sub == "print" {
		l := *lang
		if l == "" {
			l = cfg.DefaultLang
		}
		if err := desk.Print(ctx, *code, l); err != nil {
			return fmt.Errorf("print failed: %w", err)
		}
		Printer.Fprintf(w, "Printed %s\n", voucher.FormatCode(*code))
		return nil
	}

	siteName := *site
	if siteName == "" {
		siteName = cfg.Site
	}
	client, err := controllerClient(cfg, siteName)
	if err != nil {
		return err
	}
	if err := client.Login(ctx); err != nil {
		return err
	}
	defer client.Logout(context.WithoutCancel(ctx))

	switch sub {
	case "list":
		entries, err := desk.List(ctx, client)
		if err != nil {
			return err
		}
		printVouchers(w, entries, cfg.DefaultLang)

	case "create":
		spec := unifi.VoucherSpec{
			Minutes:  *minutes,
			Count:    *count,
			Quota:    voucher.DefaultQuota,
			Note:     *note,
			UpKbps:   *up,
			DownKbps: *down,
			MBytes:   *mbytes,
		}
		if *multi {
			spec.Quota = 0
		}
		entries, err := desk.Create(ctx, client, spec)
		if err != nil {
			return err
		}
		printVouchers(w, entries, cfg.DefaultLang)

	case "revoke":
		if *id == "" {
			return errors.New("voucher revoke: -id is required")
		}
		if err := desk.Revoke(ctx, client, *id); err != nil {
			return err
		}
		Printer.Fprintf(w, "Revoked %s\n", *id)
	}
	return nil
}

func newDesk(cfg *config.Config) (*voucher.Service, error) {
	logo, err := loadLogo(cfg.PrinterLogo)
	if err != nil {
		return nil, err
	}
	return voucher.NewService(voucher.Options{
		PrinterAddr:    cfg.PrinterIP,
		PrinterTimeout: cfg.PrinterDialTimeout(),
		SSID:           cfg.WirelessName,
		Logo:           logo,
	}), nil
}

func printVouchers(out io.Writer, entries []voucher.Entry, lang string) {
	if _, err := receipt.LoadLanguage(lang); err != nil {
		lang = voucher.DefaultLang
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	Printer.Fprintln(w, "ID\tCODE\tDURATION\tUSED\tQUOTA\tNOTE\tSTATUS")
	for _, e := range entries {
		status := "valid"
		if e.Invalid {
			status = "expired"
		}
		Printer.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			e.ID, e.DisplayCode(), voucher.FormatDuration(e.Duration, lang), e.Used, e.Quota, orDash(e.Note), status)
	}
	w.Flush()
}
