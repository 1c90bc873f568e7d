package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"grimm.is/wingwifi/internal/brand"
	"grimm.is/wingwifi/internal/config"
)

// RunCheck validates the configuration file and prints a summary to w.
func RunCheck(w io.Writer, configFile string, verbose bool) error {
	if len(configFile) == 0 {
		return fmt.Errorf("usage: %s check [-v] <config-file>\nExample: %s check -v %s", brand.BinaryName, brand.BinaryName, brand.DefaultConfigPath())
	}

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	Printer.Fprintf(w, "Configuration valid!\n")
	Printer.Fprintf(w, "Controller: %s\n", cfg.Location)
	Printer.Fprintf(w, "Session backend: %s\n", cfg.Session.Backend)
	Printer.Fprintf(w, "Controllers: %d\n", len(cfg.Controllers))

	if verbose {
		Printer.Fprintln(w)
		printSummary(w, cfg)
	}
	return nil
}

func printSummary(out io.Writer, cfg *config.Config) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	Printer.Fprintln(w, "SETTING\tVALUE")
	Printer.Fprintf(w, "listen\t%s\n", cfg.Listen)
	Printer.Fprintf(w, "site\t%s\n", orDash(cfg.Site))
	Printer.Fprintf(w, "wireless_name\t%s\n", cfg.WirelessName)
	Printer.Fprintf(w, "printer_ip\t%s\n", orDash(cfg.PrinterIP))
	Printer.Fprintf(w, "default_lang\t%s\n", cfg.DefaultLang)
	Printer.Fprintf(w, "cookie_timeout\t%v\n", cfg.SessionTimeout())
	Printer.Fprintf(w, "verify_tls\t%t\n", cfg.VerifyTLS)
	Printer.Fprintf(w, "admin_gate\t%t\n", cfg.AdminGateEnabled())
	Printer.Fprintln(w)
	w.Flush()

	if len(cfg.Controllers) == 0 {
		return
	}
	Printer.Fprintln(w, "ID\tNAME\tUSER\tURL")
	for _, c := range cfg.Controllers {
		Printer.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, orDash(c.User), orDash(c.URL))
	}
	w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
