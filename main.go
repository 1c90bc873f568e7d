package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"grimm.is/wingwifi/cmd"
	"grimm.is/wingwifi/internal/brand"
	"grimm.is/wingwifi/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)
		configFile := serveFlags.String("config", brand.DefaultConfigPath(), "Configuration file")
		serveFlags.StringVar(configFile, "c", brand.DefaultConfigPath(), "Configuration file (short)")
		envFile := serveFlags.String("env", ".env", "Environment file")
		listen := serveFlags.String("listen", "", "Listen address (overrides config)")
		serveFlags.StringVar(listen, "l", "", "Listen address (short)")
		debug := serveFlags.Bool("debug", false, "Log at debug level")
		serveFlags.Parse(os.Args[2:])

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := cmd.RunServe(ctx, cmd.ServeOptions{ConfigFile: *configFile, EnvFile: *envFile, Listen: *listen, Debug: *debug}); err != nil {
			printer.Fprintf(os.Stderr, "Serve failed: %v\n", err)
			os.Exit(1)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		verbose := checkFlags.Bool("verbose", false, "Show configuration summary")
		checkFlags.BoolVar(verbose, "v", false, "Show configuration summary (short)")
		checkFlags.Parse(os.Args[2:])

		configFile := brand.DefaultConfigPath()
		if checkFlags.NArg() > 0 {
			configFile = checkFlags.Arg(0)
		}
		if err := cmd.RunCheck(os.Stdout, configFile, *verbose); err != nil {
			printer.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "voucher":
		voucherFlags := flag.NewFlagSet("voucher", flag.ExitOnError)
		configFile := voucherFlags.String("config", brand.DefaultConfigPath(), "Configuration file")
		voucherFlags.StringVar(configFile, "c", brand.DefaultConfigPath(), "Configuration file (short)")
		voucherFlags.Parse(os.Args[2:])

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := cmd.RunVoucher(ctx, os.Stdout, *configFile, voucherFlags.Args()); err != nil {
			printer.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "hash-password":
		if len(os.Args) < 3 {
			printer.Fprintf(os.Stderr, "Usage: %s hash-password <password>\n", brand.BinaryName)
			os.Exit(1)
		}
		if err := cmd.RunHashPassword(os.Stdout, os.Args[2]); err != nil {
			printer.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version":
		printer.Printf("%s %s (%s, built %s)\n", brand.Name, brand.Version, brand.GitCommit, brand.BuildTime)

	case "help", "-h", "--help":
		printUsage()

	default:
		printer.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options]

Commands:
  serve          Run the API browser and voucher desk
                 Options: --config (-c) <file>, --env <file>, --listen (-l) <addr>, --debug
  check          Validate configuration file
                 Options: --verbose (-v)
  voucher        Manage hotspot vouchers
                 Subcommands: list, create, revoke, print
                 Options: --config (-c) <file>
  hash-password  Print a bcrypt hash for sys_admin_password
  version        Show version information

Examples:
  %s serve -c /etc/wingwifi/config.json
  %s check -v /etc/wingwifi/config.hcl
  %s voucher create -minutes 1440 -count 5
  %s voucher print -code 1234567890 -lang sr
`, brand.Name, brand.Description, brand.BinaryName, brand.BinaryName, brand.BinaryName, brand.BinaryName, brand.BinaryName)
}
