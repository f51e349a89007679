package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sophloaf2019/jinpro/config"
	"github.com/sophloaf2019/jinpro/server"
)

// Version is set at build time via -ldflags
var Version = "0.3.0"

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("jinprod", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath  = flags.String("config", "", "Path to config file")
		devMode     = flags.Bool("dev", false, "Development mode (localhost, no caches)")
		port        = flags.Int("port", 0, "Override listen port")
		site        = flags.String("site", "", "Override site directory")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}

	if *showVersion {
		fmt.Fprintf(stdout, "jinprod version %s\n", Version)
		return nil
	}

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, configFile, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Apply CLI overrides
	if *devMode {
		cfg.Server.Dev = true
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *site != "" {
		cfg.Site = *site
	}

	// Full validation after CLI overrides applied
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	srv, err := server.New(cfg, configFile, stdout, stderr)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `jinprod - a web server for component templates

Usage:
  jinprod [options]

Options:
  --config PATH    Path to config file (default: auto-detect)
  --dev            Development mode (localhost, no caches, file watching)
  --port PORT      Override listen port
  --site DIR       Override site directory
  --version        Show version
  --help           Show this help

Config Resolution:
  1. --config flag
  2. JINPRO_CONFIG environment variable
  3. ./jinpro.yaml
  4. built-in defaults

Examples:
  jinprod                     Start with auto-detected config
  jinprod --dev               Development mode (http://localhost:8080)
  jinprod --config app.yaml   Use specific config file
  jinprod --dev --port 3000   Dev mode on port 3000
  jinprod --site ./site       Serve pages from ./site

`)
}
