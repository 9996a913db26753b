package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/estimo-app/estimo/internal/app"
	"github.com/estimo-app/estimo/internal/config"

	log "github.com/sirupsen/logrus"
)

// main runs the CLI entrypoint and exits on unrecoverable errors.
func main() {
	if errRun := run(context.Background(), os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the server.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("estimo", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 8080, "server port")
	migrateOnly := fs.Bool("migrate", false, "run database migrations and exit")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	if errValidate := validatePort(*port); errValidate != nil {
		return errValidate
	}

	cfg, err := config.Load(config.ResolveConfigPath(*cfgPath))
	if err != nil {
		return err
	}
	if errValidate := cfg.Validate(); errValidate != nil {
		return errValidate
	}
	applyLogLevel(cfg.LogLevel)

	if *migrateOnly {
		return app.Migrate(cfg)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.RunServer(ctx, cfg, *port)
}

func applyLogLevel(level string) {
	parsed, errParse := log.ParseLevel(level)
	if errParse != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
