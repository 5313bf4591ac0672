// Package main runs the interactive inventory console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/stockguard/internal/app"
	"github.com/abgdnv/stockguard/internal/config"
	"github.com/abgdnv/stockguard/internal/transport/console"
	"github.com/abgdnv/stockguard/pkg/bootstrap"
	"golang.org/x/term"
)

func main() {
	configFile := flag.String("config", config.DefaultConfigFile, "path to the YAML configuration file")
	envFile := flag.String("env", config.DefaultEnvFile, "path to the dotenv file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile, *envFile); err != nil {
		log.Printf("stockguard: %v", err)
		os.Exit(1)
	}
}

// run logs to stderr so that records never interleave with the menu on stdout.
func run(ctx context.Context, configFile, envFile string) error {
	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := bootstrap.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded", "config", cfg.String())

	deps, err := app.SetupDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}

	opts := []console.Option{console.WithLogger(logger.With("component", "console"))}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		opts = append(opts, console.WithPasswordReader(terminalPassword(fd)))
	}

	runErr := console.New(deps.Service, deps.Credentials, os.Stdin, os.Stdout, opts...).Run(ctx)
	return errors.Join(runErr, deps.Close())
}

// terminalPassword reads a password from the terminal without echo.
func terminalPassword(fd int) console.PasswordReader {
	return func(prompt string) (string, error) {
		fmt.Print(prompt)
		password, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}
}
