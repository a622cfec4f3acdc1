package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/codefionn/tcpresponder/internal/cli"
	"github.com/codefionn/tcpresponder/internal/config"
	"github.com/codefionn/tcpresponder/internal/console"
	"github.com/codefionn/tcpresponder/internal/logger"
	"github.com/codefionn/tcpresponder/internal/pidfile"
	"github.com/codefionn/tcpresponder/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	opts, err := cli.ParseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.GetConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv()
	applyOptions(cfg, opts)

	if initErr := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); initErr != nil {
		return fmt.Errorf("failed to initialize logger: %w", initErr)
	}
	defer func() {
		if err != nil {
			logger.Error("Fatal error: %v", err)
		}
		if closeErr := logger.Global().Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", closeErr)
		}
	}()

	logger.Info("tcpresponder starting")
	logger.Debug("Configuration loaded: path=%s host=%s log_level=%s log_path=%s", cfgPath, cfg.Host, cfg.LogLevel, cfg.LogPath)

	input := console.NewLineReader(os.Stdin)
	styled := cfg.StyledOutput && term.IsTerminal(int(os.Stdout.Fd()))
	con := console.New(os.Stdout, styled)

	params, err := cli.ResolveParams(opts.Positional, cli.Params{Port: cfg.Port, HexMode: cfg.HexMode}, input, os.Stdout)
	if err != nil {
		return err
	}
	cfg.Port = params.Port
	cfg.HexMode = params.HexMode

	if cfg.PidPath != "" {
		pf := pidfile.New(cfg.PidPath)
		if err := pf.Write(); err != nil {
			return err
		}
		defer func() {
			if removeErr := pf.Remove(); removeErr != nil {
				logger.Warn("Failed to remove pidfile: %v", removeErr)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(cfg, con, input)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received")
	return srv.Stop()
}

// applyOptions lets command line flags override config file values.
func applyOptions(cfg *config.Config, opts *cli.Options) {
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.BufferSize > 0 {
		cfg.ReadBufferSize = opts.BufferSize
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
}
