package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yuriy-kovalchuk/tailsync/internal/config"
	"github.com/yuriy-kovalchuk/tailsync/internal/dns"
	_ "github.com/yuriy-kovalchuk/tailsync/internal/dns/stores"
	syncer "github.com/yuriy-kovalchuk/tailsync/internal/sync"
	"github.com/yuriy-kovalchuk/tailsync/internal/tailscale"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds a console logger writing to stdout and, append-only, to
// the given file.
func newLogger(logFile string) (logr.Logger, func(), error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stdout", logFile}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	zl, err := zcfg.Build()
	if err != nil {
		return logr.Logger{}, nil, fmt.Errorf("building logger: %w", err)
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}

	log, flush, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer flush()

	setupLog := log.WithName("setup")
	setupLog.Info("starting tailsync", "version", Version, "store", cfg.StoreURL, "suffix", cfg.Suffix)

	store, err := dns.NewStore("pihole", log.WithName("dns-pihole"), cfg.StoreSettings())
	if err != nil {
		return fmt.Errorf("unable to create DNS store: %w", err)
	}

	s := &syncer.Syncer{
		Log:    log.WithName("sync"),
		Source: tailscale.NewClient(log.WithName("tailscale")),
		Store:  store,
		Suffix: cfg.Suffix,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		setupLog.Error(err, "synchronization failed")
		return err
	}
	return nil
}
