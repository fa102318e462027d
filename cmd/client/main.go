package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/identitykeeper/internal/client/api"
	"github.com/iudanet/identitykeeper/internal/client/auth"
	"github.com/iudanet/identitykeeper/internal/client/cli"
	"github.com/iudanet/identitykeeper/internal/client/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	stdio := iocli.NewStdio()

	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	// Show version and exit if requested
	if cfg.ShowVersion {
		printVersion()
		return 0
	}

	if len(cfg.Args) == 0 {
		cli.PrintUsage(stdio)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, stdio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("failed to close store", slog.Any("error", err))
		}
	}()

	// Создаем API клиент
	transport := api.NewLoggingTransport(nil, logger)
	apiClient, err := api.NewClient(cfg.API, api.WithTransport(transport))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	manager, err := auth.NewManager(ctx, apiClient, store,
		auth.WithLogger(logger),
		auth.WithRevisionSecret(cfg.API.RevisionSecret),
		auth.WithBaseTransport(transport),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	c := cli.New(manager, apiClient, stdio, cfg.Language)
	if err := c.Run(ctx, cfg.Args[0], cfg.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printVersion() {
	fmt.Printf("IdentityKeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
