package main

import (
	"context"
	"fmt"

	"github.com/iudanet/identitykeeper/internal/client/cli"
	"github.com/iudanet/identitykeeper/internal/client/iocli"
	"github.com/iudanet/identitykeeper/internal/client/storage"
	"github.com/iudanet/identitykeeper/internal/client/storage/boltdb"
	"github.com/iudanet/identitykeeper/internal/client/storage/encrypted"
	"github.com/iudanet/identitykeeper/internal/client/storage/memory"
	"github.com/iudanet/identitykeeper/internal/client/storage/sqlite"
)

type closer func() error

// openStore открывает выбранный backend. Файловые хранилища шифруются паролем.
func openStore(ctx context.Context, cfg *config, io iocli.IO) (storage.SecureStore, closer, error) {
	noop := func() error { return nil }

	var (
		inner   storage.SecureStore
		closeFn closer
	)
	switch cfg.Store {
	case storeMemory:
		return memory.New(), noop, nil
	case storeSQLite:
		s, err := sqlite.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		inner, closeFn = s, s.Close
	default:
		s, err := boltdb.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		inner, closeFn = s, s.Close
	}

	passphrase, err := cli.ReadPassphrase(io, cli.Passphrases{FromFile: cfg.PassphraseFile})
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	store, err := encrypted.New(ctx, inner, passphrase)
	if err != nil {
		_ = closeFn()
		return nil, nil, fmt.Errorf("failed to unlock store: %w", err)
	}
	return store, closeFn, nil
}
