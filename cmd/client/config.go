package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/iudanet/identitykeeper/internal/client/api"
)

// EnvRevisionSecret переменная окружения с общим секретом revision checksum
const EnvRevisionSecret = "IDENTITY_REVISION_SECRET"

const (
	storeBolt   = "bolt"
	storeSQLite = "sqlite"
	storeMemory = "memory"
)

type config struct {
	API            api.Config
	Store          string
	DBPath         string
	PassphraseFile string
	Language       string
	Args           []string
	ShowVersion    bool
	Verbose        bool
}

// parseFlags разбирает глобальные флаги. Секрет из окружения имеет приоритет над флагом.
func parseFlags(args []string, output io.Writer) (*config, error) {
	cfg := &config{}

	fs := flag.NewFlagSet("identitykeeper", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging")
	fs.StringVar(&cfg.API.BaseURL, "server", "http://localhost:8080", "Identity server URL")
	fs.StringVar(&cfg.API.APIVersion, "api-version", "", "API version path segment")
	fs.StringVar(&cfg.API.Endpoint, "endpoint", api.DefaultEndpoint, "Account controller name")
	fs.StringVar(&cfg.API.PoweredBy, "powered-by", "", "X-Powered-By header value")
	fs.StringVar(&cfg.API.RegisteredTo, "registered-to", "", "XRegisteredTo header value")
	fs.StringVar(&cfg.API.RevisionSecret, "revision-secret", "", "Shared secret for token revision checksums")
	fs.DurationVar(&cfg.API.Timeout, "timeout", api.DefaultTimeout, "HTTP request timeout")
	fs.StringVar(&cfg.Store, "store", storeBolt, "Local store backend: bolt, sqlite or memory")
	fs.StringVar(&cfg.DBPath, "db", "identitykeeper.db", "Path to local store")
	fs.StringVar(&cfg.PassphraseFile, "passphrase-file", "", "Path to file containing store passphrase")
	fs.StringVar(&cfg.Language, "language", "en", "Language sent with login requests")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Args = fs.Args()

	if secret := os.Getenv(EnvRevisionSecret); secret != "" {
		cfg.API.RevisionSecret = secret
	}

	switch cfg.Store {
	case storeBolt, storeSQLite, storeMemory:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = api.DefaultTimeout
	}
	if !cfg.ShowVersion {
		if err := cfg.API.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *config) logLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
