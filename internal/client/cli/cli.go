package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iudanet/identitykeeper/internal/client/api"
	"github.com/iudanet/identitykeeper/internal/client/auth"
	"github.com/iudanet/identitykeeper/internal/client/iocli"
	"github.com/iudanet/identitykeeper/internal/validation"
)

// EnvStorePassphrase переменная окружения с паролем локального хранилища
const EnvStorePassphrase = "IDENTITY_STORE_PASSPHRASE"

// DefaultLanguage язык, передаваемый при логине, если не задан явно
const DefaultLanguage = "en"

// ErrUnknownCommand неизвестная команда
var ErrUnknownCommand = errors.New("unknown command")

// RegistrationChecker проверяет доступность идентификаторов на сервере
type RegistrationChecker interface {
	CanRegisterUserName(ctx context.Context, userName string) (bool, error)
	CanRegisterEmail(ctx context.Context, email string) (bool, error)
	CanRegisterMobileNumber(ctx context.Context, mobileNumber, countryCode string) (bool, error)
}

var _ RegistrationChecker = (*api.Client)(nil)

// Passphrases источники пароля хранилища, кроме переменной окружения
type Passphrases struct {
	FromFile string
}

type Cli struct {
	manager  *auth.Manager
	checker  RegistrationChecker
	io       iocli.IO
	language string
}

func New(manager *auth.Manager, checker RegistrationChecker, io iocli.IO, language string) *Cli {
	if language == "" {
		language = DefaultLanguage
	}
	return &Cli{
		manager:  manager,
		checker:  checker,
		io:       io,
		language: language,
	}
}

// ReadPassphrase reads the store passphrase with priority:
// 1. Environment variable IDENTITY_STORE_PASSPHRASE
// 2. File specified in passphrases.FromFile
// 3. Interactive prompt (fallback)
func ReadPassphrase(io iocli.IO, passphrases Passphrases) (string, error) {
	passphrase, err := getPassphrase(io, passphrases)
	if err != nil {
		return "", fmt.Errorf("failed to get store passphrase: %w", err)
	}
	if err := validation.ValidatePassphrase(passphrase); err != nil {
		return "", fmt.Errorf("invalid store passphrase: %w", err)
	}
	return passphrase, nil
}

func getPassphrase(io iocli.IO, passphrases Passphrases) (string, error) {
	// Priority 1: Environment variable
	if env := os.Getenv(EnvStorePassphrase); env != "" {
		return env, nil
	}

	// Priority 2: File
	if passphrases.FromFile != "" {
		content, err := os.ReadFile(passphrases.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase file: %w", err)
		}
		// Убираем trailing newline/whitespace
		passphrase := strings.TrimSpace(string(content))
		if passphrase == "" {
			return "", errors.New("passphrase file is empty")
		}
		return passphrase, nil
	}

	// Priority 3: Interactive prompt
	passphrase, err := io.ReadPassword("Store passphrase: ")
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase from stdin: %w", err)
	}
	if passphrase == "" {
		return "", errors.New("passphrase cannot be empty")
	}
	return passphrase, nil
}

func PrintUsage(io iocli.IO) {
	io.Println("IdentityKeeper Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  identitykeeper [OPTIONS] COMMAND [ARGS]")
	io.Println()
	io.Println("Options:")
	io.Println("  --version                  Show version information")
	io.Println("  --server URL               Identity server URL (default: http://localhost:8080)")
	io.Println("  --api-version VERSION      API version path segment (default: none)")
	io.Println("  --store bolt|sqlite|memory Local store backend (default: bolt)")
	io.Println("  --db PATH                  Path to local store (default: identitykeeper.db)")
	io.Println("  --revision-secret SECRET   Shared secret for token revision checksums")
	io.Println("  --passphrase-file PATH     Path to file containing store passphrase")
	io.Println()
	io.Println("Store Passphrase Priority (highest to lowest):")
	io.Println("  1. IDENTITY_STORE_PASSPHRASE environment variable")
	io.Println("  2. --passphrase-file (file path)")
	io.Println("  3. Interactive prompt (fallback)")
	io.Println()
	io.Println("Commands:")
	io.Println("  login [identifier]             Login and make the account active")
	io.Println("  add [--default] [identifier]   Login one more account")
	io.Println("  logout                         Logout the active account")
	io.Println("  status                         Show session status")
	io.Println("  accounts                       List stored accounts")
	io.Println("  switch <identifier>            Make another stored account active")
	io.Println("  refresh                        Refresh tokens of the active account")
	io.Println("  roles [role]                   Show roles or check membership in role")
	io.Println("  check username|email|phone <value> [country]")
	io.Println("                                 Check whether an identifier can be registered")
}
