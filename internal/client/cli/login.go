package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/iudanet/identitykeeper/internal/client/auth"
	"github.com/iudanet/identitykeeper/internal/models"
	pkgapi "github.com/iudanet/identitykeeper/pkg/api"
)

func (c *Cli) runLogin(ctx context.Context, args []string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	req, err := c.readCredentials(args)
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")
	info, err := c.manager.Login(ctx, req)
	if err != nil {
		if errors.Is(err, auth.ErrMustLogout) {
			return fmt.Errorf("already logged in, run 'identitykeeper logout' or 'identitykeeper add' first: %w", err)
		}
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.printAccount(info)
	return nil
}

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	makeDefault := fs.Bool("default", false, "Make the added account active")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("invalid add arguments: %w", err)
	}

	c.io.Println("=== Add Account ===")
	c.io.Println()

	req, err := c.readCredentials(fs.Args())
	if err != nil {
		return err
	}

	info, err := c.manager.AddAccount(ctx, req, *makeDefault)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Account added!")
	c.printAccount(info)
	return nil
}

// readCredentials берет идентификатор из аргументов или спрашивает его, пароль всегда спрашивает
func (c *Cli) readCredentials(args []string) (pkgapi.LoginRequest, error) {
	var identifier string
	if len(args) > 0 {
		identifier = args[0]
	} else {
		var err error
		identifier, err = c.io.ReadInput("Username, email or phone: ")
		if err != nil {
			return pkgapi.LoginRequest{}, fmt.Errorf("failed to read identifier: %w", err)
		}
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return pkgapi.LoginRequest{}, fmt.Errorf("failed to read password: %w", err)
	}

	return pkgapi.LoginRequest{
		UserSelectBy: identifier,
		Password:     password,
		Language:     c.language,
	}, nil
}

func (c *Cli) printAccount(info *models.UserAccountInfo) {
	c.io.Printf("Account: %s\n", info.UserSelectBy)
	if info.Profile != nil && info.Profile.UserName != "" {
		c.io.Printf("Username: %s\n", info.Profile.UserName)
	}
	c.io.Printf("Token expires: %s\n", formatExpiresAt(info.ExpiresAt))
}

func formatExpiresAt(expiresAt int64) string {
	if expiresAt <= 0 {
		return "unknown"
	}
	return time.UnixMilli(expiresAt).UTC().Format(time.RFC3339)
}
