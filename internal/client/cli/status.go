package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	state, err := c.manager.State(ctx)
	if err != nil {
		return fmt.Errorf("failed to get session state: %w", err)
	}

	if !state.IsLoggedIn {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'identitykeeper login' to authenticate.")
		return nil
	}

	expired, err := c.manager.IsExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to check token expiry: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Account: %s\n", state.UserSelectBy)
	if state.Profile != nil {
		c.io.Printf("User ID: %s\n", state.Profile.UserID)
	}
	c.io.Printf("Token expires: %s\n", formatExpiresAt(state.ExpiresAt))
	if expired {
		c.io.Println("⚠️  Token has expired. It will be refreshed on the next request.")
	}

	count, err := c.manager.Repository().CountAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count accounts: %w", err)
	}
	c.io.Printf("Stored accounts: %d\n", count)
	c.io.Printf("Refresh: %s\n", c.manager.Coordinator().Status())
	return nil
}
