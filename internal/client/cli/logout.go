package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	if err := c.manager.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logout successful!")

	state, err := c.manager.State(ctx)
	if err != nil {
		return err
	}
	if state.IsLoggedIn {
		c.io.Printf("Active account is now: %s\n", state.UserSelectBy)
	} else {
		c.io.Println("No stored accounts left.")
	}
	return nil
}
