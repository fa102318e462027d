package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runRefresh(ctx context.Context) error {
	c.io.Println("Refreshing tokens...")

	tokens, err := c.manager.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	c.io.Println("✓ Tokens refreshed!")
	c.io.Printf("Token expires: %s\n", formatExpiresAt(tokens.ExpiresAt))
	return nil
}
