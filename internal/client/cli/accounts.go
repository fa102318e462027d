package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
)

func (c *Cli) runAccounts(ctx context.Context) error {
	accounts, err := c.manager.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		c.io.Println("No stored accounts.")
		return nil
	}

	active := ""
	if state, err := c.manager.State(ctx); err == nil && state.IsLoggedIn {
		active = state.UserSelectBy
	}

	w := tabwriter.NewWriter(c.io, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tACCOUNT\tUSER ID\tEXPIRES")
	for _, a := range accounts {
		marker := ""
		if a.UserSelectBy == active {
			marker = "*"
		}
		userID := "-"
		if a.Profile != nil && a.Profile.UserID != "" {
			userID = a.Profile.UserID
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, a.UserSelectBy, userID, formatExpiresAt(a.ExpiresAt))
	}
	return w.Flush()
}

func (c *Cli) runSwitch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: identitykeeper switch <identifier>")
	}
	if err := c.manager.SwitchAccount(ctx, args[0]); err != nil {
		return err
	}
	c.io.Printf("✓ Active account: %s\n", args[0])
	return nil
}
