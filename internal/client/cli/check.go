package cli

import (
	"context"
	"errors"
	"fmt"
)

const checkUsage = "usage: identitykeeper check username|email|phone <value> [country]"

func (c *Cli) runCheck(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New(checkUsage)
	}
	kind, value := args[0], args[1]

	var (
		ok  bool
		err error
	)
	switch kind {
	case "username":
		ok, err = c.checker.CanRegisterUserName(ctx, value)
	case "email":
		ok, err = c.checker.CanRegisterEmail(ctx, value)
	case "phone":
		country := ""
		if len(args) > 2 {
			country = args[2]
		}
		ok, err = c.checker.CanRegisterMobileNumber(ctx, value, country)
	default:
		return errors.New(checkUsage)
	}
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", kind, err)
	}

	if ok {
		c.io.Printf("✓ %s %q is available\n", kind, value)
	} else {
		c.io.Printf("✗ %s %q cannot be registered\n", kind, value)
	}
	return nil
}
