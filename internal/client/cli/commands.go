package cli

import (
	"context"
	"fmt"
)

// Run выполняет команду. Ошибка возвращается вызывающему, код выхода выбирает main.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.runLogin(ctx, args)
	case "add":
		return c.runAdd(ctx, args)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "accounts":
		return c.runAccounts(ctx)
	case "switch":
		return c.runSwitch(ctx, args)
	case "refresh":
		return c.runRefresh(ctx)
	case "roles":
		return c.runRoles(ctx, args)
	case "check":
		return c.runCheck(ctx, args)
	default:
		PrintUsage(c.io)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}
