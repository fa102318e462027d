package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/iudanet/identitykeeper/internal/client/auth"
	"github.com/iudanet/identitykeeper/internal/models"
	"github.com/iudanet/identitykeeper/internal/roles"
)

// runRoles печатает роли текущего пользователя или проверяет одну роль
func (c *Cli) runRoles(ctx context.Context, args []string) error {
	state, err := c.manager.State(ctx)
	if err != nil {
		return err
	}
	if !state.IsLoggedIn {
		return errors.New("not authenticated, run 'identitykeeper login' first")
	}

	current := sessionRoles(state)

	if len(args) > 0 {
		required := roles.Role(args[0])
		if roles.IsInRole(required, current) {
			c.io.Printf("✓ %s has role %s\n", state.UserSelectBy, required)
		} else {
			c.io.Printf("✗ %s does not have role %s\n", state.UserSelectBy, required)
		}
		return nil
	}

	if len(current) == 0 {
		c.io.Println("Roles: none")
		return nil
	}
	c.io.Printf("Roles: %s\n", strings.Join(current, ", "))
	if top, err := roles.TopRole(current); err == nil {
		c.io.Printf("Top role: %s\n", top)
	}
	return nil
}

// sessionRoles роли из кэшированного профиля, иначе из claims access token
func sessionRoles(state models.SessionState) []string {
	if state.Profile != nil && len(state.Profile.Roles) > 0 {
		return state.Profile.Roles
	}
	claims, err := auth.ParseAccessClaims(state.AccessToken)
	if err != nil {
		return nil
	}
	return claims.AllRoles()
}
