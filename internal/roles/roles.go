package roles

import (
	"errors"
	"slices"
)

// Role роль пользователя из профиля или access token
type Role string

const (
	Admin         Role = "admin"
	Agent         Role = "agent"
	ChiefActuary  Role = "chief_actuary"
	Actuary       Role = "actuary"
	Reporter      Role = "reporter"
	Elite         Role = "elite"
	BusinessOwner Role = "business_owner"
	User          Role = "user"
)

// ErrNoRole у пользователя нет ни одной известной роли
var ErrNoRole = errors.New("user has no known role")

// precedence порядок от старшей роли к младшей
var precedence = []Role{Admin, Agent, ChiefActuary, Actuary, Reporter, Elite, BusinessOwner, User}

// All returns every known role, highest first
func All() []Role {
	return slices.Clone(precedence)
}

// IsKnown reports whether r belongs to the fixed enumeration
func (r Role) IsKnown() bool {
	return slices.Contains(precedence, r)
}

// Info флаги ролей пользователя
type Info struct {
	IsAdmin         bool `json:"isAdmin"`
	IsAgent         bool `json:"isAgent"`
	IsChiefActuary  bool `json:"isChiefActuary"`
	IsActuary       bool `json:"isActuary"`
	IsReporter      bool `json:"isReporter"`
	IsElite         bool `json:"isElite"`
	IsBusinessOwner bool `json:"isBusinessOwner"`
	IsUser          bool `json:"isUser"`
}

// Has reports the flag for required. Unknown roles are never granted.
func (i Info) Has(required Role) bool {
	switch required {
	case Admin:
		return i.IsAdmin
	case Agent:
		return i.IsAgent
	case ChiefActuary:
		return i.IsChiefActuary
	case Actuary:
		return i.IsActuary
	case Reporter:
		return i.IsReporter
	case Elite:
		return i.IsElite
	case BusinessOwner:
		return i.IsBusinessOwner
	case User:
		return i.IsUser
	default:
		return false
	}
}

// ToRoleInfo maps role strings to flags. Unknown strings are ignored.
func ToRoleInfo(current []string) Info {
	has := func(r Role) bool { return slices.Contains(current, string(r)) }
	return Info{
		IsAdmin:         has(Admin),
		IsAgent:         has(Agent),
		IsChiefActuary:  has(ChiefActuary),
		IsActuary:       has(Actuary),
		IsReporter:      has(Reporter),
		IsElite:         has(Elite),
		IsBusinessOwner: has(BusinessOwner),
		IsUser:          has(User),
	}
}

// IsInRole проверяет членство required в current. Используется guard-слоем.
func IsInRole(required Role, current []string) bool {
	if required == "" || len(current) == 0 {
		return false
	}
	return ToRoleInfo(current).Has(required)
}

// TopRole returns the highest known role in current
func TopRole(current []string) (Role, error) {
	info := ToRoleInfo(current)
	for _, r := range precedence {
		if info.Has(r) {
			return r, nil
		}
	}
	return "", ErrNoRole
}
