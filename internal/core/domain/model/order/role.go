package order

import (
	"fmt"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/pkg/errs"
)

// Role identifies which party asks for a transition.
type Role int

const (
	RoleUnknown Role = iota
	RoleClient
	RolePro
	RoleAdmin
	// RoleSystem is used by the payment flow for edges no person may take directly.
	RoleSystem
)

var roleNames = map[Role]string{
	RoleClient: "CLIENT",
	RolePro:    "PRO",
	RoleAdmin:  "ADMIN",
	RoleSystem: "SYSTEM",
}

// ParseRole parses a role as sent by the upstream gateway. SYSTEM is never
// accepted from outside.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CLIENT":
		return RoleClient, nil
	case "PRO":
		return RolePro, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("actorRole", fmt.Errorf("%q is not a valid role", s))
	}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

func (r Role) Validate() error {
	if _, ok := roleNames[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("actorRole", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// Actor is the identity performing an operation. The system actor has no ID.
type Actor struct {
	id   kernel.UUID
	role Role
}

// NewActor builds an actor for a person. Use SystemActor for automated edges.
func NewActor(id kernel.UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, errs.NewValueIsRequiredErrorWithCause("actorId", err)
	}
	if role == RoleSystem {
		return Actor{}, errs.NewValueIsInvalidErrorWithCause("actorRole", fmt.Errorf("%s cannot be claimed", role))
	}
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: role}, nil
}

// SystemActor is the actor used by payment and reconciliation flows.
func SystemActor() Actor {
	return Actor{role: RoleSystem}
}

func (a Actor) ID() kernel.UUID {
	return a.id
}

func (a Actor) Role() Role {
	return a.role
}

// IDString returns the actor id, or "system".
func (a Actor) IDString() string {
	if a.role == RoleSystem {
		return "system"
	}
	return a.id.String()
}
