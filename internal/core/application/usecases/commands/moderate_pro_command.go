package commands

import (
	"errors"
	"fmt"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrModerateProCommandIsNotConstructed = errors.New(
	"ModerateProCommand must be created via NewModerateProCommand constructor",
)

// ModerationAction is what an admin does to a professional profile.
type ModerationAction int

const (
	ModerationUnknown ModerationAction = iota
	ModerationApprove
	ModerationSuspend
	ModerationUnsuspend
)

func ParseModerationAction(s string) (ModerationAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve":
		return ModerationApprove, nil
	case "suspend":
		return ModerationSuspend, nil
	case "unsuspend":
		return ModerationUnsuspend, nil
	default:
		return ModerationUnknown, errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%q is not a moderation action", s))
	}
}

func (a ModerationAction) String() string {
	switch a {
	case ModerationApprove:
		return "approve"
	case ModerationSuspend:
		return "suspend"
	case ModerationUnsuspend:
		return "unsuspend"
	default:
		return "unknown"
	}
}

// ModerateProCommand approves, suspends or unsuspends a professional.
type ModerateProCommand struct { //nolint:recvcheck //using for validation
	proProfileID kernel.UUID
	action       ModerationAction
	admin        order.Actor
	reason       string

	guard guard.ConstructorGuard
}

func NewModerateProCommand(
	proProfileID kernel.UUID,
	action ModerationAction,
	admin order.Actor,
	reason string,
) (ModerateProCommand, error) {
	if proProfileID.Validate() != nil {
		return ModerateProCommand{}, errs.NewValueIsRequiredError("proProfileId")
	}
	if err := requireAdmin(admin); err != nil {
		return ModerateProCommand{}, err
	}
	if action == ModerationUnknown || action > ModerationUnsuspend {
		return ModerateProCommand{}, errs.NewValueIsInvalidError("action")
	}
	reason = strings.TrimSpace(reason)
	if action == ModerationSuspend && reason == "" {
		return ModerateProCommand{}, errs.NewValueIsRequiredError("reason")
	}
	return ModerateProCommand{
		proProfileID: proProfileID,
		action:       action,
		admin:        admin,
		reason:       reason,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c ModerateProCommand) Validate() error {
	return c.guard.Validate(ErrModerateProCommandIsNotConstructed)
}

func (c ModerateProCommand) ProProfileID() kernel.UUID { return c.proProfileID }
func (c ModerateProCommand) Action() ModerationAction  { return c.action }
func (c ModerateProCommand) Admin() order.Actor        { return c.admin }
func (c ModerateProCommand) Reason() string            { return c.reason }
