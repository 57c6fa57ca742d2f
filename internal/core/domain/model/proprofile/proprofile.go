// Package proprofile holds the professional's profile as far as bookings and
// payouts care about it: moderation status, hourly rate and payout account.
package proprofile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

const entityName = "proProfile"

var ErrProProfileIsNotConstructed = errors.New("ProProfile must be created via NewProProfile constructor")

// Status is the moderation state of a professional.
type Status int

const (
	Unknown Status = iota
	PendingApproval
	Approved
	Suspended
)

var statusNames = map[Status]string{
	PendingApproval: "PENDING_APPROVAL",
	Approved:        "APPROVED",
	Suspended:       "SUSPENDED",
}

func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range statusNames {
		if name == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("proStatus", fmt.Errorf("%q is not a valid pro status", s))
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("proStatus", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// ProProfile is a service professional.
type ProProfile struct {
	id               kernel.UUID
	userID           kernel.UUID
	displayName      string
	status           Status
	hourlyRate       kernel.Money
	payoutAccountRef string
	suspensionReason string
	createdAt        time.Time
	updatedAt        time.Time
	version          int64
	guard            guard.ConstructorGuard
}

// NewProProfile registers a professional waiting for approval.
func NewProProfile(
	id, userID kernel.UUID,
	displayName string,
	hourlyRate kernel.Money,
	payoutAccountRef string,
	now time.Time,
) (*ProProfile, error) {
	return RestoreProProfile(Snapshot{
		ID:               id,
		UserID:           userID,
		DisplayName:      displayName,
		Status:           PendingApproval,
		HourlyRate:       hourlyRate,
		PayoutAccountRef: payoutAccountRef,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	})
}

// Snapshot is the persisted state of a profile.
type Snapshot struct {
	ID               kernel.UUID
	UserID           kernel.UUID
	DisplayName      string
	Status           Status
	HourlyRate       kernel.Money
	PayoutAccountRef string
	SuspensionReason string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
}

func RestoreProProfile(s Snapshot) (*ProProfile, error) {
	var err error
	if s.ID.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("proProfileId"))
	}
	if s.UserID.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("userId"))
	}
	if strings.TrimSpace(s.DisplayName) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("displayName"))
	}
	if s.HourlyRate.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("hourlyRateCents"))
	}
	err = errors.Join(err, s.Status.Validate())
	if err != nil {
		return nil, err
	}

	return &ProProfile{
		id:               s.ID,
		userID:           s.UserID,
		displayName:      strings.TrimSpace(s.DisplayName),
		status:           s.Status,
		hourlyRate:       s.HourlyRate,
		payoutAccountRef: strings.TrimSpace(s.PayoutAccountRef),
		suspensionReason: s.SuspensionReason,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
		version:          s.Version,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (p *ProProfile) Validate() error {
	if p == nil {
		return ErrProProfileIsNotConstructed
	}
	return p.guard.Validate(ErrProProfileIsNotConstructed)
}

func (p *ProProfile) ID() kernel.UUID          { return p.id }
func (p *ProProfile) UserID() kernel.UUID      { return p.userID }
func (p *ProProfile) DisplayName() string      { return p.displayName }
func (p *ProProfile) Status() Status           { return p.status }
func (p *ProProfile) HourlyRate() kernel.Money { return p.hourlyRate }
func (p *ProProfile) PayoutAccountRef() string { return p.payoutAccountRef }
func (p *ProProfile) SuspensionReason() string { return p.suspensionReason }
func (p *ProProfile) CreatedAt() time.Time     { return p.createdAt }
func (p *ProProfile) UpdatedAt() time.Time     { return p.updatedAt }
func (p *ProProfile) Version() int64           { return p.version }

func (p *ProProfile) Snapshot() Snapshot {
	return Snapshot{
		ID:               p.id,
		UserID:           p.userID,
		DisplayName:      p.displayName,
		Status:           p.status,
		HourlyRate:       p.hourlyRate,
		PayoutAccountRef: p.payoutAccountRef,
		SuspensionReason: p.suspensionReason,
		CreatedAt:        p.createdAt,
		UpdatedAt:        p.updatedAt,
		Version:          p.version,
	}
}

func (p *ProProfile) MarkPersisted() {
	p.version++
}

// CanReceivePayouts is true for approved pros with a payout account on file.
func (p *ProProfile) CanReceivePayouts() bool {
	return p.status == Approved && p.payoutAccountRef != ""
}

// Approve moves a pending profile to APPROVED.
func (p *ProProfile) Approve(now time.Time) error {
	return p.move(PendingApproval, Approved, "", now)
}

// Suspend blocks an approved or pending profile. A reason is required.
func (p *ProProfile) Suspend(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if p.status == PendingApproval {
		return p.move(PendingApproval, Suspended, reason, now)
	}
	return p.move(Approved, Suspended, reason, now)
}

// Unsuspend restores a suspended profile to APPROVED.
func (p *ProProfile) Unsuspend(now time.Time) error {
	return p.move(Suspended, Approved, "", now)
}

func (p *ProProfile) move(from, to Status, reason string, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.status != from {
		return errs.NewInvalidTransitionError(entityName, p.status.String(), to.String(), "")
	}
	p.status = to
	p.suspensionReason = reason
	p.updatedAt = now.UTC()
	return nil
}
