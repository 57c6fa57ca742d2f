package payout

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

const entityName = "payout"

var (
	// ErrPayoutIsNotConstructed is returned when using a Payout built without NewPayout or RestorePayout.
	ErrPayoutIsNotConstructed = errors.New("Payout must be created via NewPayout constructor")

	// ErrNoEarnings is returned when a payout would contain nothing.
	ErrNoEarnings = errs.NewValueIsRequiredError("earnings")
)

// Payout is an aggregated transfer of a professional's earnings.
//
// Key responsibilities:
//   - Owning its earnings exclusively (claimed at construction)
//   - Keeping amount equal to the sum of the earnings' net amounts
//   - Tracking send attempts and provider events
//
// Example usage:
//
//	p, err := NewPayout(kernel.NewUUID(), proID, "payouts-api", unclaimed, time.Now())
//	if err != nil {
//	    return err
//	}
//	// hand p to the provider, then:
//	err = p.MarkSent(providerRef, time.Now())
type Payout struct {
	id                kernel.UUID
	proProfileID      kernel.UUID
	provider          string
	amount            kernel.Money
	status            Status
	providerReference string
	failureReason     string
	attempts          int
	appliedEventIDs   []string
	earnings          []*Earning
	createdAt         time.Time
	updatedAt         time.Time
	version           int64
	guard             guard.ConstructorGuard
}

// NewPayout creates a payout in CREATED status and claims every given earning.
//
// Business rules applied:
//   - At least one earning is required
//   - Every earning belongs to proProfileID, shares one currency and is unclaimed
//   - amount = sum(net)
func NewPayout(id, proProfileID kernel.UUID, provider string, earnings []*Earning, now time.Time) (*Payout, error) {
	p := &Payout{
		status:          Created,
		appliedEventIDs: make([]string, 0),
		createdAt:       now.UTC(),
		updatedAt:       now.UTC(),
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		requireID("payoutId", id),
		requireID("proProfileId", proProfileID),
		p.setProvider(provider),
	); err != nil {
		return nil, err
	}
	p.id, p.proProfileID = id, proProfileID

	for _, e := range earnings {
		if e != nil && e.IsClaimed() {
			return nil, fmt.Errorf("%w: earning %s", ErrEarningAlreadyClaimed, e.ID())
		}
	}
	if err := p.setEarnings(earnings); err != nil {
		return nil, err
	}
	for _, e := range p.earnings {
		if err := e.Claim(id); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Snapshot is the persisted state of a payout.
type Snapshot struct {
	ID                kernel.UUID
	ProProfileID      kernel.UUID
	Provider          string
	Amount            kernel.Money
	Status            Status
	ProviderReference string
	FailureReason     string
	Attempts          int
	AppliedEventIDs   []string
	Earnings          []*Earning
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
}

// RestorePayout rebuilds a payout from storage. The stored amount must still equal
// the sum of the earnings it owns.
func RestorePayout(s Snapshot) (*Payout, error) {
	p := &Payout{
		providerReference: s.ProviderReference,
		failureReason:     s.FailureReason,
		attempts:          s.Attempts,
		appliedEventIDs:   slices.Clone(s.AppliedEventIDs),
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		version:           s.Version,
		guard:             guard.NewConstructorGuard(),
	}
	if p.appliedEventIDs == nil {
		p.appliedEventIDs = make([]string, 0)
	}

	if err := errors.Join(
		requireID("payoutId", s.ID),
		requireID("proProfileId", s.ProProfileID),
		p.setProvider(s.Provider),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	p.id, p.proProfileID, p.status = s.ID, s.ProProfileID, s.Status

	if err := p.setEarnings(s.Earnings); err != nil {
		return nil, err
	}
	for _, e := range p.earnings {
		if owner := e.PayoutID(); owner == nil || !owner.IsEqual(p.id) {
			return nil, fmt.Errorf("%w: earning %s", ErrEarningAlreadyClaimed, e.ID())
		}
	}
	if !p.amount.IsEqual(s.Amount) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"amount",
			fmt.Errorf("stored %s differs from earnings total %s", s.Amount, p.amount),
		)
	}
	return p, nil
}

func (p *Payout) Validate() error {
	if p == nil {
		return ErrPayoutIsNotConstructed
	}
	return p.guard.Validate(ErrPayoutIsNotConstructed)
}

func (p *Payout) ID() kernel.UUID           { return p.id }
func (p *Payout) ProProfileID() kernel.UUID { return p.proProfileID }
func (p *Payout) Provider() string          { return p.provider }
func (p *Payout) Amount() kernel.Money      { return p.amount }
func (p *Payout) Currency() string          { return p.amount.Currency() }
func (p *Payout) Status() Status            { return p.status }
func (p *Payout) ProviderReference() string { return p.providerReference }
func (p *Payout) FailureReason() string     { return p.failureReason }
func (p *Payout) Attempts() int             { return p.attempts }
func (p *Payout) CreatedAt() time.Time      { return p.createdAt }
func (p *Payout) UpdatedAt() time.Time      { return p.updatedAt }
func (p *Payout) Version() int64            { return p.version }

// Earnings returns the owned earnings.
func (p *Payout) Earnings() []*Earning {
	return slices.Clone(p.earnings)
}

func (p *Payout) AppliedEventIDs() []string {
	return slices.Clone(p.appliedEventIDs)
}

func (p *Payout) HasApplied(eventID string) bool {
	return slices.Contains(p.appliedEventIDs, eventID)
}

func (p *Payout) Snapshot() Snapshot {
	return Snapshot{
		ID:                p.id,
		ProProfileID:      p.proProfileID,
		Provider:          p.provider,
		Amount:            p.amount,
		Status:            p.status,
		ProviderReference: p.providerReference,
		FailureReason:     p.failureReason,
		Attempts:          p.attempts,
		AppliedEventIDs:   p.AppliedEventIDs(),
		Earnings:          p.Earnings(),
		CreatedAt:         p.createdAt,
		UpdatedAt:         p.updatedAt,
		Version:           p.version,
	}
}

// MarkPersisted is called by the repository after a successful compare-and-swap write.
func (p *Payout) MarkPersisted() {
	p.version++
}

// MarkSent records a successful hand-off to the provider. Allowed from CREATED and
// from FAILED (resend).
func (p *Payout) MarkSent(reference string, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !p.status.CanSend() {
		return errs.NewInvalidTransitionError(entityName, p.status.String(), Sent.String(), "")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return errs.NewValueIsRequiredError("providerReference")
	}
	p.providerReference = reference
	p.failureReason = ""
	p.attempts++
	p.status = Sent
	p.updatedAt = now.UTC()
	return nil
}

// FailSend records a permanent provider rejection of a send attempt.
func (p *Payout) FailSend(reason string, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !p.status.CanSend() {
		return errs.NewInvalidTransitionError(entityName, p.status.String(), Failed.String(), "")
	}
	p.attempts++
	p.status = Failed
	p.failureReason = strings.TrimSpace(reason)
	p.updatedAt = now.UTC()
	return nil
}

// Event is a settlement report from the payout provider.
type Event struct {
	ID            string
	Status        Status
	FailureReason string
}

// EventOutcome tells the caller what ApplyEvent did.
type EventOutcome struct {
	Duplicate     bool
	StatusChanged bool
	Previous      Status
}

// ApplyEvent merges a provider event. Only SENT ──> SETTLED and SENT ──> FAILED are
// applied; anything else is recorded without effect. Repeated event ids are no-ops.
func (p *Payout) ApplyEvent(e Event, now time.Time) (EventOutcome, error) {
	outcome := EventOutcome{Previous: p.status}
	if err := p.Validate(); err != nil {
		return outcome, err
	}
	e.ID = strings.TrimSpace(e.ID)
	if e.ID == "" {
		return outcome, errs.NewValueIsRequiredError("eventId")
	}
	if p.HasApplied(e.ID) {
		outcome.Duplicate = true
		return outcome, nil
	}
	if err := e.Status.Validate(); err != nil {
		return outcome, err
	}

	if p.status == Sent && (e.Status == Settled || e.Status == Failed) {
		p.status = e.Status
		if e.Status == Failed {
			p.failureReason = strings.TrimSpace(e.FailureReason)
		}
		outcome.StatusChanged = true
	}

	p.appliedEventIDs = append(p.appliedEventIDs, e.ID)
	p.updatedAt = now.UTC()
	return outcome, nil
}

func (p *Payout) setProvider(provider string) error {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return errs.NewValueIsRequiredError("provider")
	}
	p.provider = provider
	return nil
}

func (p *Payout) setEarnings(earnings []*Earning) error {
	if len(earnings) == 0 {
		return ErrNoEarnings
	}

	seen := make(map[kernel.UUID]struct{}, len(earnings))
	var total kernel.Money
	for i, e := range earnings {
		if err := e.Validate(); err != nil {
			return err
		}
		if !e.ProProfileID().IsEqual(p.proProfileID) {
			return errs.NewValueIsInvalidErrorWithCause(
				"earnings",
				fmt.Errorf("earning %s belongs to pro %s", e.ID(), e.ProProfileID()),
			)
		}
		if _, dup := seen[e.ID()]; dup {
			return errs.NewValueIsInvalidErrorWithCause("earnings", fmt.Errorf("earning %s listed twice", e.ID()))
		}
		seen[e.ID()] = struct{}{}

		if i == 0 {
			total = e.Net()
			continue
		}
		sum, err := total.Add(e.Net())
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause("earnings", err)
		}
		total = sum
	}

	p.earnings = slices.Clone(earnings)
	p.amount = total
	return nil
}
