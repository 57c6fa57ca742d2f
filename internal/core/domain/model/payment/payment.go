package payment

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

const entityName = "payment"

// CaptureClaimTTL bounds how long a capture claim blocks other callers. A claim
// older than this is treated as abandoned.
const CaptureClaimTTL = 2 * time.Minute

var (
	// ErrPaymentIsNotConstructed is returned when using a Payment built without NewPayment or RestorePayment.
	ErrPaymentIsNotConstructed = errors.New("Payment must be created via NewPayment constructor")

	// ErrEventIDIsRequired is returned for provider events without an id.
	ErrEventIDIsRequired = errs.NewValueIsRequiredError("eventId")
)

// Payment is the local record of one hold at the payment gateway for one order.
//
// Business rules:
//   - captured ≤ authorized ≤ estimated at all times
//   - status only moves forward along the payment graph
//   - each provider event id is applied once
//   - an order has at most one active (not FAILED or CANCELLED) payment
type Payment struct {
	id                kernel.UUID
	orderID           kernel.UUID
	provider          string
	status            Status
	estimated         kernel.Money
	authorized        kernel.Money
	captured          kernel.Money
	refunded          kernel.Money
	providerReference string
	checkoutURL       string
	failureReason     string
	appliedEventIDs   []string
	captureClaimedAt  *time.Time
	createdAt         time.Time
	updatedAt         time.Time
	version           int64
	guard             guard.ConstructorGuard
}

// NewPayment creates a payment in CREATED status for the estimated amount.
// Authorized and captured amounts start at zero in the same currency.
func NewPayment(id, orderID kernel.UUID, provider string, estimated kernel.Money, now time.Time) (*Payment, error) {
	p := &Payment{
		status:          Created,
		appliedEventIDs: make([]string, 0),
		createdAt:       now.UTC(),
		updatedAt:       now.UTC(),
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setIDs(id, orderID),
		p.setProvider(provider),
		p.setEstimated(estimated),
	); err != nil {
		return nil, err
	}

	zero, _ := kernel.ZeroMoney(estimated.Currency())
	p.authorized, p.captured, p.refunded = zero, zero, zero
	return p, nil
}

// Snapshot is the persisted state of a payment.
type Snapshot struct {
	ID                kernel.UUID
	OrderID           kernel.UUID
	Provider          string
	Status            Status
	Estimated         kernel.Money
	Authorized        kernel.Money
	Captured          kernel.Money
	Refunded          kernel.Money
	ProviderReference string
	CheckoutURL       string
	FailureReason     string
	AppliedEventIDs   []string
	CaptureClaimedAt  *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
}

// RestorePayment rebuilds a payment from storage and re-checks the amount invariant.
func RestorePayment(s Snapshot) (*Payment, error) {
	p := &Payment{
		providerReference: s.ProviderReference,
		checkoutURL:       s.CheckoutURL,
		failureReason:     s.FailureReason,
		appliedEventIDs:   slices.Clone(s.AppliedEventIDs),
		captureClaimedAt:  s.CaptureClaimedAt,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		version:           s.Version,
		guard:             guard.NewConstructorGuard(),
	}
	if p.appliedEventIDs == nil {
		p.appliedEventIDs = make([]string, 0)
	}

	if err := errors.Join(
		p.setIDs(s.ID, s.OrderID),
		p.setProvider(s.Provider),
		p.setEstimated(s.Estimated),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	p.status = s.Status
	p.authorized, p.captured, p.refunded = s.Authorized, s.Captured, s.Refunded

	if err := p.checkAmounts(p.authorized, p.captured, p.refunded); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Payment) Validate() error {
	if p == nil {
		return ErrPaymentIsNotConstructed
	}
	return p.guard.Validate(ErrPaymentIsNotConstructed)
}

func (p *Payment) ID() kernel.UUID                { return p.id }
func (p *Payment) OrderID() kernel.UUID           { return p.orderID }
func (p *Payment) Provider() string               { return p.provider }
func (p *Payment) Status() Status                 { return p.status }
func (p *Payment) AmountEstimated() kernel.Money  { return p.estimated }
func (p *Payment) AmountAuthorized() kernel.Money { return p.authorized }
func (p *Payment) AmountCaptured() kernel.Money   { return p.captured }
func (p *Payment) AmountRefunded() kernel.Money   { return p.refunded }
func (p *Payment) Currency() string               { return p.estimated.Currency() }
func (p *Payment) ProviderReference() string      { return p.providerReference }
func (p *Payment) CheckoutURL() string            { return p.checkoutURL }
func (p *Payment) FailureReason() string          { return p.failureReason }
func (p *Payment) CreatedAt() time.Time           { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time           { return p.updatedAt }
func (p *Payment) Version() int64                 { return p.version }

// CaptureClaimedAt is set while one caller holds the right to call the gateway's capture.
func (p *Payment) CaptureClaimedAt() *time.Time { return p.captureClaimedAt }

// AppliedEventIDs returns the provider event ids in the order they were applied.
func (p *Payment) AppliedEventIDs() []string {
	return slices.Clone(p.appliedEventIDs)
}

// HasApplied reports whether a provider event id was already applied.
func (p *Payment) HasApplied(eventID string) bool {
	return slices.Contains(p.appliedEventIDs, eventID)
}

func (p *Payment) IsActive() bool {
	return p.status.IsActive()
}

// Snapshot exports the full state for persistence.
func (p *Payment) Snapshot() Snapshot {
	return Snapshot{
		ID:                p.id,
		OrderID:           p.orderID,
		Provider:          p.provider,
		Status:            p.status,
		Estimated:         p.estimated,
		Authorized:        p.authorized,
		Captured:          p.captured,
		Refunded:          p.refunded,
		ProviderReference: p.providerReference,
		CheckoutURL:       p.checkoutURL,
		FailureReason:     p.failureReason,
		AppliedEventIDs:   p.AppliedEventIDs(),
		CaptureClaimedAt:  p.captureClaimedAt,
		CreatedAt:         p.createdAt,
		UpdatedAt:         p.updatedAt,
		Version:           p.version,
	}
}

// MarkPersisted is called by the repository after a successful compare-and-swap write.
func (p *Payment) MarkPersisted() {
	p.version++
}

// AttachReference stores the gateway reference before the hold is confirmed, so a
// retried CreatePreauth reuses the same provider-side payment.
func (p *Payment) AttachReference(reference string, now time.Time) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return errs.NewValueIsRequiredError("providerReference")
	}
	if p.providerReference != "" && p.providerReference != reference {
		return errs.NewValueIsInvalidErrorWithCause(
			"providerReference",
			fmt.Errorf("payment already bound to %s", p.providerReference),
		)
	}
	p.providerReference = reference
	p.updatedAt = now.UTC()
	return nil
}

// Hold is the gateway's answer to opening a hold.
type Hold struct {
	Reference   string
	Status      Status
	Authorized  kernel.Money
	CheckoutURL string
}

// ApplyHold records the outcome of opening a hold. The result must be AUTHORIZED
// (with a reference and an amount not above the estimate) or REQUIRES_ACTION. A
// REQUIRES_ACTION hold may have no provider reference yet when the payer still
// has to complete checkout.
func (p *Payment) ApplyHold(h Hold, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if h.Status != Authorized && h.Status != RequiresAction {
		return errs.NewValueIsInvalidErrorWithCause("holdStatus", fmt.Errorf("%s is not a hold outcome", h.Status))
	}
	if p.status != h.Status && !p.status.CanMoveTo(h.Status) {
		return errs.NewInvalidTransitionError(entityName, p.status.String(), h.Status.String(), "")
	}
	if h.Reference != "" || h.Status == Authorized {
		if err := p.AttachReference(h.Reference, now); err != nil {
			return err
		}
	}

	if h.Status == Authorized {
		if err := p.checkAmounts(h.Authorized, p.captured, p.refunded); err != nil {
			return err
		}
		p.authorized = h.Authorized
	}
	if h.CheckoutURL != "" {
		p.checkoutURL = h.CheckoutURL
	}
	p.status = h.Status
	p.updatedAt = now.UTC()
	return nil
}

// ClaimCapture reserves the gateway capture call for one caller. The claim is
// persisted with the usual compare-and-swap, so of two callers racing on the
// same version only one commits. A live claim younger than CaptureClaimTTL
// fails later callers with ErrConflict.
func (p *Payment) ClaimCapture(now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.status != Authorized {
		return errs.NewInvalidTransitionError(entityName, p.status.String(), Captured.String(), "")
	}
	if p.captureClaimedAt != nil && now.Before(p.captureClaimedAt.Add(CaptureClaimTTL)) {
		return errs.NewConflictError(entityName, p.id.String())
	}
	t := now.UTC()
	p.captureClaimedAt = &t
	p.updatedAt = t
	return nil
}

// ReleaseCapture drops the claim after a capture attempt that changed nothing
// at the provider.
func (p *Payment) ReleaseCapture(now time.Time) {
	if p.captureClaimedAt == nil {
		return
	}
	p.captureClaimedAt = nil
	p.updatedAt = now.UTC()
}

// Capture records a successful capture. The amount must not exceed what was authorized.
func (p *Payment) Capture(amount kernel.Money, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.status != Authorized {
		return errs.NewInvalidTransitionError(entityName, p.status.String(), Captured.String(), "")
	}
	if amount.IsZero() {
		return errs.NewValueIsRequiredError("captureAmount")
	}
	if err := p.checkAmounts(p.authorized, amount, p.refunded); err != nil {
		return err
	}
	p.captured = amount
	p.status = Captured
	p.captureClaimedAt = nil
	p.updatedAt = now.UTC()
	return nil
}

// Fail marks the payment FAILED after a permanent provider error.
func (p *Payment) Fail(reason string, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !p.status.CanMoveTo(Failed) {
		return errs.NewInvalidTransitionError(entityName, p.status.String(), Failed.String(), "")
	}
	p.status = Failed
	p.failureReason = strings.TrimSpace(reason)
	p.captureClaimedAt = nil
	p.updatedAt = now.UTC()
	return nil
}

// Cancel releases a hold that was never captured.
func (p *Payment) Cancel(now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !p.status.CanMoveTo(Cancelled) {
		return errs.NewInvalidTransitionError(entityName, p.status.String(), Cancelled.String(), "")
	}
	p.status = Cancelled
	p.captureClaimedAt = nil
	p.updatedAt = now.UTC()
	return nil
}

// Refund records a full refund of a captured payment.
func (p *Payment) Refund(now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.status != Captured {
		return errs.NewInvalidTransitionError(entityName, p.status.String(), Refunded.String(), "")
	}
	p.refunded = p.captured
	p.status = Refunded
	p.updatedAt = now.UTC()
	return nil
}

// Event is a status report from the provider, delivered by webhook or fetched
// by reconciliation. Nil amounts mean "not reported".
type Event struct {
	ID            string
	Status        Status
	Reference     string
	Authorized    *kernel.Money
	Captured      *kernel.Money
	Refunded      *kernel.Money
	FailureReason string
}

// EventOutcome tells the caller what ApplyEvent did.
type EventOutcome struct {
	// Duplicate is true when the event id was applied before; nothing changed.
	Duplicate bool

	// StatusChanged is true when the payment moved along the graph.
	StatusChanged bool

	// Previous is the status before the event.
	Previous Status
}

// ApplyEvent merges a provider event.
//
// Rules:
//   - an already applied event id is a no-op
//   - amounts must keep captured ≤ authorized ≤ estimated, otherwise the event is rejected
//     and not recorded
//   - a status that is not reachable from the current one (a late or out-of-order event)
//     is recorded but changes nothing
//   - a capture reported without a prior authorization implies an authorization of the
//     captured amount
func (p *Payment) ApplyEvent(e Event, now time.Time) (EventOutcome, error) {
	outcome := EventOutcome{Previous: p.status}
	if err := p.Validate(); err != nil {
		return outcome, err
	}

	e.ID = strings.TrimSpace(e.ID)
	if e.ID == "" {
		return outcome, ErrEventIDIsRequired
	}
	if p.HasApplied(e.ID) {
		outcome.Duplicate = true
		return outcome, nil
	}
	if err := e.Status.Validate(); err != nil {
		return outcome, err
	}
	if err := p.checkCurrency(e); err != nil {
		return outcome, err
	}

	moves := e.Status != p.status && p.status.CanMoveTo(e.Status)
	if moves || e.Status == p.status {
		authorized, captured, refunded := p.mergedAmounts(e)
		if err := p.checkAmounts(authorized, captured, refunded); err != nil {
			return outcome, err
		}
		p.authorized, p.captured, p.refunded = authorized, captured, refunded

		if e.Reference != "" && p.providerReference == "" {
			p.providerReference = e.Reference
		}
		if moves {
			p.status = e.Status
			p.captureClaimedAt = nil
			outcome.StatusChanged = true
			if e.Status == Failed {
				p.failureReason = strings.TrimSpace(e.FailureReason)
			}
			if e.Status == Refunded && p.refunded.IsZero() {
				p.refunded = p.captured
			}
		}
	}

	p.appliedEventIDs = append(p.appliedEventIDs, e.ID)
	p.updatedAt = now.UTC()
	return outcome, nil
}

func (p *Payment) mergedAmounts(e Event) (kernel.Money, kernel.Money, kernel.Money) {
	authorized, captured, refunded := p.authorized, p.captured, p.refunded
	if e.Authorized != nil {
		authorized = *e.Authorized
	}
	if e.Captured != nil {
		captured = *e.Captured
	}
	if e.Refunded != nil {
		refunded = *e.Refunded
	}
	if e.Status == Captured && authorized.IsZero() {
		authorized = captured
	}
	return authorized, captured, refunded
}

func (p *Payment) checkCurrency(e Event) error {
	for _, m := range []*kernel.Money{e.Authorized, e.Captured, e.Refunded} {
		if m != nil && m.Currency() != p.Currency() {
			return errs.NewValueIsInvalidErrorWithCause("currency", kernel.ErrCurrencyMismatch)
		}
	}
	return nil
}

func (p *Payment) checkAmounts(authorized, captured, refunded kernel.Money) error {
	if c, err := authorized.Cmp(p.estimated); err != nil || c > 0 {
		return errs.NewValueIsOutOfRangeErrorWithCause(
			"amountAuthorized", authorized.Cents(), 0, p.estimated.Cents(), err,
		)
	}
	if c, err := captured.Cmp(authorized); err != nil || c > 0 {
		return errs.NewValueIsOutOfRangeErrorWithCause(
			"amountCaptured", captured.Cents(), 0, authorized.Cents(), err,
		)
	}
	if c, err := refunded.Cmp(captured); err != nil || c > 0 {
		return errs.NewValueIsOutOfRangeErrorWithCause(
			"amountRefunded", refunded.Cents(), 0, captured.Cents(), err,
		)
	}
	return nil
}

func (p *Payment) setIDs(id, orderID kernel.UUID) error {
	var err error
	if id.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("paymentId"))
	}
	if orderID.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("orderId"))
	}
	if err != nil {
		return err
	}
	p.id, p.orderID = id, orderID
	return nil
}

func (p *Payment) setProvider(provider string) error {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return errs.NewValueIsRequiredError("provider")
	}
	p.provider = provider
	return nil
}

func (p *Payment) setEstimated(estimated kernel.Money) error {
	if err := estimated.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("amountEstimated", err)
	}
	if estimated.IsZero() {
		return errs.NewValueIsOutOfRangeError("amountEstimated", 0, 1, "unbounded")
	}
	p.estimated = estimated
	return nil
}
