package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

const entityName = "order"

// Dispute holds what was contested and how an admin settled it.
type Dispute struct {
	Reason       string
	OpenedBy     string
	OpenedByRole Role
	OpenedAt     time.Time
	Resolution   string
}

// Timestamps records when the order entered each status. A nil field means the
// order never entered that status (or was forced past it).
type Timestamps struct {
	SubmittedAt     *time.Time
	AcceptedAt      *time.Time
	ConfirmedAt     *time.Time
	StartedAt       *time.Time
	WorkSubmittedAt *time.Time
	CompletedAt     *time.Time
	PaidAt          *time.Time
	DisputedAt      *time.Time
	CanceledAt      *time.Time
	RejectedAt      *time.Time
}

// Order is the booking aggregate root. It is the single owner of the lifecycle
// status and is mutated only through Transition and Force.
//
// Order follows these invariants:
//   - Client, pro profile and category references are valid UUIDs
//   - Scheduling window end is after its start
//   - Pricing terms are complete for the pricing mode
//   - Status is a member of the closed enum
//   - Hourly orders waiting for client approval carry the final submitted hours
//   - Disputed orders carry a reason
type Order struct {
	id           kernel.UUID
	clientID     kernel.UUID
	proProfileID kernel.UUID
	categoryID   kernel.UUID
	window       kernel.TimeWindow
	terms        Terms
	currency     string

	status Status

	finalHoursSubmitted *kernel.Hours
	approvedHours       *kernel.Hours
	totalAmount         *kernel.Money
	dispute             *Dispute
	timestamps          Timestamps

	createdAt time.Time
	updatedAt time.Time

	// version and persistedStatus are the compare-and-swap precondition used
	// when the order is written back.
	version         int64
	persistedStatus Status

	isConstructed bool
}

// NewOrder creates a booking in DRAFT status.
//
// Parameters:
//   - id: unique identifier for the order
//   - clientID: the client who books
//   - proProfileID: the professional being booked
//   - categoryID: service category reference (the catalog lives elsewhere)
//   - window: requested scheduling window
//   - terms: pricing snapshot
//   - now: creation time
//
// Example:
//
//	rate, _ := kernel.NewMoney(8000, "BRL")
//	hours := kernel.MustHours("3")
//	o, err := NewOrder(kernel.NewUUID(), clientID, proID, categoryID, window,
//	    Terms{Mode: PricingHourly, HourlyRate: &rate, EstimatedHours: &hours}, time.Now())
func NewOrder(
	id, clientID, proProfileID, categoryID kernel.UUID,
	window kernel.TimeWindow,
	terms Terms,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:          Draft,
		persistedStatus: Draft,
		createdAt:       now.UTC(),
		updatedAt:       now.UTC(),
		isConstructed:   true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setParties(clientID, proProfileID, categoryID),
		o.setWindow(window),
		o.setTerms(terms),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Snapshot is the full persisted state of an order.
type Snapshot struct {
	ID                  kernel.UUID
	ClientID            kernel.UUID
	ProProfileID        kernel.UUID
	CategoryID          kernel.UUID
	Window              kernel.TimeWindow
	Terms               Terms
	Status              Status
	FinalHoursSubmitted *kernel.Hours
	ApprovedHours       *kernel.Hours
	TotalAmount         *kernel.Money
	Dispute             *Dispute
	Timestamps          Timestamps
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64
}

// RestoreOrder rebuilds an order from storage. It re-checks the structural
// invariants but does not replay transitions.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		finalHoursSubmitted: s.FinalHoursSubmitted,
		approvedHours:       s.ApprovedHours,
		totalAmount:         s.TotalAmount,
		dispute:             s.Dispute,
		timestamps:          s.Timestamps,
		createdAt:           s.CreatedAt,
		updatedAt:           s.UpdatedAt,
		version:             s.Version,
		isConstructed:       true,
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setParties(s.ClientID, s.ProProfileID, s.CategoryID),
		o.setWindow(s.Window),
		o.setTerms(s.Terms),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}

	o.status = s.Status
	o.persistedStatus = s.Status
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID           { return o.id }
func (o *Order) ClientID() kernel.UUID     { return o.clientID }
func (o *Order) ProProfileID() kernel.UUID { return o.proProfileID }
func (o *Order) CategoryID() kernel.UUID   { return o.categoryID }
func (o *Order) Window() kernel.TimeWindow { return o.window }
func (o *Order) Terms() Terms              { return o.terms }
func (o *Order) PricingMode() PricingMode  { return o.terms.Mode }
func (o *Order) Currency() string          { return o.currency }
func (o *Order) Status() Status            { return o.status }
func (o *Order) Timestamps() Timestamps    { return o.timestamps }
func (o *Order) CreatedAt() time.Time      { return o.createdAt }
func (o *Order) UpdatedAt() time.Time      { return o.updatedAt }
func (o *Order) Version() int64            { return o.version }

// PersistedStatus is the status the order had when it was loaded or last saved.
func (o *Order) PersistedStatus() Status { return o.persistedStatus }

// FinalHoursSubmitted returns the hours the pro reported, or nil.
func (o *Order) FinalHoursSubmitted() *kernel.Hours { return o.finalHoursSubmitted }

// ApprovedHours returns the hours the client (or an admin) approved, or nil.
func (o *Order) ApprovedHours() *kernel.Hours { return o.approvedHours }

// TotalAmount is the final amount owed, set once the work is completed.
func (o *Order) TotalAmount() *kernel.Money { return o.totalAmount }

// Dispute returns a copy of the dispute data, or nil.
func (o *Order) Dispute() *Dispute {
	if o.dispute == nil {
		return nil
	}
	d := *o.dispute
	return &d
}

// EstimatedAmount is the amount a payment hold must be opened for.
func (o *Order) EstimatedAmount() (kernel.Money, error) {
	return o.terms.Estimate()
}

// FinalAmount is the amount owed after approval. Hourly bookings use the approved
// hours, falling back to the hours the pro submitted.
func (o *Order) FinalAmount() (kernel.Money, error) {
	if o.totalAmount != nil {
		return *o.totalAmount, nil
	}
	hours := o.approvedHours
	if hours == nil {
		hours = o.finalHoursSubmitted
	}
	return o.terms.Final(hours)
}

// Snapshot exports the full state for persistence.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                  o.id,
		ClientID:            o.clientID,
		ProProfileID:        o.proProfileID,
		CategoryID:          o.categoryID,
		Window:              o.window,
		Terms:               o.terms,
		Status:              o.status,
		FinalHoursSubmitted: o.finalHoursSubmitted,
		ApprovedHours:       o.approvedHours,
		TotalAmount:         o.totalAmount,
		Dispute:             o.Dispute(),
		Timestamps:          o.timestamps,
		CreatedAt:           o.createdAt,
		UpdatedAt:           o.updatedAt,
		Version:             o.version,
	}
}

// TransitionRequest is a normal-path status change.
type TransitionRequest struct {
	// Target is the status to move to.
	Target Status

	// Expected is the status the caller believes the order is in.
	Expected Status

	Actor Actor

	// FinalHours is required when a pro submits an hourly order for approval.
	FinalHours *kernel.Hours

	// ApprovedHours optionally overrides FinalHours when the order is completed.
	ApprovedHours *kernel.Hours

	// Reason is the dispute reason when opening a dispute, or the resolution
	// note when an admin resolves one.
	Reason string
}

// Transition applies a normal, role-scoped status change.
//
// This method enforces the following business rules, in order:
//   - Cancelling an order that is already CANCELED is a no-op (changed is false)
//   - The current status must equal req.Expected, otherwise a ConflictError is returned
//   - The edge (Expected -> Target) must exist for the actor's role, otherwise an
//     InvalidTransitionError is returned
//   - Target-specific data (final hours, dispute reason) must be present
//
// Returns:
//   - changed: false only for the idempotent cancel
//   - error: ConflictError, InvalidTransitionError or a validation error
//
// On success the per-transition timestamp is stamped with now.
func (o *Order) Transition(req TransitionRequest, now time.Time) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if err := errors.Join(req.Target.Validate(), req.Expected.Validate(), req.Actor.Role().Validate()); err != nil {
		return false, err
	}

	if req.Target == Canceled && o.status == Canceled && canCancel(req.Actor.Role()) {
		return false, nil
	}

	if o.status != req.Expected {
		return false, errs.NewStatusConflictError(entityName, o.id.String(), req.Expected.String(), o.status.String())
	}

	if !CanTransition(req.Actor.Role(), req.Expected, req.Target) {
		return false, errs.NewInvalidTransitionError(
			entityName, req.Expected.String(), req.Target.String(), req.Actor.Role().String(),
		)
	}

	if err := o.applyTransitionData(req, now); err != nil {
		return false, err
	}

	o.moveTo(req.Target, now)
	return true, nil
}

// Confirm is the system edge taken when the payment hold is authorized.
func (o *Order) Confirm(now time.Time) error {
	_, err := o.Transition(TransitionRequest{Target: Confirmed, Expected: Accepted, Actor: SystemActor()}, now)
	return err
}

// MarkPaid is the system edge taken when the payment is captured.
func (o *Order) MarkPaid(now time.Time) error {
	_, err := o.Transition(TransitionRequest{Target: Paid, Expected: Completed, Actor: SystemActor()}, now)
	return err
}

// Force moves the order to any valid status, bypassing the adjacency table.
// Forcing to the current status changes nothing and reports changed=false.
//
// Returns the status before the call, whether anything changed, and an error
// when target is not a member of the closed enum or the recorded hours do not
// price. Forcing an hourly order with no hours to COMPLETED or PAID succeeds
// with TotalAmount left nil; callers check it.
func (o *Order) Force(target Status, now time.Time) (Status, bool, error) {
	if err := o.Validate(); err != nil {
		return Unknown, false, err
	}
	if err := target.Validate(); err != nil {
		return Unknown, false, err
	}

	previous := o.status
	if previous == target {
		return previous, false, nil
	}

	if target == Completed || target == Paid {
		if err := o.settleTotal(); err != nil && !errors.Is(err, errs.ErrValueIsRequired) {
			return Unknown, false, err
		}
	}
	o.moveTo(target, now)
	return previous, true, nil
}

// MarkPersisted is called by the repository after a successful compare-and-swap write.
func (o *Order) MarkPersisted() {
	o.version++
	o.persistedStatus = o.status
}

func (o *Order) applyTransitionData(req TransitionRequest, now time.Time) error {
	switch req.Target {
	case AwaitingClientApproval:
		if req.FinalHours != nil {
			if err := req.FinalHours.Validate(); err != nil {
				return err
			}
			h := *req.FinalHours
			o.finalHoursSubmitted = &h
		}
		if o.needsHours() && o.finalHoursSubmitted == nil {
			return errs.NewValueIsRequiredError("finalHours")
		}

	case Completed:
		if req.ApprovedHours != nil {
			if err := req.ApprovedHours.Validate(); err != nil {
				return err
			}
			h := *req.ApprovedHours
			o.approvedHours = &h
		}
		if o.approvedHours == nil && o.finalHoursSubmitted != nil {
			h := *o.finalHoursSubmitted
			o.approvedHours = &h
		}
		if o.needsHours() && o.approvedHours == nil {
			return errs.NewValueIsRequiredError("approvedHours")
		}
		if err := o.computeTotal(); err != nil {
			return err
		}
		if req.Expected == Disputed {
			o.resolveDispute(req.Reason)
		}

	case Disputed:
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			return errs.NewValueIsRequiredError("reason")
		}
		o.dispute = &Dispute{
			Reason:       reason,
			OpenedBy:     req.Actor.IDString(),
			OpenedByRole: req.Actor.Role(),
			OpenedAt:     now.UTC(),
		}

	case Canceled:
		if req.Expected == Disputed {
			o.resolveDispute(req.Reason)
		}
	}
	return nil
}

func (o *Order) needsHours() bool {
	return o.terms.QuotedAmount == nil
}

func (o *Order) computeTotal() error {
	total, err := o.terms.Final(o.approvedHours)
	if err != nil {
		return err
	}
	o.totalAmount = &total
	return nil
}

// settleTotal fills in the total for forced completion. An hourly order with no
// hours on record returns ErrValueIsRequired and keeps TotalAmount nil.
func (o *Order) settleTotal() error {
	if o.totalAmount != nil {
		return nil
	}
	if o.approvedHours == nil && o.finalHoursSubmitted != nil {
		h := *o.finalHoursSubmitted
		o.approvedHours = &h
	}
	return o.computeTotal()
}

func (o *Order) resolveDispute(note string) {
	if o.dispute == nil {
		o.dispute = &Dispute{}
	}
	o.dispute.Resolution = strings.TrimSpace(note)
}

func (o *Order) moveTo(target Status, now time.Time) {
	t := now.UTC()
	switch target {
	case PendingProConfirmation:
		o.timestamps.SubmittedAt = &t
	case Accepted:
		o.timestamps.AcceptedAt = &t
	case Confirmed:
		o.timestamps.ConfirmedAt = &t
	case InProgress:
		o.timestamps.StartedAt = &t
	case AwaitingClientApproval:
		o.timestamps.WorkSubmittedAt = &t
	case Completed:
		o.timestamps.CompletedAt = &t
	case Paid:
		o.timestamps.PaidAt = &t
	case Disputed:
		o.timestamps.DisputedAt = &t
	case Canceled:
		o.timestamps.CanceledAt = &t
	case Rejected:
		o.timestamps.RejectedAt = &t
	case Draft, Unknown:
	}
	o.status = target
	o.updatedAt = t
}

func canCancel(role Role) bool {
	for e := range adjacency[role] {
		if e.to == Canceled {
			return true
		}
	}
	return false
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setParties(clientID, proProfileID, categoryID kernel.UUID) error {
	var err error
	if clientID.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("clientId"))
	}
	if proProfileID.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("proProfileId"))
	}
	if categoryID.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("categoryId"))
	}
	if err != nil {
		return err
	}
	o.clientID = clientID
	o.proProfileID = proProfileID
	o.categoryID = categoryID
	return nil
}

func (o *Order) setWindow(window kernel.TimeWindow) error {
	if err := window.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("scheduledWindow", err)
	}
	o.window = window
	return nil
}

func (o *Order) setTerms(terms Terms) error {
	if err := terms.Validate(); err != nil {
		return fmt.Errorf("pricing terms: %w", err)
	}
	o.terms = terms
	o.currency = terms.Currency()
	return nil
}
