// Package audit defines the append-only audit trail. Every admin mutation, every
// order status change and every terminal payment or payout failure produces
// exactly one Entry, written in the same transaction as the change itself.
package audit

import (
	"errors"
	"maps"
	"strings"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/pkg/errs"
)

// EventType classifies an entry.
type EventType string

const (
	OrderCreated         EventType = "ORDER_CREATED"
	OrderStatusChanged   EventType = "ORDER_STATUS_CHANGED"
	OrderStatusForced    EventType = "ORDER_STATUS_FORCED"
	OrderStatusForceNoop EventType = "ORDER_STATUS_FORCE_NOOP"

	PaymentAuthorized    EventType = "PAYMENT_AUTHORIZED"
	PaymentCaptured      EventType = "PAYMENT_CAPTURED"
	PaymentFailed        EventType = "PAYMENT_FAILED"
	PaymentRefunded      EventType = "PAYMENT_REFUNDED"
	PaymentCancelled     EventType = "PAYMENT_CANCELLED"
	PaymentEventRecorded EventType = "PAYMENT_EVENT_RECORDED"

	PayoutCreated EventType = "PAYOUT_CREATED"
	PayoutSent    EventType = "PAYOUT_SENT"
	PayoutFailed  EventType = "PAYOUT_FAILED"
	PayoutResent  EventType = "PAYOUT_RESENT"
	PayoutSettled EventType = "PAYOUT_SETTLED"

	ProRegistered  EventType = "PRO_REGISTERED"
	ProApproved    EventType = "PRO_APPROVED"
	ProSuspended   EventType = "PRO_SUSPENDED"
	ProUnsuspended EventType = "PRO_UNSUSPENDED"
)

// Entity types referenced by entries.
const (
	EntityOrder      = "order"
	EntityPayment    = "payment"
	EntityPayout     = "payout"
	EntityProProfile = "proProfile"
)

// Metadata keys shared by status entries.
const (
	KeyPreviousStatus = "previousStatus"
	KeyNewStatus      = "newStatus"
)

// SystemActorID is recorded when no person triggered the change.
const SystemActorID = "system"

var ErrEntryIsNotConstructed = errors.New("audit Entry must be created via NewEntry constructor")

// Record is the input for NewEntry.
type Record struct {
	EventType  EventType
	ActorID    string
	ActorRole  string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
}

// Entry is one immutable audit row. ExportedAt is the only field that changes
// after the row is written, when the row is copied to the archive.
type Entry struct {
	id         kernel.UUID
	eventType  EventType
	actorID    string
	actorRole  string
	action     string
	entityType string
	entityID   string
	metadata   map[string]any
	createdAt  time.Time
	exportedAt *time.Time

	isConstructed bool
}

// NewEntry validates a record and stamps it.
func NewEntry(id kernel.UUID, r Record, now time.Time) (*Entry, error) {
	return RestoreEntry(id, r, now.UTC(), nil)
}

// RestoreEntry rebuilds an entry from storage.
func RestoreEntry(id kernel.UUID, r Record, createdAt time.Time, exportedAt *time.Time) (*Entry, error) {
	var err error
	if id.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("auditId"))
	}
	if strings.TrimSpace(string(r.EventType)) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("eventType"))
	}
	if strings.TrimSpace(r.ActorID) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("actorId"))
	}
	if strings.TrimSpace(r.EntityType) == "" || strings.TrimSpace(r.EntityID) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("entity"))
	}
	if err != nil {
		return nil, err
	}

	action := r.Action
	if action == "" {
		action = strings.ToLower(string(r.EventType))
	}
	metadata := maps.Clone(r.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}

	return &Entry{
		id:            id,
		eventType:     r.EventType,
		actorID:       r.ActorID,
		actorRole:     r.ActorRole,
		action:        action,
		entityType:    r.EntityType,
		entityID:      r.EntityID,
		metadata:      metadata,
		createdAt:     createdAt,
		exportedAt:    exportedAt,
		isConstructed: true,
	}, nil
}

func (e *Entry) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEntryIsNotConstructed
	}
	return nil
}

func (e *Entry) ID() kernel.UUID        { return e.id }
func (e *Entry) EventType() EventType   { return e.eventType }
func (e *Entry) ActorID() string        { return e.actorID }
func (e *Entry) ActorRole() string      { return e.actorRole }
func (e *Entry) Action() string         { return e.action }
func (e *Entry) EntityType() string     { return e.entityType }
func (e *Entry) EntityID() string       { return e.entityID }
func (e *Entry) CreatedAt() time.Time   { return e.createdAt }
func (e *Entry) ExportedAt() *time.Time { return e.exportedAt }

// Metadata returns a copy of the entry metadata.
func (e *Entry) Metadata() map[string]any {
	return maps.Clone(e.metadata)
}

// MetadataString returns a metadata value as a string, or "".
func (e *Entry) MetadataString(key string) string {
	s, _ := e.metadata[key].(string)
	return s
}
