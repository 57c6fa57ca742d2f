package queries

import (
	"errors"
	"strings"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrGetAuditTrailQueryIsNotConstructed = errors.New(
	"GetAuditTrailQuery must be created via NewGetAuditTrailQuery constructor",
)

// DefaultAuditTrailLimit caps a trail when the caller does not pass a limit.
const DefaultAuditTrailLimit = 200

// GetAuditTrailQuery lists the audit rows of one entity in the order they were
// written. Admin only.
type GetAuditTrailQuery struct {
	entityID string
	limit    int
	guard    guard.ConstructorGuard
}

func NewGetAuditTrailQuery(entityID string, limit int, actor order.Actor) (GetAuditTrailQuery, error) {
	if actor.Role() != order.RoleAdmin {
		return GetAuditTrailQuery{}, errs.NewForbiddenError(actor.IDString(), "audit trail", entityID)
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return GetAuditTrailQuery{}, errs.NewValueIsRequiredError("entityId")
	}
	if limit == 0 {
		limit = DefaultAuditTrailLimit
	}
	if limit < 0 || limit > 1000 {
		return GetAuditTrailQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, 1000)
	}
	return GetAuditTrailQuery{entityID: entityID, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetAuditTrailQuery) Validate() error {
	return q.guard.Validate(ErrGetAuditTrailQueryIsNotConstructed)
}

func (q GetAuditTrailQuery) EntityID() string { return q.entityID }
func (q GetAuditTrailQuery) Limit() int       { return q.limit }

type AuditTrailEntry struct {
	ID         kernel.UUID
	EventType  string
	ActorID    string
	ActorRole  string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
	CreatedAt  time.Time
}
