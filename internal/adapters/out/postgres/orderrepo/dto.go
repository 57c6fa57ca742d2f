// Package orderrepo persists the booking aggregate. Statuses are stored by name so
// the table stays readable from SQL; every write after the insert is a
// compare-and-swap on (id, status, version).
package orderrepo

import (
	"time"

	"booking/internal/adapters/out/postgres/pgtypes"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientID     uuid.UUID `gorm:"type:uuid;index"`
	ProProfileID uuid.UUID `gorm:"type:uuid;index"`
	CategoryID   uuid.UUID `gorm:"type:uuid"`

	WindowStart time.Time
	WindowEnd   time.Time

	PricingMode       string `gorm:"size:16"`
	Currency          string `gorm:"size:3"`
	HourlyRateCents   *int64
	QuotedAmountCents *int64
	EstimatedHours    *string `gorm:"size:16"`

	Status              string  `gorm:"size:32;index"`
	FinalHoursSubmitted *string `gorm:"size:16"`
	ApprovedHours       *string `gorm:"size:16"`
	TotalAmountCents    *int64

	Dispute    DisputeDTO    `gorm:"embedded;embeddedPrefix:dispute_"`
	Timestamps TimestampsDTO `gorm:"embedded"`

	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
	Version   int64
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// DisputeDTO is embedded in the order row. Reason is NULL when no dispute was opened.
type DisputeDTO struct {
	Reason       *string
	OpenedBy     *string `gorm:"size:64"`
	OpenedByRole *string `gorm:"size:16"`
	OpenedAt     *time.Time
	Resolution   *string
}

// TimestampsDTO holds the moment the order entered each status.
type TimestampsDTO struct {
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

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()
	t := s.Terms

	return OrderDTO{
		ID:                  s.ID.Bytes(),
		ClientID:            s.ClientID.Bytes(),
		ProProfileID:        s.ProProfileID.Bytes(),
		CategoryID:          s.CategoryID.Bytes(),
		WindowStart:         s.Window.Start(),
		WindowEnd:           s.Window.End(),
		PricingMode:         t.Mode.String(),
		Currency:            o.Currency(),
		HourlyRateCents:     pgtypes.OptionalCents(t.HourlyRate),
		QuotedAmountCents:   pgtypes.OptionalCents(t.QuotedAmount),
		EstimatedHours:      pgtypes.OptionalHours(t.EstimatedHours),
		Status:              s.Status.String(),
		FinalHoursSubmitted: pgtypes.OptionalHours(s.FinalHoursSubmitted),
		ApprovedHours:       pgtypes.OptionalHours(s.ApprovedHours),
		TotalAmountCents:    pgtypes.OptionalCents(s.TotalAmount),
		Dispute:             disputeFromDomain(s.Dispute),
		Timestamps:          TimestampsDTO(s.Timestamps),
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		Version:             s.Version,
	}
}

func disputeFromDomain(d *order.Dispute) DisputeDTO {
	if d == nil {
		return DisputeDTO{}
	}
	role := d.OpenedByRole.String()
	openedAt := d.OpenedAt
	dto := DisputeDTO{
		Reason:       &d.Reason,
		OpenedBy:     &d.OpenedBy,
		OpenedByRole: &role,
		OpenedAt:     &openedAt,
	}
	if d.Resolution != "" {
		dto.Resolution = &d.Resolution
	}
	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := pgtypes.UUID(dto.ID)
	if err != nil {
		return nil, err
	}
	clientID, err := pgtypes.UUID(dto.ClientID)
	if err != nil {
		return nil, err
	}
	proID, err := pgtypes.UUID(dto.ProProfileID)
	if err != nil {
		return nil, err
	}
	categoryID, err := pgtypes.UUID(dto.CategoryID)
	if err != nil {
		return nil, err
	}

	window, err := kernel.NewTimeWindow(dto.WindowStart, dto.WindowEnd)
	if err != nil {
		return nil, err
	}

	terms, err := termsToDomain(dto)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	finalHours, err := pgtypes.ParseOptionalHours(dto.FinalHoursSubmitted)
	if err != nil {
		return nil, err
	}
	approvedHours, err := pgtypes.ParseOptionalHours(dto.ApprovedHours)
	if err != nil {
		return nil, err
	}
	total, err := pgtypes.OptionalMoney(dto.TotalAmountCents, dto.Currency)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:                  id,
		ClientID:            clientID,
		ProProfileID:        proID,
		CategoryID:          categoryID,
		Window:              window,
		Terms:               terms,
		Status:              status,
		FinalHoursSubmitted: finalHours,
		ApprovedHours:       approvedHours,
		TotalAmount:         total,
		Dispute:             disputeToDomain(dto.Dispute),
		Timestamps:          order.Timestamps(dto.Timestamps),
		CreatedAt:           dto.CreatedAt,
		UpdatedAt:           dto.UpdatedAt,
		Version:             dto.Version,
	})
}

func termsToDomain(dto OrderDTO) (order.Terms, error) {
	mode, err := order.ParsePricingMode(dto.PricingMode)
	if err != nil {
		return order.Terms{}, err
	}
	rate, err := pgtypes.OptionalMoney(dto.HourlyRateCents, dto.Currency)
	if err != nil {
		return order.Terms{}, err
	}
	quote, err := pgtypes.OptionalMoney(dto.QuotedAmountCents, dto.Currency)
	if err != nil {
		return order.Terms{}, err
	}
	hours, err := pgtypes.ParseOptionalHours(dto.EstimatedHours)
	if err != nil {
		return order.Terms{}, err
	}
	return order.Terms{Mode: mode, HourlyRate: rate, QuotedAmount: quote, EstimatedHours: hours}, nil
}

func disputeToDomain(dto DisputeDTO) *order.Dispute {
	if dto.Reason == nil {
		return nil
	}
	d := &order.Dispute{Reason: *dto.Reason}
	if dto.OpenedBy != nil {
		d.OpenedBy = *dto.OpenedBy
	}
	if dto.OpenedByRole != nil {
		d.OpenedByRole = roleFromName(*dto.OpenedByRole)
	}
	if dto.OpenedAt != nil {
		d.OpenedAt = *dto.OpenedAt
	}
	if dto.Resolution != nil {
		d.Resolution = *dto.Resolution
	}
	return d
}

func roleFromName(name string) order.Role {
	if name == order.RoleSystem.String() {
		return order.RoleSystem
	}
	role, err := order.ParseRole(name)
	if err != nil {
		return order.RoleUnknown
	}
	return role
}
