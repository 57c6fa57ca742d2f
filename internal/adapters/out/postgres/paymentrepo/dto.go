// Package paymentrepo persists payments. A partial unique index keeps at most one
// active payment per order, and applied provider event ids are kept on the row.
package paymentrepo

import (
	"time"

	"booking/internal/adapters/out/postgres/pgtypes"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payment"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PaymentDTO represents the database structure for persisting payments.
type PaymentDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"type:uuid;uniqueIndex:ux_payments_active_order,where:status <> 'FAILED' AND status <> 'CANCELLED'"`
	Provider          string    `gorm:"size:32;uniqueIndex:ux_payments_provider_reference,where:provider_reference IS NOT NULL"`
	ProviderReference *string   `gorm:"size:128;uniqueIndex:ux_payments_provider_reference,where:provider_reference IS NOT NULL"`
	Status            string    `gorm:"size:32;index"`
	Currency          string    `gorm:"size:3"`
	EstimatedCents    int64
	AuthorizedCents   int64
	CapturedCents     int64
	RefundedCents     int64
	CheckoutURL       string
	FailureReason     string
	AppliedEventIDs   pq.StringArray `gorm:"type:text[]"`
	CreatedAt         time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime:false;index"`
	CaptureClaimedAt  *time.Time
	Version           int64
}

// TableName specifies the database table name for payments.
func (PaymentDTO) TableName() string {
	return "payments"
}

func fromDomain(p *payment.Payment) PaymentDTO {
	s := p.Snapshot()

	var ref *string
	if s.ProviderReference != "" {
		r := s.ProviderReference
		ref = &r
	}

	return PaymentDTO{
		ID:                s.ID.Bytes(),
		OrderID:           s.OrderID.Bytes(),
		Provider:          s.Provider,
		ProviderReference: ref,
		Status:            s.Status.String(),
		Currency:          s.Estimated.Currency(),
		EstimatedCents:    s.Estimated.Cents(),
		AuthorizedCents:   s.Authorized.Cents(),
		CapturedCents:     s.Captured.Cents(),
		RefundedCents:     s.Refunded.Cents(),
		CheckoutURL:       s.CheckoutURL,
		FailureReason:     s.FailureReason,
		AppliedEventIDs:   pq.StringArray(s.AppliedEventIDs),
		CaptureClaimedAt:  s.CaptureClaimedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Version:           s.Version,
	}
}

func toDomain(dto PaymentDTO) (*payment.Payment, error) {
	id, err := pgtypes.UUID(dto.ID)
	if err != nil {
		return nil, err
	}
	orderID, err := pgtypes.UUID(dto.OrderID)
	if err != nil {
		return nil, err
	}
	status, err := payment.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	amounts := make([]kernel.Money, 4)
	for i, cents := range []int64{dto.EstimatedCents, dto.AuthorizedCents, dto.CapturedCents, dto.RefundedCents} {
		m, err := kernel.NewMoney(cents, dto.Currency)
		if err != nil {
			return nil, err
		}
		amounts[i] = m
	}

	var ref string
	if dto.ProviderReference != nil {
		ref = *dto.ProviderReference
	}

	return payment.RestorePayment(payment.Snapshot{
		ID:                id,
		OrderID:           orderID,
		Provider:          dto.Provider,
		Status:            status,
		Estimated:         amounts[0],
		Authorized:        amounts[1],
		Captured:          amounts[2],
		Refunded:          amounts[3],
		ProviderReference: ref,
		CheckoutURL:       dto.CheckoutURL,
		FailureReason:     dto.FailureReason,
		AppliedEventIDs:   []string(dto.AppliedEventIDs),
		CaptureClaimedAt:  dto.CaptureClaimedAt,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
		Version:           dto.Version,
	})
}
