// Package payoutrepo persists payouts and the earnings they aggregate. An earning
// is claimed by setting its payout_id, and only while payout_id is still NULL.
package payoutrepo

import (
	"time"

	"booking/internal/adapters/out/postgres/pgtypes"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payout"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PayoutDTO represents the database structure for persisting payouts.
type PayoutDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProProfileID      uuid.UUID `gorm:"type:uuid;index"`
	Provider          string    `gorm:"size:32"`
	Currency          string    `gorm:"size:3"`
	AmountCents       int64
	Status            string `gorm:"size:16;index"`
	ProviderReference string `gorm:"size:128;index"`
	FailureReason     string
	Attempts          int
	AppliedEventIDs   pq.StringArray `gorm:"type:text[]"`
	CreatedAt         time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime:false"`
	Version           int64
}

func (PayoutDTO) TableName() string {
	return "payouts"
}

// EarningDTO is one row per captured payment.
type EarningDTO struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProProfileID uuid.UUID  `gorm:"type:uuid;index"`
	OrderID      uuid.UUID  `gorm:"type:uuid"`
	PaymentID    uuid.UUID  `gorm:"type:uuid;uniqueIndex"`
	PayoutID     *uuid.UUID `gorm:"type:uuid;index"`
	Currency     string     `gorm:"size:3"`
	GrossCents   int64
	FeeCents     int64
	NetCents     int64
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
}

func (EarningDTO) TableName() string {
	return "earnings"
}

func payoutFromDomain(p *payout.Payout) PayoutDTO {
	s := p.Snapshot()
	return PayoutDTO{
		ID:                s.ID.Bytes(),
		ProProfileID:      s.ProProfileID.Bytes(),
		Provider:          s.Provider,
		Currency:          s.Amount.Currency(),
		AmountCents:       s.Amount.Cents(),
		Status:            s.Status.String(),
		ProviderReference: s.ProviderReference,
		FailureReason:     s.FailureReason,
		Attempts:          s.Attempts,
		AppliedEventIDs:   pq.StringArray(s.AppliedEventIDs),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Version:           s.Version,
	}
}

func payoutToDomain(dto PayoutDTO, earnings []EarningDTO) (*payout.Payout, error) {
	id, err := pgtypes.UUID(dto.ID)
	if err != nil {
		return nil, err
	}
	proID, err := pgtypes.UUID(dto.ProProfileID)
	if err != nil {
		return nil, err
	}
	status, err := payout.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	amount, err := kernel.NewMoney(dto.AmountCents, dto.Currency)
	if err != nil {
		return nil, err
	}

	owned := make([]*payout.Earning, 0, len(earnings))
	for _, e := range earnings {
		earning, err := EarningToDomain(e)
		if err != nil {
			return nil, err
		}
		owned = append(owned, earning)
	}

	return payout.RestorePayout(payout.Snapshot{
		ID:                id,
		ProProfileID:      proID,
		Provider:          dto.Provider,
		Amount:            amount,
		Status:            status,
		ProviderReference: dto.ProviderReference,
		FailureReason:     dto.FailureReason,
		Attempts:          dto.Attempts,
		AppliedEventIDs:   []string(dto.AppliedEventIDs),
		Earnings:          owned,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
		Version:           dto.Version,
	})
}

func EarningFromDomain(e *payout.Earning) EarningDTO {
	return EarningDTO{
		ID:           e.ID().Bytes(),
		ProProfileID: e.ProProfileID().Bytes(),
		OrderID:      e.OrderID().Bytes(),
		PaymentID:    e.PaymentID().Bytes(),
		PayoutID:     pgtypes.OptionalUUID(e.PayoutID()),
		Currency:     e.Gross().Currency(),
		GrossCents:   e.Gross().Cents(),
		FeeCents:     e.Fee().Cents(),
		NetCents:     e.Net().Cents(),
		CreatedAt:    e.CreatedAt(),
	}
}

func EarningToDomain(dto EarningDTO) (*payout.Earning, error) {
	ids := make([]kernel.UUID, 4)
	for i, raw := range []uuid.UUID{dto.ID, dto.ProProfileID, dto.OrderID, dto.PaymentID} {
		id, err := pgtypes.UUID(raw)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	payoutID, err := pgtypes.ParseOptionalUUID(dto.PayoutID)
	if err != nil {
		return nil, err
	}

	amounts := make([]kernel.Money, 3)
	for i, cents := range []int64{dto.GrossCents, dto.FeeCents, dto.NetCents} {
		m, err := kernel.NewMoney(cents, dto.Currency)
		if err != nil {
			return nil, err
		}
		amounts[i] = m
	}

	return payout.RestoreEarning(ids[0], ids[1], ids[2], ids[3],
		amounts[0], amounts[1], amounts[2], payoutID, dto.CreatedAt)
}
