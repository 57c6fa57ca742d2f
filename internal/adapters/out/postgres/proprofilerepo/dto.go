// Package proprofilerepo persists professional profiles.
package proprofilerepo

import (
	"time"

	"booking/internal/adapters/out/postgres/pgtypes"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/proprofile"

	"github.com/google/uuid"
)

type ProProfileDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	DisplayName      string
	Status           string `gorm:"size:32;index"`
	Currency         string `gorm:"size:3"`
	HourlyRateCents  int64
	PayoutAccountRef string
	SuspensionReason string
	CreatedAt        time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime:false"`
	Version          int64
}

func (ProProfileDTO) TableName() string {
	return "pro_profiles"
}

func fromDomain(p *proprofile.ProProfile) ProProfileDTO {
	s := p.Snapshot()
	return ProProfileDTO{
		ID:               s.ID.Bytes(),
		UserID:           s.UserID.Bytes(),
		DisplayName:      s.DisplayName,
		Status:           s.Status.String(),
		Currency:         s.HourlyRate.Currency(),
		HourlyRateCents:  s.HourlyRate.Cents(),
		PayoutAccountRef: s.PayoutAccountRef,
		SuspensionReason: s.SuspensionReason,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		Version:          s.Version,
	}
}

func toDomain(dto ProProfileDTO) (*proprofile.ProProfile, error) {
	id, err := pgtypes.UUID(dto.ID)
	if err != nil {
		return nil, err
	}
	userID, err := pgtypes.UUID(dto.UserID)
	if err != nil {
		return nil, err
	}
	status, err := proprofile.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	rate, err := kernel.NewMoney(dto.HourlyRateCents, dto.Currency)
	if err != nil {
		return nil, err
	}

	return proprofile.RestoreProProfile(proprofile.Snapshot{
		ID:               id,
		UserID:           userID,
		DisplayName:      dto.DisplayName,
		Status:           status,
		HourlyRate:       rate,
		PayoutAccountRef: dto.PayoutAccountRef,
		SuspensionReason: dto.SuspensionReason,
		CreatedAt:        dto.CreatedAt,
		UpdatedAt:        dto.UpdatedAt,
		Version:          dto.Version,
	})
}
