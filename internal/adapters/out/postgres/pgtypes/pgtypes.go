// Package pgtypes converts kernel value objects to and from nullable SQL columns.
// Money is stored as integer cents plus an ISO currency column owned by the row;
// hours are stored as their decimal text so no precision is lost.
package pgtypes

import (
	"booking/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

func OptionalCents(m *kernel.Money) *int64 {
	if m == nil {
		return nil
	}
	c := m.Cents()
	return &c
}

func OptionalMoney(cents *int64, currency string) (*kernel.Money, error) {
	if cents == nil {
		return nil, nil
	}
	m, err := kernel.NewMoney(*cents, currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func OptionalHours(h *kernel.Hours) *string {
	if h == nil {
		return nil
	}
	s := h.String()
	return &s
}

func ParseOptionalHours(s *string) (*kernel.Hours, error) {
	if s == nil {
		return nil, nil
	}
	h, err := kernel.HoursFromString(*s)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func OptionalUUID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func ParseOptionalUUID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func UUID(raw uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(raw[:])
}
