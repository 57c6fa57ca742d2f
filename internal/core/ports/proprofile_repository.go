package ports

import (
	"context"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/proprofile"
)

// ProProfileRepository defines the persistence contract for professional profiles.
type ProProfileRepository interface {
	Add(ctx context.Context, aggregate *proprofile.ProProfile) error

	// Update writes the profile back with a compare-and-swap on (id, Version).
	Update(ctx context.Context, aggregate *proprofile.ProProfile) error

	Get(ctx context.Context, id kernel.UUID) (*proprofile.ProProfile, error)
}
