package postgres

import (
	"strings"

	"booking/internal/adapters/out/postgres/auditrepo"
	"booking/internal/adapters/out/postgres/orderrepo"
	"booking/internal/adapters/out/postgres/paymentrepo"
	"booking/internal/adapters/out/postgres/payoutrepo"
	"booking/internal/adapters/out/postgres/proprofilerepo"

	"gorm.io/gorm"
)

type tabler interface {
	TableName() string
}

func models() []tabler {
	return []tabler{
		&proprofilerepo.ProProfileDTO{},
		&orderrepo.OrderDTO{},
		&paymentrepo.PaymentDTO{},
		&payoutrepo.PayoutDTO{},
		&payoutrepo.EarningDTO{},
		&auditrepo.EntryDTO{},
	}
}

// AutoMigrate creates or updates every booking table and index.
func AutoMigrate(db *gorm.DB) error {
	dst := make([]any, 0, len(models()))
	for _, m := range models() {
		dst = append(dst, m)
	}
	return db.AutoMigrate(dst...)
}

// TableList is the comma separated list of booking tables.
func TableList() string {
	names := make([]string, 0, len(models()))
	for _, m := range models() {
		names = append(names, m.TableName())
	}
	return strings.Join(names, ", ")
}
