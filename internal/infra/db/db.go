package db

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var errDBUnavailable = errors.New("database unavailable")

func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database dsn is required")
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Migrate creates or updates every table this service owns.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&ProofRecordModel{},
		&AttesterConfigModel{},
		&AccessListModel{},
		&AccessMemberModel{},
		&AccessAttachmentModel{},
		&AdminCapabilityModel{},
		&ListingModel{},
		&PurchaseReceiptModel{},
		&PlatformLedgerModel{},
		&SellerBalanceModel{},
		&PackageVersionModel{},
	)
}
