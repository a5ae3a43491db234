package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sealreg/internal/domain"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(gdb *gorm.DB) *ListingRepository {
	return &ListingRepository{db: gdb}
}

func (r *ListingRepository) Create(ctx context.Context, listing domain.Listing) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := listingModelFromDomain(listing)
	model.CreatedAt = time.Now().UTC()
	return conn(ctx, r.db).Create(&model).Error
}

func (r *ListingRepository) Get(ctx context.Context, id string) (*domain.Listing, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ListingModel
	err := conn(ctx, r.db).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	listing := listingDomainFromModel(model)
	return &listing, nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return conn(ctx, r.db).
		Model(&ListingModel{}).
		Where("id = ?", listing.ID).
		Updates(map[string]any{
			"price":      listing.Price,
			"active":     listing.Active,
			"sale_count": listing.SaleCount,
		}).Error
}

// IncrementSaleCount bumps the counter in SQL so concurrent purchases never
// lose an increment to a read-modify-write race.
func (r *ListingRepository) IncrementSaleCount(ctx context.Context, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := conn(ctx, r.db).
		Model(&ListingModel{}).
		Where("id = ?", id).
		UpdateColumn("sale_count", gorm.Expr("sale_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func listingModelFromDomain(listing domain.Listing) ListingModel {
	return ListingModel{
		ID:             listing.ID,
		ProofRecordID:  listing.ProofRecordID,
		Seller:         listing.Seller,
		Name:           listing.Name,
		Description:    listing.Description,
		BlobRef:        listing.BlobRef,
		ContentHash:    listing.ContentHash,
		SchemaVersion:  listing.SchemaVersion,
		Price:          listing.Price,
		SubscriptionMS: listing.SubscriptionMS,
		Active:         listing.Active,
		SaleCount:      listing.SaleCount,
	}
}

func listingDomainFromModel(model ListingModel) domain.Listing {
	return domain.Listing{
		ID:             model.ID,
		ProofRecordID:  model.ProofRecordID,
		Seller:         model.Seller,
		Name:           model.Name,
		Description:    model.Description,
		BlobRef:        model.BlobRef,
		ContentHash:    model.ContentHash,
		SchemaVersion:  model.SchemaVersion,
		Price:          model.Price,
		SubscriptionMS: model.SubscriptionMS,
		Active:         model.Active,
		SaleCount:      model.SaleCount,
		CreatedAt:      model.CreatedAt,
	}
}

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(gdb *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: gdb}
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt domain.PurchaseReceipt) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := PurchaseReceiptModel{
		ID:            receipt.ID,
		ListingID:     receipt.ListingID,
		Seller:        receipt.Seller,
		Buyer:         receipt.Buyer,
		BlobRef:       receipt.BlobRef,
		PurchasedAtMS: receipt.PurchasedAtMS,
		ExpiresAtMS:   receipt.ExpiresAtMS,
		CreatedAt:     time.Now().UTC(),
	}
	return conn(ctx, r.db).Create(&model).Error
}

func (r *ReceiptRepository) Get(ctx context.Context, id string) (*domain.PurchaseReceipt, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model PurchaseReceiptModel
	err := conn(ctx, r.db).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &domain.PurchaseReceipt{
		ID:            model.ID,
		ListingID:     model.ListingID,
		Seller:        model.Seller,
		Buyer:         model.Buyer,
		BlobRef:       model.BlobRef,
		PurchasedAtMS: model.PurchasedAtMS,
		ExpiresAtMS:   model.ExpiresAtMS,
		CreatedAt:     model.CreatedAt,
	}, nil
}

const (
	platformLedgerRow = int16(1)
	packageVersionRow = int16(1)
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(gdb *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: gdb}
}

func (r *LedgerRepository) CreditSeller(ctx context.Context, seller string, amount uint64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	now := time.Now().UTC()
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "seller"}},
		DoUpdates: clause.Assignments(map[string]any{
			"balance":    gorm.Expr("seller_balances.balance + ?", amount),
			"updated_at": now,
		}),
	}).Create(&SellerBalanceModel{Seller: seller, Balance: amount, UpdatedAt: now}).Error
}

func (r *LedgerRepository) AddPlatformFee(ctx context.Context, amount uint64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	now := time.Now().UTC()
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"balance":    gorm.Expr("platform_ledger.balance + ?", amount),
			"updated_at": now,
		}),
	}).Create(&PlatformLedgerModel{ID: platformLedgerRow, Balance: amount, UpdatedAt: now}).Error
}

func (r *LedgerRepository) PlatformBalance(ctx context.Context) (uint64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var model PlatformLedgerModel
	err := conn(ctx, r.db).First(&model, "id = ?", platformLedgerRow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return model.Balance, nil
}

func (r *LedgerRepository) WithdrawPlatform(ctx context.Context, amount uint64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := conn(ctx, r.db).
		Model(&PlatformLedgerModel{}).
		Where("id = ? AND balance >= ?", platformLedgerRow, amount).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInsufficientPayment
	}
	return nil
}

type VersionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(gdb *gorm.DB) *VersionRepository {
	return &VersionRepository{db: gdb}
}

func (r *VersionRepository) Get(ctx context.Context) (domain.PackageVersion, error) {
	if r.db == nil {
		return domain.PackageVersion{}, errDBUnavailable
	}
	var model PackageVersionModel
	err := conn(ctx, r.db).First(&model, "id = ?", packageVersionRow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A fresh deployment runs at the compiled-in version.
			return domain.PackageVersion{Version: domain.EngineSchemaVersion}, nil
		}
		return domain.PackageVersion{}, err
	}
	return domain.PackageVersion{Version: model.Version, UpdatedAt: model.UpdatedAt}, nil
}

func (r *VersionRepository) Set(ctx context.Context, version uint64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	now := time.Now().UTC()
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"version":    version,
			"updated_at": now,
		}),
	}).Create(&PackageVersionModel{ID: packageVersionRow, Version: version, UpdatedAt: now}).Error
}
