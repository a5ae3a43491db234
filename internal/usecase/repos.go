package usecase

import (
	"context"
	"time"

	"sealreg/internal/domain"
)

type ProofRepository interface {
	Create(ctx context.Context, record domain.ProofRecord) error
	GetByID(ctx context.Context, id string) (*domain.ProofRecord, error)
	TransferOwner(ctx context.Context, id, newOwner string) error
}

type AttesterConfigRepository interface {
	GetByID(ctx context.Context, attesterID string) (*domain.AttesterConfig, error)
}

// AttesterConfigCache fronts the configuration store; entries expire so key
// rotations in the store become visible without a restart.
type AttesterConfigCache interface {
	Get(ctx context.Context, attesterID string) (*domain.AttesterConfig, bool, error)
	Put(ctx context.Context, attesterID string, cfg domain.AttesterConfig, ttl time.Duration) error
}

type AccessListRepository interface {
	Create(ctx context.Context, list domain.AccessList, cap domain.AdminCapability) error
	Get(ctx context.Context, id string) (*domain.AccessList, error)
	GetCapability(ctx context.Context, capID string) (*domain.AdminCapability, error)
	Save(ctx context.Context, list *domain.AccessList) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing domain.Listing) error
	Get(ctx context.Context, id string) (*domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) error
	IncrementSaleCount(ctx context.Context, id string) error
}

// Transactor runs fn inside one storage transaction; repositories called
// with the derived context join it. Multi-write operations use it so a
// failure at any step leaves no partial state.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ReceiptRepository interface {
	Create(ctx context.Context, receipt domain.PurchaseReceipt) error
	Get(ctx context.Context, id string) (*domain.PurchaseReceipt, error)
}

type LedgerRepository interface {
	CreditSeller(ctx context.Context, seller string, amount uint64) error
	AddPlatformFee(ctx context.Context, amount uint64) error
	PlatformBalance(ctx context.Context) (uint64, error)
	WithdrawPlatform(ctx context.Context, amount uint64) error
}

type VersionRepository interface {
	Get(ctx context.Context) (domain.PackageVersion, error)
	Set(ctx context.Context, version uint64) error
}

type PolicyEngine interface {
	Evaluate(ctx context.Context, input domain.PolicyInput) (domain.PolicyEvaluation, error)
}

type AttestationVerifier interface {
	VerifyAttestation(cfg domain.AttesterConfig, intent domain.Intent, timestampMS uint64, payload domain.VerificationPayload, sig []byte) (bool, error)
}
