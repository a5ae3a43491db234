package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/google/uuid"

	"sealreg/internal/domain"
)

// Basis points per whole; fee math uses floor division.
const feeDivisor = 10_000

type CreateListingRequest struct {
	ProofRecordID  string
	Seller         string
	Price          uint64
	SubscriptionMS uint64
}

type PurchaseResult struct {
	Receipt     domain.PurchaseReceipt
	PlatformFee uint64
	SellerNet   uint64
}

// Settlement layers purchases and time-boxed subscriptions on top of the
// registry. Fees are split at a fixed basis-point rate; the basis (tendered
// amount vs. listing price) is explicit configuration.
type Settlement struct {
	Proofs     ProofRepository
	Listings   ListingRepository
	Receipts   ReceiptRepository
	Ledger     LedgerRepository
	Tx         Transactor
	FeeBps     uint64
	FeeBasis   domain.FeeBasis
	AdminToken string
	NowMS      func() uint64
}

func (uc *Settlement) CreateListing(ctx context.Context, req CreateListingRequest) (*domain.Listing, error) {
	if req.Price == 0 {
		return nil, domain.ErrInvalidPrice
	}
	record, err := uc.Proofs.GetByID(ctx, req.ProofRecordID)
	if err != nil {
		return nil, err
	}
	if record.Owner != req.Seller {
		return nil, domain.ErrNotSeller
	}

	listing := domain.Listing{
		ID:             uuid.NewString(),
		ProofRecordID:  record.ID,
		Seller:         req.Seller,
		Name:           record.Name,
		Description:    record.Description,
		BlobRef:        record.BlobRef,
		ContentHash:    record.ContentHash,
		SchemaVersion:  record.SchemaVersion,
		Price:          req.Price,
		SubscriptionMS: req.SubscriptionMS,
		Active:         true,
	}
	if err := uc.Listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Purchase settles in one unit of work: an error at any step rolls back the
// ledger writes and the receipt together.
func (uc *Settlement) Purchase(ctx context.Context, listingID, buyer string, payment uint64) (*PurchaseResult, error) {
	var result *PurchaseResult
	settle := func(ctx context.Context) error {
		listing, err := uc.Listings.Get(ctx, listingID)
		if err != nil {
			return err
		}
		if !listing.Active {
			return domain.ErrListingInactive
		}
		if payment < listing.Price {
			return domain.ErrInsufficientPayment
		}

		basis := payment
		if uc.FeeBasis == domain.FeeBasisPrice {
			basis = listing.Price
		}
		fee, err := platformFee(basis, uc.FeeBps)
		if err != nil {
			return err
		}
		sellerNet := payment - fee

		if err := uc.Ledger.AddPlatformFee(ctx, fee); err != nil {
			return err
		}
		if err := uc.Ledger.CreditSeller(ctx, listing.Seller, sellerNet); err != nil {
			return err
		}

		now := uc.now()
		receipt := domain.PurchaseReceipt{
			ID:            uuid.NewString(),
			ListingID:     listing.ID,
			Seller:        listing.Seller,
			Buyer:         buyer,
			BlobRef:       listing.BlobRef,
			PurchasedAtMS: now,
			ExpiresAtMS:   now + listing.SubscriptionMS,
		}
		if err := uc.Receipts.Create(ctx, receipt); err != nil {
			return err
		}
		if err := uc.Listings.IncrementSaleCount(ctx, listing.ID); err != nil {
			return err
		}

		result = &PurchaseResult{Receipt: receipt, PlatformFee: fee, SellerNet: sellerNet}
		return nil
	}

	if uc.Tx != nil {
		if err := uc.Tx.InTx(ctx, settle); err != nil {
			return nil, err
		}
	} else if err := settle(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// platformFee computes basis*bps/feeDivisor in full 128-bit width so a large
// tendered payment cannot wrap the fee. With bps capped at the divisor the
// quotient always fits back in 64 bits.
func platformFee(basis, bps uint64) (uint64, error) {
	if bps > feeDivisor {
		return 0, fmt.Errorf("fee bps %d exceeds %d", bps, feeDivisor)
	}
	hi, lo := bits.Mul64(basis, bps)
	fee, _ := bits.Div64(hi, lo, feeDivisor)
	return fee, nil
}

func (uc *Settlement) UpdatePrice(ctx context.Context, listingID, seller string, price uint64) error {
	listing, err := uc.Listings.Get(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.Seller != seller {
		return domain.ErrNotSeller
	}
	if price == 0 {
		return domain.ErrInvalidPrice
	}
	listing.Price = price
	return uc.Listings.Update(ctx, listing)
}

func (uc *Settlement) UpdateStatus(ctx context.Context, listingID, seller string, active bool) error {
	listing, err := uc.Listings.Get(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.Seller != seller {
		return domain.ErrNotSeller
	}
	listing.Active = active
	return uc.Listings.Update(ctx, listing)
}

func (uc *Settlement) WithdrawEarnings(ctx context.Context, adminToken string, amount uint64) error {
	if uc.AdminToken == "" || subtle.ConstantTimeCompare([]byte(adminToken), []byte(uc.AdminToken)) != 1 {
		return domain.ErrNotOwner
	}
	if amount == 0 {
		return errors.New("amount is required")
	}
	balance, err := uc.Ledger.PlatformBalance(ctx)
	if err != nil {
		return err
	}
	if amount > balance {
		return domain.ErrInsufficientPayment
	}
	return uc.Ledger.WithdrawPlatform(ctx, amount)
}

func (uc *Settlement) now() uint64 {
	if uc.NowMS != nil {
		return uc.NowMS()
	}
	return uint64(time.Now().UnixMilli())
}
