package usecase

import (
	"bytes"
	"context"
	"time"

	"sealreg/internal/domain"
)

// The two decision functions below are pure and read-only: they never touch
// stored state and may run concurrently without coordination. A false result
// is an ordinary deny the caller surfaces as refused decryption; an error is
// fatal and must abort the caller's whole operation.

// ApproveACL grants access when the request identifier sits inside the
// list's namespace and the requester is a current member. The prefix match
// is byte-for-byte with no normalization.
func ApproveACL(requestID []byte, list *domain.AccessList, requester string) (bool, error) {
	namespace, err := list.Namespace()
	if err != nil {
		return false, err
	}
	if !bytes.HasPrefix(requestID, namespace) {
		return false, nil
	}
	if !list.HasMember(requester) {
		return false, nil
	}
	return true, nil
}

// ApproveSubscription grants access while a purchase receipt for the listing
// is unexpired. The package version gate runs first: a stale client must be
// forced to upgrade, not quietly denied.
func ApproveSubscription(requestID []byte, receipt *domain.PurchaseReceipt, listing *domain.Listing, pkg domain.PackageVersion, nowMS uint64) (bool, error) {
	if pkg.Version != domain.EngineSchemaVersion {
		return false, domain.ErrWrongVersion
	}
	if receipt.ListingID != listing.ID {
		return false, nil
	}
	if receipt.Expired(nowMS) {
		return false, nil
	}
	namespace, err := listing.Namespace()
	if err != nil {
		return false, err
	}
	if !bytes.HasPrefix(requestID, namespace) {
		return false, nil
	}
	return true, nil
}

// Approval loads the state the decision functions need and evaluates them on
// behalf of the HTTP surface.
type Approval struct {
	Lists    AccessListRepository
	Listings ListingRepository
	Receipts ReceiptRepository
	Versions VersionRepository
	NowMS    func() uint64
}

func (uc *Approval) ApproveACL(ctx context.Context, requestID []byte, listID, requester string) (bool, error) {
	list, err := uc.Lists.Get(ctx, listID)
	if err != nil {
		return false, err
	}
	return ApproveACL(requestID, list, requester)
}

func (uc *Approval) ApproveSubscription(ctx context.Context, requestID []byte, receiptID, listingID string) (bool, error) {
	pkg, err := uc.Versions.Get(ctx)
	if err != nil {
		return false, err
	}
	receipt, err := uc.Receipts.Get(ctx, receiptID)
	if err != nil {
		return false, err
	}
	listing, err := uc.Listings.Get(ctx, listingID)
	if err != nil {
		return false, err
	}
	return ApproveSubscription(requestID, receipt, listing, pkg, uc.now())
}

func (uc *Approval) now() uint64 {
	if uc.NowMS != nil {
		return uc.NowMS()
	}
	return uint64(time.Now().UnixMilli())
}
