package domain

import (
	"time"

	"github.com/google/uuid"
)

// FeeBasis selects the amount the platform fee is computed over. The
// historical behavior charges on the tendered payment, so an overpaying buyer
// pays a proportionally larger fee; "price" bounds the fee to the listing
// price instead.
type FeeBasis string

const (
	FeeBasisTendered FeeBasis = "tendered"
	FeeBasisPrice    FeeBasis = "price"
)

// Listing snapshots verification fields from a proof record at creation
// time; later transfers of the record do not affect the listing. Listings
// are deactivated, never deleted.
type Listing struct {
	ID             string
	ProofRecordID  string
	Seller         string
	Name           string
	Description    string
	BlobRef        string
	ContentHash    []byte
	SchemaVersion  uint8
	Price          uint64
	SubscriptionMS uint64
	Active         bool
	SaleCount      uint64
	CreatedAt      time.Time
}

// Namespace derives the byte prefix request identifiers scoped to this
// listing must start with: the raw 16 bytes of the listing's UUID.
func (l *Listing) Namespace() ([]byte, error) {
	id, err := uuid.Parse(l.ID)
	if err != nil {
		return nil, err
	}
	raw := [16]byte(id)
	return raw[:], nil
}

// PurchaseReceipt is an immutable bearer credential minted once per
// successful purchase. It authorizes decryption until expiry; there is no
// revocation path.
type PurchaseReceipt struct {
	ID            string
	ListingID     string
	Seller        string
	Buyer         string
	BlobRef       string
	PurchasedAtMS uint64
	ExpiresAtMS   uint64
	CreatedAt     time.Time
}

// Expired reports whether the receipt no longer authorizes access at nowMS.
// A check exactly at the expiry instant still approves.
func (r *PurchaseReceipt) Expired(nowMS uint64) bool {
	return nowMS > r.ExpiresAtMS
}
