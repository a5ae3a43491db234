package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"

	"sealreg/internal/domain"
)

func settlementFixture(nowMS uint64) (*Settlement, *memProofRepo, *memListingRepo, *memReceiptRepo, *memLedger) {
	proofs := newMemProofRepo()
	listings := newMemListingRepo()
	receipts := newMemReceiptRepo()
	ledger := newMemLedger()
	uc := &Settlement{
		Proofs:     proofs,
		Listings:   listings,
		Receipts:   receipts,
		Ledger:     ledger,
		FeeBps:     250,
		FeeBasis:   domain.FeeBasisTendered,
		AdminToken: "platform-secret",
		NowMS:      func() uint64 { return nowMS },
	}
	return uc, proofs, listings, receipts, ledger
}

func seedProof(t *testing.T, proofs *memProofRepo, owner string) domain.ProofRecord {
	t.Helper()
	record := domain.ProofRecord{
		ID:            uuid.NewString(),
		DatasetID:     "ds-1",
		ContentHash:   []byte{1, 2},
		BlobRef:       "blob://b",
		PolicyRef:     "policy://p",
		Name:          "dump",
		SchemaVersion: domain.PayloadSchemaV1,
		Owner:         owner,
	}
	if err := proofs.Create(context.Background(), record); err != nil {
		t.Fatalf("seed proof: %v", err)
	}
	return record
}

func TestSettlement_PurchaseEndToEnd(t *testing.T) {
	const purchaseTime = uint64(10_000_000)
	uc, proofs, listings, receipts, ledger := settlementFixture(purchaseTime)
	ctx := context.Background()
	record := seedProof(t, proofs, "seller")

	listing, err := uc.CreateListing(ctx, CreateListingRequest{
		ProofRecordID:  record.ID,
		Seller:         "seller",
		Price:          100,
		SubscriptionMS: 3_600_000,
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if string(listing.ContentHash) != string(record.ContentHash) || listing.BlobRef != record.BlobRef {
		t.Fatal("listing did not snapshot proof fields")
	}
	// The proof record itself is untouched.
	if proofs.records[record.ID].Owner != "seller" {
		t.Fatal("proof ownership changed by listing creation")
	}

	result, err := uc.Purchase(ctx, listing.ID, "buyer", 100)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.PlatformFee != 2 || result.SellerNet != 98 {
		t.Fatalf("split = fee %d / seller %d, want 2 / 98", result.PlatformFee, result.SellerNet)
	}
	if ledger.platform != 2 || ledger.sellers["seller"] != 98 {
		t.Fatalf("ledger = platform %d / seller %d", ledger.platform, ledger.sellers["seller"])
	}
	if got := listings.listings[listing.ID].SaleCount; got != 1 {
		t.Fatalf("sale count = %d", got)
	}
	if result.Receipt.ExpiresAtMS != purchaseTime+3_600_000 {
		t.Fatalf("expiry = %d, want %d", result.Receipt.ExpiresAtMS, purchaseTime+3_600_000)
	}
	if result.Receipt.Buyer != "buyer" || result.Receipt.ListingID != listing.ID {
		t.Fatalf("receipt identity: %+v", result.Receipt)
	}
	if _, ok := receipts.receipts[result.Receipt.ID]; !ok {
		t.Fatal("receipt not persisted")
	}
}

func TestSettlement_FeeBasis(t *testing.T) {
	ctx := context.Background()

	uc, proofs, _, _, _ := settlementFixture(1)
	record := seedProof(t, proofs, "seller")
	listing, err := uc.CreateListing(ctx, CreateListingRequest{ProofRecordID: record.ID, Seller: "seller", Price: 100, SubscriptionMS: 10})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}

	// Tendered basis: an overpaying buyer pays fee on the full payment.
	result, err := uc.Purchase(ctx, listing.ID, "buyer", 200)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.PlatformFee != 5 || result.SellerNet != 195 {
		t.Fatalf("tendered basis split = %d/%d, want 5/195", result.PlatformFee, result.SellerNet)
	}

	uc.FeeBasis = domain.FeeBasisPrice
	result, err = uc.Purchase(ctx, listing.ID, "buyer", 200)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.PlatformFee != 2 || result.SellerNet != 198 {
		t.Fatalf("price basis split = %d/%d, want 2/198", result.PlatformFee, result.SellerNet)
	}
}

func TestSettlement_CreateListingValidation(t *testing.T) {
	uc, proofs, _, _, _ := settlementFixture(1)
	ctx := context.Background()
	record := seedProof(t, proofs, "seller")

	if _, err := uc.CreateListing(ctx, CreateListingRequest{ProofRecordID: record.ID, Seller: "seller", Price: 0}); !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("zero price: err = %v, want ErrInvalidPrice", err)
	}
	if _, err := uc.CreateListing(ctx, CreateListingRequest{ProofRecordID: record.ID, Seller: "intruder", Price: 5}); !errors.Is(err, domain.ErrNotSeller) {
		t.Fatalf("foreign proof: err = %v, want ErrNotSeller", err)
	}
}

func TestSettlement_PurchaseRejections(t *testing.T) {
	uc, proofs, _, _, _ := settlementFixture(1)
	ctx := context.Background()
	record := seedProof(t, proofs, "seller")
	listing, err := uc.CreateListing(ctx, CreateListingRequest{ProofRecordID: record.ID, Seller: "seller", Price: 100, SubscriptionMS: 10})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}

	if _, err := uc.Purchase(ctx, listing.ID, "buyer", 99); !errors.Is(err, domain.ErrInsufficientPayment) {
		t.Fatalf("underpayment: err = %v, want ErrInsufficientPayment", err)
	}

	if err := uc.UpdateStatus(ctx, listing.ID, "seller", false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := uc.Purchase(ctx, listing.ID, "buyer", 100); !errors.Is(err, domain.ErrListingInactive) {
		t.Fatalf("inactive listing: err = %v, want ErrListingInactive", err)
	}
}

func TestSettlement_SellerOnlyMutations(t *testing.T) {
	uc, proofs, listings, _, _ := settlementFixture(1)
	ctx := context.Background()
	record := seedProof(t, proofs, "seller")
	listing, err := uc.CreateListing(ctx, CreateListingRequest{ProofRecordID: record.ID, Seller: "seller", Price: 100, SubscriptionMS: 10})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}

	if err := uc.UpdatePrice(ctx, listing.ID, "intruder", 50); !errors.Is(err, domain.ErrNotSeller) {
		t.Fatalf("price by non-seller: err = %v, want ErrNotSeller", err)
	}
	if err := uc.UpdatePrice(ctx, listing.ID, "seller", 0); !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("zero price update: err = %v, want ErrInvalidPrice", err)
	}
	if err := uc.UpdatePrice(ctx, listing.ID, "seller", 150); err != nil {
		t.Fatalf("price update: %v", err)
	}
	if got := listings.listings[listing.ID].Price; got != 150 {
		t.Fatalf("price = %d", got)
	}
	if err := uc.UpdateStatus(ctx, listing.ID, "intruder", false); !errors.Is(err, domain.ErrNotSeller) {
		t.Fatalf("status by non-seller: err = %v, want ErrNotSeller", err)
	}
}

func TestSettlement_ConcurrentPurchasesCountEverySale(t *testing.T) {
	uc, proofs, listings, _, ledger := settlementFixture(1)
	ctx := context.Background()
	record := seedProof(t, proofs, "seller")
	listing, err := uc.CreateListing(ctx, CreateListingRequest{ProofRecordID: record.ID, Seller: "seller", Price: 100, SubscriptionMS: 10})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}

	start := make(chan struct{})
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := uc.Purchase(ctx, listing.ID, "buyer", 100)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}
	}

	if got := listings.saleCount(listing.ID); got != 2 {
		t.Fatalf("two settled purchases recorded sale count %d, want 2", got)
	}
	if got := ledger.platformBalance(); got != 4 {
		t.Fatalf("platform balance = %d, want 4", got)
	}
}

func TestSettlement_PurchaseWritesShareOneTransaction(t *testing.T) {
	uc, proofs, _, _, ledger := settlementFixture(1)
	ctx := context.Background()
	record := seedProof(t, proofs, "seller")
	listing, err := uc.CreateListing(ctx, CreateListingRequest{ProofRecordID: record.ID, Seller: "seller", Price: 100, SubscriptionMS: 10})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}

	tx := &recordingTx{}
	outside := 0
	uc.Tx = tx
	uc.Ledger = &txCheckedLedger{memLedger: ledger, tx: tx, outside: &outside}

	if _, err := uc.Purchase(ctx, listing.ID, "buyer", 100); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if tx.entered != 1 {
		t.Fatalf("transactions opened = %d, want 1", tx.entered)
	}
	if outside != 0 {
		t.Fatalf("%d ledger writes outside the unit of work", outside)
	}

	// A failing step surfaces through the unit of work so the storage layer
	// can roll back the earlier ledger writes.
	uc.Receipts = &failingReceiptRepo{err: errors.New("receipt store down")}
	if _, err := uc.Purchase(ctx, listing.ID, "buyer", 100); err == nil {
		t.Fatal("purchase succeeded with failing receipt store")
	}
	if tx.entered != 2 {
		t.Fatalf("transactions opened = %d, want 2", tx.entered)
	}
}

func TestSettlement_FeeMathDoesNotOverflow(t *testing.T) {
	uc, proofs, _, _, _ := settlementFixture(1)
	ctx := context.Background()
	record := seedProof(t, proofs, "seller")
	listing, err := uc.CreateListing(ctx, CreateListingRequest{ProofRecordID: record.ID, Seller: "seller", Price: 1, SubscriptionMS: 10})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}

	payment := uint64(math.MaxUint64)
	result, err := uc.Purchase(ctx, listing.ID, "buyer", payment)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	// 250 bps is 1/40 of the tendered amount.
	want := payment / 40
	if result.PlatformFee != want {
		t.Fatalf("fee = %d, want %d", result.PlatformFee, want)
	}
	if result.SellerNet != payment-want {
		t.Fatalf("seller net = %d, want %d", result.SellerNet, payment-want)
	}
	if result.PlatformFee > payment {
		t.Fatal("fee exceeds payment")
	}

	uc.FeeBps = feeDivisor + 1
	if _, err := uc.Purchase(ctx, listing.ID, "buyer", 100); err == nil {
		t.Fatal("bps above the divisor accepted")
	}
}

func TestSettlement_WithdrawEarnings(t *testing.T) {
	uc, proofs, _, _, ledger := settlementFixture(1)
	ctx := context.Background()
	record := seedProof(t, proofs, "seller")
	listing, err := uc.CreateListing(ctx, CreateListingRequest{ProofRecordID: record.ID, Seller: "seller", Price: 1000, SubscriptionMS: 10})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if _, err := uc.Purchase(ctx, listing.ID, "buyer", 1000); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	// 250 bps of 1000 = 25 accumulated.

	if err := uc.WithdrawEarnings(ctx, "wrong-token", 1); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("bad token: err = %v, want ErrNotOwner", err)
	}
	if err := uc.WithdrawEarnings(ctx, "platform-secret", 26); !errors.Is(err, domain.ErrInsufficientPayment) {
		t.Fatalf("overdraw: err = %v, want ErrInsufficientPayment", err)
	}
	if err := uc.WithdrawEarnings(ctx, "platform-secret", 25); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if ledger.platform != 0 {
		t.Fatalf("platform balance = %d", ledger.platform)
	}
}
