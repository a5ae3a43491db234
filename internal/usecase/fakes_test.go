package usecase

import (
	"context"
	"sync"
	"time"

	"sealreg/internal/domain"
)

type memProofRepo struct {
	records map[string]domain.ProofRecord
}

func newMemProofRepo() *memProofRepo {
	return &memProofRepo{records: make(map[string]domain.ProofRecord)}
}

func (r *memProofRepo) Create(_ context.Context, record domain.ProofRecord) error {
	r.records[record.ID] = record
	return nil
}

func (r *memProofRepo) GetByID(_ context.Context, id string) (*domain.ProofRecord, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (r *memProofRepo) TransferOwner(_ context.Context, id, newOwner string) error {
	record, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.Owner = newOwner
	r.records[id] = record
	return nil
}

type staticAttesterRepo struct {
	cfg domain.AttesterConfig
	err error
}

func (r *staticAttesterRepo) GetByID(_ context.Context, attesterID string) (*domain.AttesterConfig, error) {
	if r.err != nil {
		return nil, r.err
	}
	cfg := r.cfg
	cfg.AttesterID = attesterID
	return &cfg, nil
}

type staticPolicyEngine struct {
	eval      domain.PolicyEvaluation
	lastInput *domain.PolicyInput
}

func (e *staticPolicyEngine) Evaluate(_ context.Context, input domain.PolicyInput) (domain.PolicyEvaluation, error) {
	e.lastInput = &input
	return e.eval, nil
}

type memListRepo struct {
	lists map[string]domain.AccessList
	caps  map[string]domain.AdminCapability
}

func newMemListRepo() *memListRepo {
	return &memListRepo{
		lists: make(map[string]domain.AccessList),
		caps:  make(map[string]domain.AdminCapability),
	}
}

func (r *memListRepo) Create(_ context.Context, list domain.AccessList, cap domain.AdminCapability) error {
	r.lists[list.ID] = list
	r.caps[cap.ID] = cap
	return nil
}

func (r *memListRepo) Get(_ context.Context, id string) (*domain.AccessList, error) {
	list, ok := r.lists[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := list
	copied.Members = append([]string(nil), list.Members...)
	return &copied, nil
}

func (r *memListRepo) GetCapability(_ context.Context, capID string) (*domain.AdminCapability, error) {
	cap, ok := r.caps[capID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cap, nil
}

func (r *memListRepo) Save(_ context.Context, list *domain.AccessList) error {
	r.lists[list.ID] = *list
	return nil
}

type memListingRepo struct {
	mu       sync.Mutex
	listings map[string]domain.Listing
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{listings: make(map[string]domain.Listing)}
}

func (r *memListingRepo) Create(_ context.Context, listing domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.ID] = listing
	return nil
}

func (r *memListingRepo) Get(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &listing, nil
}

func (r *memListingRepo) Update(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.ID] = *listing
	return nil
}

func (r *memListingRepo) IncrementSaleCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return domain.ErrNotFound
	}
	listing.SaleCount++
	r.listings[id] = listing
	return nil
}

func (r *memListingRepo) saleCount(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listings[id].SaleCount
}

type memReceiptRepo struct {
	mu       sync.Mutex
	receipts map[string]domain.PurchaseReceipt
}

func newMemReceiptRepo() *memReceiptRepo {
	return &memReceiptRepo{receipts: make(map[string]domain.PurchaseReceipt)}
}

func (r *memReceiptRepo) Create(_ context.Context, receipt domain.PurchaseReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts[receipt.ID] = receipt
	return nil
}

func (r *memReceiptRepo) Get(_ context.Context, id string) (*domain.PurchaseReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	receipt, ok := r.receipts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &receipt, nil
}

type memLedger struct {
	mu       sync.Mutex
	platform uint64
	sellers  map[string]uint64
}

func newMemLedger() *memLedger {
	return &memLedger{sellers: make(map[string]uint64)}
}

func (l *memLedger) CreditSeller(_ context.Context, seller string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sellers[seller] += amount
	return nil
}

func (l *memLedger) AddPlatformFee(_ context.Context, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.platform += amount
	return nil
}

func (l *memLedger) PlatformBalance(_ context.Context) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.platform, nil
}

func (l *memLedger) WithdrawPlatform(_ context.Context, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount > l.platform {
		return domain.ErrInsufficientPayment
	}
	l.platform -= amount
	return nil
}

func (l *memLedger) platformBalance() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.platform
}

// recordingTx marks when a unit of work is open so tests can assert every
// write of an operation happens inside it.
type recordingTx struct {
	entered int
	active  bool
}

func (t *recordingTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.entered++
	t.active = true
	defer func() { t.active = false }()
	return fn(ctx)
}

// txCheckedLedger fails the test if a write lands outside the open
// transaction.
type txCheckedLedger struct {
	*memLedger
	tx      *recordingTx
	outside *int
}

func (l *txCheckedLedger) AddPlatformFee(ctx context.Context, amount uint64) error {
	if !l.tx.active {
		*l.outside++
	}
	return l.memLedger.AddPlatformFee(ctx, amount)
}

func (l *txCheckedLedger) CreditSeller(ctx context.Context, seller string, amount uint64) error {
	if !l.tx.active {
		*l.outside++
	}
	return l.memLedger.CreditSeller(ctx, seller, amount)
}

type failingReceiptRepo struct {
	err error
}

func (r *failingReceiptRepo) Create(_ context.Context, _ domain.PurchaseReceipt) error {
	return r.err
}

func (r *failingReceiptRepo) Get(_ context.Context, _ string) (*domain.PurchaseReceipt, error) {
	return nil, domain.ErrNotFound
}

type staticVersionRepo struct {
	version uint64
}

func (r *staticVersionRepo) Get(_ context.Context) (domain.PackageVersion, error) {
	return domain.PackageVersion{Version: r.version, UpdatedAt: time.Now()}, nil
}

func (r *staticVersionRepo) Set(_ context.Context, version uint64) error {
	r.version = version
	return nil
}
