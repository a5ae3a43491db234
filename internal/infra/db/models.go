package db

import "time"

type ProofRecordModel struct {
	ID            string  `gorm:"type:uuid;primaryKey"`
	DatasetID     string  `gorm:"index;not null"`
	ContentHash   []byte  `gorm:"type:bytea;not null"`
	MetadataHash  []byte  `gorm:"type:bytea;not null"`
	BlobRef       string  `gorm:"not null"`
	PolicyRef     string  `gorm:"not null"`
	AccessListID  *string `gorm:"type:uuid;index"`
	Name          string  `gorm:"not null"`
	Description   string
	MediaType     string    `gorm:"not null"`
	SizeBytes     uint64    `gorm:"not null"`
	SchemaVersion uint8     `gorm:"not null"`
	VerifiedAtMS  uint64    `gorm:"column:verified_at_ms;not null"`
	Attester      string    `gorm:"index;not null"`
	Signature     []byte    `gorm:"type:bytea;not null"`
	Owner         string    `gorm:"index;not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (ProofRecordModel) TableName() string {
	return "proof_records"
}

type AttesterConfigModel struct {
	AttesterID string    `gorm:"primaryKey"`
	Alg        string    `gorm:"not null"`
	PublicKey  []byte    `gorm:"type:bytea;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (AttesterConfigModel) TableName() string {
	return "attester_configs"
}

type AccessListModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (AccessListModel) TableName() string {
	return "access_lists"
}

type AccessMemberModel struct {
	ID           int64     `gorm:"primaryKey"`
	AccessListID string    `gorm:"type:uuid;index;not null"`
	Principal    string    `gorm:"index;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (AccessMemberModel) TableName() string {
	return "access_list_members"
}

type AccessAttachmentModel struct {
	ID           int64     `gorm:"primaryKey"`
	AccessListID string    `gorm:"type:uuid;index;not null"`
	Key          []byte    `gorm:"column:attachment_key;type:bytea;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (AccessAttachmentModel) TableName() string {
	return "access_list_attachments"
}

type AdminCapabilityModel struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	AccessListID string    `gorm:"type:uuid;uniqueIndex;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (AdminCapabilityModel) TableName() string {
	return "admin_capabilities"
}

type ListingModel struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	ProofRecordID  string `gorm:"type:uuid;index;not null"`
	Seller         string `gorm:"index;not null"`
	Name           string `gorm:"not null"`
	Description    string
	BlobRef        string    `gorm:"not null"`
	ContentHash    []byte    `gorm:"type:bytea;not null"`
	SchemaVersion  uint8     `gorm:"not null"`
	Price          uint64    `gorm:"not null"`
	SubscriptionMS uint64    `gorm:"column:subscription_ms;not null"`
	Active         bool      `gorm:"not null"`
	SaleCount      uint64    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (ListingModel) TableName() string {
	return "listings"
}

type PurchaseReceiptModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	ListingID     string    `gorm:"type:uuid;index;not null"`
	Seller        string    `gorm:"not null"`
	Buyer         string    `gorm:"index;not null"`
	BlobRef       string    `gorm:"not null"`
	PurchasedAtMS uint64    `gorm:"column:purchased_at_ms;not null"`
	ExpiresAtMS   uint64    `gorm:"column:expires_at_ms;index;not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (PurchaseReceiptModel) TableName() string {
	return "purchase_receipts"
}

type PlatformLedgerModel struct {
	ID        int16     `gorm:"primaryKey"`
	Balance   uint64    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (PlatformLedgerModel) TableName() string {
	return "platform_ledger"
}

type SellerBalanceModel struct {
	Seller    string    `gorm:"primaryKey"`
	Balance   uint64    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (SellerBalanceModel) TableName() string {
	return "seller_balances"
}

type PackageVersionModel struct {
	ID        int16     `gorm:"primaryKey"`
	Version   uint64    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (PackageVersionModel) TableName() string {
	return "package_version"
}
