package domain

import "time"

// ProofRecord is minted exactly once per successful registration. Every
// security-relevant field is copied from the verified payload, never from raw
// caller input. The record is immutable afterwards except for Owner, which
// changes on transfer.
type ProofRecord struct {
	ID            string
	DatasetID     string
	ContentHash   []byte
	MetadataHash  []byte
	BlobRef       string
	PolicyRef     string
	AccessListID  string // optional, empty until an ACL is attached
	Name          string
	Description   string
	MediaType     string
	SizeBytes     uint64
	SchemaVersion uint8
	VerifiedAtMS  uint64
	Attester      string
	Signature     []byte
	Owner         string
	CreatedAt     time.Time
}
