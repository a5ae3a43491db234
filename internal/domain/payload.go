package domain

// PayloadSchemaV1 is the only signed-payload shape this deployment accepts.
// The schema byte leads the canonical encoding, so a signature produced over
// any other shape can never verify against a v1 payload.
const PayloadSchemaV1 uint8 = 1

// Intent scopes a signature to one protocol operation. It is bound into the
// signed bytes together with the attestation timestamp.
type Intent uint8

const (
	IntentDatasetRegistration Intent = 1
)

// VerificationPayload carries the raw field values the attester signed over.
// It is reconstructed from caller input on every verification and never
// stored; callers cannot supply pre-encoded bytes.
type VerificationPayload struct {
	DatasetID   string `json:"dataset_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MediaType   string `json:"media_type"`
	SizeBytes   uint64 `json:"size_bytes"`
	ContentHash []byte `json:"content_hash"` // hash of the unencrypted artifact
	BlobRef     string `json:"blob_ref"`
	PolicyRef   string `json:"policy_ref"`
	TimestampMS uint64 `json:"timestamp_ms"`
	SubmittedBy string `json:"submitted_by"`
}
