package crypto

import (
	"crypto/ed25519"
	"fmt"

	"sealreg/internal/domain"
	"sealreg/internal/infra/encoding"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// VerifyAttestation reconstructs the signed bytes from raw field values and
// checks sig against the configured attester key. An invalid signature is an
// expected outcome and yields (false, nil); a malformed configuration is a
// deployment fault and yields an error the caller must not swallow.
func (s *Service) VerifyAttestation(cfg domain.AttesterConfig, intent domain.Intent, timestampMS uint64, payload domain.VerificationPayload, sig []byte) (bool, error) {
	if cfg.Alg != domain.SigAlgEd25519 {
		return false, fmt.Errorf("unsupported attestation algorithm: %q", cfg.Alg)
	}
	if len(cfg.PublicKey) != ed25519.PublicKeySize {
		return false, fmt.Errorf("invalid ed25519 public key length: %d", len(cfg.PublicKey))
	}
	if len(sig) != ed25519.SignatureSize {
		return false, nil
	}
	signing := encoding.SigningBytes(intent, timestampMS, payload)
	return ed25519.Verify(ed25519.PublicKey(cfg.PublicKey), signing, sig), nil
}

// MetadataHash digests the descriptive fields of a verified payload for
// storage on the proof record.
func MetadataHash(payload domain.VerificationPayload) []byte {
	return sha256Bytes(encoding.EncodePayload(payload))
}
