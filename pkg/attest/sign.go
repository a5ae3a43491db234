package attest

import (
	"crypto/ed25519"
	"errors"

	"sealreg/internal/domain"
	"sealreg/internal/infra/encoding"
)

// SignPayload produces the detached attestation signature for a payload.
// Real deployments do this inside the TEE; the helper exists for the CLI and
// for integration tests that need a working attester.
func SignPayload(intent domain.Intent, payload domain.VerificationPayload, privateKey ed25519.PrivateKey) ([]byte, []byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, nil, errors.New("invalid ed25519 private key")
	}
	if err := ValidatePayload(payload); err != nil {
		return nil, nil, err
	}
	signing := encoding.SigningBytes(intent, payload.TimestampMS, payload)
	return ed25519.Sign(privateKey, signing), signing, nil
}
