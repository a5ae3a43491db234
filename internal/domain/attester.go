package domain

// Attestation signature algorithms. Only ed25519 is supported; the
// configuration store is the append-only trust anchor and rotation happens
// outside this service.
const SigAlgEd25519 = "ed25519"

// AttesterConfig is the currently trusted verification key material for one
// attester, read per call and never mutated here.
type AttesterConfig struct {
	AttesterID string
	Alg        string
	PublicKey  []byte
}
