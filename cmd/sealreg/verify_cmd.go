package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"sealreg/internal/domain"
	"sealreg/internal/infra/crypto"
)

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var pubkeyHex string
	var pubkeyBase64 string

	fs.StringVar(&inPath, "in", "", "attestation JSON path")
	fs.StringVar(&pubkeyHex, "pubkey-hex", "", "attester public key, hex")
	fs.StringVar(&pubkeyBase64, "pubkey-base64", "", "attester public key, base64")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "--in is required")
		return 1
	}

	publicKey, err := decodePublicKey(pubkeyHex, pubkeyBase64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode pubkey: %v\n", err)
		return 1
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", inPath, err)
		return 1
	}
	var doc attestationDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		fmt.Fprintf(os.Stderr, "decode attestation: %v\n", err)
		return 1
	}
	contentHash, err := hex.DecodeString(doc.ContentHash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode content_hash: %v\n", err)
		return 1
	}
	sig, err := base64.StdEncoding.DecodeString(doc.Signature)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode signature: %v\n", err)
		return 1
	}

	payload := domain.VerificationPayload{
		DatasetID:   doc.DatasetID,
		Name:        doc.Name,
		Description: doc.Description,
		MediaType:   doc.MediaType,
		SizeBytes:   doc.SizeBytes,
		ContentHash: contentHash,
		BlobRef:     doc.BlobRef,
		PolicyRef:   doc.PolicyRef,
		TimestampMS: doc.TimestampMS,
		SubmittedBy: doc.SubmittedBy,
	}
	cfg := domain.AttesterConfig{
		Alg:       domain.SigAlgEd25519,
		PublicKey: publicKey,
	}

	ok, err := crypto.NewService().VerifyAttestation(cfg, domain.IntentDatasetRegistration, payload.TimestampMS, payload, sig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		return 1
	}
	out := map[string]any{"signature_valid": ok}
	encoded, _ := json.Marshal(out)
	fmt.Println(string(encoded))
	if !ok {
		return 2
	}
	return 0
}

func decodePublicKey(pubkeyHex, pubkeyBase64 string) ([]byte, error) {
	switch {
	case pubkeyHex != "" && pubkeyBase64 != "":
		return nil, fmt.Errorf("pass either --pubkey-hex or --pubkey-base64, not both")
	case pubkeyHex != "":
		return hex.DecodeString(pubkeyHex)
	case pubkeyBase64 != "":
		return base64.StdEncoding.DecodeString(pubkeyBase64)
	default:
		return nil, fmt.Errorf("--pubkey-hex or --pubkey-base64 is required")
	}
}
