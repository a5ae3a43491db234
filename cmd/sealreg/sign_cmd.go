package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"sealreg/internal/domain"
	"sealreg/pkg/attest"
)

// attestationDoc is the portable form the sign and verify subcommands
// exchange. Hashes are hex, signatures base64, matching the HTTP API.
type attestationDoc struct {
	DatasetID   string `json:"dataset_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MediaType   string `json:"media_type"`
	SizeBytes   uint64 `json:"size_bytes"`
	ContentHash string `json:"content_hash"`
	BlobRef     string `json:"blob_ref"`
	PolicyRef   string `json:"policy_ref"`
	TimestampMS uint64 `json:"timestamp_ms"`
	SubmittedBy string `json:"submitted_by"`
	Signature   string `json:"signature"`
}

func runSign(args []string) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var datasetID string
	var name string
	var description string
	var mediaType string
	var sizeBytes uint64
	var contentHashHex string
	var blobRef string
	var policyRef string
	var timestampMS uint64
	var submittedBy string
	var keyHex string
	var keyBase64 string
	var outPath string

	fs.StringVar(&datasetID, "dataset-id", "", "dataset id")
	fs.StringVar(&name, "name", "", "dataset name")
	fs.StringVar(&description, "description", "", "dataset description")
	fs.StringVar(&mediaType, "media-type", "", "media type")
	fs.Uint64Var(&sizeBytes, "size-bytes", 0, "artifact size in bytes")
	fs.StringVar(&contentHashHex, "content-hash", "", "content hash hex")
	fs.StringVar(&blobRef, "blob-ref", "", "blob reference")
	fs.StringVar(&policyRef, "policy-ref", "", "policy reference")
	fs.Uint64Var(&timestampMS, "timestamp-ms", 0, "attestation timestamp (unix ms)")
	fs.StringVar(&submittedBy, "submitted-by", "", "submitting principal")
	fs.StringVar(&keyHex, "key-hex", "", "ed25519 private key or seed, hex")
	fs.StringVar(&keyBase64, "key-base64", "", "ed25519 private key or seed, base64")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	privateKey, err := decodePrivateKey(keyHex, keyBase64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode key: %v\n", err)
		return 1
	}
	contentHash, err := hex.DecodeString(contentHashHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode content-hash: %v\n", err)
		return 1
	}

	payload, err := attest.BuildPayload(attest.PayloadInput{
		DatasetID:   datasetID,
		Name:        name,
		Description: description,
		MediaType:   mediaType,
		SizeBytes:   sizeBytes,
		ContentHash: contentHash,
		BlobRef:     blobRef,
		PolicyRef:   policyRef,
		TimestampMS: timestampMS,
		SubmittedBy: submittedBy,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "build payload: %v\n", err)
		return 1
	}

	sig, _, err := attest.SignPayload(domain.IntentDatasetRegistration, payload, privateKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign: %v\n", err)
		return 1
	}

	doc := attestationDoc{
		DatasetID:   payload.DatasetID,
		Name:        payload.Name,
		Description: payload.Description,
		MediaType:   payload.MediaType,
		SizeBytes:   payload.SizeBytes,
		ContentHash: hex.EncodeToString(payload.ContentHash),
		BlobRef:     payload.BlobRef,
		PolicyRef:   payload.PolicyRef,
		TimestampMS: payload.TimestampMS,
		SubmittedBy: payload.SubmittedBy,
		Signature:   base64.StdEncoding.EncodeToString(sig),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode attestation: %v\n", err)
		return 1
	}
	data = append(data, '\n')

	if outPath == "" {
		os.Stdout.Write(data)
		return 0
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

func decodePrivateKey(keyHex, keyBase64 string) (ed25519.PrivateKey, error) {
	var raw []byte
	var err error
	switch {
	case keyHex != "" && keyBase64 != "":
		return nil, fmt.Errorf("pass either --key-hex or --key-base64, not both")
	case keyHex != "":
		raw, err = hex.DecodeString(keyHex)
	case keyBase64 != "":
		raw, err = base64.StdEncoding.DecodeString(keyBase64)
	default:
		return nil, fmt.Errorf("--key-hex or --key-base64 is required")
	}
	if err != nil {
		return nil, err
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("key must be a %d-byte seed or %d-byte private key", ed25519.SeedSize, ed25519.PrivateKeySize)
	}
}
