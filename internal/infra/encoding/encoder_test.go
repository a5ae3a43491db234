package encoding

import (
	"bytes"
	"encoding/hex"
	"testing"

	"sealreg/internal/domain"
)

func vectorPayload() domain.VerificationPayload {
	return domain.VerificationPayload{
		DatasetID:   "ds1",
		Name:        "n",
		Description: "",
		MediaType:   "text/csv",
		SizeBytes:   5,
		ContentHash: []byte{0xaa, 0xbb},
		BlobRef:     "blob",
		PolicyRef:   "pol",
		TimestampMS: 1000,
		SubmittedBy: "alice",
	}
}

func TestEncodePayload_Vector(t *testing.T) {
	expected, err := hex.DecodeString(
		"01" + // schema version
			"03000000647331" +
			"010000006e" +
			"00000000" +
			"08000000746578742f637376" +
			"0500000000000000" +
			"02000000aabb" +
			"04000000626c6f62" +
			"03000000706f6c" +
			"e803000000000000" +
			"05000000616c696365")
	if err != nil {
		t.Fatalf("decode vector: %v", err)
	}

	actual := EncodePayload(vectorPayload())
	if !bytes.Equal(actual, expected) {
		t.Fatalf("canonical bytes mismatch\n got: %x\nwant: %x", actual, expected)
	}
}

func TestEncodePayload_Deterministic(t *testing.T) {
	a := EncodePayload(vectorPayload())
	b := EncodePayload(vectorPayload())
	if !bytes.Equal(a, b) {
		t.Fatal("encoding is not deterministic")
	}
}

func TestEncodePayload_AdjacentFieldsNotConfusable(t *testing.T) {
	// Without length prefixes ("ab","c") and ("a","bc") would collapse to
	// the same bytes.
	left := vectorPayload()
	left.DatasetID = "ab"
	left.Name = "c"

	right := vectorPayload()
	right.DatasetID = "a"
	right.Name = "bc"

	if bytes.Equal(EncodePayload(left), EncodePayload(right)) {
		t.Fatal("distinct field tuples encoded to identical bytes")
	}
}

func TestEncodePayload_EveryFieldBound(t *testing.T) {
	base := EncodePayload(vectorPayload())

	mutations := []func(*domain.VerificationPayload){
		func(p *domain.VerificationPayload) { p.DatasetID = "ds2" },
		func(p *domain.VerificationPayload) { p.Name = "m" },
		func(p *domain.VerificationPayload) { p.Description = "x" },
		func(p *domain.VerificationPayload) { p.MediaType = "text/tsv" },
		func(p *domain.VerificationPayload) { p.SizeBytes = 6 },
		func(p *domain.VerificationPayload) { p.ContentHash = []byte{0xaa, 0xbc} },
		func(p *domain.VerificationPayload) { p.BlobRef = "blob2" },
		func(p *domain.VerificationPayload) { p.PolicyRef = "pol2" },
		func(p *domain.VerificationPayload) { p.TimestampMS = 1001 },
		func(p *domain.VerificationPayload) { p.SubmittedBy = "bob" },
	}
	for i, mutate := range mutations {
		payload := vectorPayload()
		mutate(&payload)
		if bytes.Equal(base, EncodePayload(payload)) {
			t.Fatalf("mutation %d did not change the canonical bytes", i)
		}
	}
}

func TestSigningBytes_DomainPrefix(t *testing.T) {
	payload := vectorPayload()
	encoded := EncodePayload(payload)
	signing := SigningBytes(domain.IntentDatasetRegistration, 7, payload)

	if len(signing) != 1+8+len(encoded) {
		t.Fatalf("unexpected signing bytes length: %d", len(signing))
	}
	if signing[0] != byte(domain.IntentDatasetRegistration) {
		t.Fatalf("intent byte = %#x", signing[0])
	}
	wantTS := []byte{7, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(signing[1:9], wantTS) {
		t.Fatalf("timestamp bytes = %x, want %x", signing[1:9], wantTS)
	}
	if !bytes.Equal(signing[9:], encoded) {
		t.Fatal("payload bytes after prefix do not match canonical encoding")
	}

	other := SigningBytes(domain.IntentDatasetRegistration, 8, payload)
	if bytes.Equal(signing, other) {
		t.Fatal("timestamp is not bound into the signing bytes")
	}
}
