// Package encoding produces the canonical byte form of the signed
// verification payload. The attester and the verifier must emit identical
// bytes for identical field values, so the format is fixed: a leading schema
// version byte, fields in declared order, little-endian fixed-width
// integers, and a u32 length prefix on every variable-length field. The
// length prefixes make the encoding injective over the field space.
package encoding

import (
	"encoding/binary"

	"sealreg/internal/domain"
)

// EncodePayload serializes payload into its canonical v1 byte form.
// Encoding never fails for well-typed input.
func EncodePayload(payload domain.VerificationPayload) []byte {
	buf := make([]byte, 0, payloadSizeHint(payload))
	buf = append(buf, domain.PayloadSchemaV1)
	buf = appendString(buf, payload.DatasetID)
	buf = appendString(buf, payload.Name)
	buf = appendString(buf, payload.Description)
	buf = appendString(buf, payload.MediaType)
	buf = binary.LittleEndian.AppendUint64(buf, payload.SizeBytes)
	buf = appendBytes(buf, payload.ContentHash)
	buf = appendString(buf, payload.BlobRef)
	buf = appendString(buf, payload.PolicyRef)
	buf = binary.LittleEndian.AppendUint64(buf, payload.TimestampMS)
	buf = appendString(buf, payload.SubmittedBy)
	return buf
}

// SigningBytes prepends the domain-separation prefix to the canonical
// payload: one intent byte and the attestation timestamp. Binding intent and
// time into the signed bytes stops a signature from being replayed for a
// different operation or a different attestation instant.
func SigningBytes(intent domain.Intent, timestampMS uint64, payload domain.VerificationPayload) []byte {
	encoded := EncodePayload(payload)
	buf := make([]byte, 0, 1+8+len(encoded))
	buf = append(buf, byte(intent))
	buf = binary.LittleEndian.AppendUint64(buf, timestampMS)
	return append(buf, encoded...)
}

func appendBytes(buf, b []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b)))
	return append(buf, b...)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func payloadSizeHint(p domain.VerificationPayload) int {
	return 1 + 8 + 8 + 7*4 +
		len(p.DatasetID) + len(p.Name) + len(p.Description) + len(p.MediaType) +
		len(p.ContentHash) + len(p.BlobRef) + len(p.PolicyRef) + len(p.SubmittedBy)
}
