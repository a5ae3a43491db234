package domain

import "time"

// EngineSchemaVersion is the package version this binary was built against.
// Subscription approvals compare it to the stored counter before anything
// else; a mismatch is fatal, not a deny.
const EngineSchemaVersion uint64 = 1

// PackageVersion is the single monotonic counter gating all subscription
// approvals. Mutation is owner-only.
type PackageVersion struct {
	Version   uint64
	UpdatedAt time.Time
}
