package domain

// Registration policy hook types. A deployment may load a rego bundle that
// gets the reconstructed payload as input and can reject a registration
// before the proof record is minted.

type PolicyDenyReason struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type PolicyResult struct {
	Allow bool               `json:"allow"`
	Deny  []PolicyDenyReason `json:"deny,omitempty"`
}

type PolicyInput struct {
	Payload  VerificationPayload `json:"payload"`
	Attester string              `json:"attester"`
	Owner    string              `json:"owner"`
}

type PolicyEvaluation struct {
	BundleID   string       `json:"bundle_id,omitempty"`
	BundleHash string       `json:"bundle_hash"`
	Result     PolicyResult `json:"result"`
}
