package types

import "time"

// ConnectOutcome is the result of a connect attempt that did not fail.
type ConnectOutcome string

const (
	OutcomeAuthenticated       ConnectOutcome = "authenticated"
	OutcomePendingVerification ConnectOutcome = "pending_verification"
)

// SessionInfo is the public view of an active session.
type SessionInfo struct {
	DID       DID               `json:"did"`
	Account   AccountDescriptor `json:"account"`
	IssuedAt  time.Time         `json:"issuedAt"`
	ExpiresAt time.Time         `json:"expiresAt,omitzero"`
	Resources []string          `json:"resources,omitempty"`
}

// Family returns the condition family of the session's account.
func (s SessionInfo) Family() Family { return s.Account.Family() }

// ConnectResult is returned by every connect and resume path.
type ConnectResult struct {
	Outcome ConnectOutcome `json:"status"`
	DID     DID            `json:"did,omitempty"`
	Details SessionInfo    `json:"details"`
	Message string         `json:"result,omitempty"`
}

// OAuthRequest asks a PKP issuance relay for a network-custodied key.
type OAuthRequest struct {
	Type        string `json:"type"`
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken"`
	Email       string `json:"email,omitempty"`
	Code        string `json:"code,omitempty"`
}

// PKP issuance statuses.
const (
	PKPStatusAuthenticated = "authenticated"
	PKPStatusPending       = "pending_verification"
	PKPStatusError         = "error"
)

// PKPResponse is the two-phase response of a PKP issuance relay.
type PKPResponse struct {
	Status    string     `json:"status"`
	Session   string     `json:"session,omitempty"`
	AuthProof *AuthProof `json:"authProof,omitempty"`
	Message   string     `json:"message,omitempty"`
}
