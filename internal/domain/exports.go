package domain

import (
	interfaces "gatekey/internal/domain/interfaces"
	types "gatekey/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	DID                   = types.DID
	Namespace             = types.Namespace
	Family                = types.Family
	AccountDescriptor     = types.AccountDescriptor
	IdentityRecord        = types.IdentityRecord
	AuthProof             = types.AuthProof
	Capability            = types.Capability
	SessionInfo           = types.SessionInfo
	ConnectOutcome        = types.ConnectOutcome
	ConnectResult         = types.ConnectResult
	OAuthRequest          = types.OAuthRequest
	PKPResponse           = types.PKPResponse
	ReturnValueTest       = types.ReturnValueTest
	EVMCondition          = types.EVMCondition
	SolanaReturnValueTest = types.SolanaReturnValueTest
	PDAInterface          = types.PDAInterface
	SolanaCondition       = types.SolanaCondition
	Forest                = types.Forest
	TokenGateRule         = types.TokenGateRule
	EncryptionRules       = types.EncryptionRules
	EncryptedContent      = types.EncryptedContent
	EncryptedPayload      = types.EncryptedPayload
	SaveKeyRequest        = types.SaveKeyRequest
	GetKeyRequest         = types.GetKeyRequest
	Document              = types.Document
	Conversation          = types.Conversation
	Message               = types.Message
	Post                  = types.Post
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	CredentialStore   = interfaces.CredentialStore
	DocumentStore     = interfaces.DocumentStore
	KeyNetwork        = interfaces.KeyNetwork
	EncryptionRelay   = interfaces.EncryptionRelay
	PKPIssuer         = interfaces.PKPIssuer
	IdentityDirectory = interfaces.IdentityDirectory
	SessionService    = interfaces.SessionService
	EncryptionService = interfaces.EncryptionService
)

// Re-exported constants.
const (
	NamespaceEIP155 = types.NamespaceEIP155
	NamespaceSolana = types.NamespaceSolana
	NamespaceTezos  = types.NamespaceTezos
	NamespaceStacks = types.NamespaceStacks
	NamespaceKey    = types.NamespaceKey

	FamilyNone   = types.FamilyNone
	FamilyEVM    = types.FamilyEVM
	FamilySolana = types.FamilySolana

	OutcomeAuthenticated       = types.OutcomeAuthenticated
	OutcomePendingVerification = types.OutcomePendingVerification

	PKPStatusAuthenticated = types.PKPStatusAuthenticated
	PKPStatusPending       = types.PKPStatusPending
	PKPStatusError         = types.PKPStatusError

	DerivedViaPersonalSign = types.DerivedViaPersonalSign
	DerivedViaSolanaSign   = types.DerivedViaSolanaSign
	DerivedViaTezosSign    = types.DerivedViaTezosSign
	DerivedViaStacksSign   = types.DerivedViaStacksSign

	OperatorOr    = types.OperatorOr
	OperatorAnd   = types.OperatorAnd
	CallerAddress = types.CallerAddress

	StandardERC20          = types.StandardERC20
	StandardERC721         = types.StandardERC721
	StandardERC1155        = types.StandardERC1155
	StandardSolanaContract = types.StandardSolanaContract
	TokenGateType          = types.TokenGateType
)

// ParseFamily maps a wire chain name to a Family.
func ParseFamily(s string) (Family, bool) { return types.ParseFamily(s) }

// MarshalPlain marshals v without HTML escaping.
func MarshalPlain(v any) ([]byte, error) { return types.MarshalPlain(v) }
