package network

import (
	"net/http"

	"gatekey/internal/failure"
)

// StatusFor maps a failure kind to the HTTP status the server answers with.
func StatusFor(kind failure.Kind) int {
	switch kind {
	case failure.GateUnsatisfied:
		return http.StatusForbidden
	case failure.ProofMissing:
		return http.StatusUnauthorized
	case failure.CiphertextCorrupt:
		return http.StatusUnprocessableEntity
	case failure.AccessControlInvalid, failure.InvalidInput, failure.NotGatedForChain:
		return http.StatusBadRequest
	case failure.NetworkNotReady:
		return http.StatusServiceUnavailable
	case failure.SessionAuthorizationFailed, failure.ProviderRejected:
		return http.StatusUnauthorized
	case failure.NetworkFailure, failure.RelayFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// kindForStatus is the client-side inverse used when a response carries no
// recognizable kind.
func kindForStatus(status int, fallback failure.Kind) failure.Kind {
	switch status {
	case http.StatusForbidden:
		return failure.GateUnsatisfied
	case http.StatusUnauthorized:
		return failure.ProofMissing
	case http.StatusUnprocessableEntity:
		return failure.CiphertextCorrupt
	case http.StatusBadRequest:
		return failure.InvalidInput
	case http.StatusServiceUnavailable:
		return failure.NetworkNotReady
	default:
		return fallback
	}
}

func knownKind(k failure.Kind) bool {
	switch k {
	case failure.ProviderUnavailable, failure.ProviderRejected,
		failure.CredentialConstructionFailed, failure.SessionAuthorizationFailed,
		failure.SessionExpired, failure.SessionNotFound, failure.ConnectInProgress,
		failure.NetworkNotReady, failure.NetworkFailure, failure.AccessControlInvalid,
		failure.NotGatedForChain, failure.ProofMissing, failure.GateUnsatisfied,
		failure.CiphertextCorrupt, failure.StorageFailure, failure.RelayFailure,
		failure.InvalidInput:
		return true
	default:
		return false
	}
}
