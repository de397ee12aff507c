package failure

import (
	"errors"
	"strings"
)

// Kind names a class of failure.
type Kind string

const (
	ProviderUnavailable          Kind = "provider_unavailable"
	ProviderRejected             Kind = "provider_rejected"
	CredentialConstructionFailed Kind = "credential_construction_failed"
	SessionAuthorizationFailed   Kind = "session_authorization_failed"
	SessionExpired               Kind = "session_expired"
	SessionNotFound              Kind = "session_not_found"
	ConnectInProgress            Kind = "connect_in_progress"
	NetworkNotReady              Kind = "network_not_ready"
	NetworkFailure               Kind = "network_failure"
	AccessControlInvalid         Kind = "access_control_invalid"
	NotGatedForChain             Kind = "not_gated_for_chain"
	ProofMissing                 Kind = "proof_missing"
	GateUnsatisfied              Kind = "gate_unsatisfied"
	CiphertextCorrupt            Kind = "ciphertext_corrupt"
	StorageFailure               Kind = "storage_failure"
	RelayFailure                 Kind = "relay_failure"
	InvalidInput                 Kind = "invalid_input"
)

// Error implements error so a bare Kind can be used as an errors.Is target.
func (k Kind) Error() string { return string(k) }

// Error is a classified failure.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(string(e.Kind))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same Kind as e.
func (e *Error) Is(target error) bool {
	var k Kind
	if errors.As(target, &k) {
		return e.Kind == k
	}
	return false
}

// New returns a classified error without a cause.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap classifies cause. A nil cause yields nil. An already classified cause
// keeps its original kind so the most specific classification wins.
func Wrap(cause error, kind Kind, op, msg string) error {
	if cause == nil {
		return nil
	}
	var classified *Error
	if errors.As(cause, &classified) {
		return &Error{Kind: classified.Kind, Op: op, Msg: msg, Err: cause}
	}
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

// Reclassify wraps cause under kind even when cause is already classified.
func Reclassify(cause error, kind Kind, op, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

// KindOf returns the outermost kind in err's chain, or "" when err is unclassified.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return ""
}

// Remediation returns the user-facing next step for kind.
func Remediation(kind Kind) string {
	switch kind {
	case SessionNotFound:
		return "you are not connected; connect a wallet first"
	case SessionExpired:
		return "your session expired; reconnect to sign a new session"
	case ProofMissing:
		return "no access proof cached; sign a new proof for this address"
	case GateUnsatisfied:
		return "the key network rejected your proof; this account lacks access"
	case NotGatedForChain:
		return "this content was never shared with accounts on this chain"
	case ProviderUnavailable:
		return "no wallet provider available for this chain"
	case ProviderRejected:
		return "the wallet rejected the request"
	case NetworkNotReady:
		return "the key network is still connecting; retry shortly"
	case ConnectInProgress:
		return "a connection attempt is already running"
	default:
		return ""
	}
}
