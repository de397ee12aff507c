// Package failure classifies the recoverable error conditions surfaced by gatekey.
//
// Every expected failure (missing session, expired session, rejected proof,
// malformed input) is returned as a *Error carrying a Kind. Callers branch on
// the kind with errors.Is(err, failure.SessionExpired) or KindOf, and can ask
// Remediation for the user-facing next step.
package failure
