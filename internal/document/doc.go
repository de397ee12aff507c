// Package document is an in-memory document delegate.
//
// It honors the create / update / deterministic contract that content
// services write through, and doubles as an identity directory for the
// default-chain policy. Content is stored as JSON; IDs are UUIDs.
package document
