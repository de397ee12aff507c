// Package app wires gatekey's dependencies for the CLI and the dev relay.
//
// Config is read from GATEKEY_* environment variables, optionally seeded from
// a .env file. NewWire builds the credential store, the encryption gateway
// (local or delegated), the session manager and the content service from it,
// exposing them on the Wire struct for commands to use.
package app
