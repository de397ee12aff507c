// Package commands defines the gatekey CLI.
//
// Commands
//
//   - connect        Authorize a session with a local EVM key or Solana seed
//   - connect-seed   Start a did:key session from a seed
//   - connect-oauth  Sign in through the PKP relay
//   - whoami         Print the connected identity
//   - logout         Forget the session and cached proofs
//   - conditions     Print the access control conditions for a rule
//   - encrypt        Encrypt for recipients or token holders
//   - decrypt        Decrypt a payload with the connected session
//   - conversation   Create or show a conversation (create, show)
//   - message        Send or read a conversation message (send, read)
//   - post           Publish or read a post, optionally token-gated (create, read)
//
// # Implementation
//
// Configuration comes from GATEKEY_* variables (and .env); the persistent
// flags override the store, home directory, node, relay and network mode.
// Each invocation builds the dependency graph once, resumes the stored
// session where the command needs one, and closes backends on exit.
// Documents and the identities that connected are kept next to the
// credential store, so content written by one invocation is readable by
// the next.
package commands
