// Package content writes conversations, direct messages and posts through the
// document delegate, encrypting them with the gateway.
//
// Every write requires an active session; the session's identity is the
// document principal. Direct messages are gated to the conversation's
// recipients plus the sender. Posts are gated by an optional token rule or a
// custom forest.
package content
