// Package memnode is an in-process key network that honors the same
// contract as the threshold network: it wraps content keys under a
// condition forest and releases them only to callers whose AuthProof
// satisfies that forest.
//
// Wrapping keys are derived with HKDF from a master secret, salted with the
// canonical digest of the serialized forest, so a wrapped key only unwraps
// under the exact conditions it was saved with. Forests are evaluated left
// to right; :userAddress leaves compare the proven address and balance
// leaves ask a BalanceOracle.
//
// memnode backs the development relay and the test suites. It does not
// split secrets or reach consensus.
package memnode
