// Package conditions builds the access control forests that gate release of
// content keys.
//
// A forest holds one condition list per chain family. Leaves within a family
// are joined by combinator nodes placed strictly between siblings, so n
// leaves always carry n-1 combinators. Builders are pure: the same input
// always yields the same forest, in input order, so ciphertext gates are
// reproducible.
//
// Custom forests and rules supplied as JSON are checked against embedded
// JSON schemas before use. Digest returns the RFC 8785 canonical digest a
// key network binds wrapped keys to.
package conditions
