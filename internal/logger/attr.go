package logger

import (
	"log/slog"
	"time"

	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// Attribute helpers return an empty Attr for zero inputs so call sites never
// need nil checks; slog drops empty attributes.

// Error creates an attribute for err under the key "error", adding the
// failure kind when err is classified.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	if kind := failure.KindOf(err); kind != "" {
		return slog.Group("error", slog.String("msg", err.Error()), slog.String("kind", string(kind)))
	}
	return slog.Any("error", err)
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed logs the duration since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Component tags records with the emitting subsystem.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// DID creates an attribute for an identity.
func DID(did string) slog.Attr {
	if did == "" {
		return slog.Attr{}
	}
	return slog.String("did", did)
}

// Address creates an attribute for an on-chain address.
func Address(addr string) slog.Attr {
	if addr == "" {
		return slog.Attr{}
	}
	return slog.String("address", addr)
}

// Chain creates an attribute for a chain tag or family.
func Chain(chain string) slog.Attr {
	if chain == "" {
		return slog.Attr{}
	}
	return slog.String("chain", chain)
}

// Proof describes an auth proof without its signature or signed message.
func Proof(p *domain.AuthProof) slog.Attr {
	if p == nil {
		return slog.Attr{}
	}
	return slog.Group("proof",
		slog.String("address", p.Address),
		slog.String("derived_via", p.DerivedVia),
	)
}
