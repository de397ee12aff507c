package session_test

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekey/internal/chain"
	"gatekey/internal/failure"
	"gatekey/internal/services/session"
)

func issue(t *testing.T, ttl time.Duration) session.Blob {
	t.Helper()
	ctx := context.Background()
	adapter := chain.NewEVM(evmWallet(t))
	account, err := adapter.ResolveAccount(ctx)
	require.NoError(t, err)
	method, err := adapter.AuthMethod(ctx, account)
	require.NoError(t, err)
	b, err := session.Issue(ctx, session.IssueParams{Account: account, Method: method, Domain: "example.org", TTL: ttl})
	require.NoError(t, err)
	return b
}

func TestIssueAndDecode(t *testing.T) {
	t.Parallel()
	b := issue(t, time.Hour)

	require.NotNil(t, b.Capability)
	assert.Equal(t, "example.org", b.Capability.Domain)
	assert.NotEmpty(t, b.Capability.Nonce)
	assert.Contains(t, b.Capability.URI, "did:key:z")
	assert.Equal(t, b.IssuedAt+3600, b.ExpiresAt)

	encoded, err := b.Encode()
	require.NoError(t, err)
	got, err := session.DecodeBlob(encoded)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	info := got.Info()
	assert.Equal(t, b.DID, info.DID)
	assert.Equal(t, b.Capability.Address, info.Account.Address)
}

func TestBlobExpiryBoundary(t *testing.T) {
	t.Parallel()
	exp := time.Unix(1_800_000_000, 0)
	b := session.Blob{ExpiresAt: exp.Unix()}

	assert.False(t, b.Expired(exp.Add(-time.Second)))
	assert.True(t, b.Expired(exp))
	assert.False(t, session.Blob{}.Expired(exp.Add(1000*time.Hour)), "no expiry")
}

func TestDecodeBlobRejects(t *testing.T) {
	t.Parallel()
	good := issue(t, time.Hour)

	enc := func(b session.Blob) string {
		s, err := b.Encode()
		require.NoError(t, err)
		return s
	}
	wrongVersion := good
	wrongVersion.V = 9
	badDID := good
	badDID.DID = "did:pkh:eip155:1"
	badKey := good
	badKey.Key = "abcd"
	foreign := good
	c := *good.Capability
	c.Address = "0x0000000000000000000000000000000000000001"
	foreign.Capability = &c

	cases := map[string]string{
		"not base64":    "%%%",
		"not json":      base64.RawURLEncoding.EncodeToString([]byte("{")),
		"wrong version": enc(wrongVersion),
		"bad did":       enc(badDID),
		"bad key":       enc(badKey),
		"foreign cap":   enc(foreign),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := session.DecodeBlob(s)
			assert.ErrorIs(t, err, failure.SessionNotFound)
		})
	}
}
