package relay

import (
	"context"
	"net/http"

	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/network"
)

// Client calls a relay over HTTP. Transport failures are RelayFailure;
// classified server errors keep their kind.
type Client struct {
	http *network.Client
}

var (
	_ domain.EncryptionRelay = (*Client)(nil)
	_ domain.PKPIssuer       = (*Client)(nil)
)

// NewClient returns a client for the relay at base using hc, or
// http.DefaultClient when hc is nil.
func NewClient(base string, hc *http.Client) *Client {
	return &Client{http: network.NewClient(base, hc, failure.RelayFailure)}
}

// Encrypt has the relay seal body under forest.
func (c *Client) Encrypt(ctx context.Context, forest domain.Forest, body []byte) (domain.EncryptedPayload, error) {
	const op = "relay.Encrypt"

	var out domain.EncryptedPayload
	if err := c.http.Post(ctx, op, PathEncrypt, EncryptRequest{Forest: forest, BodyBase64: body}, &out); err != nil {
		return domain.EncryptedPayload{}, err
	}
	if out.IsEmpty() {
		return domain.EncryptedPayload{}, failure.New(failure.RelayFailure, op, "relay returned an empty payload")
	}
	return out, nil
}

// Decrypt has the relay open content for the holder of proof.
func (c *Client) Decrypt(
	ctx context.Context,
	proof domain.AuthProof,
	family domain.Family,
	content domain.EncryptedContent,
) ([]byte, error) {
	const op = "relay.Decrypt"

	var out DecryptResponse
	req := DecryptRequest{AuthSig: proof, Chain: string(family), EncryptedContent: content}
	if err := c.http.Post(ctx, op, PathDecrypt, req, &out); err != nil {
		return nil, err
	}
	return out.Plaintext(), nil
}

// Authenticate asks the relay to issue a PKP session for an OAuth login.
func (c *Client) Authenticate(ctx context.Context, req domain.OAuthRequest) (domain.PKPResponse, error) {
	var out domain.PKPResponse
	if err := c.http.Post(ctx, "relay.Authenticate", PathPKPAuth, req, &out); err != nil {
		return domain.PKPResponse{}, err
	}
	return out, nil
}
