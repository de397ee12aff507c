package node

import (
	"context"
	"net/http"
	"sync/atomic"

	"gatekey/internal/crypto"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/network"
)

// Endpoint paths.
const (
	PathHandshake = "/v1/handshake"
	PathSave      = "/v1/keys/save"
	PathGet       = "/v1/keys/get"
)

// Handshake is the handshake response.
type Handshake struct {
	Ready   bool   `json:"ready"`
	Network string `json:"network"`
}

// SaveResponse carries the wrapped key.
type SaveResponse struct {
	EncryptedSymmetricKey string `json:"encryptedSymmetricKey"`
}

// GetResponse carries the released key.
type GetResponse struct {
	SymmetricKey []byte `json:"symmetricKey"`
}

// Client talks to a node over HTTP.
type Client struct {
	http  *network.Client
	ready atomic.Bool
}

var _ domain.KeyNetwork = (*Client)(nil)

// New returns a client for the node at base.
func New(base string, hc *http.Client) *Client {
	return &Client{http: network.NewClient(base, hc, failure.NetworkFailure)}
}

// Connect performs the handshake. Until it succeeds, key calls fail with
// NetworkNotReady.
func (c *Client) Connect(ctx context.Context) error {
	const op = "node.Connect"

	var hs Handshake
	if err := c.http.Get(ctx, op, PathHandshake, &hs); err != nil {
		return err
	}
	if !hs.Ready {
		return failure.New(failure.NetworkNotReady, op, "node reports not ready")
	}
	c.ready.Store(true)
	return nil
}

func (c *Client) SaveEncryptionKey(ctx context.Context, req domain.SaveKeyRequest) ([]byte, error) {
	const op = "node.SaveEncryptionKey"

	if !c.ready.Load() {
		return nil, failure.New(failure.NetworkNotReady, op, "handshake not completed")
	}
	var out SaveResponse
	if err := c.http.Post(ctx, op, PathSave, req, &out); err != nil {
		return nil, err
	}
	wrapped, err := crypto.FromHex(out.EncryptedSymmetricKey)
	if err != nil {
		return nil, failure.Wrap(err, failure.NetworkFailure, op, "node returned a malformed wrapped key")
	}
	return wrapped, nil
}

func (c *Client) GetEncryptionKey(ctx context.Context, req domain.GetKeyRequest) ([]byte, error) {
	const op = "node.GetEncryptionKey"

	if !c.ready.Load() {
		return nil, failure.New(failure.NetworkNotReady, op, "handshake not completed")
	}
	var out GetResponse
	if err := c.http.Post(ctx, op, PathGet, req, &out); err != nil {
		return nil, err
	}
	if len(out.SymmetricKey) != crypto.ContentKeyBytes {
		return nil, failure.New(failure.NetworkFailure, op, "node returned a malformed key")
	}
	return out.SymmetricKey, nil
}
