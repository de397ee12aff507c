package app_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekey/internal/app"
	"gatekey/internal/chain"
	"gatekey/internal/conditions"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/logger"
	"gatekey/internal/network/memnode"
	"gatekey/internal/relay"
	"gatekey/internal/services/gateway"
	"gatekey/internal/services/session"
	"gatekey/internal/store"
)

func startRelay(t *testing.T) *httptest.Server {
	t.Helper()
	master := bytes.Repeat([]byte{7}, 32)
	mem, err := memnode.New(master)
	require.NoError(t, err)
	gw, err := gateway.NewLocal(mem)
	require.NoError(t, err)
	gw.Start(context.Background())
	pkp, err := relay.NewPKP(master)
	require.NoError(t, err)
	srv, err := relay.NewServer(mem, gw, relay.WithPKPIssuer(pkp))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func config(t *testing.T, ts *httptest.Server, extra map[string]string) app.Config {
	t.Helper()
	environ := map[string]string{
		"GATEKEY_HOME":      t.TempDir(),
		"GATEKEY_STORE":     app.StoreMemory,
		"GATEKEY_NODE_URL":  ts.URL,
		"GATEKEY_RELAY_URL": ts.URL,
	}
	for k, v := range extra {
		environ[k] = v
	}
	cfg, err := app.ParseConfig(environ)
	require.NoError(t, err)
	return cfg
}

func newWire(t *testing.T, ts *httptest.Server, cfg app.Config) *app.Wire {
	t.Helper()
	w, err := app.NewWire(context.Background(), cfg, app.WithLogger(logger.Discard()), app.WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func connectEVM(t *testing.T, w *app.Wire) domain.ConnectResult {
	t.Helper()
	wallet, err := chain.NewLocalEVMWallet("")
	require.NoError(t, err)
	res, err := w.Sessions.Connect(context.Background(), chain.NewEVM(wallet))
	require.NoError(t, err)
	return res
}

func TestWireRoundTripInBothModes(t *testing.T) {
	t.Parallel()
	ts := startRelay(t)

	for _, mode := range []string{app.ModeLocal, app.ModeDelegated} {
		t.Run(mode, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			cfg := config(t, ts, map[string]string{"GATEKEY_NETWORK_MODE": mode})
			alice, bob := newWire(t, ts, cfg), newWire(t, ts, cfg)
			assert.Equal(t, gateway.Mode(mode), alice.Gateway.Mode())

			a := connectEVM(t, alice)
			b := connectEVM(t, bob)

			payload, err := alice.Gateway.Encrypt(ctx, []byte("gm"), conditions.ForRecipients([]domain.DID{a.DID, b.DID}))
			require.NoError(t, err)

			proof, err := bob.Sessions.AuthProof(ctx)
			require.NoError(t, err)
			pt, err := bob.Gateway.Decrypt(ctx, payload, &proof, domain.FamilyEVM)
			require.NoError(t, err)
			assert.Equal(t, "gm", string(pt))
		})
	}
}

func TestWireContentService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := startRelay(t)
	w := newWire(t, ts, config(t, ts, nil))
	connectEVM(t, w)

	id, err := w.Content.CreateConversation(ctx, []domain.DID{"did:pkh:eip155:1:0x00000000000000000000000000000000000000bb"}, "plans")
	require.NoError(t, err)
	conv, err := w.Content.Conversation(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, conv.EncryptedName)
	name, err := w.Content.DecryptMessage(ctx, *conv.EncryptedName)
	require.NoError(t, err)
	assert.Equal(t, "plans", name)
}

func TestWireOAuthThroughRelay(t *testing.T) {
	t.Parallel()
	ts := startRelay(t)
	w := newWire(t, ts, config(t, ts, nil))

	res, err := w.Sessions.ConnectOAuth(context.Background(), domain.OAuthRequest{Type: "discord", UserID: "d-1", AccessToken: "t"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAuthenticated, res.Outcome)
	assert.Equal(t, session.Authenticated, w.Sessions.State())
}

func TestWireRedisStore(t *testing.T) {
	t.Parallel()
	ts := startRelay(t)
	mr := miniredis.RunT(t)
	cfg := config(t, ts, map[string]string{
		"GATEKEY_STORE":     app.StoreRedis,
		"GATEKEY_REDIS_URL": "redis://" + mr.Addr(),
	})

	w := newWire(t, ts, cfg)
	connectEVM(t, w)
	assert.True(t, mr.Exists("gatekey:"+store.SessionKey))

	again := newWire(t, ts, cfg)
	res, err := again.Sessions.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAuthenticated, res.Outcome)
}

func TestWireFileStoreResumes(t *testing.T) {
	t.Parallel()
	ts := startRelay(t)
	cfg := config(t, ts, map[string]string{"GATEKEY_STORE": app.StoreFile})

	first := connectEVM(t, newWire(t, ts, cfg))
	res, err := newWire(t, ts, cfg).Sessions.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.DID, res.DID)
}

func TestWireDocumentsSurviveRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := startRelay(t)
	cfg := config(t, ts, map[string]string{"GATEKEY_STORE": app.StoreFile})

	first := newWire(t, ts, cfg)
	res := connectEVM(t, first)
	id, err := first.Content.CreateConversation(ctx, []domain.DID{"did:pkh:eip155:1:0x00000000000000000000000000000000000000bb"}, "")
	require.NoError(t, err)

	second := newWire(t, ts, cfg)
	conv, err := second.Content.Conversation(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, conv.Recipients, res.DID)

	recs, err := second.Documents.IdentitiesByAddress(ctx, res.Details.Account.Address)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.DID, recs[0].DID)
}

func TestNewWireFailures(t *testing.T) {
	t.Parallel()
	ts := startRelay(t)

	cfg := config(t, ts, nil)
	cfg.Store = "tape"
	_, err := app.NewWire(context.Background(), cfg)
	assert.ErrorIs(t, err, failure.InvalidInput)

	cfg = config(t, ts, map[string]string{
		"GATEKEY_STORE":     app.StoreRedis,
		"GATEKEY_REDIS_URL": "redis://127.0.0.1:1",
	})
	_, err = app.NewWire(context.Background(), cfg, app.WithLogger(logger.Discard()))
	assert.ErrorIs(t, err, failure.InvalidInput)
}
