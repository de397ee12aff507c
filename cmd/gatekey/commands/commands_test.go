package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekey/internal/failure"
	"gatekey/internal/network/memnode"
	"gatekey/internal/relay"
	"gatekey/internal/services/gateway"
)

const (
	evmKey   = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	otherKey = "8da4ef21b864d2cc526dbdb2a120bd2874c36c9d0a1fb7f8c63d7f7a8b41de8f"
)

// The CLI keeps flag state in package variables, so these tests run serially.

func setup(t *testing.T) {
	t.Helper()
	master := bytes.Repeat([]byte{5}, 32)
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

	t.Setenv("GATEKEY_HOME", t.TempDir())
	t.Setenv("GATEKEY_STORE", "file")
	t.Setenv("GATEKEY_NODE_URL", ts.URL)
	t.Setenv("GATEKEY_RELAY_URL", ts.URL)
	t.Setenv("GATEKEY_OAUTH_URL", ts.URL)
	t.Setenv("GATEKEY_NETWORK_MODE", "local")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRoot()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := execute(context.Background(), root)
	return out.String(), err
}

func TestConnectEncryptDecrypt(t *testing.T) {
	setup(t)
	payload := filepath.Join(t.TempDir(), "payload.json")

	out, err := run(t, "connect", "--evm-key", evmKey)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "authenticated"`)
	assert.Contains(t, out, "did:pkh:eip155:1:")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "eip155:1")
	assert.Contains(t, out, "Fingerprint:")

	_, err = run(t, "encrypt", "--recipient", "did:pkh:eip155:1:0x00000000000000000000000000000000000000bb",
		"--body", "see you at noon", "-o", payload)
	require.NoError(t, err)

	out, err = run(t, "decrypt", "--file", payload)
	require.NoError(t, err)
	assert.Equal(t, "see you at noon\n", out)

	_, err = run(t, "decrypt", "--file", payload, "--chain", "solana")
	assert.ErrorIs(t, err, failure.NotGatedForChain)

	out, err = run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "logged out")

	_, err = run(t, "decrypt", "--file", payload)
	assert.ErrorIs(t, err, failure.SessionNotFound)
	assert.Contains(t, err.Error(), "connect a wallet first")
}

func TestConnectSeedAndOAuth(t *testing.T) {
	setup(t)

	out, err := run(t, "connect-seed", "--seed", "0101010101010101010101010101010101010101010101010101010101010101")
	require.NoError(t, err)
	assert.Contains(t, out, "did:key:z")

	out, err = run(t, "connect-oauth", "--type", "email", "--user-id", "u-1", "--token", "t", "--email", "u@example.org")
	require.NoError(t, err)
	assert.Contains(t, out, "pending_verification")

	out, err = run(t, "connect-oauth", "--type", "email", "--user-id", "u-1", "--token", "t",
		"--email", "u@example.org", "--code", "000000")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "authenticated"`)
}

func TestConditionsCommand(t *testing.T) {
	setup(t)

	out, err := run(t, "conditions", "--gate-type", "ERC721", "--gate-contract", "0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Contains(t, out, `"method": "balanceOf"`)
	assert.Contains(t, out, `">="`)

	out, err = run(t, "conditions", "--recipient", "did:pkh:solana:mainnet:11111111111111111111111111111111")
	require.NoError(t, err)
	assert.Contains(t, out, "solRpcConditions")

	_, err = run(t, "conditions")
	assert.ErrorIs(t, err, failure.InvalidInput)
	_, err = run(t, "conditions", "--recipient", "did:key:z6Mk")
	assert.ErrorIs(t, err, failure.AccessControlInvalid)
}

func TestConnectFlagValidation(t *testing.T) {
	setup(t)

	_, err := run(t, "connect")
	assert.ErrorIs(t, err, failure.InvalidInput)
	_, err = run(t, "connect", "--evm-key", evmKey, "--solana-seed", "00")
	assert.ErrorIs(t, err, failure.InvalidInput)
	_, err = run(t, "connect", "--evm-key", "zz")
	assert.ErrorIs(t, err, failure.InvalidInput)
	_, err = run(t, "--store", "tape", "whoami")
	assert.ErrorIs(t, err, failure.InvalidInput)
}

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestConditionsFromRulesFile(t *testing.T) {
	setup(t)

	rules := writeRules(t, `{"type":"token-gated","contractType":"ERC721","contractAddress":"0xnft","minTokenBalance":1,"chain":"ethereum"}`)
	out, err := run(t, "conditions", "--rules", rules)
	require.NoError(t, err)
	assert.Contains(t, out, `"comparator": ">="`)
	assert.Contains(t, out, `"value": "1"`)
	assert.NotContains(t, out, `\u003e`)

	custom := writeRules(t, `[{"chain":"ethereum","parameters":[":userAddress"],"returnValueTest":{"comparator":"=","value":"0xAA"}}]`)
	out, err = run(t, "conditions", "--rules", custom)
	require.NoError(t, err)
	assert.Contains(t, out, `"value": "0xAA"`)

	_, err = run(t, "conditions", "--rules", writeRules(t, `{"type":"token-gated","contractType":"ERC721","contractAddress":"0xnft","minTokenBalance":-3}`))
	assert.ErrorIs(t, err, failure.AccessControlInvalid)
	_, err = run(t, "conditions", "--rules", rules, "--gate-contract", "0xnft")
	assert.ErrorIs(t, err, failure.InvalidInput)
}

func TestContentCommands(t *testing.T) {
	setup(t)

	_, err := run(t, "connect", "--evm-key", evmKey)
	require.NoError(t, err)

	out, err := run(t, "conversation", "create",
		"--recipient", "did:pkh:eip155:1:0x00000000000000000000000000000000000000bb", "--name", "lunch")
	require.NoError(t, err)
	convID := strings.TrimSpace(out)
	require.NotEmpty(t, convID)

	out, err = run(t, "conversation", "show", "--id", convID)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "lunch"`)

	out, err = run(t, "message", "send", "--conversation", convID, "--body", "noon works")
	require.NoError(t, err)
	msgID := strings.TrimSpace(out)

	out, err = run(t, "message", "read", "--id", msgID)
	require.NoError(t, err)
	assert.Equal(t, "noon works\n", out)

	open := writeRules(t, `{"type":"token-gated","contractType":"ERC721","contractAddress":"0xnft","minTokenBalance":0}`)
	out, err = run(t, "post", "create", "--body", "for holders", "--rules", open)
	require.NoError(t, err)
	openID := strings.TrimSpace(out)

	out, err = run(t, "post", "create", "--body", "whales only", "--gate-type", "ERC20", "--gate-contract", "0xtoken", "--gate-min", "1000")
	require.NoError(t, err)
	whaleID := strings.TrimSpace(out)

	out, err = run(t, "post", "create", "--body", "hello world")
	require.NoError(t, err)
	publicID := strings.TrimSpace(out)

	out, err = run(t, "post", "read", "--id", openID)
	require.NoError(t, err)
	assert.Equal(t, "for holders\n", out)
	_, err = run(t, "post", "read", "--id", whaleID)
	assert.ErrorIs(t, err, failure.GateUnsatisfied)

	_, err = run(t, "connect", "--evm-key", otherKey)
	require.NoError(t, err)
	_, err = run(t, "message", "read", "--id", msgID)
	assert.ErrorIs(t, err, failure.GateUnsatisfied)
	out, err = run(t, "post", "read", "--id", publicID)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)

	_, err = run(t, "post", "create", "--body", "x", "--recipient", "did:pkh:eip155:1:0xbb")
	assert.ErrorIs(t, err, failure.InvalidInput)
}

func TestConnectRecordsIdentityInHome(t *testing.T) {
	setup(t)

	out, err := run(t, "connect", "--evm-key", evmKey)
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(os.Getenv("GATEKEY_HOME"), "documents.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "did:pkh:eip155:1:")
	assert.Contains(t, out, "did:pkh:eip155:1:")
}
