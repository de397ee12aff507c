package memnode_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekey/internal/chain"
	"gatekey/internal/conditions"
	"gatekey/internal/crypto"
	"gatekey/internal/did"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/network/memnode"
)

var master = bytes.Repeat([]byte{0x42}, 32)

func connected(t *testing.T, opts ...memnode.Option) *memnode.Node {
	t.Helper()
	n, err := memnode.New(master, opts...)
	require.NoError(t, err)
	require.NoError(t, n.Connect(context.Background()))
	return n
}

func evmProof(t *testing.T, w *chain.LocalEVMWallet, ttl time.Duration) domain.AuthProof {
	t.Helper()
	ctx := context.Background()
	a := chain.NewEVM(w)
	acct, err := a.ResolveAccount(ctx)
	require.NoError(t, err)
	now := time.Now()
	p, err := a.SignProof(ctx, acct, chain.ProofMessage("gatekey", now, now.Add(ttl)))
	require.NoError(t, err)
	return p
}

func recipientsFor(t *testing.T, wallets ...*chain.LocalEVMWallet) json.RawMessage {
	t.Helper()
	var ids []domain.DID
	for _, w := range wallets {
		ids = append(ids, did.PKH(domain.NamespaceEIP155, "1", w.Address()))
	}
	raw, err := conditions.Encode(conditions.ForRecipients(ids), domain.FamilyEVM)
	require.NoError(t, err)
	return raw
}

func newWallet(t *testing.T) *chain.LocalEVMWallet {
	t.Helper()
	w, err := chain.NewLocalEVMWallet("")
	require.NoError(t, err)
	return w
}

func TestSaveGet_RecipientGate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	n := connected(t)

	aa, bb, cc := newWallet(t), newWallet(t), newWallet(t)
	conds := recipientsFor(t, aa, bb)
	sym, err := crypto.NewContentKey()
	require.NoError(t, err)

	wrapped, err := n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{
		Family: domain.FamilyEVM, Conditions: conds, SymmetricKey: sym,
	})
	require.NoError(t, err)

	got, err := n.GetEncryptionKey(ctx, domain.GetKeyRequest{
		Family: domain.FamilyEVM, Conditions: conds, WrappedKey: wrapped, Proof: evmProof(t, bb, time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, sym, got)

	_, err = n.GetEncryptionKey(ctx, domain.GetKeyRequest{
		Family: domain.FamilyEVM, Conditions: conds, WrappedKey: wrapped, Proof: evmProof(t, cc, time.Hour),
	})
	assert.ErrorIs(t, err, failure.GateUnsatisfied)
}

func TestGet_ModifiedForestCannotUnwrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	n := connected(t)

	aa, cc := newWallet(t), newWallet(t)
	sym, err := crypto.NewContentKey()
	require.NoError(t, err)
	wrapped, err := n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{
		Family: domain.FamilyEVM, Conditions: recipientsFor(t, aa), SymmetricKey: sym,
	})
	require.NoError(t, err)

	// cc satisfies the swapped-in forest, but the key was bound to the original.
	_, err = n.GetEncryptionKey(ctx, domain.GetKeyRequest{
		Family: domain.FamilyEVM, Conditions: recipientsFor(t, cc), WrappedKey: wrapped, Proof: evmProof(t, cc, time.Hour),
	})
	assert.ErrorIs(t, err, failure.CiphertextCorrupt)
}

func TestGet_ProofFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	n := connected(t)

	aa := newWallet(t)
	conds := recipientsFor(t, aa)
	sym, err := crypto.NewContentKey()
	require.NoError(t, err)
	wrapped, err := n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{Family: domain.FamilyEVM, Conditions: conds, SymmetricKey: sym})
	require.NoError(t, err)

	req := domain.GetKeyRequest{Family: domain.FamilyEVM, Conditions: conds, WrappedKey: wrapped}

	_, err = n.GetEncryptionKey(ctx, req)
	assert.ErrorIs(t, err, failure.ProofMissing)

	req.Proof = evmProof(t, aa, -time.Minute)
	_, err = n.GetEncryptionKey(ctx, req)
	assert.ErrorIs(t, err, failure.GateUnsatisfied, "expired proof")

	req.Proof = evmProof(t, aa, time.Hour)
	req.Family = domain.FamilySolana
	_, err = n.GetEncryptionKey(ctx, req)
	assert.ErrorIs(t, err, failure.GateUnsatisfied, "family mismatch")

	req.Family = domain.FamilyEVM
	req.WrappedKey = []byte("garbage")
	_, err = n.GetEncryptionKey(ctx, req)
	assert.ErrorIs(t, err, failure.CiphertextCorrupt)
}

func TestTokenGate_UsesOracle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	rich, poor := newWallet(t), newWallet(t)
	balances := memnode.NewStaticBalances()
	balances.Set("0xNFT", "", rich.Address(), 2)
	n := connected(t, memnode.WithOracle(balances))

	f, err := conditions.ForTokenGate(domain.TokenGateRule{
		Type: domain.TokenGateType, ContractType: domain.StandardERC721,
		ContractAddress: "0xnft", MinTokenBalance: "1", Chain: "ethereum",
	})
	require.NoError(t, err)
	conds, err := conditions.Encode(f, domain.FamilyEVM)
	require.NoError(t, err)

	sym, err := crypto.NewContentKey()
	require.NoError(t, err)
	wrapped, err := n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{Family: domain.FamilyEVM, Conditions: conds, SymmetricKey: sym})
	require.NoError(t, err)

	got, err := n.GetEncryptionKey(ctx, domain.GetKeyRequest{Family: domain.FamilyEVM, Conditions: conds, WrappedKey: wrapped, Proof: evmProof(t, rich, time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, sym, got)

	_, err = n.GetEncryptionKey(ctx, domain.GetKeyRequest{Family: domain.FamilyEVM, Conditions: conds, WrappedKey: wrapped, Proof: evmProof(t, poor, time.Hour)})
	assert.ErrorIs(t, err, failure.GateUnsatisfied)
}

func flipCase(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return unicode.ToLower(r)
		}
		return unicode.ToUpper(r)
	}, s)
}

func TestSolanaAddressesAreCaseSensitive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	n := connected(t)

	w, err := chain.NewLocalSolanaWallet(nil)
	require.NoError(t, err)
	a := chain.NewSolana(w)
	acct, err := a.ResolveAccount(ctx)
	require.NoError(t, err)
	now := time.Now()
	proof, err := a.SignProof(ctx, acct, chain.ProofMessage("gatekey", now, now.Add(time.Hour)))
	require.NoError(t, err)

	open := func(address string) error {
		f := conditions.ForRecipients([]domain.DID{did.PKH(domain.NamespaceSolana, chain.ReferenceSolana, address)})
		conds, err := conditions.Encode(f, domain.FamilySolana)
		require.NoError(t, err)
		sym, err := crypto.NewContentKey()
		require.NoError(t, err)
		wrapped, err := n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{Family: domain.FamilySolana, Conditions: conds, SymmetricKey: sym})
		require.NoError(t, err)
		_, err = n.GetEncryptionKey(ctx, domain.GetKeyRequest{Family: domain.FamilySolana, Conditions: conds, WrappedKey: wrapped, Proof: proof})
		return err
	}

	require.NoError(t, open(w.Address()))
	flipped := flipCase(w.Address())
	require.NotEqual(t, w.Address(), flipped)
	assert.ErrorIs(t, open(flipped), failure.GateUnsatisfied)
}

func TestEVMAddressesIgnoreCase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	n := connected(t)

	w := newWallet(t)
	shouted := "0x" + strings.ToUpper(w.Address()[2:])
	ids := []domain.DID{did.PKH(domain.NamespaceEIP155, "1", shouted)}
	conds, err := conditions.Encode(conditions.ForRecipients(ids), domain.FamilyEVM)
	require.NoError(t, err)
	sym, err := crypto.NewContentKey()
	require.NoError(t, err)
	wrapped, err := n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{Family: domain.FamilyEVM, Conditions: conds, SymmetricKey: sym})
	require.NoError(t, err)

	got, err := n.GetEncryptionKey(ctx, domain.GetKeyRequest{Family: domain.FamilyEVM, Conditions: conds, WrappedKey: wrapped, Proof: evmProof(t, w, time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, sym, got)
}

func TestAndCombinator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	w := newWallet(t)
	balances := memnode.NewStaticBalances()
	balances.Set("0xToken", "", w.Address(), 10)
	n := connected(t, memnode.WithOracle(balances))

	gate, err := conditions.ForTokenGate(domain.TokenGateRule{
		Type: domain.TokenGateType, ContractType: domain.StandardERC20,
		ContractAddress: "0xToken", MinTokenBalance: "100",
	})
	require.NoError(t, err)
	self := conditions.ForRecipients([]domain.DID{did.PKH(domain.NamespaceEIP155, "1", w.Address())})

	forest := []domain.EVMCondition{self.EVM[0], {Operator: domain.OperatorAnd}, gate.EVM[0]}
	conds, err := json.Marshal(forest)
	require.NoError(t, err)

	sym, err := crypto.NewContentKey()
	require.NoError(t, err)
	wrapped, err := n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{Family: domain.FamilyEVM, Conditions: conds, SymmetricKey: sym})
	require.NoError(t, err)

	_, err = n.GetEncryptionKey(ctx, domain.GetKeyRequest{Family: domain.FamilyEVM, Conditions: conds, WrappedKey: wrapped, Proof: evmProof(t, w, time.Hour)})
	assert.ErrorIs(t, err, failure.GateUnsatisfied, "address matches but balance is too low")
}

func TestNotReady(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	n, err := memnode.New(master, memnode.WithConnectDelay(time.Hour))
	require.NoError(t, err)

	_, err = n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{})
	assert.ErrorIs(t, err, failure.NetworkNotReady)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.Connect(cctx), failure.NetworkFailure)
	assert.False(t, n.Ready())

	_, err = memnode.New([]byte("short"))
	assert.ErrorIs(t, err, failure.InvalidInput)
}

func TestSave_RejectsBadInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	n := connected(t)
	sym, err := crypto.NewContentKey()
	require.NoError(t, err)

	_, err = n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{Family: domain.FamilyEVM, Conditions: json.RawMessage(`[]`), SymmetricKey: sym})
	assert.ErrorIs(t, err, failure.AccessControlInvalid)

	_, err = n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{Family: "tezos", Conditions: json.RawMessage(`[]`), SymmetricKey: sym})
	assert.ErrorIs(t, err, failure.InvalidInput)

	_, err = n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{Family: domain.FamilyEVM, Conditions: json.RawMessage(`[{"operator":"or"}]`), SymmetricKey: sym})
	assert.ErrorIs(t, err, failure.AccessControlInvalid)

	_, err = n.SaveEncryptionKey(ctx, domain.SaveKeyRequest{Family: domain.FamilyEVM, Conditions: recipientsFor(t, newWallet(t)), SymmetricKey: []byte("short")})
	assert.ErrorIs(t, err, failure.InvalidInput)
}
