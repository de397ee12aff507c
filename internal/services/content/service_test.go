package content_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekey/internal/chain"
	"gatekey/internal/document"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/network/memnode"
	"gatekey/internal/services/content"
	"gatekey/internal/services/gateway"
	"gatekey/internal/services/session"
	"gatekey/internal/store"
)

const nftContract = "0x00000000000000000000000000000000000000aa"

type world struct {
	docs     *document.Memory
	gw       *gateway.Service
	balances *memnode.StaticBalances
}

func newWorld(t *testing.T) world {
	t.Helper()
	balances := memnode.NewStaticBalances()
	node, err := memnode.New(bytes.Repeat([]byte{9}, 32), memnode.WithOracle(balances))
	require.NoError(t, err)
	gw, err := gateway.NewLocal(node)
	require.NoError(t, err)
	gw.Start(context.Background())
	return world{docs: document.NewMemory(), gw: gw, balances: balances}
}

type user struct {
	svc     *content.Service
	manager *session.Manager
	did     domain.DID
	address string
}

func (w world) connect(t *testing.T) user {
	t.Helper()
	ctx := context.Background()
	m, err := session.New(store.NewMemoryStore(), session.WithProofGeneration(true))
	require.NoError(t, err)
	wallet, err := chain.NewLocalEVMWallet("")
	require.NoError(t, err)
	res, err := m.Connect(ctx, chain.NewEVM(wallet))
	require.NoError(t, err)
	svc, err := content.New(m, w.gw, w.docs)
	require.NoError(t, err)
	return user{svc: svc, manager: m, did: res.DID, address: res.Details.Account.Address}
}

func loadMessage(t *testing.T, docs *document.Memory, id string) domain.Message {
	t.Helper()
	doc, err := docs.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{content.TagApp, content.TagMessage}, doc.Tags)
	var msg domain.Message
	require.NoError(t, json.Unmarshal(doc.Content, &msg))
	return msg
}

func TestDirectMessages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newWorld(t)
	alice, bob, carol := w.connect(t), w.connect(t), w.connect(t)

	convID, err := alice.svc.CreateConversation(ctx, []domain.DID{bob.did}, "weekend plans")
	require.NoError(t, err)

	conv, err := alice.svc.Conversation(ctx, convID)
	require.NoError(t, err)
	assert.Equal(t, []domain.DID{bob.did, alice.did}, conv.Recipients, "sender is added")
	assert.Empty(t, conv.Name)
	require.NotNil(t, conv.EncryptedName)
	name, err := bob.svc.DecryptMessage(ctx, *conv.EncryptedName)
	require.NoError(t, err)
	assert.Equal(t, "weekend plans", name)

	msgID, err := bob.svc.SendMessage(ctx, convID, "gm")
	require.NoError(t, err)
	msg := loadMessage(t, w.docs, msgID)
	assert.Equal(t, convID, msg.ConversationID)

	for _, reader := range []user{alice, bob} {
		body, err := reader.svc.DecryptMessage(ctx, msg.EncryptedMessage)
		require.NoError(t, err)
		assert.Equal(t, "gm", body)
	}
	_, err = carol.svc.DecryptMessage(ctx, msg.EncryptedMessage)
	assert.ErrorIs(t, err, failure.GateUnsatisfied)
}

func TestWritesRequireSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newWorld(t)
	m, err := session.New(store.NewMemoryStore())
	require.NoError(t, err)
	svc, err := content.New(m, w.gw, w.docs)
	require.NoError(t, err)

	_, err = svc.CreateConversation(ctx, []domain.DID{"did:pkh:eip155:1:0xbb"}, "")
	assert.ErrorIs(t, err, failure.SessionNotFound)
	_, err = svc.CreatePost(ctx, "hello", nil)
	assert.ErrorIs(t, err, failure.SessionNotFound)
	_, err = svc.DecryptPost(ctx, domain.EncryptedPayload{})
	assert.ErrorIs(t, err, failure.SessionNotFound)

	alice := w.connect(t)
	require.NoError(t, alice.manager.Logout(ctx))
	_, err = alice.svc.SendMessage(ctx, "x", "y")
	assert.ErrorIs(t, err, failure.SessionNotFound)
}

func TestInputValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newWorld(t)
	alice := w.connect(t)

	_, err := alice.svc.CreateConversation(ctx, nil, "")
	assert.ErrorIs(t, err, failure.InvalidInput)
	_, err = alice.svc.SendMessage(ctx, "", "body")
	assert.ErrorIs(t, err, failure.InvalidInput)
	_, err = alice.svc.SendMessage(ctx, "missing", "body")
	assert.ErrorIs(t, err, failure.InvalidInput)
	_, err = alice.svc.CreatePost(ctx, "", nil)
	assert.ErrorIs(t, err, failure.InvalidInput)

	_, err = content.New(nil, w.gw, w.docs)
	assert.ErrorIs(t, err, failure.InvalidInput)
}

func TestTokenGatedPost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newWorld(t)
	author, holder, outsider := w.connect(t), w.connect(t), w.connect(t)
	w.balances.Set(nftContract, "", holder.address, 2)

	rules := &domain.EncryptionRules{TokenGateRule: domain.TokenGateRule{
		Type:            domain.TokenGateType,
		ContractType:    domain.StandardERC721,
		ContractAddress: nftContract,
		MinTokenBalance: "1",
		Chain:           "ethereum",
	}}
	id, err := author.svc.CreatePost(ctx, "members only", rules)
	require.NoError(t, err)

	doc, err := w.docs.Load(ctx, id)
	require.NoError(t, err)
	var post domain.Post
	require.NoError(t, json.Unmarshal(doc.Content, &post))
	assert.Empty(t, post.Body)
	require.NotNil(t, post.EncryptedBody)

	body, err := holder.svc.DecryptPost(ctx, *post.EncryptedBody)
	require.NoError(t, err)
	assert.Equal(t, "members only", body)

	_, err = outsider.svc.DecryptPost(ctx, *post.EncryptedBody)
	assert.ErrorIs(t, err, failure.GateUnsatisfied)

	_, err = author.svc.CreatePost(ctx, "x", &domain.EncryptionRules{TokenGateRule: domain.TokenGateRule{
		Type: domain.TokenGateType, ContractType: "ERC777", ContractAddress: nftContract, MinTokenBalance: "1",
	}})
	assert.ErrorIs(t, err, failure.AccessControlInvalid)
}

func TestPlainPostAndKeySessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newWorld(t)

	m, err := session.New(store.NewMemoryStore())
	require.NoError(t, err)
	res, err := m.ConnectWithSeed(ctx, bytes.Repeat([]byte{3}, 32))
	require.NoError(t, err)
	svc, err := content.New(m, w.gw, w.docs)
	require.NoError(t, err)

	id, err := svc.CreatePost(ctx, "public", nil)
	require.NoError(t, err)
	doc, err := w.docs.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, res.DID, doc.Principal)
	assert.JSONEq(t, `{"body":"public"}`, string(doc.Content))

	_, err = svc.DecryptPost(ctx, domain.EncryptedPayload{})
	assert.ErrorIs(t, err, failure.NotGatedForChain)
}

func TestReadByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newWorld(t)
	alice, bob, carol := w.connect(t), w.connect(t), w.connect(t)
	w.balances.Set(nftContract, "", bob.address, 1)

	convID, err := alice.svc.CreateConversation(ctx, []domain.DID{bob.did}, "")
	require.NoError(t, err)
	msgID, err := alice.svc.SendMessage(ctx, convID, "read me")
	require.NoError(t, err)

	body, err := bob.svc.ReadMessage(ctx, msgID)
	require.NoError(t, err)
	assert.Equal(t, "read me", body)
	_, err = carol.svc.ReadMessage(ctx, msgID)
	assert.ErrorIs(t, err, failure.GateUnsatisfied)

	public, err := alice.svc.CreatePost(ctx, "hello all", nil)
	require.NoError(t, err)
	body, err = carol.svc.ReadPost(ctx, public)
	require.NoError(t, err)
	assert.Equal(t, "hello all", body)

	gated, err := alice.svc.CreatePost(ctx, "holders", &domain.EncryptionRules{TokenGateRule: domain.TokenGateRule{
		Type: domain.TokenGateType, ContractType: domain.StandardERC721, ContractAddress: nftContract, MinTokenBalance: "1",
	}})
	require.NoError(t, err)
	body, err = bob.svc.ReadPost(ctx, gated)
	require.NoError(t, err)
	assert.Equal(t, "holders", body)
	_, err = carol.svc.ReadPost(ctx, gated)
	assert.ErrorIs(t, err, failure.GateUnsatisfied)

	_, err = bob.svc.ReadMessage(ctx, public)
	assert.ErrorIs(t, err, failure.InvalidInput)
	_, err = bob.svc.ReadPost(ctx, convID)
	assert.ErrorIs(t, err, failure.InvalidInput)
}
