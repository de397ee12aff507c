package memnode

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"gatekey/internal/chain"
	"gatekey/internal/conditions"
	"gatekey/internal/crypto"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/logger"
)

const wrapInfo = "gatekey/memnode/wrap/"

// Node is an in-process KeyNetwork.
type Node struct {
	master       []byte
	oracle       BalanceOracle
	now          func() time.Time
	connectDelay time.Duration
	log          *slog.Logger
	ready        atomic.Bool
}

var _ domain.KeyNetwork = (*Node)(nil)

// Option configures a Node.
type Option func(*Node)

// WithOracle sets the balance oracle; the default has no balances.
func WithOracle(o BalanceOracle) Option { return func(n *Node) { n.oracle = o } }

// WithClock overrides the time source used for proof expiry.
func WithClock(now func() time.Time) Option { return func(n *Node) { n.now = now } }

// WithConnectDelay makes Connect take at least d, simulating a slow handshake.
func WithConnectDelay(d time.Duration) Option { return func(n *Node) { n.connectDelay = d } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(n *Node) { n.log = l } }

// New returns a node whose wrapping keys derive from master.
func New(master []byte, opts ...Option) (*Node, error) {
	if len(master) < 16 {
		return nil, failure.New(failure.InvalidInput, "memnode.New", "master secret must be at least 16 bytes")
	}
	n := &Node{
		master: append([]byte(nil), master...),
		oracle: NewStaticBalances(),
		now:    time.Now,
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Connect completes the handshake. It is safe to call more than once.
func (n *Node) Connect(ctx context.Context) error {
	if n.ready.Load() {
		return nil
	}
	if n.connectDelay > 0 {
		t := time.NewTimer(n.connectDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return failure.Wrap(ctx.Err(), failure.NetworkFailure, "memnode.Connect", "handshake aborted")
		case <-t.C:
		}
	}
	n.ready.Store(true)
	n.log.Debug("key network ready", logger.Component("memnode"))
	return nil
}

// Ready reports whether Connect has completed.
func (n *Node) Ready() bool { return n.ready.Load() }

// SaveEncryptionKey wraps req.SymmetricKey under req.Conditions.
func (n *Node) SaveEncryptionKey(_ context.Context, req domain.SaveKeyRequest) ([]byte, error) {
	const op = "memnode.SaveEncryptionKey"

	if !n.ready.Load() {
		return nil, failure.New(failure.NetworkNotReady, op, "key network not connected")
	}
	if len(req.SymmetricKey) != crypto.ContentKeyBytes {
		return nil, failure.New(failure.InvalidInput, op, "symmetric key must be 32 bytes")
	}
	if _, err := n.forest(req.Family, req.Conditions, op); err != nil {
		return nil, err
	}
	key, err := n.wrappingKey(req.Family, req.Conditions)
	if err != nil {
		return nil, failure.Wrap(err, failure.AccessControlInvalid, op, "conditions cannot be canonicalized")
	}
	defer crypto.Wipe(key)

	wrapped, err := crypto.Seal(key, req.SymmetricKey, []byte(req.Family))
	if err != nil {
		return nil, failure.Wrap(err, failure.NetworkFailure, op, "wrap failed")
	}
	return wrapped, nil
}

// GetEncryptionKey unwraps req.WrappedKey if req.Proof satisfies req.Conditions.
func (n *Node) GetEncryptionKey(ctx context.Context, req domain.GetKeyRequest) ([]byte, error) {
	const op = "memnode.GetEncryptionKey"

	if !n.ready.Load() {
		return nil, failure.New(failure.NetworkNotReady, op, "key network not connected")
	}
	if err := chain.VerifyProof(req.Proof, n.now()); err != nil {
		if errors.Is(err, chain.ErrProofIncomplete) {
			return nil, failure.Wrap(err, failure.ProofMissing, op, "auth proof missing")
		}
		return nil, failure.Wrap(err, failure.GateUnsatisfied, op, "auth proof rejected")
	}
	if chain.ProofFamily(req.Proof) != req.Family {
		return nil, failure.New(failure.GateUnsatisfied, op, "auth proof is for another chain family")
	}
	forest, err := n.forest(req.Family, req.Conditions, op)
	if err != nil {
		return nil, err
	}

	var ok bool
	switch req.Family {
	case domain.FamilyEVM:
		ok, err = n.evalEVM(ctx, forest.EVM, req.Proof.Address)
	case domain.FamilySolana:
		ok, err = n.evalSolana(ctx, forest.Solana, req.Proof.Address)
	}
	if err != nil {
		return nil, failure.Wrap(err, failure.NetworkFailure, op, "condition evaluation failed")
	}
	if !ok {
		n.log.Info("key release denied", logger.Proof(&req.Proof), logger.Chain(string(req.Family)))
		return nil, failure.New(failure.GateUnsatisfied, op, "access control conditions not satisfied")
	}

	key, err := n.wrappingKey(req.Family, req.Conditions)
	if err != nil {
		return nil, failure.Wrap(err, failure.AccessControlInvalid, op, "conditions cannot be canonicalized")
	}
	defer crypto.Wipe(key)

	sym, err := crypto.Open(key, req.WrappedKey, []byte(req.Family))
	if err != nil {
		return nil, failure.Wrap(err, failure.CiphertextCorrupt, op, "wrapped key does not open under these conditions")
	}
	return sym, nil
}

func (n *Node) forest(family domain.Family, raw []byte, op string) (domain.Forest, error) {
	if family != domain.FamilyEVM && family != domain.FamilySolana {
		return domain.Forest{}, failure.New(failure.InvalidInput, op, "unsupported chain family "+string(family))
	}
	f, err := conditions.Decode(raw, family)
	if err != nil {
		return domain.Forest{}, failure.Wrap(err, failure.AccessControlInvalid, op, "conditions unreadable")
	}
	if f.IsEmpty() {
		return domain.Forest{}, failure.New(failure.AccessControlInvalid, op, "conditions are empty")
	}
	if err := conditions.Validate(f); err != nil {
		return domain.Forest{}, err
	}
	return f, nil
}

func (n *Node) wrappingKey(family domain.Family, raw []byte) ([]byte, error) {
	digest, err := conditions.Digest(raw)
	if err != nil {
		return nil, err
	}
	return crypto.DeriveKey(n.master, []byte(digest), wrapInfo+string(family))
}
