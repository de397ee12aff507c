package memnode

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"gatekey/internal/domain"
)

// BalanceOracle answers balance leaves.
type BalanceOracle interface {
	EVMBalance(ctx context.Context, leaf domain.EVMCondition, holder string) (*big.Int, error)
	SolanaBalance(ctx context.Context, leaf domain.SolanaCondition, holder string) (*big.Int, error)
}

// StaticBalances is a BalanceOracle over a fixed table. Unknown holders
// have a zero balance.
type StaticBalances struct {
	mu       sync.RWMutex
	balances map[string]*big.Int
}

var _ BalanceOracle = (*StaticBalances)(nil)

// NewStaticBalances returns an oracle where every balance is zero until Set.
func NewStaticBalances() *StaticBalances {
	return &StaticBalances{balances: map[string]*big.Int{}}
}

// Set records holder's balance of contract (and tokenID for ERC1155).
func (s *StaticBalances) Set(contract, tokenID, holder string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey(contract, tokenID, holder)] = big.NewInt(amount)
}

func (s *StaticBalances) EVMBalance(_ context.Context, leaf domain.EVMCondition, holder string) (*big.Int, error) {
	tokenID := ""
	if leaf.StandardContractType == domain.StandardERC1155 && len(leaf.Parameters) > 1 {
		tokenID = leaf.Parameters[1]
	}
	return s.lookup(leaf.ContractAddress, tokenID, holder), nil
}

func (s *StaticBalances) SolanaBalance(_ context.Context, leaf domain.SolanaCondition, holder string) (*big.Int, error) {
	contract := ""
	if len(leaf.Params) > 0 {
		contract = leaf.Params[0]
	}
	return s.lookup(contract, "", holder), nil
}

func (s *StaticBalances) lookup(contract, tokenID, holder string) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.balances[balanceKey(contract, tokenID, holder)]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func balanceKey(contract, tokenID, holder string) string {
	return strings.ToLower(contract) + "|" + tokenID + "|" + strings.ToLower(holder)
}
