package memnode

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"gatekey/internal/domain"
)

// evalEVM reports whether holder satisfies the EVM forest.
func (n *Node) evalEVM(ctx context.Context, forest []domain.EVMCondition, holder string) (bool, error) {
	return evalChain(len(forest),
		func(i int) string { return forest[i].Operator },
		func(i int) (bool, error) { return n.evalEVMLeaf(ctx, forest[i], holder) },
	)
}

// evalSolana reports whether holder satisfies the Solana forest.
func (n *Node) evalSolana(ctx context.Context, forest []domain.SolanaCondition, holder string) (bool, error) {
	return evalChain(len(forest),
		func(i int) string { return forest[i].Operator },
		func(i int) (bool, error) { return n.evalSolanaLeaf(ctx, forest[i], holder) },
	)
}

// evalChain folds leaf results left to right through the combinators
// between them. Leaves whose result cannot change the outcome are skipped.
func evalChain(size int, operator func(int) string, leaf func(int) (bool, error)) (bool, error) {
	if size == 0 {
		return false, nil
	}
	acc, err := leaf(0)
	if err != nil {
		return false, err
	}
	for i := 1; i+1 < size; i += 2 {
		switch operator(i) {
		case domain.OperatorOr:
			if acc {
				continue
			}
		case domain.OperatorAnd:
			if !acc {
				continue
			}
		default:
			return false, fmt.Errorf("unknown combinator %q", operator(i))
		}
		if acc, err = leaf(i + 1); err != nil {
			return false, err
		}
	}
	return acc, nil
}

func (n *Node) evalEVMLeaf(ctx context.Context, leaf domain.EVMCondition, holder string) (bool, error) {
	switch {
	case leaf.Method == "" && hasCaller(leaf.Parameters):
		return compareAddress(domain.FamilyEVM, leaf.ReturnValueTest.Comparator, holder, leaf.ReturnValueTest.Value)
	case leaf.Method == "balanceOf" && hasCaller(leaf.Parameters):
		bal, err := n.oracle.EVMBalance(ctx, leaf, holder)
		if err != nil {
			return false, err
		}
		return compareAmount(leaf.ReturnValueTest.Comparator, bal, leaf.ReturnValueTest.Value)
	default:
		return false, fmt.Errorf("unsupported evm leaf method %q", leaf.Method)
	}
}

func (n *Node) evalSolanaLeaf(ctx context.Context, leaf domain.SolanaCondition, holder string) (bool, error) {
	switch leaf.Method {
	case "":
		if !hasCaller(leaf.Params) {
			return false, fmt.Errorf("solana leaf without caller parameter")
		}
		return compareAddress(domain.FamilySolana, leaf.ReturnValueTest.Comparator, holder, leaf.ReturnValueTest.Value)
	case "balanceOfToken":
		bal, err := n.oracle.SolanaBalance(ctx, leaf, holder)
		if err != nil {
			return false, err
		}
		return compareAmount(leaf.ReturnValueTest.Comparator, bal, leaf.ReturnValueTest.Value)
	default:
		return false, fmt.Errorf("unsupported solana leaf method %q", leaf.Method)
	}
}

func hasCaller(params []string) bool {
	for _, p := range params {
		if p == domain.CallerAddress {
			return true
		}
	}
	return false
}

// compareAddress matches hex EVM addresses case-insensitively. Base58
// Solana addresses are case-significant and must match exactly.
func compareAddress(family domain.Family, comparator, holder, want string) (bool, error) {
	if comparator != "=" {
		return false, fmt.Errorf("unsupported address comparator %q", comparator)
	}
	if family == domain.FamilySolana {
		return holder == want, nil
	}
	return strings.EqualFold(holder, want), nil
}

func compareAmount(comparator string, have *big.Int, want string) (bool, error) {
	w, ok := new(big.Int).SetString(want, 10)
	if !ok {
		return false, fmt.Errorf("balance test value %q is not an integer", want)
	}
	c := have.Cmp(w)
	switch comparator {
	case "=":
		return c == 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	default:
		return false, fmt.Errorf("unsupported comparator %q", comparator)
	}
}
