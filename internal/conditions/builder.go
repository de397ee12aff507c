package conditions

import (
	"strings"

	"gatekey/internal/did"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

const (
	chainEthereum = "ethereum"
	chainSolana   = "solana"

	comparatorEqual   = "="
	comparatorAtLeast = ">="

	methodBalanceOf      = "balanceOf"
	methodBalanceOfToken = "balanceOfToken"
	solanaAmountKey      = "$.amount"
)

// ForRecipients partitions recipients by chain family and emits one
// caller-address leaf per recipient, in input order. Identities without a
// condition family (did:key, tezos, stacks, malformed) are skipped.
func ForRecipients(recipients []domain.DID) domain.Forest {
	var f domain.Forest
	for _, r := range recipients {
		acct := did.ParseAccount(r)
		switch acct.Family() {
		case domain.FamilyEVM:
			if len(f.EVM) > 0 {
				f.EVM = append(f.EVM, domain.EVMCondition{Operator: domain.OperatorOr})
			}
			f.EVM = append(f.EVM, recipientLeafEVM(acct.Address))
		case domain.FamilySolana:
			if len(f.Solana) > 0 {
				f.Solana = append(f.Solana, domain.SolanaCondition{Operator: domain.OperatorOr})
			}
			f.Solana = append(f.Solana, recipientLeafSolana(acct.Address))
		}
	}
	return f
}

// IncludeSender returns recipients with sender appended unless already
// present. EVM addresses compare case-insensitively; every other DID must
// match exactly.
func IncludeSender(recipients []domain.DID, sender domain.DID) []domain.DID {
	out := make([]domain.DID, 0, len(recipients)+1)
	seen := false
	for _, r := range recipients {
		if sameIdentity(r, sender) {
			seen = true
		}
		out = append(out, r)
	}
	if !seen && sender != "" {
		out = append(out, sender)
	}
	return out
}

func sameIdentity(a, b domain.DID) bool {
	if did.ParseAccount(a).Family() == domain.FamilyEVM {
		return strings.EqualFold(string(a), string(b))
	}
	return a == b
}

func recipientLeafEVM(address string) domain.EVMCondition {
	return domain.EVMCondition{
		Chain:      chainEthereum,
		Parameters: []string{domain.CallerAddress},
		ReturnValueTest: domain.ReturnValueTest{
			Comparator: comparatorEqual,
			Value:      address,
		},
	}
}

func recipientLeafSolana(address string) domain.SolanaCondition {
	return domain.SolanaCondition{
		Params:       []string{domain.CallerAddress},
		PDAParams:    []string{},
		PDAInterface: domain.PDAInterface{Fields: map[string]int{}},
		Chain:        chainSolana,
		ReturnValueTest: domain.SolanaReturnValueTest{
			Comparator: comparatorEqual,
			Value:      address,
		},
	}
}

// ForTokenGate builds the single-leaf forest for a token-gate rule.
// Unsupported rule types and contract standards are AccessControlInvalid.
func ForTokenGate(rule domain.TokenGateRule) (domain.Forest, error) {
	const op = "conditions.ForTokenGate"

	if rule.Type != domain.TokenGateType {
		return domain.Forest{}, failure.New(failure.AccessControlInvalid, op,
			"unsupported rule type "+quote(rule.Type))
	}
	if rule.ContractAddress == "" {
		return domain.Forest{}, failure.New(failure.AccessControlInvalid, op, "contract address is required")
	}
	minBalance := strings.TrimSpace(string(rule.MinTokenBalance))
	if !isDecimal(minBalance) {
		return domain.Forest{}, failure.New(failure.AccessControlInvalid, op,
			"minimum balance must be a non-negative integer")
	}

	switch rule.ContractType {
	case domain.StandardERC20, domain.StandardERC721:
		return domain.Forest{EVM: []domain.EVMCondition{
			balanceLeaf(rule, minBalance, []string{domain.CallerAddress}),
		}}, nil
	case domain.StandardERC1155:
		if rule.TokenID == "" {
			return domain.Forest{}, failure.New(failure.AccessControlInvalid, op, "ERC1155 gates require a token id")
		}
		return domain.Forest{EVM: []domain.EVMCondition{
			balanceLeaf(rule, minBalance, []string{domain.CallerAddress, rule.TokenID}),
		}}, nil
	case domain.StandardSolanaContract:
		return domain.Forest{Solana: []domain.SolanaCondition{{
			Method:       methodBalanceOfToken,
			Params:       []string{rule.ContractAddress},
			PDAParams:    []string{},
			PDAInterface: domain.PDAInterface{Fields: map[string]int{}},
			Chain:        chainSolana,
			ReturnValueTest: domain.SolanaReturnValueTest{
				Key:        solanaAmountKey,
				Comparator: comparatorAtLeast,
				Value:      minBalance,
			},
		}}}, nil
	default:
		return domain.Forest{}, failure.New(failure.AccessControlInvalid, op,
			"unsupported contract standard "+quote(rule.ContractType))
	}
}

func balanceLeaf(rule domain.TokenGateRule, minBalance string, params []string) domain.EVMCondition {
	chain := rule.Chain
	if chain == "" {
		chain = chainEthereum
	}
	return domain.EVMCondition{
		ContractAddress:      rule.ContractAddress,
		StandardContractType: rule.ContractType,
		Chain:                chain,
		Method:               methodBalanceOf,
		Parameters:           params,
		ReturnValueTest: domain.ReturnValueTest{
			Comparator: comparatorAtLeast,
			Value:      minBalance,
		},
	}
}

// ForRules selects the forest for a post: a custom EVM forest when one is
// supplied, otherwise the token gate.
func ForRules(rules domain.EncryptionRules) (domain.Forest, error) {
	if len(rules.AccessControlConditions) > 0 {
		f := domain.Forest{EVM: rules.AccessControlConditions}
		if err := Validate(f); err != nil {
			return domain.Forest{}, err
		}
		return f, nil
	}
	return ForTokenGate(rules.TokenGateRule)
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	return `"` + s + `"`
}
