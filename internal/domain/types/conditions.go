package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Condition operators.
const (
	OperatorOr  = "or"
	OperatorAnd = "and"
)

// CallerAddress is the parameter the key network substitutes with the
// address proven by the caller's AuthProof.
const CallerAddress = ":userAddress"

// ReturnValueTest compares a leaf's evaluated value.
type ReturnValueTest struct {
	Comparator string `json:"comparator"`
	Value      string `json:"value"`
}

// EVMCondition is either a leaf over an EVM chain or an operator node.
type EVMCondition struct {
	Operator             string          `json:"operator,omitempty"`
	ContractAddress      string          `json:"contractAddress"`
	StandardContractType string          `json:"standardContractType"`
	Chain                string          `json:"chain"`
	Method               string          `json:"method"`
	Parameters           []string        `json:"parameters"`
	ReturnValueTest      ReturnValueTest `json:"returnValueTest"`
}

// IsOperator reports whether c is a combinator node.
func (c EVMCondition) IsOperator() bool { return c.Operator != "" }

// MarshalJSON writes operator nodes as {"operator": "..."} only.
func (c EVMCondition) MarshalJSON() ([]byte, error) {
	if c.IsOperator() {
		return MarshalPlain(struct {
			Operator string `json:"operator"`
		}{c.Operator})
	}
	type alias EVMCondition
	return MarshalPlain(alias(c))
}

// MarshalPlain is json.Marshal without HTML escaping, so comparators such as
// ">=" stay literal on the wire.
func MarshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// SolanaReturnValueTest compares a JSON path of a Solana RPC result.
type SolanaReturnValueTest struct {
	Key        string `json:"key"`
	Comparator string `json:"comparator"`
	Value      string `json:"value"`
}

// PDAInterface describes program-derived-account decoding.
type PDAInterface struct {
	Offset int            `json:"offset"`
	Fields map[string]int `json:"fields"`
}

// SolanaCondition is either a Solana RPC leaf or an operator node.
type SolanaCondition struct {
	Operator        string                `json:"operator,omitempty"`
	Method          string                `json:"method"`
	Params          []string              `json:"params"`
	PDAParams       []string              `json:"pdaParams"`
	PDAInterface    PDAInterface          `json:"pdaInterface"`
	PDAKey          string                `json:"pdaKey"`
	Chain           string                `json:"chain"`
	ReturnValueTest SolanaReturnValueTest `json:"returnValueTest"`
}

// IsOperator reports whether c is a combinator node.
func (c SolanaCondition) IsOperator() bool { return c.Operator != "" }

// MarshalJSON writes operator nodes as {"operator": "..."} only.
func (c SolanaCondition) MarshalJSON() ([]byte, error) {
	if c.IsOperator() {
		return MarshalPlain(struct {
			Operator string `json:"operator"`
		}{c.Operator})
	}
	type alias SolanaCondition
	return MarshalPlain(alias(c))
}

// Forest holds one condition list per chain family. An empty list means the
// content is not gated for that family.
type Forest struct {
	EVM    []EVMCondition    `json:"accessControlConditions,omitempty"`
	Solana []SolanaCondition `json:"solRpcConditions,omitempty"`
}

// IsEmpty reports whether no family carries conditions.
func (f Forest) IsEmpty() bool { return len(f.EVM) == 0 && len(f.Solana) == 0 }

// Families lists the families with conditions, EVM first.
func (f Forest) Families() []Family {
	var out []Family
	if len(f.EVM) > 0 {
		out = append(out, FamilyEVM)
	}
	if len(f.Solana) > 0 {
		out = append(out, FamilySolana)
	}
	return out
}

// Contract standards accepted by token gates.
const (
	StandardERC20          = "ERC20"
	StandardERC721         = "ERC721"
	StandardERC1155        = "ERC1155"
	StandardSolanaContract = "SolanaContract"
)

// TokenGateType is the only supported encryption rule type.
const TokenGateType = "token-gated"

// Amount is a decimal token quantity. It decodes from a JSON string or a
// JSON integer and always encodes as a string.
type Amount string

// UnmarshalJSON accepts "100" and 100 alike.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// TokenGateRule gates content on a minimum token balance.
type TokenGateRule struct {
	Type            string `json:"type"`
	ContractType    string `json:"contractType"`
	ContractAddress string `json:"contractAddress"`
	MinTokenBalance Amount `json:"minTokenBalance"`
	TokenID         string `json:"tokenId,omitempty"`
	Chain           string `json:"chain"`
}

// EncryptionRules selects how a post is gated: a token-gate rule or a custom
// EVM forest supplied by the caller.
type EncryptionRules struct {
	TokenGateRule
	AccessControlConditions []EVMCondition `json:"accessControlConditions,omitempty"`
}
