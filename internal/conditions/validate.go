package conditions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"

	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

const evmForestSchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "oneOf": [
      {
        "type": "object",
        "required": ["operator"],
        "properties": {"operator": {"enum": ["or", "and"]}},
        "additionalProperties": false
      },
      {
        "type": "object",
        "required": ["chain", "parameters", "returnValueTest"],
        "properties": {
          "contractAddress": {"type": "string"},
          "standardContractType": {"type": "string"},
          "chain": {"type": "string", "minLength": 1},
          "method": {"type": "string"},
          "parameters": {"type": "array", "items": {"type": "string"}},
          "returnValueTest": {
            "type": "object",
            "required": ["comparator", "value"],
            "properties": {
              "comparator": {"enum": ["=", ">", ">=", "<", "<=", "contains"]},
              "value": {"type": "string"}
            }
          }
        },
        "not": {"required": ["operator"]}
      }
    ]
  }
}`

const tokenGateSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"const": "token-gated"},
    "contractType": {"enum": ["ERC20", "ERC721", "ERC1155", "SolanaContract"]},
    "contractAddress": {"type": "string", "minLength": 1},
    "minTokenBalance": {
      "oneOf": [
        {"type": "string", "pattern": "^[0-9]+$"},
        {"type": "integer", "minimum": 0}
      ]
    },
    "tokenId": {"type": "string"},
    "chain": {"type": "string"},
    "accessControlConditions": {"type": "array"}
  }
}`

var (
	evmForest = sync.OnceValues(func() (*jsonschema.Schema, error) { return compile(evmForestSchema) })
	tokenGate = sync.OnceValues(func() (*jsonschema.Schema, error) { return compile(tokenGateSchema) })
)

func compile(src string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func check(schema *jsonschema.Schema, data []byte) error {
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}

// ParseCustom validates a caller-supplied EVM forest in JSON form.
func ParseCustom(raw []byte) ([]domain.EVMCondition, error) {
	const op = "conditions.ParseCustom"

	schema, err := evmForest()
	if err != nil {
		return nil, failure.Wrap(err, failure.InvalidInput, op, "schema unavailable")
	}
	if err := check(schema, raw); err != nil {
		return nil, failure.Wrap(err, failure.AccessControlInvalid, op, "custom forest rejected")
	}
	var list []domain.EVMCondition
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, failure.Wrap(err, failure.AccessControlInvalid, op, "custom forest rejected")
	}
	if err := Validate(domain.Forest{EVM: list}); err != nil {
		return nil, err
	}
	return list, nil
}

// ParseRules validates encryption rules in JSON form and builds their forest.
func ParseRules(raw []byte) (domain.Forest, error) {
	rules, err := DecodeRules(raw)
	if err != nil {
		return domain.Forest{}, err
	}
	return ForRules(rules)
}

// DecodeRules validates encryption rules in JSON form. A top-level array is
// taken as a custom EVM forest; an object as a token-gate rule, optionally
// carrying its own accessControlConditions.
func DecodeRules(raw []byte) (domain.EncryptionRules, error) {
	const op = "conditions.DecodeRules"

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		list, err := ParseCustom(trimmed)
		if err != nil {
			return domain.EncryptionRules{}, err
		}
		return domain.EncryptionRules{AccessControlConditions: list}, nil
	}

	schema, err := tokenGate()
	if err != nil {
		return domain.EncryptionRules{}, failure.Wrap(err, failure.InvalidInput, op, "schema unavailable")
	}
	if err := check(schema, trimmed); err != nil {
		return domain.EncryptionRules{}, failure.Wrap(err, failure.AccessControlInvalid, op, "encryption rules rejected")
	}
	var rules domain.EncryptionRules
	if err := json.Unmarshal(trimmed, &rules); err != nil {
		return domain.EncryptionRules{}, failure.Wrap(err, failure.AccessControlInvalid, op, "encryption rules rejected")
	}
	return rules, nil
}

// Validate checks the alternation invariant of every family: leaves at even
// positions, combinators at odd positions, never first or last.
func Validate(f domain.Forest) error {
	const op = "conditions.Validate"

	for i, c := range f.EVM {
		if err := position(i, len(f.EVM), c.IsOperator(), c.Operator); err != nil {
			return failure.Wrap(err, failure.AccessControlInvalid, op, "evm forest malformed")
		}
	}
	for i, c := range f.Solana {
		if err := position(i, len(f.Solana), c.IsOperator(), c.Operator); err != nil {
			return failure.Wrap(err, failure.AccessControlInvalid, op, "solana forest malformed")
		}
	}
	return nil
}

func position(i, n int, isOp bool, operator string) error {
	if n%2 == 0 {
		return fmt.Errorf("%d nodes cannot alternate leaf and combinator", n)
	}
	wantOp := i%2 == 1
	switch {
	case wantOp && !isOp:
		return fmt.Errorf("node %d: expected combinator", i)
	case !wantOp && isOp:
		return fmt.Errorf("node %d: unexpected combinator %q", i, operator)
	case isOp && operator != domain.OperatorOr && operator != domain.OperatorAnd:
		return fmt.Errorf("node %d: unknown combinator %q", i, operator)
	}
	return nil
}

// Leaves counts non-combinator nodes.
func Leaves(f domain.Forest) (evm, solana int) {
	for _, c := range f.EVM {
		if !c.IsOperator() {
			evm++
		}
	}
	for _, c := range f.Solana {
		if !c.IsOperator() {
			solana++
		}
	}
	return evm, solana
}
