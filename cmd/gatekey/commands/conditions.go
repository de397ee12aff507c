package commands

import (
	"github.com/spf13/cobra"

	"gatekey/internal/conditions"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// gateFlags selects the access rule for conditions, encrypt and post.
type gateFlags struct {
	recipients []string
	rule       domain.TokenGateRule
	rulesFile  string
}

func (g *gateFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&g.recipients, "recipient", nil, "recipient DID (repeatable)")
	cmd.Flags().StringVar(&g.rule.ContractType, "gate-type", "", "token gate standard: ERC20, ERC721, ERC1155, SolanaContract")
	cmd.Flags().StringVar(&g.rule.ContractAddress, "gate-contract", "", "token contract address")
	cmd.Flags().StringVar((*string)(&g.rule.MinTokenBalance), "gate-min", "1", "minimum token balance")
	cmd.Flags().StringVar(&g.rule.TokenID, "gate-token-id", "", "ERC1155 token id")
	cmd.Flags().StringVar(&g.rule.Chain, "gate-chain", "ethereum", "chain named in the gate")
	cmd.Flags().StringVar(&g.rulesFile, "rules", "", `JSON token-gate rule or EVM condition list ("-" for stdin)`)
}

func (g *gateFlags) gated() bool {
	return g.rule.ContractType != "" || g.rule.ContractAddress != "" || g.rulesFile != ""
}

// rules returns the token-gate or custom rules, or nil when the flags name
// recipients instead.
func (g *gateFlags) rules(cmd *cobra.Command) (*domain.EncryptionRules, error) {
	const op = "cli.rules"

	if !g.gated() {
		return nil, nil
	}
	if len(g.recipients) > 0 {
		return nil, failure.New(failure.InvalidInput, op, "use either --recipient or a gate")
	}
	if g.rulesFile != "" {
		if g.rule.ContractType != "" || g.rule.ContractAddress != "" {
			return nil, failure.New(failure.InvalidInput, op, "use either --rules or --gate-* flags")
		}
		raw, err := readPayload(cmd, g.rulesFile)
		if err != nil {
			return nil, failure.Wrap(err, failure.InvalidInput, op, "read --rules")
		}
		rules, err := conditions.DecodeRules(raw)
		if err != nil {
			return nil, err
		}
		return &rules, nil
	}
	rule := g.rule
	rule.Type = domain.TokenGateType
	return &domain.EncryptionRules{TokenGateRule: rule}, nil
}

// forest builds the condition forest, adding sender to recipient lists.
func (g *gateFlags) forest(cmd *cobra.Command, sender domain.DID) (domain.Forest, error) {
	const op = "cli.forest"

	rules, err := g.rules(cmd)
	if err != nil {
		return domain.Forest{}, err
	}
	if rules != nil {
		return conditions.ForRules(*rules)
	}
	if len(g.recipients) == 0 {
		return domain.Forest{}, failure.New(failure.InvalidInput, op, "at least one --recipient, a --gate-contract or --rules is required")
	}
	recipients := g.dids()
	if sender != "" {
		recipients = conditions.IncludeSender(recipients, sender)
	}
	forest := conditions.ForRecipients(recipients)
	if forest.IsEmpty() {
		return domain.Forest{}, failure.New(failure.AccessControlInvalid, op, "no recipient has a supported chain")
	}
	return forest, nil
}

func (g *gateFlags) dids() []domain.DID {
	out := make([]domain.DID, 0, len(g.recipients)+1)
	for _, r := range g.recipients {
		out = append(out, domain.DID(r))
	}
	return out
}

// conditions: print the forest a set of flags produces.
func conditionsCmd() *cobra.Command {
	var g gateFlags
	cmd := &cobra.Command{
		Use:   "conditions",
		Short: "Print the access control conditions for recipients or a token gate",
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := g.forest(cmd, "")
			if err != nil {
				return err
			}
			return printJSON(cmd, forest)
		},
	}
	g.bind(cmd)
	return cmd
}
