package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// encrypt --recipient <did>... --body <text>
func encryptCmd() *cobra.Command {
	var (
		g    gateFlags
		body string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a message for recipients or token holders",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := deps(cmd)
			if err != nil {
				return err
			}

			// The connected account, if any, can always read what it wrote.
			var sender domain.DID
			res, err := w.Sessions.Resume(ctx)
			switch {
			case err == nil:
				sender = res.DID
			case !errors.Is(err, failure.SessionNotFound):
				return withHint(err)
			}

			forest, err := g.forest(cmd, sender)
			if err != nil {
				return err
			}
			payload, err := w.Gateway.Encrypt(ctx, []byte(body), forest)
			if err != nil {
				return withHint(err)
			}
			if out == "" {
				return printJSON(cmd, payload)
			}
			f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return err
			}
			if err := writeJSON(f, payload); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	g.bind(cmd)
	cmd.Flags().StringVar(&body, "body", "", "plaintext to encrypt")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the payload to a file instead of stdout")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

// decrypt --file <payload.json> [--chain ethereum|solana]
func decryptCmd() *cobra.Command {
	var file, chainName string
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a payload with the connected session",
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "cli.decrypt"
			ctx := cmd.Context()

			raw, err := readPayload(cmd, file)
			if err != nil {
				return err
			}
			var payload domain.EncryptedPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				return failure.Wrap(err, failure.CiphertextCorrupt, op, "payload is not valid JSON")
			}

			w, err := resumed(cmd)
			if err != nil {
				return err
			}
			info, err := w.Sessions.Principal(ctx)
			if err != nil {
				return withHint(err)
			}
			family := info.Family()
			if chainName != "" {
				f, ok := domain.ParseFamily(chainName)
				if !ok {
					return failure.New(failure.InvalidInput, op, "unsupported chain "+chainName)
				}
				family = f
			}
			if family == domain.FamilyNone {
				return withHint(failure.New(failure.NotGatedForChain, op, "the session account has no chain family"))
			}

			proof, err := w.Sessions.AuthProof(ctx)
			if err != nil {
				return withHint(err)
			}
			pt, err := w.Gateway.Decrypt(ctx, payload, &proof, family)
			if err != nil {
				return withHint(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(pt))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `payload file written by encrypt ("-" for stdin)`)
	cmd.Flags().StringVar(&chainName, "chain", "", "chain family to decrypt as (default: the session's)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readPayload(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(file)
}
