package commands

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gatekey/internal/chain"
	"gatekey/internal/crypto"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// connect --evm-key <hex> | --solana-seed <hex>
func connectCmd() *cobra.Command {
	var evmKey, solanaSeed string
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Authorize a session with a local wallet key",
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "cli.connect"

			var adapter chain.Adapter
			switch {
			case evmKey != "" && solanaSeed != "":
				return failure.New(failure.InvalidInput, op, "use either --evm-key or --solana-seed")
			case evmKey != "":
				w, err := chain.NewLocalEVMWallet(evmKey)
				if err != nil {
					return failure.Wrap(err, failure.InvalidInput, op, "bad --evm-key")
				}
				adapter = chain.NewEVM(w)
			case solanaSeed != "":
				seed, err := crypto.FromHex(solanaSeed)
				if err != nil {
					return failure.Wrap(err, failure.InvalidInput, op, "bad --solana-seed")
				}
				w, err := chain.NewLocalSolanaWallet(seed)
				if err != nil {
					return failure.Wrap(err, failure.InvalidInput, op, "bad --solana-seed")
				}
				adapter = chain.NewSolana(w)
			default:
				return failure.New(failure.InvalidInput, op, "--evm-key or --solana-seed is required")
			}

			w, err := deps(cmd)
			if err != nil {
				return err
			}
			res, err := w.Sessions.Connect(cmd.Context(), adapter)
			if err != nil {
				return withHint(err)
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&evmKey, "evm-key", "", "hex secp256k1 private key")
	cmd.Flags().StringVar(&solanaSeed, "solana-seed", "", "hex 32-byte ed25519 seed")
	return cmd
}

// connect-seed [--seed <hex>]: a did:key session with no wallet.
func connectSeedCmd() *cobra.Command {
	var seedHex string
	cmd := &cobra.Command{
		Use:   "connect-seed",
		Short: "Start a key-only session from a 32-byte seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed []byte
			if seedHex == "" {
				seed = make([]byte, 32)
				if _, err := rand.Read(seed); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "generated seed: %s\n", crypto.Hex(seed))
			} else {
				var err error
				if seed, err = crypto.FromHex(seedHex); err != nil {
					return failure.Wrap(err, failure.InvalidInput, "cli.connect-seed", "bad --seed")
				}
			}
			defer crypto.Wipe(seed)

			w, err := deps(cmd)
			if err != nil {
				return err
			}
			res, err := w.Sessions.ConnectWithSeed(cmd.Context(), seed)
			if err != nil {
				return withHint(err)
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&seedHex, "seed", "", "hex 32-byte seed (random when empty)")
	return cmd
}

// connect-oauth: obtain a network-custodied key from the PKP relay.
func connectOAuthCmd() *cobra.Command {
	var req domain.OAuthRequest
	cmd := &cobra.Command{
		Use:   "connect-oauth",
		Short: "Sign in with an OAuth identity through the PKP relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := deps(cmd)
			if err != nil {
				return err
			}
			res, err := w.Sessions.ConnectOAuth(cmd.Context(), req)
			if err != nil {
				return withHint(err)
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&req.Type, "type", "", "provider: google, discord, github, email, ...")
	cmd.Flags().StringVar(&req.UserID, "user-id", "", "provider user id")
	cmd.Flags().StringVar(&req.AccessToken, "token", "", "provider access token")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address (email logins)")
	cmd.Flags().StringVar(&req.Code, "code", "", "verification code (email logins)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error { return writeJSON(cmd.OutOrStdout(), v) }

// writeJSON indents v and leaves comparators such as ">=" unescaped.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
