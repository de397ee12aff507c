package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gatekey/internal/crypto"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the connected identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resumed(cmd)
			if err != nil {
				return err
			}
			info, err := w.Sessions.Principal(cmd.Context())
			if err != nil {
				return withHint(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "DID:         %s\n", info.DID)
			fmt.Fprintf(out, "Address:     %s\n", info.Account.Address)
			fmt.Fprintf(out, "Chain:       %s\n", info.Account.Chain())
			fmt.Fprintf(out, "Fingerprint: %s\n", crypto.Fingerprint([]byte(info.DID)))
			if info.ExpiresAt.IsZero() {
				fmt.Fprintln(out, "Expires:     never")
			} else {
				fmt.Fprintf(out, "Expires:     %s\n", info.ExpiresAt.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session and cached proofs",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := deps(cmd)
			if err != nil {
				return err
			}
			if err := w.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}
