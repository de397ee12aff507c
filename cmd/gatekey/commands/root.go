package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"gatekey/internal/app"
	"gatekey/internal/failure"
)

var (
	home      string
	storeKind string
	nodeURL   string
	relayURL  string
	mode      string

	wire *app.Wire
)

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return execute(ctx, newRoot())
}

// execute runs root and closes whatever the command opened, even when it
// failed.
func execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if wire != nil {
		err = errors.Join(err, wire.Close())
		wire = nil
	}
	return err
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "gatekey",
		Short:         "Wallet sessions and condition-gated encryption",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state directory (default ~/.gatekey)")
	root.PersistentFlags().StringVar(&storeKind, "store", "", "credential store: file, memory, redis or postgres")
	root.PersistentFlags().StringVar(&nodeURL, "node", "", "key network node URL (local mode)")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (delegated mode and OAuth)")
	root.PersistentFlags().StringVar(&mode, "mode", "", "network mode: local or delegated")

	root.AddCommand(
		connectCmd(), connectSeedCmd(), connectOAuthCmd(),
		whoamiCmd(), logoutCmd(),
		conditionsCmd(), encryptCmd(), decryptCmd(),
		conversationCmd(), messageCmd(), postCmd(),
	)
	return root
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("home") {
		cfg.Home = home
	}
	if flags.Changed("store") {
		cfg.Store = storeKind
	}
	if flags.Changed("node") {
		cfg.NodeURL = nodeURL
	}
	if flags.Changed("relay") {
		if cfg.OAuthURL == cfg.RelayURL {
			cfg.OAuthURL = relayURL
		}
		cfg.RelayURL = relayURL
	}
	if flags.Changed("mode") {
		cfg.NetworkMode = mode
	}
	return cfg, cfg.Validate()
}

// deps builds the dependency graph once per invocation.
func deps(cmd *cobra.Command) (*app.Wire, error) {
	if wire != nil {
		return wire, nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	w, err := app.NewWire(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	wire = w
	return w, nil
}

// resumed returns the wire with the stored session restored.
func resumed(cmd *cobra.Command) (*app.Wire, error) {
	w, err := deps(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := w.Sessions.Resume(cmd.Context()); err != nil {
		return nil, withHint(err)
	}
	return w, nil
}

// withHint appends the remediation for classified errors.
func withHint(err error) error {
	kind := failure.KindOf(err)
	if kind == "" {
		return err
	}
	if hint := failure.Remediation(kind); hint != "" {
		return &hinted{err: err, hint: hint}
	}
	return err
}

type hinted struct {
	err  error
	hint string
}

func (h *hinted) Error() string { return h.err.Error() + " (" + h.hint + ")" }
func (h *hinted) Unwrap() error { return h.err }
