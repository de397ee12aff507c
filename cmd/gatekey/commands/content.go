package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"gatekey/internal/failure"
)

// conversation create|show
func conversationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conversation",
		Short: "Create and inspect encrypted conversations",
	}

	var (
		recipients []string
		name       string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Start a conversation with recipients",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resumed(cmd)
			if err != nil {
				return err
			}
			g := gateFlags{recipients: recipients}
			id, err := w.Content.CreateConversation(cmd.Context(), g.dids(), name)
			if err != nil {
				return withHint(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	create.Flags().StringSliceVar(&recipients, "recipient", nil, "recipient DID (repeatable)")
	create.Flags().StringVar(&name, "name", "", "conversation name, encrypted for participants")
	_ = create.MarkFlagRequired("recipient")

	var showID string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print a conversation document",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resumed(cmd)
			if err != nil {
				return err
			}
			conv, err := w.Content.Conversation(cmd.Context(), showID)
			if err != nil {
				return withHint(err)
			}
			if conv.EncryptedName != nil && conv.Name == "" {
				if name, err := w.Content.DecryptMessage(cmd.Context(), *conv.EncryptedName); err == nil {
					conv.Name = name
				}
			}
			return printJSON(cmd, conv)
		},
	}
	show.Flags().StringVar(&showID, "id", "", "conversation id")
	_ = show.MarkFlagRequired("id")

	cmd.AddCommand(create, show)
	return cmd
}

// message send|read
func messageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send and read conversation messages",
	}

	var conversation, body string
	send := &cobra.Command{
		Use:   "send",
		Short: "Encrypt a message for a conversation's participants",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resumed(cmd)
			if err != nil {
				return err
			}
			id, err := w.Content.SendMessage(cmd.Context(), conversation, body)
			if err != nil {
				return withHint(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	send.Flags().StringVar(&conversation, "conversation", "", "conversation id")
	send.Flags().StringVar(&body, "body", "", "message text")
	_ = send.MarkFlagRequired("conversation")
	_ = send.MarkFlagRequired("body")

	var readID string
	read := &cobra.Command{
		Use:   "read",
		Short: "Decrypt a message with the connected session",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resumed(cmd)
			if err != nil {
				return err
			}
			text, err := w.Content.ReadMessage(cmd.Context(), readID)
			if err != nil {
				return withHint(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	read.Flags().StringVar(&readID, "id", "", "message id")
	_ = read.MarkFlagRequired("id")

	cmd.AddCommand(send, read)
	return cmd
}

// post create|read
func postCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish and read posts, optionally token-gated",
	}

	var (
		g    gateFlags
		body string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Publish a post; gate flags or --rules encrypt it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(g.recipients) > 0 {
				return failure.New(failure.InvalidInput, "cli.post", "posts are gated by --gate-* flags or --rules, not recipients")
			}
			rules, err := g.rules(cmd)
			if err != nil {
				return err
			}
			w, err := resumed(cmd)
			if err != nil {
				return err
			}
			id, err := w.Content.CreatePost(cmd.Context(), body, rules)
			if err != nil {
				return withHint(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	g.bind(create)
	create.Flags().StringVar(&body, "body", "", "post text")
	_ = create.MarkFlagRequired("body")

	var readID string
	read := &cobra.Command{
		Use:   "read",
		Short: "Print a post, decrypting it when gated",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resumed(cmd)
			if err != nil {
				return err
			}
			text, err := w.Content.ReadPost(cmd.Context(), readID)
			if err != nil {
				return withHint(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	read.Flags().StringVar(&readID, "id", "", "post id")
	_ = read.MarkFlagRequired("id")

	cmd.AddCommand(create, read)
	return cmd
}
