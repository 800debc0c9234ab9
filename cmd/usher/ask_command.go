package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"usher/internal/session"
	"usher/internal/summaries"
)

func newAskCommand(ctx *commandContext) *cobra.Command {
	var threadID string

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask the assistant a question",
		Long: "Ask runs one chat turn against the in-process assistant. The daemon\n" +
			"does not need to be running. Pass --thread to continue an earlier\n" +
			"conversation.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			sessions, err := session.Open(cfg)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			defer sessions.Close()

			summariesStore, err := summaries.Open(cfg)
			if err != nil {
				return fmt.Errorf("open summaries store: %w", err)
			}
			defer summariesStore.Close()

			assistantSvc, err := buildAssistant(cmd.Context(), cfg, sessions, summariesStore, ctx.logger())
			if err != nil {
				return fmt.Errorf("build assistant: %w", err)
			}

			message := strings.Join(args, " ")
			reply, err := assistantSvc.Chat(cmd.Context(), threadID, message)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Message)
			fmt.Fprintf(out, "\nThread: %s\n", reply.ThreadID)
			return nil
		},
	}

	cmd.Flags().StringVar(&threadID, "thread", "", "Continue an existing conversation thread")
	return cmd
}
