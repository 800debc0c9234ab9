package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"usher/internal/session"
)

const stampLayout = "2006-01-02 15:04"

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Browse stored conversation threads",
	}

	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsDeleteCommand(ctx))

	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversation threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := session.Open(cfg)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			defer store.Close()

			threads, err := store.Threads(cmd.Context())
			if err != nil {
				return fmt.Errorf("list threads: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(threads) == 0 {
				fmt.Fprintln(out, "No conversation threads")
				return nil
			}

			rows := make([][]string, 0, len(threads))
			for _, thread := range threads {
				rows = append(rows, []string{
					thread.ID,
					strconv.Itoa(thread.MessageCount),
					thread.CreatedAt.Local().Format(stampLayout),
					thread.UpdatedAt.Local().Format(stampLayout),
				})
			}
			renderRows(out, []string{"Thread", "Messages", "Created", "Updated"}, rows, []columnAlignment{alignLeft, alignRight})
			return nil
		},
	}
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <thread>",
		Short: "Print the transcript of a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := session.Open(cfg)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			defer store.Close()

			messages, err := store.Messages(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load thread %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if len(messages) == 0 {
				fmt.Fprintf(out, "Thread %s has no messages\n", args[0])
				return nil
			}

			for _, msg := range messages {
				speaker := msg.Role
				if msg.Role == session.RoleAssistant && msg.Agent != "" {
					speaker = fmt.Sprintf("%s (%s)", msg.Role, msg.Agent)
				}
				fmt.Fprintf(out, "[%s] %s: %s\n", msg.CreatedAt.Local().Format(stampLayout), speaker, msg.Content)
			}
			return nil
		},
	}
}

func newSessionsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <thread>",
		Short: "Delete a thread and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := session.Open(cfg)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			defer store.Close()

			if err := store.DeleteThread(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted thread %s\n", args[0])
			return nil
		},
	}
}
