package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/sharedctx/internal/journal"
	"github.com/user/sharedctx/internal/types"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyAddCmd, historyShowCmd, historyRecordRequestCmd, historyRecordResultCmd)

	historyAddCmd.Flags().String("actor", string(types.ActorUser), "acting party (claude, codex, user)")
	historyAddCmd.Flags().String("action", "", "action tag (required)")
	historyAddCmd.Flags().String("details", "", "details; parsed as JSON when valid, else stored as text")
	_ = historyAddCmd.MarkFlagRequired("action")

	historyShowCmd.Flags().Int("limit", 0, "only show the last N entries")

	for _, c := range []*cobra.Command{historyRecordRequestCmd, historyRecordResultCmd} {
		c.Flags().String("actor", string(types.ActorCodex), "acting party (claude, codex, user)")
	}
	historyRecordRequestCmd.Flags().String("prompt", "", "prompt sent to the executor (required)")
	historyRecordRequestCmd.Flags().String("model", "", "model the prompt ran with")
	historyRecordRequestCmd.Flags().String("sandbox", "", "sandbox mode")
	historyRecordRequestCmd.Flags().String("workdir", "", "working directory")
	historyRecordRequestCmd.Flags().Bool("full-auto", false, "whether the run was fully automatic")
	_ = historyRecordRequestCmd.MarkFlagRequired("prompt")

	historyRecordResultCmd.Flags().String("output", "", "executor output")
	historyRecordResultCmd.Flags().String("error", "", "error message; marks the result failed")
	historyRecordResultCmd.Flags().Duration("duration", 0, "execution time")
	historyRecordResultCmd.Flags().String("artifact-type", "", "also store successful output as an artifact of this type")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Append to and read a session's audit trail",
}

var historyAddCmd = &cobra.Command{
	Use:   "add <session-id>",
	Short: "Append a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		rawActor, _ := cmd.Flags().GetString("actor")
		action, _ := cmd.Flags().GetString("action")
		details, _ := cmd.Flags().GetString("details")

		actor, err := parseActor(rawActor)
		if err != nil {
			return err
		}
		return store.AddHistoryEntry(cmd.Context(), types.SessionID(args[0]), types.NewHistoryEntry{
			Actor:   actor,
			Action:  action,
			Details: parsePayload(details),
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the history log in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		session, ok := store.GetSession(cmd.Context(), types.SessionID(args[0]))
		if !ok {
			return fmt.Errorf("session not found: %s", args[0])
		}

		entries := session.History
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(entries) > limit {
			entries = entries[len(entries)-limit:]
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTOR\tACTION\tDETAILS")
		for _, e := range entries {
			details := ""
			if e.Details != nil {
				data, err := json.Marshal(e.Details)
				if err != nil {
					return fmt.Errorf("marshal details: %w", err)
				}
				details = string(data)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format(timeLayout), e.Actor, e.Action, details)
		}
		return w.Flush()
	},
}

// journalFor opens the store, checks the session exists and builds a journal
// writing as the --actor flag.
func journalFor(cmd *cobra.Command, id string, opts ...journal.Option) (*journal.Journal, error) {
	store, _, err := openStore()
	if err != nil {
		return nil, err
	}
	if _, ok := store.GetSession(cmd.Context(), types.SessionID(id)); !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	rawActor, _ := cmd.Flags().GetString("actor")
	actor, err := parseActor(rawActor)
	if err != nil {
		return nil, err
	}
	return journal.New(store, append(opts, journal.WithActor(actor))...), nil
}

var historyRecordRequestCmd = &cobra.Command{
	Use:   "record-request <session-id>",
	Short: "Record a prompt handed to the executor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := journalFor(cmd, args[0])
		if err != nil {
			return err
		}
		prompt, _ := cmd.Flags().GetString("prompt")
		opts := journal.Options{SessionID: args[0]}
		opts.Model, _ = cmd.Flags().GetString("model")
		opts.Sandbox, _ = cmd.Flags().GetString("sandbox")
		opts.WorkingDirectory, _ = cmd.Flags().GetString("workdir")
		if cmd.Flags().Changed("full-auto") {
			fullAuto, _ := cmd.Flags().GetBool("full-auto")
			opts.FullAuto = &fullAuto
		}
		j.RecordRequest(cmd.Context(), prompt, opts)
		return nil
	},
}

var historyRecordResultCmd = &cobra.Command{
	Use:   "record-result <session-id>",
	Short: "Record the executor's outcome for a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []journal.Option
		if raw, _ := cmd.Flags().GetString("artifact-type"); raw != "" {
			t := types.ArtifactType(raw)
			if !t.Valid() {
				return fmt.Errorf("invalid artifact type %q", raw)
			}
			opts = append(opts, journal.WithArtifactType(t))
		}
		j, err := journalFor(cmd, args[0], opts...)
		if err != nil {
			return err
		}

		res := journal.Result{SessionID: args[0]}
		res.Output, _ = cmd.Flags().GetString("output")
		res.Error, _ = cmd.Flags().GetString("error")
		res.ExecutionTime, _ = cmd.Flags().GetDuration("duration")
		res.Success = res.Error == ""
		j.RecordResult(cmd.Context(), res)
		return nil
	},
}
