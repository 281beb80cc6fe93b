package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/sharedctx/internal/budget"
	"github.com/user/sharedctx/internal/types"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionCreateCmd, sessionListCmd, sessionShowCmd, sessionUpdateCmd,
		sessionDeleteCmd, sessionExportCmd, sessionImportCmd)

	sessionCreateCmd.Flags().String("source", string(types.ActorUser), "initiating actor (claude, codex, user)")
	sessionCreateCmd.Flags().String("task-type", "", "task type")
	sessionCreateCmd.Flags().String("goal", "", "current goal")

	sessionShowCmd.Flags().Bool("json", false, "print the full session document")

	sessionUpdateCmd.Flags().String("source", "", "initiating actor (claude, codex, user)")
	sessionUpdateCmd.Flags().String("task-type", "", "task type")
	sessionUpdateCmd.Flags().String("goal", "", "current goal")
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		rawSource, _ := cmd.Flags().GetString("source")
		source, err := parseActor(rawSource)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		id, err := store.CreateSession(ctx, source)
		if err != nil {
			return err
		}

		update, err := sessionUpdateFromFlags(cmd)
		if err != nil {
			return err
		}
		update.Source = nil
		if update.TaskType != nil || update.CurrentGoal != nil {
			if err := store.UpdateSession(ctx, id, update); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		rows, err := store.Summaries(cmd.Context())
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSOURCE\tTASK\tDECISIONS\tARTIFACTS\tHISTORY\tUPDATED")
		for _, s := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				s.SessionID,
				s.Source,
				s.TaskType,
				s.Decisions,
				s.Artifacts,
				s.History,
				s.LastUpdated.Local().Format(timeLayout),
			)
		}
		return w.Flush()
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openStore()
		if err != nil {
			return err
		}
		session, ok := store.GetSession(cmd.Context(), types.SessionID(args[0]))
		if !ok {
			return fmt.Errorf("session not found: %s", args[0])
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, session)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Session:    %s\n", session.SessionID)
		fmt.Fprintf(out, "Source:     %s\n", session.Source)
		if session.TaskType != "" {
			fmt.Fprintf(out, "Task type:  %s\n", session.TaskType)
		}
		if session.CurrentGoal != "" {
			fmt.Fprintf(out, "Goal:       %s\n", session.CurrentGoal)
		}
		fmt.Fprintf(out, "Created:    %s\n", session.CreatedAt.Local().Format(timeLayout))
		fmt.Fprintf(out, "Updated:    %s\n", session.LastUpdated.Local().Format(timeLayout))
		fmt.Fprintf(out, "Decisions:  %d\n", len(session.Decisions))
		fmt.Fprintf(out, "Artifacts:  %d\n", len(session.Artifacts))
		fmt.Fprintf(out, "History:    %d\n", len(session.History))

		counter, err := budget.NewTiktokenCounter(cfg.Tokenizer.Model)
		if err != nil {
			slog.Warn("token footprint unavailable", "error", err)
			return nil
		}
		fp, err := budget.New(counter).Measure(session)
		if err != nil {
			slog.Warn("token footprint unavailable", "error", err)
			return nil
		}
		fmt.Fprintf(out, "Tokens:     %d (decisions %d, artifacts %d, history %d)\n",
			fp.Total(), fp.Decisions, fp.Artifacts, fp.History)
		return nil
	},
}

var sessionUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a session's source, task type or goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		update, err := sessionUpdateFromFlags(cmd)
		if err != nil {
			return err
		}
		if update.Source == nil && update.TaskType == nil && update.CurrentGoal == nil {
			return fmt.Errorf("nothing to update: pass --source, --task-type or --goal")
		}
		if err := store.UpdateSession(cmd.Context(), types.SessionID(args[0]), update); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s updated.\n", args[0])
		return nil
	},
}

// sessionUpdateFromFlags collects only the flags the user set.
func sessionUpdateFromFlags(cmd *cobra.Command) (types.SessionUpdate, error) {
	var update types.SessionUpdate
	flags := cmd.Flags()
	if flags.Changed("source") {
		raw, _ := flags.GetString("source")
		source, err := parseActor(raw)
		if err != nil {
			return update, err
		}
		update.Source = &source
	}
	if flags.Changed("task-type") {
		v, _ := flags.GetString("task-type")
		update.TaskType = &v
	}
	if flags.Changed("goal") {
		v, _ := flags.GetString("goal")
		update.CurrentGoal = &v
	}
	return update, nil
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		if err := store.DeleteSession(cmd.Context(), types.SessionID(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s deleted.\n", args[0])
		return nil
	},
}

var sessionExportCmd = &cobra.Command{
	Use:   "export <id> [path]",
	Short: "Export a session to a file, or stdout when path is omitted or -",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		id := types.SessionID(args[0])
		if len(args) == 1 || args[1] == "-" {
			return store.ExportTo(cmd.Context(), id, cmd.OutOrStdout())
		}
		if err := store.ExportSession(cmd.Context(), id, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Session %s exported to %s.\n", id, args[1])
		return nil
	},
}

var sessionImportCmd = &cobra.Command{
	Use:   "import <path|->",
	Short: "Import an exported session under a new id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		var id types.SessionID
		if args[0] == "-" {
			id, err = store.ImportFrom(cmd.Context(), cmd.InOrStdin())
		} else {
			id, err = store.ImportSession(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}
