package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/sharedctx/internal/types"
)

func init() {
	rootCmd.AddCommand(decisionCmd)
	decisionCmd.AddCommand(decisionAddCmd, decisionListCmd)

	decisionAddCmd.Flags().String("description", "", "what was decided (required)")
	decisionAddCmd.Flags().String("rationale", "", "why it was decided")
	decisionAddCmd.Flags().String("by", string(types.ActorUser), "deciding actor (claude, codex, user)")
	decisionAddCmd.Flags().String("impact", string(types.ImpactMedium), "impact (high, medium, low)")
	_ = decisionAddCmd.MarkFlagRequired("description")

	decisionListCmd.Flags().String("impact", "", "only show decisions with this impact")
}

var decisionCmd = &cobra.Command{
	Use:   "decision",
	Short: "Record and list session decisions",
}

var decisionAddCmd = &cobra.Command{
	Use:   "add <session-id>",
	Short: "Record a decision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		rationale, _ := cmd.Flags().GetString("rationale")
		rawBy, _ := cmd.Flags().GetString("by")
		impact, _ := cmd.Flags().GetString("impact")

		by, err := parseActor(rawBy)
		if err != nil {
			return err
		}
		id, err := store.AddDecision(cmd.Context(), types.SessionID(args[0]), types.NewDecision{
			Description: description,
			Rationale:   rationale,
			MadeBy:      by,
			Impact:      types.Impact(impact),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var decisionListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List decisions, optionally filtered by impact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		id := types.SessionID(args[0])
		impact, _ := cmd.Flags().GetString("impact")

		var decisions []types.Decision
		if impact != "" {
			if !types.Impact(impact).Valid() {
				return fmt.Errorf("unknown impact %q (want high, medium or low)", impact)
			}
			decisions = store.GetDecisionsByImpact(cmd.Context(), id, types.Impact(impact))
		} else if session, ok := store.GetSession(cmd.Context(), id); ok {
			decisions = session.Decisions
		}

		out := cmd.OutOrStdout()
		if len(decisions) == 0 {
			fmt.Fprintln(out, "No decisions found.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tIMPACT\tBY\tDESCRIPTION\tRATIONALE")
		for _, d := range decisions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Impact, d.MadeBy, d.Description, d.Rationale)
		}
		return w.Flush()
	},
}
