package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/sharedctx/internal/types"
)

func init() {
	rootCmd.AddCommand(artifactCmd)
	artifactCmd.AddCommand(artifactAddCmd, artifactListCmd)

	artifactAddCmd.Flags().String("type", string(types.ArtifactOther), "artifact type (plan, specification, analysis, reasoning, code, other)")
	artifactAddCmd.Flags().String("by", string(types.ActorUser), "creating actor (claude, codex, user)")
	artifactAddCmd.Flags().String("content", "", "content; parsed as JSON when valid, else stored as text")
	artifactAddCmd.Flags().String("content-file", "", "read content from a file instead")
	artifactAddCmd.Flags().String("metadata", "", "metadata as a JSON object")
	artifactAddCmd.MarkFlagsMutuallyExclusive("content", "content-file")

	artifactListCmd.Flags().String("type", "", "only show artifacts of this type")
	artifactListCmd.Flags().Bool("json", false, "print artifacts with their content as JSON")
}

var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Attach and list session artifacts",
}

var artifactAddCmd = &cobra.Command{
	Use:   "add <session-id>",
	Short: "Attach an artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("type")
		rawBy, _ := cmd.Flags().GetString("by")
		content, _ := cmd.Flags().GetString("content")
		contentFile, _ := cmd.Flags().GetString("content-file")
		rawMeta, _ := cmd.Flags().GetString("metadata")

		by, err := parseActor(rawBy)
		if err != nil {
			return err
		}
		if contentFile != "" {
			data, err := os.ReadFile(contentFile)
			if err != nil {
				return fmt.Errorf("read content file: %w", err)
			}
			content = string(data)
		}
		meta, err := parseMetadata(rawMeta)
		if err != nil {
			return err
		}

		id, err := store.AddArtifact(cmd.Context(), types.SessionID(args[0]), types.NewArtifact{
			CreatedBy: by,
			Type:      types.ArtifactType(kind),
			Content:   parsePayload(content),
			Metadata:  meta,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var artifactListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List artifacts, optionally filtered by type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		id := types.SessionID(args[0])
		kind, _ := cmd.Flags().GetString("type")

		var artifacts []types.Artifact
		if kind != "" {
			if !types.ArtifactType(kind).Valid() {
				return fmt.Errorf("unknown artifact type %q", kind)
			}
			artifacts = store.GetArtifactsByType(cmd.Context(), id, types.ArtifactType(kind))
		} else if session, ok := store.GetSession(cmd.Context(), id); ok {
			artifacts = session.Artifacts
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if artifacts == nil {
				artifacts = []types.Artifact{}
			}
			return printJSON(cmd, artifacts)
		}

		out := cmd.OutOrStdout()
		if len(artifacts) == 0 {
			fmt.Fprintln(out, "No artifacts found.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tBY\tCREATED")
		for _, a := range artifacts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Type, a.CreatedBy, a.Timestamp.Local().Format(timeLayout))
		}
		return w.Flush()
	},
}
