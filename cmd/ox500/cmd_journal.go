package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/ox500/internal/config"
	"github.com/nvandessel/ox500/internal/journal"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded sessions",
		Long: `Inspect sessions recorded with 'ox500 run --journal' or journal.enabled.

Examples:
  ox500 journal list
  ox500 journal show <session-id>`,
	}
	cmd.PersistentFlags().String("path", "", "Journal file (default journal.path)")
	cmd.AddCommand(newJournalListCmd(), newJournalShowCmd())
	return cmd
}

func openJournal(cmd *cobra.Command) (*journal.Journal, error) {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		path = cfg.Journal.Path
	}
	return journal.Open(config.ExpandPath(path))
}

func newJournalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			sessions, err := j.Sessions(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				if sessions == nil {
					sessions = []journal.Session{}
				}
				return json.NewEncoder(out).Encode(sessions)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions recorded.")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(out, "%s  %s  seed %-6d %3d transitions %4d effects\n",
					s.ID, s.StartedAt.Local().Format(time.DateTime), s.Seed, s.Transitions, s.Effects)
			}
			return nil
		},
	}
}

func newJournalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the transitions and effects of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			id := args[0]
			transitions, err := j.Transitions(cmd.Context(), id)
			if err != nil {
				return err
			}
			effects, err := j.Effects(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"session":     id,
					"transitions": transitions,
					"effects":     effects,
				})
			}

			fmt.Fprintf(out, "session %s\n\n", id)
			fmt.Fprintf(out, "Transitions (%d):\n", len(transitions))
			for _, t := range transitions {
				fmt.Fprintf(out, "  %s  %-8s -> %-8s  pressure=%.3f\n",
					t.At.Local().Format(time.TimeOnly), t.From, t.To, t.Pressure)
			}
			fmt.Fprintf(out, "\nEffects (%d):\n", len(effects))
			for _, e := range effects {
				fmt.Fprintf(out, "  %s  %-5s %-22s %s\n",
					e.FiredAt.Local().Format(time.TimeOnly), e.RecipeID, e.Key, e.Duration)
			}
			return nil
		},
	}
}
