package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/station"
)

func newRecipesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List the anomaly recipes a seed produces",
		Long: `Build the recipe pool for a seed and list one of its sets:

  session   the recipes UNSTABLE runs (default)
  incident  the fixed recipes INCIDENT runs
  pool      every generated recipe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetUint32("seed")
			applySeed(cfg, seed, cmd.Flags().Changed("seed"))
			set, _ := cmd.Flags().GetString("set")

			st := station.New(eventloop.NewVirtual(time.Now()), station.Options{
				Seed:          cfg.Session.Seed,
				ViewportWidth: cfg.Session.ViewportWidth,
				PathLen:       len(cfg.Session.Path),
				Logger:        logging.Discard(),
			})

			var recipes []models.Recipe
			switch set {
			case "session":
				recipes = st.Engine().Session()
			case "incident":
				recipes = st.Engine().Incident()
			case "pool":
				recipes = st.Engine().Pool()
			default:
				return fmt.Errorf("unknown recipe set %q (want session, incident or pool)", set)
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"seed":    st.Seed(),
					"set":     set,
					"recipes": recipes,
				})
			}

			fmt.Fprintf(out, "seed %d  %s recipes (%d)\n\n", st.Seed(), set, len(recipes))
			fmt.Fprintf(out, "%-6s %-22s %9s %9s %9s\n", "ID", "EFFECT", "INTERVAL", "DURATION", "BIAS")
			for _, r := range recipes {
				fmt.Fprintf(out, "%-6s %-22s %9s %9s %9s\n", r.ID, r.Key, r.Interval, r.Duration, r.InitialBias)
			}
			return nil
		},
	}
	cmd.Flags().Uint32("seed", 0, "Session seed (default session.seed)")
	cmd.Flags().String("set", "session", "Recipe set: session, incident or pool")
	return cmd
}
