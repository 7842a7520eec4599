package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/simulation"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a session on a virtual clock",
		Long: `Run a session on a virtual clock and report its phase transitions and
fired anomalies. Nothing is drawn; the run finishes as fast as it computes.

--inject takes kind:interval[:from[:to]] and may be repeated:

  ox500 simulate --seed 7 --duration 3m --inject glitch:100ms
  ox500 simulate --inject feed:2s --inject glitch:250ms:30s:90s --hide 60s:75s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetUint32("seed")
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Session.Seed
			}
			duration, _ := cmd.Flags().GetDuration("duration")
			step, _ := cmd.Flags().GetDuration("step")
			ambient, _ := cmd.Flags().GetBool("ambient")
			injects, _ := cmd.Flags().GetStringArray("inject")
			hides, _ := cmd.Flags().GetStringArray("hide")

			sc := simulation.Scenario{
				Name:        "cli",
				Seed:        seed,
				Duration:    duration,
				Step:        step,
				AmbientFeed: ambient,
			}
			for _, spec := range injects {
				evs, err := parseInject(spec, duration)
				if err != nil {
					return err
				}
				sc.Events = append(sc.Events, evs...)
			}
			for _, spec := range hides {
				evs, err := parseHide(spec)
				if err != nil {
					return err
				}
				sc.Events = append(sc.Events, evs...)
			}

			logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer closeLog()

			res, err := simulation.NewRunner(logger, nil).Run(cmd.Context(), sc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				res.Samples = nil
				return json.NewEncoder(out).Encode(res)
			}
			fmt.Fprint(out, simulation.Format(res))
			return nil
		},
	}
	cmd.Flags().Uint32("seed", 0, "Session seed (default session.seed)")
	cmd.Flags().Duration("duration", 3*time.Minute, "Simulated time")
	cmd.Flags().Duration("step", time.Second, "Sampling interval")
	cmd.Flags().Bool("ambient", false, "Enable the ambient feed")
	cmd.Flags().StringArray("inject", nil, "kind:interval[:from[:to]] activity stream")
	cmd.Flags().StringArray("hide", nil, "from:to window during which the station is hidden")
	return cmd
}

// parseInject parses kind:interval[:from[:to]]. to defaults to end.
func parseInject(spec string, end time.Duration) ([]simulation.Event, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return nil, fmt.Errorf("invalid --inject %q: want kind:interval[:from[:to]]", spec)
	}
	kind := constants.Activity(parts[0])
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid --inject %q: unknown activity %q", spec, parts[0])
	}
	durs := make([]time.Duration, 3)
	durs[2] = end
	for i, p := range parts[1:] {
		d, err := time.ParseDuration(p)
		if err != nil {
			return nil, fmt.Errorf("invalid --inject %q: %w", spec, err)
		}
		durs[i] = d
	}
	interval, from, to := durs[0], durs[1], durs[2]
	if interval <= 0 {
		return nil, fmt.Errorf("invalid --inject %q: interval must be positive", spec)
	}
	return simulation.Repeat(from, interval, to, kind), nil
}

// parseHide parses from:to.
func parseHide(spec string) ([]simulation.Event, error) {
	from, to, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("invalid --hide %q: want from:to", spec)
	}
	f, err := time.ParseDuration(from)
	if err != nil {
		return nil, fmt.Errorf("invalid --hide %q: %w", spec, err)
	}
	t, err := time.ParseDuration(to)
	if err != nil {
		return nil, fmt.Errorf("invalid --hide %q: %w", spec, err)
	}
	if t <= f {
		return nil, fmt.Errorf("invalid --hide %q: window is empty", spec)
	}
	return []simulation.Event{simulation.Hide(f), simulation.Show(t)}, nil
}
