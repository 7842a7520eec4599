package main

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nvandessel/ox500/internal/tui"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the terminal interactively",
		Long: `Run an OX-500 session in the terminal.

Keys: f feed, p page, l log, g glitch, w whisper, h hide/show, q quit.
Losing terminal focus hides the station like a background tab would.
Logs go to <logging.dir>/ox500.log.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetUint32("seed")
			applySeed(cfg, seed, cmd.Flags().Changed("seed"))
			if cmd.Flags().Changed("journal") {
				cfg.Journal.Enabled, _ = cmd.Flags().GetBool("journal")
			}

			logger, closeLog, err := newLogger(cfg, nil, true)
			if err != nil {
				return err
			}
			defer closeLog()

			sess, err := newSession(cfg, logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			renderer := lipgloss.NewRenderer(os.Stdout)
			if !cfg.Display.Color {
				renderer = lipgloss.NewRenderer(io.Discard)
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			return sess.Run(ctx, func(ctx context.Context) error {
				model := tui.New(ctx, sess.st, sess.injector, tui.Options{
					Width:       cfg.Display.Width,
					Renderer:    renderer,
					FollowFocus: true,
				})
				p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
				_, err := p.Run()
				if errors.Is(err, tea.ErrProgramKilled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().Uint32("seed", 0, "Session seed (0 derives one)")
	cmd.Flags().Bool("journal", false, "Record the session to the journal")
	return cmd
}
