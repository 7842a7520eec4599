package main

import (
	"github.com/spf13/cobra"

	"github.com/nvandessel/ox500/internal/monitor"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a headless session behind the HTTP monitor",
		Long: `Run an OX-500 session without a terminal and serve it over HTTP.

  GET  /               plain-text render (?width=N)
  GET  /api/snapshot   diagnostics panel
  GET  /api/stats      raw metrics and engine state
  POST /api/inject     ?kind=feed|page|log|glitch|whisper`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetUint32("seed")
			applySeed(cfg, seed, cmd.Flags().Changed("seed"))
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Monitor.Addr = addr
			}
			if cmd.Flags().Changed("journal") {
				cfg.Journal.Enabled, _ = cmd.Flags().GetBool("journal")
			}
			readOnly, _ := cmd.Flags().GetBool("read-only")

			logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer closeLog()

			sess, err := newSession(cfg, logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			var injector monitor.Injector
			if !readOnly {
				injector = sess.injector
			}
			srv := monitor.NewServer(sess.st, injector, monitor.Options{
				Addr:   cfg.Monitor.Addr,
				Width:  cfg.Display.Width,
				Logger: logger,
			})

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return sess.Run(ctx, srv.ListenAndServe)
		},
	}
	cmd.Flags().Uint32("seed", 0, "Session seed (0 derives one)")
	cmd.Flags().String("addr", "", "Listen address (default monitor.addr)")
	cmd.Flags().Bool("journal", false, "Record the session to the journal")
	cmd.Flags().Bool("read-only", false, "Disable POST /api/inject")
	return cmd
}

