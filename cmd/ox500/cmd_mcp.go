package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nvandessel/ox500/internal/config"
	"github.com/nvandessel/ox500/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve a headless session over MCP (stdio)",
		Long: `Run an OX-500 session and expose it to MCP clients over stdio.

Tools: ox500_snapshot, ox500_stats, ox500_inject, ox500_recipes.
Resource: ox500://terminal.

Tool calls are appended to <logging.dir>/audit.jsonl.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetUint32("seed")
			applySeed(cfg, seed, cmd.Flags().Changed("seed"))
			readOnly, _ := cmd.Flags().GetBool("read-only")

			// stdout carries the protocol
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

			audit, err := mcp.OpenAuditLog(config.ExpandPath(cfg.Logging.Dir))
			if err != nil {
				logger.Warn("audit log disabled", "error", err)
			}

			mcpCfg := &mcp.Config{
				Name:     "ox500",
				Version:  version,
				Station:  sess.st,
				Injector: sess.injector,
				Audit:    audit,
				Logger:   logger,
				Width:    cfg.Display.Width,
			}
			if readOnly {
				mcpCfg.Injector = nil
			}
			srv, err := mcp.NewServer(mcpCfg)
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return sess.Run(ctx, func(ctx context.Context) error {
				return srv.Run(ctx)
			})
		},
	}
	cmd.Flags().Uint32("seed", 0, "Session seed (0 derives one)")
	cmd.Flags().Bool("read-only", false, "Do not register ox500_inject")
	return cmd
}
