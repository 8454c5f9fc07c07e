package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/collage-mcp/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the collage tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol, so logs go to stderr
	asm, logger, cfg, err := newAssembler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	logger.Debug("collage-mcp starting",
		"version", Version, "build_time", BuildTime, "commit", GitCommit,
		"cell_size", cfg.Collage.CellSize, "columns", cfg.Collage.Columns)

	srv := server.New(asm, server.WithLogger(logger), server.WithVersion(Version))
	return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}
