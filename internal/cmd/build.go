package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/collage-mcp/internal/collage"
	"github.com/ironsheep/collage-mcp/internal/imaging"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build FILE...",
		Short: "Assemble images into a collage and print its data URL",
		Long: `Build assembles the given images, in order, into a grid collage using the
configured layout. The data URL is printed to stdout unless --output is
set, in which case the encoded image is written to that file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBuild,
	}

	cmd.Flags().Int("cell-size", 0, "cell side in pixels (default from config)")
	cmd.Flags().Int("columns", 0, "cells per row (default from config)")
	cmd.Flags().StringP("output", "o", "", "write the encoded collage to this file instead of printing a data URL")
	cmd.Flags().Bool("cast", false, "hand the result to the cast sink after building")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	asm, _, _, err := newAssembler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	layout := asm.Layout()
	if cmd.Flags().Changed("cell-size") {
		if layout.CellSize, err = cmd.Flags().GetInt("cell-size"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("columns") {
		if layout.Columns, err = cmd.Flags().GetInt("columns"); err != nil {
			return err
		}
	}

	sources, err := imaging.LoadSources(args)
	if err != nil {
		return err
	}

	res, err := asm.Build(cmd.Context(), sources, layout)
	if err != nil {
		return err
	}

	cast, err := cmd.Flags().GetBool("cast")
	if err != nil {
		return err
	}
	if cast {
		if _, err := asm.ExportForCast(cmd.Context()); err != nil {
			return err
		}
	}

	return writeResult(cmd, res)
}

func writeResult(cmd *cobra.Command, res *collage.Result) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), res.DataURL())
		return err
	}

	if err := os.WriteFile(output, res.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write collage: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %dx%d %s (%d bytes) to %s\n",
		res.Width(), res.Height(), res.MimeType(), res.Size(), output)
	return nil
}
