package app

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/stacklok/forward-slots/internal/config"
	"github.com/stacklok/forward-slots/internal/service"
)

type forwardOptions struct {
	manifest string
	format   string
}

func newForwardCmd() *cobra.Command {
	opts := &forwardOptions{}
	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Run a forwarding pass described by a manifest",
		Long: `Run one forwarding pass over the targets of a manifest and print the rendered
channels of every target. Attribute warnings raised while rendering are
included in the output.

See examples/ directory for sample manifests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForward(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "Path or http(s) URL of the manifest (YAML format, required)")
	cmd.Flags().StringVar(&opts.format, "format", formatTable, "Output format (table, json or yaml)")
	if err := cmd.MarkFlagRequired("manifest"); err != nil {
		panic(fmt.Sprintf("failed to mark manifest flag as required: %v", err))
	}

	return cmd
}

func runForward(cmd *cobra.Command, opts *forwardOptions) error {
	manifest, err := config.LoadManifestFrom(cmd.Context(), opts.manifest, nil)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	result, err := service.New().Forward(cmd.Context(), manifest)
	if err != nil {
		return err
	}

	if opts.format != formatTable {
		return writeStructured(cmd.OutOrStdout(), opts.format, result)
	}

	var rows [][]string
	for _, node := range result.Nodes {
		for _, name := range slices.Sorted(maps.Keys(node.Channels)) {
			rows = append(rows, []string{node.Target, name, node.Channels[name]})
		}
	}
	if err := writeTable(cmd.OutOrStdout(), []string{"TARGET", "CHANNEL", "OUTPUT"}, rows); err != nil {
		return err
	}

	for _, w := range result.Warnings {
		if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w); err != nil {
			return err
		}
	}
	return nil
}
