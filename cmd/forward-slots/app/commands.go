// Package app provides the entry point for the forward-slots application.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/forward-slots/internal/config"
	"github.com/stacklok/forward-slots/internal/versions"
)

// NewRootCmd creates a new root command for forward-slots.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "forward-slots",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Forward named content channels to wrapped components",
		Long: `forward-slots decides which named content channels ("slots") a wrapper
component forwards to the components it renders, and runs forwarding passes
described by YAML manifests from the command line or over HTTP.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		slog.Error("Error binding debug flag", "error", err)
	}

	rootCmd.AddCommand(newSelectCmd())
	rootCmd.AddCommand(newForwardCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to read format flag: %w", err)
			}

			if format == formatText {
				_, err := fmt.Fprint(cmd.OutOrStdout(), info.String())
				return err
			}
			return writeStructured(cmd.OutOrStdout(), format, info)
		},
	}
	cmd.Flags().String("format", formatText, "Output format (text, json or yaml)")
	return cmd
}
