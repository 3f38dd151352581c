// Package cmd holds the command line entry points: serve (the default),
// migrate and token.
package cmd

import (
	"Trivium/config"

	"github.com/spf13/cobra"
)

const releaseVersion = "1.0.0"

func NewRootCmd() *cobra.Command {
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:     "trivium",
		Short:   "Backend for the Trivium multiplayer quiz.",
		Args:    cobra.NoArgs,
		Version: releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.ApplyEnv(cmd.Root().PersistentFlags())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	config.BindFlags(root.PersistentFlags(), cfg)

	root.AddCommand(newServeCmd(cfg), newMigrateCmd(cfg), newTokenCmd(cfg))

	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	root.SilenceErrors = true
	root.SilenceUsage = true

	return root
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and socket.io server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
}
